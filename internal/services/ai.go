package services

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

var (
	// ErrAIUnavailable is returned when the OpenAI integration is not configured.
	ErrAIUnavailable = errors.New("openai integration is not configured")
)

const llmCallTimeout = 2 * time.Minute

// studySystemPrompt is the fixed instruction contract for the
// schema-constrained request mode: one call returns the whole object.
const studySystemPrompt = `You are a study assistant. Given a passage of academic or technical text, extract and return a JSON object containing the following:

1. "summary" - A concise 3-5 sentence paragraph summarizing the core ideas.
2. "web_links" - A list of 3-5 relevant and trusted URLs (.gov, .edu, .org).
3. "flashcards" - Exactly 5 flashcards, each with:
   - "question": a short, factual question
   - "answer": a brief, direct answer
4. "quizzes" - A list of exactly 5 multiple-choice questions. Each item must be a dictionary with:
   - "question": a clearly worded, self-contained question that tests understanding of a key point in the passage
   - "options": an array of exactly 4 plausible and distinct answer choices
     - Ensure that at least two distractors (wrong answers) are reasonable but clearly incorrect
     - Do NOT use repeated, vague, or overly similar options
   - "answer": the exact string from one of the options that is correct (must match one of the options exactly, including punctuation and spacing)

Avoid yes/no questions. Prioritize fact-based or concept-checking questions over opinion or speculation. Ensure the correct answer is not obviously longer or more detailed than the distractors.

Return only valid JSON, without markdown, explanations, or labels.`

// Per-task prompts for the legacy mode, which issues three separate calls
// because no schema enforcement is requested.
const (
	summarySystemPrompt = "Summarize the given text into a concise paragraph."

	flashcardSystemPrompt = `Create exactly 5 flashcards from the given text.
Each flashcard must have the following fields:
- "question": the flashcard question
- "answer": the answer to the flashcard
Return ONLY the JSON array of flashcards without any explanation.`

	quizSystemPrompt = `Generate exactly 5 multiple-choice questions from the given text.
Each quiz question must have:
- "question": the question text
- "options": an array of 4 choices
- "answer": the correct answer
Return ONLY the JSON array of quiz questions without any explanation.`
)

// studySchema is the strict output schema for the schema-constrained mode.
// additionalProperties is forbidden at every nesting level so the provider
// guarantees well-formed JSON matching the contract.
var studySchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"summary": {Type: jsonschema.String},
		"web_links": {
			Type:  jsonschema.Array,
			Items: &jsonschema.Definition{Type: jsonschema.String},
		},
		"flashcards": {
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"question": {Type: jsonschema.String},
					"answer":   {Type: jsonschema.String},
				},
				Required:             []string{"question", "answer"},
				AdditionalProperties: false,
			},
		},
		"quizzes": {
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"question": {Type: jsonschema.String},
					"options": {
						Type:  jsonschema.Array,
						Items: &jsonschema.Definition{Type: jsonschema.String},
					},
					"answer": {Type: jsonschema.String},
				},
				Required:             []string{"question", "options", "answer"},
				AdditionalProperties: false,
			},
		},
	},
	Required:             []string{"summary", "web_links", "flashcards", "quizzes"},
	AdditionalProperties: false,
}

// AIService sends extracted course text to the LLM completion endpoint.
type AIService struct {
	client      *openai.Client
	model       string
	legacyModel string
}

func NewAIService(apiKey, model, legacyModel, apiEndpoint string) *AIService {
	if apiKey == "" {
		return &AIService{}
	}

	cfg := openai.DefaultConfig(apiKey)
	if apiEndpoint != "" {
		cfg.BaseURL = apiEndpoint
	}

	return &AIService{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		legacyModel: legacyModel,
	}
}

func (s *AIService) disabled() bool {
	return s.client == nil || s.model == ""
}

// RequestStructured issues the single schema-constrained call and returns the
// raw JSON body. One attempt, no retries.
func (s *AIService) RequestStructured(ctx context.Context, text string) (string, error) {
	if s.disabled() {
		return "", ErrAIUnavailable
	}

	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:        "study_materials",
			Description: "Study materials including summary, web links, flashcards, and quizzes",
			Schema:      &studySchema,
			Strict:      true,
		},
	}

	return s.complete(ctx, s.model, studySystemPrompt, text, format, 0.7)
}

// RequestSummary issues the legacy plain-text summary call.
func (s *AIService) RequestSummary(ctx context.Context, text string) (string, error) {
	if s.disabled() {
		return "", ErrAIUnavailable
	}
	return s.complete(ctx, s.legacyModel, summarySystemPrompt, text, nil, 0)
}

// RequestFlashcards issues the legacy flashcard call; the response is free
// text expected to contain an embedded JSON array.
func (s *AIService) RequestFlashcards(ctx context.Context, text string) (string, error) {
	if s.disabled() {
		return "", ErrAIUnavailable
	}
	return s.complete(ctx, s.legacyModel, flashcardSystemPrompt, text, nil, 0)
}

// RequestQuiz issues the legacy quiz call; the response is free text expected
// to contain an embedded JSON array.
func (s *AIService) RequestQuiz(ctx context.Context, text string) (string, error) {
	if s.disabled() {
		return "", ErrAIUnavailable
	}
	return s.complete(ctx, s.legacyModel, quizSystemPrompt, text, nil, 0)
}

func (s *AIService) complete(ctx context.Context, model, system, user string, format *openai.ChatCompletionResponseFormat, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: user,
			},
		},
		Temperature:    temperature,
		ResponseFormat: format,
	}

	ctx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", pipelineErr(KindRequestFailed, "request completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", pipelineErr(KindRequestFailed, "request completion", errors.New("openai returned no choices"))
	}

	return resp.Choices[0].Message.Content, nil
}
