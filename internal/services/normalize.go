package services

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/mshailja29/revisionAI/internal/models"
)

// Expected lengths from the instruction contract. The model is asked for
// exactly five of each; consumers must tolerate fewer, and anything beyond
// five is discarded.
const maxStudyItems = 5

// NormalizeStructured parses a schema-constrained response body into the
// canonical StudyMaterials. The body is expected to already match the
// contract, but every field is still read defensively: a missing summary
// becomes the empty string and missing lists become empty sequences.
func NormalizeStructured(body, title string) (models.StudyMaterials, error) {
	var parsed struct {
		Summary    string                `json:"summary"`
		WebLinks   []string              `json:"web_links"`
		Flashcards []models.Flashcard    `json:"flashcards"`
		Quizzes    []models.QuizQuestion `json:"quizzes"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return models.StudyMaterials{}, pipelineErr(KindMalformedOutput, "parse structured response", err)
	}

	return canonicalize(models.StudyMaterials{
		Title:      title,
		Summary:    parsed.Summary,
		WebLinks:   parsed.WebLinks,
		Flashcards: parsed.Flashcards,
		Quizzes:    parsed.Quizzes,
	}), nil
}

// NormalizeLegacy assembles the canonical output from the three free-text
// responses of the legacy mode: a plain-text summary plus flashcard and quiz
// bodies that each embed a JSON array somewhere in explanatory prose.
func NormalizeLegacy(summary, flashcardBody, quizBody, title string) (models.StudyMaterials, error) {
	var flashcards []models.Flashcard
	if err := parseEmbeddedArray(flashcardBody, &flashcards); err != nil {
		return models.StudyMaterials{}, pipelineErr(KindMalformedOutput, "parse flashcards", err)
	}

	var quizzes []models.QuizQuestion
	if err := parseEmbeddedArray(quizBody, &quizzes); err != nil {
		return models.StudyMaterials{}, pipelineErr(KindMalformedOutput, "parse quizzes", err)
	}

	return canonicalize(models.StudyMaterials{
		Title:      title,
		Summary:    strings.TrimSpace(summary),
		Flashcards: flashcards,
		Quizzes:    quizzes,
	}), nil
}

// canonicalize enforces the output invariants: flashcards with an empty
// question or answer are dropped, both lists are truncated to the expected
// length, and nil sequences become empty ones so the UI never sees null.
// Quiz options are passed through exactly as the model produced them.
func canonicalize(m models.StudyMaterials) models.StudyMaterials {
	flashcards := make([]models.Flashcard, 0, len(m.Flashcards))
	for _, card := range m.Flashcards {
		if strings.TrimSpace(card.Question) == "" || strings.TrimSpace(card.Answer) == "" {
			continue
		}
		flashcards = append(flashcards, card)
		if len(flashcards) == maxStudyItems {
			break
		}
	}
	m.Flashcards = flashcards

	if len(m.Quizzes) > maxStudyItems {
		m.Quizzes = m.Quizzes[:maxStudyItems]
	}
	if m.Quizzes == nil {
		m.Quizzes = []models.QuizQuestion{}
	}
	if m.WebLinks == nil {
		m.WebLinks = []string{}
	}
	return m
}

var errNoJSONArray = errors.New("no json array found in model output")

// parseEmbeddedArray locates the JSON array inside free-form model output and
// unmarshals it into dst. Markdown code fences are stripped first, then the
// array is taken greedily from the first '[' through the last ']'.
func parseEmbeddedArray(content string, dst any) error {
	raw, ok := extractJSONArray(content)
	if !ok {
		return errNoJSONArray
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return err
	}
	return nil
}

func extractJSONArray(content string) (string, bool) {
	content = strings.TrimSpace(content)

	// Remove markdown code blocks like ```json ... ``` or ``` ... ```
	if strings.HasPrefix(content, "```") {
		start := 3
		if newlineIdx := strings.Index(content[start:], "\n"); newlineIdx != -1 {
			start += newlineIdx + 1
		}
		if endIdx := strings.Index(content[start:], "```"); endIdx != -1 {
			content = content[start : start+endIdx]
		} else {
			content = content[start:]
		}
		content = strings.TrimSpace(content)
	}

	startIdx := strings.Index(content, "[")
	if startIdx == -1 {
		return "", false
	}
	endIdx := strings.LastIndex(content, "]")
	if endIdx <= startIdx {
		return "", false
	}
	return content[startIdx : endIdx+1], true
}
