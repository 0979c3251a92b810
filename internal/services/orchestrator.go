package services

import (
	"context"
	"log"

	"github.com/mshailja29/revisionAI/internal/models"
)

// Orchestrator sequences resolver, requester and normalizer, and is the
// single point of error containment: Build never raises past this boundary.
type Orchestrator struct {
	resolver *ResolverService
	ai       *AIService
	legacy   bool
}

func NewOrchestrator(resolver *ResolverService, ai *AIService, legacy bool) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		ai:       ai,
		legacy:   legacy,
	}
}

// Build produces study materials for one input. Any stage failure degrades to
// a default empty-but-well-formed result with the title preserved and an
// explanatory summary, so a single bad document never crashes the session.
func (o *Orchestrator) Build(ctx context.Context, src models.Source, title string) models.StudyMaterials {
	materials, err := o.build(ctx, src, title)
	if err != nil {
		log.Printf("study pipeline failed for %q: %v", title, err)
		return fallbackMaterials(title, err)
	}
	return materials
}

func (o *Orchestrator) build(ctx context.Context, src models.Source, title string) (models.StudyMaterials, error) {
	text, err := o.resolver.Resolve(ctx, src)
	if err != nil {
		return models.StudyMaterials{}, err
	}
	if text == "" {
		return models.StudyMaterials{}, pipelineErr(KindEmptyInput, "gather text", errEmptyDocument)
	}

	if o.legacy {
		return o.buildLegacy(ctx, text, title)
	}

	body, err := o.ai.RequestStructured(ctx, text)
	if err != nil {
		return models.StudyMaterials{}, err
	}
	return NormalizeStructured(body, title)
}

// buildLegacy issues the three separate calls of the non-schema-constrained
// variant: summary, flashcards, quiz.
func (o *Orchestrator) buildLegacy(ctx context.Context, text, title string) (models.StudyMaterials, error) {
	summary, err := o.ai.RequestSummary(ctx, text)
	if err != nil {
		return models.StudyMaterials{}, err
	}
	flashcardBody, err := o.ai.RequestFlashcards(ctx, text)
	if err != nil {
		return models.StudyMaterials{}, err
	}
	quizBody, err := o.ai.RequestQuiz(ctx, text)
	if err != nil {
		return models.StudyMaterials{}, err
	}
	return NormalizeLegacy(summary, flashcardBody, quizBody, title)
}

// fallbackMaterials builds the fail-soft result for a failed pipeline run,
// choosing the summary wording by error kind.
func fallbackMaterials(title string, err error) models.StudyMaterials {
	summary := "Error generating content."
	switch KindOf(err) {
	case KindFetchFailed:
		summary = "Could not fetch the requested page or document."
	case KindExtractionFailed, KindEmptyInput:
		summary = "No readable text could be extracted from the input."
	case KindMalformedOutput:
		summary = "The model response could not be parsed into study materials."
	}

	return models.StudyMaterials{
		Title:      title,
		Summary:    summary,
		WebLinks:   []string{},
		Flashcards: []models.Flashcard{},
		Quizzes:    []models.QuizQuestion{},
	}
}
