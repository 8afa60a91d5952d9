package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// ConceptService generates key concepts.
type ConceptService interface {
	// GenerateForPage extracts concepts from one page.
	GenerateForPage(ctx context.Context, page domain.PageContent, depth domain.Depth) ([]domain.Concept, error)

	// GenerateBatch extracts concepts from several pages per request.
	GenerateBatch(ctx context.Context, pages []domain.PageContent, totalConcepts int) ([]domain.Concept, error)

	// GenerateWithRAG retrieves context for each page before a two-stage extract/enhance pass.
	GenerateWithRAG(ctx context.Context, pages []domain.PageContent, depth domain.Depth) ([]domain.Concept, error)

	// Concepts returns the generated collection.
	Concepts() []domain.Concept

	// Toggle flips the highlight or selection flag of a concept.
	Toggle(id string, highlight, selected bool) error
}

// SummaryService generates summaries.
type SummaryService interface {
	SummarizePage(ctx context.Context, page domain.PageContent, depth domain.Depth) (*domain.Summary, error)
	SummarizeDocument(ctx context.Context, doc *domain.Document, depth domain.Depth) (*domain.Summary, error)
	Summaries() []domain.Summary
}

// FlashcardService generates flashcards and tracks review attempts.
type FlashcardService interface {
	Generate(ctx context.Context, pages []domain.PageContent, depth domain.Depth) ([]domain.Flashcard, error)
	RecordAttempt(id string, completed bool) (*domain.Flashcard, error)
	Flashcards() []domain.Flashcard
}

// MCQService generates multiple-choice questions and tracks answers.
type MCQService interface {
	Generate(ctx context.Context, pages []domain.PageContent, depth domain.Depth) ([]domain.MCQQuestion, error)

	// RecordAnswer records an attempt and reports whether choice was correct.
	RecordAnswer(id string, choice int) (bool, error)

	Questions() []domain.MCQQuestion
}
