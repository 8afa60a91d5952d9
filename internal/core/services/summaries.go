package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ensure SummaryGenerator implements the interface.
var _ driving.SummaryService = (*SummaryGenerator)(nil)

// maxDocumentRunes bounds the document text sent for a whole-document summary.
const maxDocumentRunes = 24000

const defaultSummaryEmoji = "📝"

type summaryResponse struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
	Emoji     string   `json:"emoji"`
}

// SummaryGenerator summarises pages and whole documents.
type SummaryGenerator struct {
	generator
	items *collection[domain.Summary]
}

// NewSummaryGenerator creates a summary generator.
func NewSummaryGenerator(
	llm driven.LLMService, state driven.StateStore, settings domain.GenerationSettings,
) *SummaryGenerator {
	return &SummaryGenerator{
		generator: newGenerator(llm, settings),
		items:     newCollection[domain.Summary](state, domain.NamespaceSummaries),
	}
}

// Bind switches to documentID and restores its saved summaries.
func (g *SummaryGenerator) Bind(ctx context.Context, documentID string) error {
	return g.items.bind(ctx, documentID)
}

// SummarizePage summarises one page, replacing any earlier summary of it.
func (g *SummaryGenerator) SummarizePage(
	ctx context.Context, page domain.PageContent, depth domain.Depth,
) (*domain.Summary, error) {
	if err := g.requireLLM(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(page.Text) == "" {
		return nil, fmt.Errorf("%w: page %d has no text", domain.ErrNoContent, page.PageNumber)
	}
	return g.summarize(ctx, page.PageNumber, g.prompt(driven.PromptSummaryPage, depth.KeyPoints(), page.Text))
}

// SummarizeDocument summarises the whole document as page 0.
func (g *SummaryGenerator) SummarizeDocument(
	ctx context.Context, doc *domain.Document, depth domain.Depth,
) (*domain.Summary, error) {
	if err := g.requireLLM(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotInitialized
	}
	text := doc.FullText()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s has no text", domain.ErrNoContent, doc.Filename)
	}
	text = truncateRunes(text, maxDocumentRunes)
	return g.summarize(ctx, 0, g.prompt(driven.PromptSummaryDocument, depth.KeyPoints(), text))
}

func (g *SummaryGenerator) summarize(ctx context.Context, pageNumber int, prompt string) (*domain.Summary, error) {
	var resp summaryResponse
	if err := g.jsonGeneration(ctx, prompt, &resp); err != nil {
		return nil, fmt.Errorf("summary of page %d: %w", pageNumber, err)
	}
	if strings.TrimSpace(resp.Summary) == "" {
		return nil, fmt.Errorf("%w: empty summary", domain.ErrGenerationParse)
	}

	summary := domain.Summary{
		ID:         uuid.NewString(),
		PageNumber: pageNumber,
		Text:       strings.TrimSpace(resp.Summary),
		KeyPoints:  resp.KeyPoints,
		Emoji:      resp.Emoji,
		CreatedAt:  g.clock.Now(),
	}
	if summary.Emoji == "" {
		summary.Emoji = defaultSummaryEmoji
	}

	g.items.replace(ctx, func(s domain.Summary) bool { return s.PageNumber == pageNumber }, summary)
	return &summary, nil
}

// Summaries returns the generated collection.
func (g *SummaryGenerator) Summaries() []domain.Summary {
	return g.items.snapshot()
}
