package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure FlashcardGenerator implements the interface.
var _ driving.FlashcardService = (*FlashcardGenerator)(nil)

const (
	flashcardPagesPerBatch = 2
	defaultFlashcardEmoji  = "🃏"
)

type rawFlashcard struct {
	Front      string   `json:"front"`
	Back       string   `json:"back"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags"`
	Emoji      string   `json:"emoji"`
	PageNumber int      `json:"pageNumber"`
}

type flashcardsResponse struct {
	Flashcards []rawFlashcard `json:"flashcards"`
}

// FlashcardGenerator generates flashcards and tracks reviews.
type FlashcardGenerator struct {
	generator
	items *collection[domain.Flashcard]
}

// NewFlashcardGenerator creates a flashcard generator.
func NewFlashcardGenerator(
	llm driven.LLMService, state driven.StateStore, settings domain.GenerationSettings,
) *FlashcardGenerator {
	return &FlashcardGenerator{
		generator: newGenerator(llm, settings),
		items:     newCollection[domain.Flashcard](state, domain.NamespaceFlashcards),
	}
}

// Bind switches to documentID and restores its saved flashcards.
func (g *FlashcardGenerator) Bind(ctx context.Context, documentID string) error {
	return g.items.bind(ctx, documentID)
}

// Generate writes flashcards for pages in paced batches.
func (g *FlashcardGenerator) Generate(
	ctx context.Context, pages []domain.PageContent, depth domain.Depth,
) ([]domain.Flashcard, error) {
	if err := g.requireLLM(); err != nil {
		return nil, err
	}
	pages = withText(pages)
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages with text", domain.ErrNoContent)
	}

	cards, err := generateTiered(ctx, &g.generator, "flashcards", pages, flashcardPagesPerBatch,
		func(ctx context.Context, batch []domain.PageContent) ([]domain.Flashcard, error) {
			var resp flashcardsResponse
			prompt := g.prompt(driven.PromptFlashcards, depth.CardsPerPage()*len(batch), pageBlocks(batch))
			if err := g.jsonGeneration(ctx, prompt, &resp); err != nil {
				return nil, err
			}
			return g.finalize(resp.Flashcards, batch), nil
		},
		func(c domain.Flashcard) domain.Difficulty { return c.Difficulty },
	)
	if err != nil {
		return nil, err
	}

	g.items.add(ctx, cards...)
	logger.Info("generated %d flashcard(s)", len(cards))
	return cards, nil
}

func (g *FlashcardGenerator) finalize(raw []rawFlashcard, batch []domain.PageContent) []domain.Flashcard {
	inBatch := pageSet(batch)
	out := make([]domain.Flashcard, 0, len(raw))
	for _, r := range raw {
		front, back := strings.TrimSpace(r.Front), strings.TrimSpace(r.Back)
		if front == "" || back == "" {
			continue
		}
		card := domain.Flashcard{
			ID:         uuid.NewString(),
			PageNumber: r.PageNumber,
			Front:      front,
			Back:       back,
			Difficulty: domain.ParseDifficulty(strings.ToLower(r.Difficulty)),
			Tags:       r.Tags,
			Emoji:      r.Emoji,
		}
		if !inBatch[card.PageNumber] {
			card.PageNumber = batch[0].PageNumber
		}
		if card.Emoji == "" {
			card.Emoji = defaultFlashcardEmoji
		}
		out = append(out, card)
	}
	return out
}

// RecordAttempt counts a review of the card and marks whether it was answered.
func (g *FlashcardGenerator) RecordAttempt(id string, completed bool) (*domain.Flashcard, error) {
	now := g.clock.Now()
	card, err := g.items.update(context.Background(),
		func(c domain.Flashcard) bool { return c.ID == id },
		func(c *domain.Flashcard) {
			c.Attempts++
			c.Completed = completed
			c.LastReviewedAt = now
		})
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// Flashcards returns the generated collection.
func (g *FlashcardGenerator) Flashcards() []domain.Flashcard {
	return g.items.snapshot()
}
