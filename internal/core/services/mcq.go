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

// Ensure MCQGenerator implements the interface.
var _ driving.MCQService = (*MCQGenerator)(nil)

const (
	mcqPagesPerBatch = 2
	defaultMCQEmoji  = "❓"
)

type rawQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
	Difficulty   string   `json:"difficulty"`
	Emoji        string   `json:"emoji"`
	PageNumber   int      `json:"pageNumber"`
}

type questionsResponse struct {
	Questions []rawQuestion `json:"questions"`
}

// MCQGenerator generates multiple-choice questions and scores answers.
type MCQGenerator struct {
	generator
	items *collection[domain.MCQQuestion]
}

// NewMCQGenerator creates a question generator.
func NewMCQGenerator(
	llm driven.LLMService, state driven.StateStore, settings domain.GenerationSettings,
) *MCQGenerator {
	return &MCQGenerator{
		generator: newGenerator(llm, settings),
		items:     newCollection[domain.MCQQuestion](state, domain.NamespaceMCQ),
	}
}

// Bind switches to documentID and restores its saved questions.
func (g *MCQGenerator) Bind(ctx context.Context, documentID string) error {
	return g.items.bind(ctx, documentID)
}

// Generate writes questions for pages in paced batches.
func (g *MCQGenerator) Generate(
	ctx context.Context, pages []domain.PageContent, depth domain.Depth,
) ([]domain.MCQQuestion, error) {
	if err := g.requireLLM(); err != nil {
		return nil, err
	}
	pages = withText(pages)
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages with text", domain.ErrNoContent)
	}

	questions, err := generateTiered(ctx, &g.generator, "mcq", pages, mcqPagesPerBatch,
		func(ctx context.Context, batch []domain.PageContent) ([]domain.MCQQuestion, error) {
			var resp questionsResponse
			prompt := g.prompt(driven.PromptMCQ, depth.CardsPerPage()*len(batch), pageBlocks(batch))
			if err := g.jsonGeneration(ctx, prompt, &resp); err != nil {
				return nil, err
			}
			return g.finalize(resp.Questions, batch), nil
		},
		func(q domain.MCQQuestion) domain.Difficulty { return q.Difficulty },
	)
	if err != nil {
		return nil, err
	}

	g.items.add(ctx, questions...)
	logger.Info("generated %d question(s)", len(questions))
	return questions, nil
}

// finalize drops questions without a usable answer key.
func (g *MCQGenerator) finalize(raw []rawQuestion, batch []domain.PageContent) []domain.MCQQuestion {
	inBatch := pageSet(batch)
	out := make([]domain.MCQQuestion, 0, len(raw))
	for _, r := range raw {
		question := strings.TrimSpace(r.Question)
		if question == "" || len(r.Options) < 2 || r.CorrectIndex < 0 || r.CorrectIndex >= len(r.Options) {
			logger.Debug("dropping malformed question %q", question)
			continue
		}
		q := domain.MCQQuestion{
			ID:           uuid.NewString(),
			PageNumber:   r.PageNumber,
			Question:     question,
			Options:      r.Options,
			CorrectIndex: r.CorrectIndex,
			Explanation:  strings.TrimSpace(r.Explanation),
			Difficulty:   domain.ParseDifficulty(strings.ToLower(r.Difficulty)),
			Emoji:        r.Emoji,
		}
		if !inBatch[q.PageNumber] {
			q.PageNumber = batch[0].PageNumber
		}
		if q.Emoji == "" {
			q.Emoji = defaultMCQEmoji
		}
		out = append(out, q)
	}
	return out
}

// RecordAnswer counts an attempt and reports whether choice is correct.
// A correct answer completes the question.
func (g *MCQGenerator) RecordAnswer(id string, choice int) (bool, error) {
	var correct, outOfRange bool
	_, err := g.items.update(context.Background(),
		func(q domain.MCQQuestion) bool { return q.ID == id },
		func(q *domain.MCQQuestion) {
			if choice < 0 || choice >= len(q.Options) {
				outOfRange = true
				return
			}
			q.Attempts++
			correct = q.IsCorrect(choice)
			if correct {
				q.Completed = true
			}
		})
	if err != nil {
		return false, err
	}
	if outOfRange {
		return false, fmt.Errorf("%w: choice %d out of range", domain.ErrInvalidInput, choice)
	}
	return correct, nil
}

// Questions returns the generated collection.
func (g *MCQGenerator) Questions() []domain.MCQQuestion {
	return g.items.snapshot()
}
