package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure ConceptGenerator implements the interface.
var _ driving.ConceptService = (*ConceptGenerator)(nil)

// Retrieval parameters for concept generation.
const (
	conceptQueryRunes     = 500
	conceptSearchK        = 5
	conceptSearchMinScore = 0.5
	conceptPagesPerBatch  = 5
)

// conceptPalette colours concepts that come back without one.
var conceptPalette = []string{"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#EC4899", "#14B8A6", "#F97316"}

const defaultConceptEmoji = "💡"

// rawConcept is the generation contract for one concept.
type rawConcept struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Importance  float64  `json:"importance"`
	Tags        []string `json:"tags,omitempty"`
	Emoji       string   `json:"emoji,omitempty"`
	Color       string   `json:"color,omitempty"`
	PageNumber  int      `json:"pageNumber,omitempty"`
}

type conceptsResponse struct {
	Concepts []rawConcept `json:"concepts"`
}

// ConceptGenerator extracts key concepts from pages.
type ConceptGenerator struct {
	generator
	store driving.EmbeddingStore
	items *collection[domain.Concept]
}

// NewConceptGenerator creates a concept generator.
// store may be nil, in which case GenerateWithRAG is unavailable.
func NewConceptGenerator(
	llm driven.LLMService,
	store driving.EmbeddingStore,
	state driven.StateStore,
	settings domain.GenerationSettings,
) *ConceptGenerator {
	return &ConceptGenerator{
		generator: newGenerator(llm, settings),
		store:     store,
		items:     newCollection[domain.Concept](state, domain.NamespaceConcepts),
	}
}

// Bind switches to documentID and restores its saved concepts.
func (g *ConceptGenerator) Bind(ctx context.Context, documentID string) error {
	return g.items.bind(ctx, documentID)
}

// GenerateForPage extracts concepts from one page.
func (g *ConceptGenerator) GenerateForPage(
	ctx context.Context, page domain.PageContent, depth domain.Depth,
) ([]domain.Concept, error) {
	if err := g.requireLLM(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(page.Text) == "" {
		return nil, fmt.Errorf("%w: page %d has no text", domain.ErrNoContent, page.PageNumber)
	}

	var resp conceptsResponse
	prompt := g.prompt(driven.PromptConcepts, depth.ConceptsPerPage(), page.PageNumber, page.Text)
	if err := g.jsonGeneration(ctx, prompt, &resp); err != nil {
		return nil, fmt.Errorf("concepts for page %d: %w", page.PageNumber, err)
	}

	concepts := g.finalize(resp.Concepts, func(int) int { return page.PageNumber })
	g.items.add(ctx, concepts...)
	return concepts, nil
}

// GenerateBatch bundles pages into prompts, asking for totalConcepts spread evenly across pages.
func (g *ConceptGenerator) GenerateBatch(
	ctx context.Context, pages []domain.PageContent, totalConcepts int,
) ([]domain.Concept, error) {
	if err := g.requireLLM(); err != nil {
		return nil, err
	}
	pages = withText(pages)
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages with text", domain.ErrNoContent)
	}
	perPage := max(1, totalConcepts/len(pages))

	var all []domain.Concept
	for i, batch := range batches(pages, conceptPagesPerBatch) {
		if err := g.pace(ctx); err != nil {
			return all, err
		}

		var resp conceptsResponse
		prompt := g.prompt(driven.PromptConceptsBatch, perPage, pageBlocks(batch))
		if err := g.jsonGeneration(ctx, prompt, &resp); err != nil {
			logger.Warn("concept batch %d: %v", i+1, err)
			continue
		}

		inBatch := pageSet(batch)
		all = append(all, g.finalize(resp.Concepts, func(n int) int {
			if inBatch[n] {
				return n
			}
			return batch[0].PageNumber
		})...)
	}

	g.items.add(ctx, all...)
	logger.Info("generated %d concept(s) from %d page(s)", len(all), len(pages))
	return all, nil
}

// GenerateWithRAG retrieves related chunks for every page and runs a
// two-stage pipeline: extract raw concepts, then enhance them into unique
// titles with evenly spaced importance.
func (g *ConceptGenerator) GenerateWithRAG(
	ctx context.Context, pages []domain.PageContent, depth domain.Depth,
) ([]domain.Concept, error) {
	if err := g.requireLLM(); err != nil {
		return nil, err
	}
	if g.store == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	pages = withText(pages)
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages with text", domain.ErrNoContent)
	}

	var raw []rawConcept
	for _, page := range pages {
		if err := g.pace(ctx); err != nil {
			return nil, err
		}

		related := g.retrieve(ctx, page)
		var resp conceptsResponse
		prompt := g.prompt(driven.PromptConceptsExtract, depth.ConceptsPerPage(), related)
		if err := g.jsonGeneration(ctx, prompt, &resp); err != nil {
			logger.Warn("extracting concepts for page %d: %v", page.PageNumber, err)
			continue
		}
		for _, c := range resp.Concepts {
			if c.PageNumber == 0 {
				c.PageNumber = page.PageNumber
			}
			raw = append(raw, c)
		}
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no concepts extracted", domain.ErrGenerationParse)
	}

	enhanced := carryPages(g.enhance(ctx, raw), raw, pages)
	concepts := g.finalize(enhanced, func(n int) int { return n })
	spreadImportance(concepts, g.settings.PriorityMin, g.settings.PriorityMax)
	uniqueTitles(concepts)

	g.items.add(ctx, concepts...)
	logger.Info("generated %d concept(s) with retrieval from %d page(s)", len(concepts), len(pages))
	return concepts, nil
}

// retrieve returns the stored chunks related to page, or the page text when nothing matches.
func (g *ConceptGenerator) retrieve(ctx context.Context, page domain.PageContent) string {
	query := truncateRunes(page.Text, conceptQueryRunes)
	results, err := g.store.SimilaritySearch(ctx, query, conceptSearchK, conceptSearchMinScore)
	if err != nil {
		logger.Warn("retrieving context for page %d: %v", page.PageNumber, err)
	}
	if len(results) == 0 {
		return page.Text
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Content
	}
	return strings.Join(parts, "\n\n")
}

// enhance runs the second stage. On failure the raw concepts are kept.
func (g *ConceptGenerator) enhance(ctx context.Context, raw []rawConcept) []rawConcept {
	if err := g.pace(ctx); err != nil {
		return raw
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return raw
	}

	var resp conceptsResponse
	if err := g.jsonGeneration(ctx, g.prompt(driven.PromptConceptsEnhance, string(payload)), &resp); err != nil {
		logger.Warn("enhancing concepts, keeping raw output: %v", err)
		return raw
	}
	if len(resp.Concepts) == 0 {
		return raw
	}
	return resp.Concepts
}

// carryPages gives enhanced concepts with a missing or foreign page the page
// of the raw concept with the same title, then the one at the same position,
// then the first input page.
func carryPages(enhanced, raw []rawConcept, pages []domain.PageContent) []rawConcept {
	valid := pageSet(pages)
	byTitle := make(map[string]int, len(raw))
	for _, r := range raw {
		key := strings.ToLower(strings.TrimSpace(r.Title))
		if _, ok := byTitle[key]; !ok && valid[r.PageNumber] {
			byTitle[key] = r.PageNumber
		}
	}
	for i := range enhanced {
		if valid[enhanced[i].PageNumber] {
			continue
		}
		switch page, ok := byTitle[strings.ToLower(strings.TrimSpace(enhanced[i].Title))]; {
		case ok:
			enhanced[i].PageNumber = page
		case i < len(raw) && valid[raw[i].PageNumber]:
			enhanced[i].PageNumber = raw[i].PageNumber
		default:
			enhanced[i].PageNumber = pages[0].PageNumber
		}
	}
	return enhanced
}

// finalize assigns ids and fills missing optional fields.
func (g *ConceptGenerator) finalize(raw []rawConcept, page func(int) int) []domain.Concept {
	mid := (g.settings.PriorityMin + g.settings.PriorityMax) / 2
	out := make([]domain.Concept, 0, len(raw))
	for _, r := range raw {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		c := domain.Concept{
			ID:          uuid.NewString(),
			PageNumber:  page(r.PageNumber),
			Title:       title,
			Description: strings.TrimSpace(r.Description),
			Importance:  r.Importance,
			Tags:        r.Tags,
			Emoji:       r.Emoji,
			Color:       r.Color,
		}
		if c.Importance == 0 {
			c.Importance = mid
		}
		c.Importance = clamp(c.Importance, g.settings.PriorityMin, g.settings.PriorityMax)
		if c.Emoji == "" {
			c.Emoji = defaultConceptEmoji
		}
		if c.Color == "" {
			c.Color = conceptPalette[len(out)%len(conceptPalette)]
		}
		out = append(out, c)
	}
	return out
}

// Concepts returns the generated collection.
func (g *ConceptGenerator) Concepts() []domain.Concept {
	return g.items.snapshot()
}

// Toggle flips the highlight and/or selection flag of a concept.
func (g *ConceptGenerator) Toggle(id string, highlight, selected bool) error {
	_, err := g.items.update(context.Background(),
		func(c domain.Concept) bool { return c.ID == id },
		func(c *domain.Concept) {
			if highlight {
				c.Highlighted = !c.Highlighted
			}
			if selected {
				c.Selected = !c.Selected
			}
		})
	return err
}

// spreadImportance ranks concepts by their model importance and reassigns
// evenly spaced scores from hi down to lo, so no two share a score.
func spreadImportance(concepts []domain.Concept, lo, hi float64) {
	sort.SliceStable(concepts, func(i, j int) bool {
		return concepts[i].Importance > concepts[j].Importance
	})
	n := len(concepts)
	for i := range concepts {
		if n == 1 {
			concepts[i].Importance = hi
			continue
		}
		concepts[i].Importance = hi - float64(i)*(hi-lo)/float64(n-1)
	}
}

// uniqueTitles suffixes repeated titles with " (2)", " (3)" and so on.
func uniqueTitles(concepts []domain.Concept) {
	seen := make(map[string]int)
	for i := range concepts {
		key := strings.ToLower(concepts[i].Title)
		seen[key]++
		if n := seen[key]; n > 1 {
			concepts[i].Title = fmt.Sprintf("%s (%d)", concepts[i].Title, n)
		}
	}
}

func pageSet(pages []domain.PageContent) map[int]bool {
	set := make(map[int]bool, len(pages))
	for _, p := range pages {
		set[p.PageNumber] = true
	}
	return set
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
