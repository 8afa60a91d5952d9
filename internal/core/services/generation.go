package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// generator holds what every learning-aid generator shares: the completion
// service, prompt templates and the pacing of consecutive batches.
type generator struct {
	llm      driven.LLMService
	prompts  driven.PromptStore
	settings domain.GenerationSettings
	limiter  *rate.Limiter
	clock    driven.Clock
}

func newGenerator(llm driven.LLMService, settings domain.GenerationSettings) generator {
	return generator{
		llm:      llm,
		settings: settings,
		limiter:  newBatchLimiter(settings.BatchDelay),
		clock:    systemClock{},
	}
}

// newBatchLimiter allows one batch immediately and one more every delay.
func newBatchLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (g *generator) SetPromptStore(store driven.PromptStore) {
	g.prompts = store
}

// prompt fills the named template.
func (g *generator) prompt(name string, args ...any) string {
	return fmt.Sprintf(loadPrompt(g.prompts, name), args...)
}

// pace blocks until the next batch may start.
func (g *generator) pace(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// requireLLM fails when no completion service is configured.
func (g *generator) requireLLM() error {
	if g.llm == nil {
		return domain.ErrLLMUnavailable
	}
	return nil
}

// jsonGeneration runs one JSON-mode completion and decodes the object into v.
func (g *generator) jsonGeneration(ctx context.Context, user string, v any) error {
	return jsonGeneration(ctx, g.llm, driven.CompletionRequest{
		Temperature: g.settings.Temperature,
		Messages:    []driven.ChatMessage{{Role: string(domain.RoleUser), Content: user}},
	}, v)
}

// jsonGeneration forces the JSON response format, strips markdown fences and
// decodes the reply. Decoding failures wrap domain.ErrGenerationParse.
func jsonGeneration(ctx context.Context, llm driven.LLMService, req driven.CompletionRequest, v any) error {
	req.ResponseFormat = driven.ResponseFormatJSON
	raw, err := llm.Complete(ctx, req)
	if err != nil {
		return fmt.Errorf("completion: %w", err)
	}

	body := stripFences(raw)
	if body == "" {
		return fmt.Errorf("%w: empty response", domain.ErrGenerationParse)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrGenerationParse, err)
	}
	return nil
}

// stripFences removes a surrounding ``` block and any prose around the
// outermost JSON object or array.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

// loadPrompt loads a prompt from the store, falling back to the built-in default.
func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		if prompt, err := store.Load(name); err == nil && prompt != "" {
			return prompt
		}
	}
	return driven.DefaultPrompts()[name]
}

// withText keeps the pages that produced text.
func withText(pages []domain.PageContent) []domain.PageContent {
	out := make([]domain.PageContent, 0, len(pages))
	for _, p := range pages {
		if p.Metadata.HasText && strings.TrimSpace(p.Text) != "" {
			out = append(out, p)
		}
	}
	return out
}

// batches splits pages into groups of size n.
func batches(pages []domain.PageContent, n int) [][]domain.PageContent {
	if n <= 0 {
		n = 1
	}
	var out [][]domain.PageContent
	for start := 0; start < len(pages); start += n {
		out = append(out, pages[start:min(start+n, len(pages))])
	}
	return out
}

// pageBlocks renders pages as "[Page N]:\n<text>" blocks separated by blank lines.
func pageBlocks(pages []domain.PageContent) string {
	blocks := make([]string, len(pages))
	for i, p := range pages {
		blocks[i] = fmt.Sprintf("[Page %d]:\n%s", p.PageNumber, p.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Sufficient diversity for tiered generators: stop once this many items
// span this many difficulty tiers.
const (
	minDiverseItems = 9
	minDiverseTiers = 3
)

// generateTiered runs gen over page batches, pacing consecutive batches and
// stopping early once the results are diverse enough. Batch failures are
// logged and skipped; the last one is returned only when nothing was generated.
func generateTiered[T any](
	ctx context.Context,
	g *generator,
	kind string,
	pages []domain.PageContent,
	pagesPerBatch int,
	gen func(ctx context.Context, batch []domain.PageContent) ([]T, error),
	tier func(T) domain.Difficulty,
) ([]T, error) {
	var (
		out     []T
		lastErr error
		tiers   = make(map[domain.Difficulty]bool)
	)

	for i, batch := range batches(pages, pagesPerBatch) {
		if err := g.pace(ctx); err != nil {
			return out, err
		}

		items, err := gen(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			logger.Warn("%s batch %d (pages %d-%d): %v",
				kind, i+1, batch[0].PageNumber, batch[len(batch)-1].PageNumber, err)
			lastErr = err
			continue
		}

		out = append(out, items...)
		for _, item := range items {
			tiers[tier(item)] = true
		}
		if len(out) >= minDiverseItems && len(tiers) >= minDiverseTiers {
			logger.Debug("%s: %d item(s) across %d tiers after %d batch(es), stopping", kind, len(out), len(tiers), i+1)
			break
		}
	}

	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

// collection is a per-document artifact list persisted as one state slice.
type collection[T any] struct {
	mu        sync.RWMutex
	items     []T
	state     driven.StateStore
	namespace string
	docID     string
}

func newCollection[T any](state driven.StateStore, namespace string) *collection[T] {
	return &collection[T]{state: state, namespace: namespace}
}

// bind switches the collection to documentID and restores its saved slice.
// A slice saved under another schema version is dropped.
func (c *collection[T]) bind(ctx context.Context, documentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docID = documentID
	c.items = nil
	if c.state == nil || documentID == "" {
		return nil
	}

	var items []T
	err := c.state.Load(ctx, domain.NewSliceKey(documentID, c.namespace), &items)
	switch {
	case err == nil:
		c.items = items
		logger.Debug("restored %d %s for %s", len(items), c.namespace, documentID)
	case errors.Is(err, domain.ErrNotFound):
	case errors.Is(err, domain.ErrVersionMismatch):
		logger.Warn("dropping stale %s slice: %v", c.namespace, err)
		return c.state.Delete(ctx, documentID, c.namespace)
	default:
		return err
	}
	return nil
}

func (c *collection[T]) snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

func (c *collection[T]) add(ctx context.Context, items ...T) {
	c.mu.Lock()
	c.items = append(c.items, items...)
	c.mu.Unlock()
	c.persist(ctx)
}

// replace swaps the first item matching pred for item, appending when none matches.
func (c *collection[T]) replace(ctx context.Context, pred func(T) bool, item T) {
	c.mu.Lock()
	found := false
	for i := range c.items {
		if pred(c.items[i]) {
			c.items[i] = item
			found = true
			break
		}
	}
	if !found {
		c.items = append(c.items, item)
	}
	c.mu.Unlock()
	c.persist(ctx)
}

// update applies fn to the first item matching pred and returns the result.
func (c *collection[T]) update(ctx context.Context, pred func(T) bool, fn func(*T)) (T, error) {
	c.mu.Lock()
	var zero T
	idx := -1
	for i := range c.items {
		if pred(c.items[i]) {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return zero, fmt.Errorf("%w: %s item", domain.ErrNotFound, c.namespace)
	}
	fn(&c.items[idx])
	item := c.items[idx]
	c.mu.Unlock()
	c.persist(ctx)
	return item, nil
}

// persist saves the collection. Failures are logged; the in-memory copy stays authoritative.
func (c *collection[T]) persist(ctx context.Context) {
	c.mu.RLock()
	docID := c.docID
	items := append([]T(nil), c.items...)
	c.mu.RUnlock()
	if c.state == nil || docID == "" {
		return
	}
	if err := c.state.Save(ctx, domain.NewSliceKey(docID, c.namespace), items); err != nil {
		logger.Warn("saving %s: %v", c.namespace, err)
	}
}
