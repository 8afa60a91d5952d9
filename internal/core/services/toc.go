package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
	"github.com/custodia-labs/folio/internal/outline"
)

// Ensure TOCService implements the interface.
var _ driving.TOCService = (*TOCService)(nil)

// tocEnhanceBatch is how many titles go into one enhancement request.
const tocEnhanceBatch = 10

type tocEntry struct {
	Index     int    `json:"index"`
	Title     string `json:"title"`
	MaxLength int    `json:"maxLength"`
}

type tocRewrite struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Tooltip string `json:"tooltip"`
}

type tocEnhanceResponse struct {
	Items []tocRewrite `json:"items"`
}

// TOCService builds, enhances and caches tables of contents.
type TOCService struct {
	generator
	state driven.StateStore
}

// NewTOCService creates a TOC service. llm and state may be nil; without an
// LLM titles are only refined heuristically, without state nothing is cached.
func NewTOCService(llm driven.LLMService, state driven.StateStore, settings domain.GenerationSettings) *TOCService {
	return &TOCService{
		generator: newGenerator(llm, settings),
		state:     state,
	}
}

// Build derives the table of contents of doc from src, enhances it and
// persists the result. A cached result for the same document is returned as is.
func (s *TOCService) Build(ctx context.Context, doc *domain.Document, src domain.OutlineSource) (domain.TOCCache, error) {
	if doc == nil {
		return domain.TOCCache{}, domain.ErrNotInitialized
	}
	if cached, ok := s.cached(ctx, doc.ID); ok {
		logger.Debug("toc: using cached table of contents for %s", doc.Filename)
		return cached, nil
	}

	items := outline.Refine(derive(src))
	cache := domain.TOCCache{Items: items, ProcessingStatus: domain.TOCStatusComplete}
	logger.Info("toc: %d entries for %s", domain.CountTOC(items), doc.Filename)

	if s.llm != nil && len(outline.Candidates(items)) > 0 {
		enhanced, err := s.Enhance(ctx, items)
		switch {
		case err != nil:
			logger.Warn("toc enhancement: %v", err)
			cache.ProcessingStatus = domain.TOCStatusFailed
		default:
			cache.AIProcessedItems = enhanced
			cache.IsAIProcessed = true
		}
	}

	if s.state != nil {
		if err := s.state.Save(ctx, domain.NewSliceKey(doc.ID, domain.NamespaceTOC), cache); err != nil {
			logger.Warn("saving table of contents: %v", err)
		}
	}
	return cache, nil
}

func (s *TOCService) cached(ctx context.Context, documentID string) (domain.TOCCache, bool) {
	if s.state == nil {
		return domain.TOCCache{}, false
	}
	var cache domain.TOCCache
	err := s.state.Load(ctx, domain.NewSliceKey(documentID, domain.NamespaceTOC), &cache)
	switch {
	case err == nil:
		return cache, cache.ProcessingStatus == domain.TOCStatusComplete
	case errors.Is(err, domain.ErrVersionMismatch):
		logger.Debug("toc: dropping stale cache: %v", err)
		_ = s.state.Delete(ctx, documentID, domain.NamespaceTOC)
	case !errors.Is(err, domain.ErrNotFound):
		logger.Warn("loading table of contents: %v", err)
	}
	return domain.TOCCache{}, false
}

// derive picks the built-in outline when present, otherwise headings
// detected from font sizes.
func derive(src domain.OutlineSource) []domain.TOCItem {
	if src.HasOutline() {
		return outline.FromOutline(src.Outline)
	}
	body := outline.BodyFontSize(src.Runs)
	return outline.Nest(outline.DetectHeadings(src.Runs, body))
}

// Enhance rewrites the titles that need it, in paced batches. Rewritten
// items are marked processed and never rewritten again. Failed batches are
// logged; an error is returned only when every batch failed.
func (s *TOCService) Enhance(ctx context.Context, items []domain.TOCItem) ([]domain.TOCItem, error) {
	if err := s.requireLLM(); err != nil {
		return nil, err
	}
	out := domain.CloneTOC(items)
	candidates := outline.Candidates(out)
	if len(candidates) == 0 {
		return out, nil
	}

	rewrites := make(map[int]outline.Rewrite)
	var lastErr error
	failed := 0
	total := 0
	for start := 0; start < len(candidates); start += tocEnhanceBatch {
		batch := candidates[start:min(start+tocEnhanceBatch, len(candidates))]
		total++
		if err := s.pace(ctx); err != nil {
			return out, err
		}
		if err := s.enhanceBatch(ctx, batch, rewrites); err != nil {
			logger.Warn("toc batch %d: %v", total, err)
			lastErr = err
			failed++
		}
	}
	if failed == total {
		return out, lastErr
	}

	applied := outline.ApplyRewrites(out, rewrites)
	logger.Debug("toc: rewrote %d of %d titles", applied, len(candidates))
	return out, nil
}

func (s *TOCService) enhanceBatch(ctx context.Context, batch []outline.Candidate, into map[int]outline.Rewrite) error {
	entries := make([]tocEntry, len(batch))
	wanted := make(map[int]bool, len(batch))
	for i, c := range batch {
		entries[i] = tocEntry{Index: c.Index, Title: c.Title, MaxLength: outline.MaxTitleLength(c.Level)}
		wanted[c.Index] = true
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding entries: %w", err)
	}

	var resp tocEnhanceResponse
	if err := s.jsonGeneration(ctx, s.prompt(driven.PromptTOCEnhance, string(payload)), &resp); err != nil {
		return err
	}
	for _, rw := range resp.Items {
		if !wanted[rw.Index] {
			continue
		}
		into[rw.Index] = outline.Rewrite{Title: rw.Title, Tooltip: rw.Tooltip}
	}
	return nil
}
