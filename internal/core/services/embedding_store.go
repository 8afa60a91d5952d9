package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
	"github.com/custodia-labs/folio/internal/vector"
)

// Ensure EmbeddingStore implements the interface.
var _ driving.EmbeddingStore = (*EmbeddingStore)(nil)

// defaultEmbedConcurrency bounds in-flight embedding calls per AddDocument.
const defaultEmbedConcurrency = 4

// storedEntry is an entry plus its insertion sequence.
type storedEntry struct {
	domain.EmbeddingEntry
	seq uint64
}

// EmbeddingStore is the in-memory semantic memory of one session.
// Entries expire ttl after insertion.
type EmbeddingStore struct {
	embedder driven.EmbeddingService
	splitter driven.TextSplitter
	opts     domain.ChunkOptions
	ttl      time.Duration
	clock    driven.Clock
	workers  int

	mu        sync.RWMutex
	entries   map[string]*storedEntry
	seq       uint64
	dimension int
}

// EmbeddingStoreOption configures an EmbeddingStore.
type EmbeddingStoreOption func(*EmbeddingStore)

// WithTTL sets how long entries stay searchable.
func WithTTL(ttl time.Duration) EmbeddingStoreOption {
	return func(s *EmbeddingStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithChunkOptions sets the splitter configuration used by AddDocument.
func WithChunkOptions(opts domain.ChunkOptions) EmbeddingStoreOption {
	return func(s *EmbeddingStore) {
		s.opts = opts
	}
}

// WithStoreClock replaces the wall clock.
func WithStoreClock(clock driven.Clock) EmbeddingStoreOption {
	return func(s *EmbeddingStore) {
		s.clock = clock
	}
}

// WithEmbedConcurrency bounds concurrent embedding calls.
func WithEmbedConcurrency(n int) EmbeddingStoreOption {
	return func(s *EmbeddingStore) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewEmbeddingStore creates an empty store.
func NewEmbeddingStore(
	embedder driven.EmbeddingService,
	splitter driven.TextSplitter,
	opts ...EmbeddingStoreOption,
) *EmbeddingStore {
	s := &EmbeddingStore{
		embedder: embedder,
		splitter: splitter,
		opts:     domain.DefaultChunkOptions(),
		ttl:      domain.DefaultEmbeddingTTL,
		clock:    systemClock{},
		workers:  defaultEmbedConcurrency,
		entries:  make(map[string]*storedEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddDocument chunks content, embeds every chunk and stores each entry as
// soon as its embedding arrives. On failure the ids stored so far are
// returned with an error wrapping domain.ErrEmbeddingService.
func (s *EmbeddingStore) AddDocument(
	ctx context.Context, content string, meta domain.EmbeddingMetadata,
) ([]string, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	chunks, err := s.splitter.Split(content, s.opts)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}
	logger.Debug("embedding %d chunk(s) for %s page %d", len(chunks), meta.DocumentID, meta.PageNumber)

	ids := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vec, err := s.embedder.Embed(gctx, chunk.Content)
			if err != nil {
				return fmt.Errorf("%w: chunk %d of %s: %w", domain.ErrEmbeddingService, i, meta.DocumentID, err)
			}

			m := meta
			m.ChunkIndex = i
			m.TotalChunks = len(chunks)
			m.IsChunk = len(chunks) > 1
			if m.Type == "" {
				m.Type = domain.EmbeddingTypeChunk
			}

			id, err := s.insert(chunk.Content, vec, m)
			if err != nil {
				return err
			}
			ids[i] = id
			return nil
		})
	}

	err = g.Wait()

	stored := ids[:0]
	for _, id := range ids {
		if id != "" {
			stored = append(stored, id)
		}
	}
	if err != nil {
		logger.Warn("embedding %s: %d of %d chunk(s) stored before failure: %v",
			meta.DocumentID, len(stored), len(chunks), err)
		return stored, err
	}
	return stored, nil
}

// insert stores one entry. The first insert fixes the store's dimension.
func (s *EmbeddingStore) insert(content string, vec []float32, meta domain.EmbeddingMetadata) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension == 0 {
		s.dimension = len(vec)
	} else if len(vec) != s.dimension {
		return "", fmt.Errorf("%w: got %d, store holds %d", domain.ErrDimensionMismatch, len(vec), s.dimension)
	}

	s.seq++
	id := uuid.NewString()
	s.entries[id] = &storedEntry{
		EmbeddingEntry: domain.EmbeddingEntry{
			ID:        id,
			Content:   content,
			Embedding: vec,
			Timestamp: s.clock.Now(),
			Metadata:  meta,
		},
		seq: s.seq,
	}
	return id, nil
}

type scoredEntry struct {
	entry      *storedEntry
	similarity float64
}

// SimilaritySearch embeds query once and ranks every live entry by cosine
// similarity. Entries above threshold are combined per DocumentID: the
// group's content is joined in insertion order and its similarity is the
// running average of members folded in rank order.
func (s *EmbeddingStore) SimilaritySearch(
	ctx context.Context, query string, k int, threshold float64,
) ([]domain.SimilarityResult, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SimilarityResult{}, nil
	}

	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %w", domain.ErrEmbeddingService, err)
	}

	now := s.clock.Now()
	var scored []scoredEntry

	s.mu.RLock()
	for _, e := range s.entries {
		if !s.live(e, now) {
			continue
		}
		sim := vector.Cosine(qvec, e.Embedding)
		if sim > threshold {
			scored = append(scored, scoredEntry{entry: e, similarity: sim})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].similarity != scored[j].similarity {
			return scored[i].similarity > scored[j].similarity
		}
		return scored[i].entry.seq < scored[j].entry.seq
	})

	results := combine(scored)
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	logger.Debug("search %q: %d hit(s) above %.2f, %d result(s)", query, len(scored), threshold, len(results))
	return results, nil
}

// combine groups ranked hits by DocumentID in order of first appearance.
func combine(scored []scoredEntry) []domain.SimilarityResult {
	var order []string
	groups := make(map[string][]scoredEntry)
	for _, sc := range scored {
		docID := sc.entry.Metadata.DocumentID
		if _, ok := groups[docID]; !ok {
			order = append(order, docID)
		}
		groups[docID] = append(groups[docID], sc)
	}

	results := make([]domain.SimilarityResult, 0, len(order))
	for _, docID := range order {
		members := groups[docID]

		sims := make([]float64, len(members))
		for i, m := range members {
			sims[i] = m.similarity
		}

		byInsertion := append([]scoredEntry(nil), members...)
		sort.SliceStable(byInsertion, func(i, j int) bool {
			return byInsertion[i].entry.seq < byInsertion[j].entry.seq
		})
		contents := make([]string, len(byInsertion))
		ids := make([]string, len(byInsertion))
		for i, m := range byInsertion {
			contents[i] = m.entry.Content
			ids[i] = m.entry.ID
		}

		results = append(results, domain.SimilarityResult{
			ID:         members[0].entry.ID,
			Content:    strings.Join(contents, "\n\n"),
			Similarity: vector.RunningAverage(sims...),
			Metadata:   members[0].entry.Metadata,
			MemberIDs:  ids,
		})
	}
	return results
}

// live reports whether e is still visible at now.
func (s *EmbeddingStore) live(e *storedEntry, now time.Time) bool {
	return now.Sub(e.Timestamp) < s.ttl
}

// Get returns a live entry by id.
func (s *EmbeddingStore) Get(id string) (domain.EmbeddingEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || !s.live(e, s.clock.Now()) {
		return domain.EmbeddingEntry{}, false
	}
	return e.EmbeddingEntry, true
}

// Remove deletes the entries with the given ids and returns how many existed.
func (s *EmbeddingStore) Remove(ids ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, id := range ids {
		if _, ok := s.entries[id]; ok {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Cleanup deletes entries older than the TTL and returns how many were removed.
func (s *EmbeddingStore) Cleanup() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		if now.Sub(e.Timestamp) > s.ttl {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Clear deletes every entry and forgets the dimension.
func (s *EmbeddingStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*storedEntry)
	s.dimension = 0
}

// Stats summarises the live entries.
func (s *EmbeddingStore) Stats() domain.StoreStats {
	now := s.clock.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats domain.StoreStats
	for _, e := range s.entries {
		if !s.live(e, now) {
			continue
		}
		stats.TotalDocuments++
		if stats.OldestDocument.IsZero() || e.Timestamp.Before(stats.OldestDocument) {
			stats.OldestDocument = e.Timestamp
		}
		if e.Timestamp.After(stats.NewestDocument) {
			stats.NewestDocument = e.Timestamp
		}
	}
	return stats
}

// Len returns the number of live entries.
func (s *EmbeddingStore) Len() int {
	return s.Stats().TotalDocuments
}

// Dimension returns the vector length fixed by the first insert, 0 when empty.
func (s *EmbeddingStore) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// StartJanitor runs Cleanup every interval until ctx is done.
func (s *EmbeddingStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = domain.DefaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Cleanup(); n > 0 {
					logger.Debug("embedding store: expired %d entr(ies)", n)
				}
			}
		}
	}()
}
