package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// EmbeddingStore is the semantic memory of a session.
type EmbeddingStore interface {
	// AddDocument chunks and embeds content, returning the ids of the stored entries.
	// Entries stored before a failure are kept.
	AddDocument(ctx context.Context, content string, meta domain.EmbeddingMetadata) ([]string, error)

	// SimilaritySearch returns up to k combined results with similarity above threshold.
	// k <= 0 returns every result.
	SimilaritySearch(ctx context.Context, query string, k int, threshold float64) ([]domain.SimilarityResult, error)

	// Remove deletes the entries with the given ids and returns how many existed.
	Remove(ids ...string) int

	// Cleanup deletes expired entries and returns how many were removed.
	Cleanup() int

	// Clear deletes every entry.
	Clear()

	// Stats summarises the live entries.
	Stats() domain.StoreStats

	// Len returns the number of live entries.
	Len() int
}
