package domain

import "time"

// Entry types recorded in EmbeddingMetadata.Type.
const (
	EmbeddingTypeChunk = "chunk"
	EmbeddingTypePage  = "page"
	EmbeddingTypeQuery = "query"
)

// EmbeddingEntry is a stored vector together with the text it was computed from.
// Entries are immutable once created.
type EmbeddingEntry struct {
	// ID is unique within a store.
	ID string

	// Content is the chunk text.
	Content string

	// Embedding has the same length for every entry in one store.
	Embedding []float32

	// Timestamp is the insertion time. TTL is measured from here.
	Timestamp time.Time

	// Metadata describes where the content came from.
	Metadata EmbeddingMetadata
}

// EmbeddingMetadata describes where an entry's content came from.
type EmbeddingMetadata struct {
	// DocumentID groups entries in search results. Callers that want
	// per-page grouping use a per-page identifier.
	DocumentID string

	// Type is one of the EmbeddingType constants.
	Type string

	// PageNumber is 1-indexed, 0 when unknown.
	PageNumber int

	ChunkIndex  int
	TotalChunks int
	IsChunk     bool
}

// SimilarityResult is one ranked search hit after combination.
type SimilarityResult struct {
	// ID is the id of the first entry in the group.
	ID string

	// Content is the group's chunks joined by blank lines.
	Content string

	// Similarity is the running average of member similarities.
	Similarity float64

	// Metadata is copied from the first entry in the group.
	Metadata EmbeddingMetadata

	// MemberIDs are the ids of every entry folded into this result.
	MemberIDs []string
}

// StoreStats summarises the contents of an embedding store.
type StoreStats struct {
	TotalDocuments int
	OldestDocument time.Time
	NewestDocument time.Time
}

// Default search and retention parameters.
const (
	DefaultEmbeddingTTL    = time.Hour
	DefaultSweepInterval   = 5 * time.Minute
	DefaultSearchK         = 5
	DefaultSearchThreshold = 0.5
)
