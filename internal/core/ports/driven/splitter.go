package driven

import "github.com/custodia-labs/folio/internal/core/domain"

// TextSplitter splits text into overlapping chunks.
type TextSplitter interface {
	// Split returns the chunks of text. Invalid options fail with domain.ErrInvalidConfig.
	Split(text string, opts domain.ChunkOptions) ([]domain.Chunk, error)
}
