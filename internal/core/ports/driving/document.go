package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// ExtractionService turns a PDF location into per-page text.
type ExtractionService interface {
	// BuildDocument loads the PDF and extracts every page together with the
	// material the table of contents is built from.
	BuildDocument(ctx context.Context, url string) (*domain.Document, domain.OutlineSource, error)

	// ExtractContent returns the text of all pages separated by blank lines.
	ExtractContent(ctx context.Context, url string) (string, error)
}

// SessionService owns the document of one reading session.
type SessionService interface {
	// Open loads (or restores) the document at url and makes it current.
	Open(ctx context.Context, url string) (*domain.Document, error)

	// Document returns the current document or domain.ErrNotInitialized.
	Document() (*domain.Document, error)

	// Index embeds the current document for chat and retrieval.
	Index(ctx context.Context) error

	// TableOfContents returns the cached table of contents of the current document.
	TableOfContents() (domain.TOCCache, error)

	// Close stops background work and releases resources.
	Close() error
}
