package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// PDFLoader opens PDF documents.
type PDFLoader interface {
	// Open fetches and parses the PDF at url.
	// Failures wrap domain.ErrLoad.
	Open(ctx context.Context, url string) (PDFDocument, error)
}

// PDFDocument is an open PDF. Close must be called on every path.
type PDFDocument interface {
	// Fingerprint identifies the PDF bytes. Equal bytes give equal fingerprints.
	Fingerprint() string

	// PageCount returns the number of pages.
	PageCount() int

	// PageText returns the plain text of a 1-indexed page.
	// Out of range pages return *domain.PageExtractionError.
	PageText(page int) (string, error)

	// PageRuns returns the positioned text runs of a 1-indexed page.
	PageRuns(page int) ([]domain.TextRun, error)

	// Outline returns the built-in outline with destinations resolved, or nil.
	Outline() ([]domain.OutlineNode, error)

	// Close releases decoder resources.
	Close() error
}

// ByteSource resolves a location to PDF bytes.
type ByteSource interface {
	// Fetch returns the bytes at url. Supported schemes are adapter specific.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
