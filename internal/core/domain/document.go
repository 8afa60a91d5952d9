package domain

import (
	"fmt"
	"strings"
	"time"
)

// Document represents a loaded PDF.
// It is created once per upload and is immutable once processed.
type Document struct {
	// ID is derived from the PDF bytes so the same file maps to the same
	// persisted state across runs.
	ID string

	// Filename is the base name of the PDF.
	Filename string

	// URL is where the bytes were loaded from (path, http(s) or s3 URL).
	URL string

	// CreatedAt is when the document was first processed.
	CreatedAt time.Time

	// Metadata holds document-level facts.
	Metadata DocumentMetadata

	// Pages holds the text of every page in page order.
	Pages []PageContent

	// TableOfContents is the hierarchical outline.
	TableOfContents []TOCItem

	// VectorIDs are the embedding entries created for this document.
	VectorIDs []string
}

// DocumentMetadata holds document-level facts.
type DocumentMetadata struct {
	PageCount int
}

// Page returns the page with the given 1-indexed number.
func (d *Document) Page(n int) (PageContent, bool) {
	if n < 1 || n > len(d.Pages) {
		return PageContent{}, false
	}
	p := d.Pages[n-1]
	if p.PageNumber == n {
		return p, true
	}
	for _, p := range d.Pages {
		if p.PageNumber == n {
			return p, true
		}
	}
	return PageContent{}, false
}

// FullText joins the text of every page with a blank line.
func (d *Document) FullText() string {
	parts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// PagesWithText returns only the pages that produced text.
func (d *Document) PagesWithText() []PageContent {
	out := make([]PageContent, 0, len(d.Pages))
	for _, p := range d.Pages {
		if p.Metadata.HasText {
			out = append(out, p)
		}
	}
	return out
}

// PageContent is the extracted text of one page.
type PageContent struct {
	// PageNumber is 1-indexed.
	PageNumber int

	// Text is the plain text of the page.
	Text string

	// Metadata holds extraction facts.
	Metadata PageMetadata
}

// PageMetadata holds extraction facts for a page.
type PageMetadata struct {
	// HasText is false when the page was empty or failed to extract.
	HasText bool

	// ProcessedAt is when the page was extracted.
	ProcessedAt time.Time
}

// PageAnchor returns the stable anchor of a rendered page.
func PageAnchor(page int) string {
	return fmt.Sprintf("page-%d", page)
}

// Chunk is a bounded slice of text prepared for embedding.
// Chunks carry no identity beyond their content and index.
type Chunk struct {
	// Index is the ordinal position within the split text.
	Index int

	// Content is the text to embed: Overlap + Core with surrounding whitespace trimmed.
	Content string

	// Core is the non-overlapping part. Concatenating every Core
	// reproduces the input text exactly.
	Core string

	// Overlap is the tail of the previous chunk's Core that prefixes this chunk.
	Overlap string
}

// Default chunking parameters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// DefaultSeparators are tried in order: paragraph, line, word, character.
func DefaultSeparators() []string {
	return []string{"\n\n", "\n", " ", ""}
}

// ChunkOptions configures the text splitter.
type ChunkOptions struct {
	// ChunkSize is the maximum chunk length in runes.
	ChunkSize int

	// ChunkOverlap is how many trailing runes of the previous chunk prefix the next.
	ChunkOverlap int

	// Separators in priority order. "" splits into single runes.
	Separators []string
}

// DefaultChunkOptions returns the default splitter configuration.
func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		Separators:   DefaultSeparators(),
	}
}

// Validate reports ErrInvalidConfig for unusable options.
func (o ChunkOptions) Validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, o.ChunkSize)
	}
	if o.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrInvalidConfig, o.ChunkOverlap)
	}
	if o.ChunkOverlap >= o.ChunkSize {
		return fmt.Errorf("%w: chunk overlap (%d) must be smaller than chunk size (%d)",
			ErrInvalidConfig, o.ChunkOverlap, o.ChunkSize)
	}
	return nil
}
