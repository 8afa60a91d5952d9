// Package ledongthuc reads PDFs with github.com/ledongthuc/pdf.
//
// The parser panics on some malformed input; every call into it is
// guarded and the panic is reported as an error instead.
package ledongthuc

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.PDFLoader = (*Loader)(nil)

// Loader opens PDFs whose bytes come from a ByteSource.
type Loader struct {
	source driven.ByteSource
}

// NewLoader creates a loader reading bytes from source.
func NewLoader(source driven.ByteSource) *Loader {
	return &Loader{source: source}
}

// Open fetches and parses the PDF at url.
func (l *Loader) Open(ctx context.Context, url string) (driven.PDFDocument, error) {
	data, err := l.source.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLoad, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrLoad, url, err)
	}
	return doc, nil
}

// Parse opens a PDF held in memory.
func Parse(data []byte) (doc *Document, err error) {
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	defer recoverAs(&err, func(msg string) error { return fmt.Errorf("malformed PDF: %s", msg) })

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	return &Document{
		reader:      reader,
		fingerprint: hex.EncodeToString(sum[:]),
		pageCount:   reader.NumPage(),
	}, nil
}

// recoverAs turns a parser panic into the error built by wrap.
func recoverAs(err *error, wrap func(msg string) error) {
	if r := recover(); r != nil {
		*err = wrap(fmt.Sprint(r))
	}
}
