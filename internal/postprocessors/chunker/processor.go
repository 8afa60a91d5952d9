// Package chunker provides a recursive, separator-aware text splitter.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.TextSplitter = (*Splitter)(nil)

// Splitter splits text along the first separator that occurs in it,
// recursing into pieces that are still too long.
type Splitter struct {
	defaults domain.ChunkOptions
}

// Option configures the default options of a Splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in runes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.defaults.ChunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.defaults.ChunkOverlap = overlap
		}
	}
}

// WithSeparators sets the separators tried in priority order.
func WithSeparators(separators ...string) Option {
	return func(s *Splitter) {
		if len(separators) > 0 {
			s.defaults.Separators = separators
		}
	}
}

// New creates a splitter with the given default options.
// Defaults are validated when used, not here.
func New(opts ...Option) *Splitter {
	s := &Splitter{defaults: domain.DefaultChunkOptions()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the processor name.
func (s *Splitter) Name() string {
	return "chunker"
}

// Defaults returns the options used by SplitText.
func (s *Splitter) Defaults() domain.ChunkOptions {
	return s.defaults
}

// SplitText splits text with the splitter's default options.
func (s *Splitter) SplitText(text string) ([]domain.Chunk, error) {
	return s.Split(text, s.defaults)
}

// Split returns the chunks of text.
//
// Each chunk's Core is at most ChunkSize-ChunkOverlap runes unless a piece has
// no separator left to split on. Content is the trailing ChunkOverlap runes of
// the previous Core followed by this Core, trimmed. Concatenating every Core
// yields text unchanged.
func (s *Splitter) Split(text string, opts domain.ChunkOptions) ([]domain.Chunk, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	separators := opts.Separators
	if len(separators) == 0 {
		separators = domain.DefaultSeparators()
	}
	budget := opts.ChunkSize - opts.ChunkOverlap

	cores := foldWhitespace(splitRecursive(text, separators, budget))

	chunks := make([]domain.Chunk, 0, len(cores))
	prev := ""
	for i, core := range cores {
		overlap := ""
		if i > 0 && opts.ChunkOverlap > 0 {
			overlap = tail(prev, opts.ChunkOverlap)
		}
		chunks = append(chunks, domain.Chunk{
			Index:   i,
			Content: strings.TrimSpace(overlap + core),
			Core:    core,
			Overlap: overlap,
		})
		prev = core
	}
	return chunks, nil
}

// splitRecursive breaks text into pieces of at most budget runes.
func splitRecursive(text string, separators []string, budget int) []string {
	if utf8.RuneCountInString(text) <= budget {
		return []string{text}
	}

	sep, rest, ok := pickSeparator(text, separators)
	if !ok {
		// Nothing left to split on: emit whole.
		return []string{text}
	}

	var parts []string
	if sep == "" {
		parts = splitRunes(text)
	} else {
		parts = strings.SplitAfter(text, sep)
	}

	var out []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, part := range parts {
		if part == "" {
			continue
		}
		n := utf8.RuneCountInString(part)
		if n > budget {
			flush()
			out = append(out, splitRecursive(part, rest, budget)...)
			continue
		}
		if curLen+n > budget {
			flush()
		}
		cur.WriteString(part)
		curLen += n
	}
	flush()

	return out
}

// pickSeparator returns the first separator present in text and the
// separators after it. The empty separator always matches.
func pickSeparator(text string, separators []string) (string, []string, bool) {
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			return sep, separators[i+1:], true
		}
	}
	return "", nil, false
}

// splitRunes slices text into single runes without re-encoding invalid bytes.
func splitRunes(text string) []string {
	out := make([]string, 0, len(text))
	for i := 0; i < len(text); {
		_, size := utf8.DecodeRuneInString(text[i:])
		out = append(out, text[i:i+size])
		i += size
	}
	return out
}

// foldWhitespace attaches whitespace-only pieces to the previous piece,
// or to the next one when they lead the text.
func foldWhitespace(pieces []string) []string {
	out := make([]string, 0, len(pieces))
	carry := ""
	for _, p := range pieces {
		if strings.TrimSpace(p) == "" {
			if len(out) > 0 {
				out[len(out)-1] += p
			} else {
				carry += p
			}
			continue
		}
		out = append(out, carry+p)
		carry = ""
	}
	return out
}

// tail returns the last n runes of s.
func tail(s string, n int) string {
	count := utf8.RuneCountInString(s)
	if count <= n {
		return s
	}
	skip := count - n
	for i := range s {
		if skip == 0 {
			return s[i:]
		}
		skip--
	}
	return ""
}
