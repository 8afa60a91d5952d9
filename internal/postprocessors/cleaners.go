package postprocessors

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.PostProcessor = (*ControlChars)(nil)
	_ driven.PostProcessor = (*Dehyphenate)(nil)
	_ driven.PostProcessor = (*Whitespace)(nil)
)

// ControlChars removes control characters other than newline and tab.
type ControlChars struct{}

// Name returns the processor name.
func (ControlChars) Name() string { return "controlchars" }

// Process strips control characters and normalises line endings.
func (ControlChars) Process(_ context.Context, page domain.PageContent) (domain.PageContent, error) {
	text := strings.ReplaceAll(page.Text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	page.Text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == '\uFFFD' {
			return -1
		}
		return r
	}, text)
	return page, nil
}

var hyphenBreak = regexp.MustCompile(`(\p{L})-\n[ \t]*(\p{Ll})`)

// Dehyphenate joins words split across lines with a trailing hyphen.
type Dehyphenate struct{}

// Name returns the processor name.
func (Dehyphenate) Name() string { return "dehyphenate" }

// Process joins "exam-\nple" into "example".
func (Dehyphenate) Process(_ context.Context, page domain.PageContent) (domain.PageContent, error) {
	page.Text = hyphenBreak.ReplaceAllString(page.Text, "$1$2")
	return page, nil
}

var (
	spaceRun   = regexp.MustCompile(`[ \t\x{00A0}]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// Whitespace collapses runs of blanks and limits consecutive empty lines.
type Whitespace struct {
	// MaxBlankLines is how many empty lines may separate paragraphs.
	MaxBlankLines int
}

// Name returns the processor name.
func (Whitespace) Name() string { return "whitespace" }

// Process collapses spaces, trims every line and the page.
func (w Whitespace) Process(_ context.Context, page domain.PageContent) (domain.PageContent, error) {
	lines := strings.Split(page.Text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	text := strings.Join(lines, "\n")

	limit := w.MaxBlankLines
	if limit < 1 {
		limit = 1
	}
	text = blankLines.ReplaceAllStringFunc(text, func(run string) string {
		if len(run) > limit+1 {
			return strings.Repeat("\n", limit+1)
		}
		return run
	})
	page.Text = strings.TrimSpace(text)
	return page, nil
}
