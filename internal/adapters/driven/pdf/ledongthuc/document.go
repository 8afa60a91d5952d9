package ledongthuc

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Document implements the interface.
var _ driven.PDFDocument = (*Document)(nil)

var errClosed = errors.New("document closed")

// Document is an open PDF.
//
// The underlying reader is not safe for concurrent use, so page access is
// serialised.
type Document struct {
	mu          sync.Mutex
	reader      *pdf.Reader
	fingerprint string
	pageCount   int
	pages       []pdf.Value
	closed      bool
}

// Fingerprint is the hex SHA-256 of the file bytes.
func (d *Document) Fingerprint() string {
	return d.fingerprint
}

// PageCount returns the number of pages declared by the page tree.
func (d *Document) PageCount() int {
	return d.pageCount
}

// PageText returns the text of page n, one line per text row.
func (d *Document) PageText(n int) (text string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	page, err := d.page(n)
	if err != nil {
		return "", err
	}
	defer recoverAs(&err, pageError(n))

	runs := glyphRuns(page.Content().Text)
	if len(runs) > 0 {
		return joinLines(runs), nil
	}
	// Fonts without widths place every glyph at the same position.
	plain, err := page.GetPlainText(nil)
	if err != nil {
		return "", &domain.PageExtractionError{Page: n, Err: err}
	}
	return plain, nil
}

// PageRuns returns the text runs of page n in content order.
func (d *Document) PageRuns(n int) (runs []domain.TextRun, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	page, err := d.page(n)
	if err != nil {
		return nil, err
	}
	defer recoverAs(&err, pageError(n))
	return glyphRuns(page.Content().Text), nil
}

// Close releases the reader. Later calls fail.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.reader = nil
	d.pages = nil
	return nil
}

func (d *Document) page(n int) (pdf.Page, error) {
	if d.closed {
		return pdf.Page{}, &domain.PageExtractionError{Page: n, Err: errClosed}
	}
	if n < 1 || n > d.pageCount {
		return pdf.Page{}, &domain.PageExtractionError{Page: n, Err: fmt.Errorf("out of range 1-%d", d.pageCount)}
	}
	page := d.reader.Page(n)
	if page.V.IsNull() {
		return pdf.Page{}, &domain.PageExtractionError{Page: n, Err: errors.New("missing page object")}
	}
	return page, nil
}

func pageError(n int) func(string) error {
	return func(msg string) error {
		return &domain.PageExtractionError{Page: n, Err: errors.New(msg)}
	}
}

// Glyph grouping tolerances, as fractions of the font size.
const (
	sameLineRatio  = 0.3
	wordGapRatio   = 0.2
	columnGapRatio = 3.0
)

// glyphRuns joins the per-glyph output of the parser into runs of text
// sharing a font, a size and a baseline.
func glyphRuns(glyphs []pdf.Text) []domain.TextRun {
	var runs []domain.TextRun
	var cur *domain.TextRun
	var end float64

	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			cur.Text = strings.TrimSpace(cur.Text)
			cur.Width = end - cur.X
			runs = append(runs, *cur)
		}
		cur = nil
	}

	for _, g := range glyphs {
		if g.S == "\n" {
			flush()
			continue
		}
		if cur != nil && continues(*cur, g, end) {
			if gap := g.X - end; gap > wordGapRatio*g.FontSize && !strings.HasSuffix(cur.Text, " ") && g.S != " " {
				cur.Text += " "
			}
			cur.Text += g.S
			end = math.Max(end, g.X+g.W)
			continue
		}
		flush()
		if g.S == " " {
			continue
		}
		cur = &domain.TextRun{Text: g.S, FontName: g.Font, FontSize: g.FontSize, X: g.X, Y: g.Y}
		end = g.X + g.W
	}
	flush()
	return runs
}

func continues(run domain.TextRun, g pdf.Text, end float64) bool {
	if g.Font != run.FontName || math.Abs(g.FontSize-run.FontSize) > 0.01 {
		return g.S == " " && math.Abs(g.Y-run.Y) < sameLineRatio*run.FontSize
	}
	if math.Abs(g.Y-run.Y) >= sameLineRatio*run.FontSize {
		return false
	}
	gap := g.X - end
	return gap > -run.FontSize && gap < columnGapRatio*run.FontSize
}

// joinLines renders runs as text, one line per baseline, top to bottom.
func joinLines(runs []domain.TextRun) string {
	type line struct {
		y    float64
		size float64
		runs []domain.TextRun
	}
	var lines []*line
	for _, r := range runs {
		var target *line
		for _, l := range lines {
			if math.Abs(l.y-r.Y) < sameLineRatio*math.Max(l.size, r.FontSize) {
				target = l
				break
			}
		}
		if target == nil {
			target = &line{y: r.Y, size: r.FontSize}
			lines = append(lines, target)
		}
		target.runs = append(target.runs, r)
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })
	out := make([]string, len(lines))
	for i, l := range lines {
		sort.SliceStable(l.runs, func(a, b int) bool { return l.runs[a].X < l.runs[b].X })
		parts := make([]string, len(l.runs))
		for j, r := range l.runs {
			parts[j] = r.Text
		}
		out[i] = strings.Join(parts, " ")
	}
	return strings.Join(out, "\n")
}
