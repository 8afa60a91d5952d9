// Package doccontent provides the scrolling page viewer of the reader.
package doccontent

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
)

// minTextWidth keeps wrapping readable in very narrow terminals.
const minTextWidth = 20

// anchor is where a page starts in the rendered text.
type anchor struct {
	page int
	line int
}

// View renders every page into one scrolling viewport with a header per page.
// Each header line is the target of the page's anchor.
type View struct {
	styles   *styles.Styles
	viewport viewport.Model
	document *domain.Document

	anchors []anchor // ordered by line
	lines   int
	width   int
	height  int
}

// NewView creates an empty viewer.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   20,
	}
}

// SetDocument renders the document and scrolls to the top.
func (v *View) SetDocument(doc *domain.Document) {
	v.document = doc
	v.render()
	v.viewport.GotoTop()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update forwards scrolling keys and mouse events to the viewport.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the visible part of the document.
func (v *View) View() string {
	if v.document == nil {
		return v.styles.Muted.Render("No document")
	}
	return v.viewport.View()
}

// render rebuilds the text and the anchor table for the current width.
func (v *View) render() {
	v.anchors = v.anchors[:0]
	if v.document == nil {
		v.lines = 0
		v.viewport.SetContent("")
		return
	}

	textWidth := max(v.width-2, minTextWidth)
	var b strings.Builder
	line := 0 // line the writer is on
	for i, p := range v.document.Pages {
		if i > 0 {
			b.WriteString("\n\n")
			line += 2
		}
		v.anchors = append(v.anchors, anchor{page: p.PageNumber, line: line})
		b.WriteString(v.styles.PageHeader.Render(pageHeader(p.PageNumber, textWidth)))
		b.WriteString("\n")
		line++

		body := strings.TrimRight(p.Text, "\n")
		if !p.Metadata.HasText || strings.TrimSpace(body) == "" {
			body = v.styles.Muted.Render("(no text on this page)")
		} else {
			body = ansi.Wrap(body, textWidth, "")
		}
		b.WriteString(body)
		line += strings.Count(body, "\n")
	}

	v.lines = line + 1
	v.viewport.SetContent(b.String())
}

func pageHeader(page, width int) string {
	label := fmt.Sprintf(" Page %d ", page)
	rule := max(width-len(label)-2, 2)
	return "──" + label + strings.Repeat("─", rule)
}

// ScrollTo moves the top of the viewport to anchor.
// It reports false when the anchor is unknown.
func (v *View) ScrollTo(anchorName string) bool {
	line, ok := v.AnchorLine(anchorName)
	if !ok {
		return false
	}
	v.viewport.SetYOffset(line)
	return true
}

// AnchorLine returns the line a page anchor points at.
func (v *View) AnchorLine(anchorName string) (int, bool) {
	for _, a := range v.anchors {
		if domain.PageAnchor(a.page) == anchorName {
			return a.line, true
		}
	}
	return 0, false
}

// CurrentPage returns the page whose header is at or above the top line.
// Scrolled to the very end it is the last page.
func (v *View) CurrentPage() int {
	if len(v.anchors) > 0 && v.viewport.AtBottom() && !v.viewport.AtTop() {
		return v.anchors[len(v.anchors)-1].page
	}
	page := 1
	offset := v.viewport.YOffset
	for _, a := range v.anchors {
		if a.line > offset {
			break
		}
		page = a.page
	}
	return page
}

// YOffset returns the top visible line.
func (v *View) YOffset() int {
	return v.viewport.YOffset
}

// Lines returns the number of rendered lines.
func (v *View) Lines() int {
	return v.lines
}

// ScrollPercent returns how far through the document the viewport is.
func (v *View) ScrollPercent() float64 {
	return v.viewport.ScrollPercent()
}

// SetDimensions resizes the viewport, keeping the current page in view.
func (v *View) SetDimensions(width, height int) {
	page := v.CurrentPage()
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(height, 1)
	v.render()
	v.ScrollTo(domain.PageAnchor(page))
}

// Document returns the rendered document.
func (v *View) Document() *domain.Document {
	return v.document
}
