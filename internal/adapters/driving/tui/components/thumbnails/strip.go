// Package thumbnails provides the page strip and page controls of the reader.
package thumbnails

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
)

// Strip is a horizontal row of page numbers with a movable cursor.
type Strip struct {
	styles    *styles.Styles
	pageCount int
	current   int
	cursor    int
	focused   bool
	width     int
}

// NewStrip creates an empty strip.
func NewStrip(s *styles.Styles) *Strip {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Strip{
		styles:  s,
		current: 1,
		cursor:  1,
		width:   80,
	}
}

// Init initialises the strip.
func (s *Strip) Init() tea.Cmd {
	return nil
}

// Update moves the cursor on left and right.
func (s *Strip) Update(msg tea.Msg) (*Strip, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "left", "h":
			s.MoveLeft()
		case "right", "l":
			s.MoveRight()
		}
	}
	return s, nil
}

// View renders the cells that fit around the cursor.
func (s *Strip) View() string {
	if s.pageCount == 0 {
		return s.styles.Muted.Render("No pages")
	}

	first, last := s.window()
	cells := make([]string, 0, last-first+3)
	if first > 1 {
		cells = append(cells, s.styles.Muted.Render("‹"))
	}
	for page := first; page <= last; page++ {
		cells = append(cells, s.renderCell(page))
	}
	if last < s.pageCount {
		cells = append(cells, s.styles.Muted.Render("›"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (s *Strip) renderCell(page int) string {
	label := strconv.Itoa(page)
	switch {
	case page == s.current:
		return s.styles.CurrentThumbnail.Render(label)
	case s.focused && page == s.cursor:
		return s.styles.Selected.Padding(0, 1).Render(label)
	default:
		return s.styles.Thumbnail.Render(label)
	}
}

// window returns the first and last page shown, centred on the cursor.
func (s *Strip) window() (int, int) {
	cellWidth := len(strconv.Itoa(s.pageCount)) + 2
	visible := max((s.width-2)/cellWidth, 1)
	if visible >= s.pageCount {
		return 1, s.pageCount
	}
	first := max(s.cursor-visible/2, 1)
	last := first + visible - 1
	if last > s.pageCount {
		last = s.pageCount
		first = last - visible + 1
	}
	return first, last
}

// SetPageCount sets the number of pages and clamps the cursor.
func (s *Strip) SetPageCount(n int) {
	s.pageCount = max(n, 0)
	s.current = s.clamp(s.current)
	s.cursor = s.clamp(s.cursor)
}

// PageCount returns the number of pages.
func (s *Strip) PageCount() int {
	return s.pageCount
}

// SetCurrent marks the page being read. The cursor follows unless the strip has focus.
func (s *Strip) SetCurrent(page int) {
	s.current = s.clamp(page)
	if !s.focused {
		s.cursor = s.current
	}
}

// Current returns the page being read.
func (s *Strip) Current() int {
	return s.current
}

// Cursor returns the page under the cursor.
func (s *Strip) Cursor() int {
	return s.cursor
}

// MoveLeft moves the cursor one page back.
func (s *Strip) MoveLeft() {
	s.cursor = s.clamp(s.cursor - 1)
}

// MoveRight moves the cursor one page forward.
func (s *Strip) MoveRight() {
	s.cursor = s.clamp(s.cursor + 1)
}

// SetFocused toggles cursor highlighting. Losing focus returns the cursor to the current page.
func (s *Strip) SetFocused(focused bool) {
	s.focused = focused
	if !focused {
		s.cursor = s.current
	}
}

// Focused returns whether the strip has focus.
func (s *Strip) Focused() bool {
	return s.focused
}

// SetWidth sets the strip width.
func (s *Strip) SetWidth(width int) {
	s.width = width
}

func (s *Strip) clamp(page int) int {
	if s.pageCount > 0 && page > s.pageCount {
		page = s.pageCount
	}
	return max(page, 1)
}

// Controls renders the previous and next page buttons around the position.
func Controls(st *styles.Styles, current, pageCount int) string {
	if st == nil {
		st = styles.DefaultStyles()
	}

	prev := st.Normal.Render("◀ p")
	if current <= 1 {
		prev = st.Muted.Render("◀ p")
	}
	next := st.Normal.Render("n ▶")
	if pageCount > 0 && current >= pageCount {
		next = st.Muted.Render("n ▶")
	}

	position := fmt.Sprintf("Page %d", current)
	if pageCount > 0 {
		position = fmt.Sprintf("Page %d of %d", current, pageCount)
	}
	return strings.Join([]string{prev, st.Title.Render(position), next}, "   ")
}
