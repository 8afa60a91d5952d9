// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
)

// Entry is one flattened row of the table of contents.
type Entry struct {
	Title string
	Page  int
	Level int
}

// TOCList displays the table of contents as a navigable, indented list.
type TOCList struct {
	entries  []Entry
	selected int
	current  int // index of the entry covering the page being read, -1 when none
	focused  bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewTOCList creates an empty table of contents list.
func NewTOCList(s *styles.Styles) *TOCList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &TOCList{
		current: -1,
		styles:  s,
		width:   30,
		height:  10,
	}
}

// Flatten walks the tree depth-first into rows.
func Flatten(items []domain.TOCItem) []Entry {
	entries := make([]Entry, 0, domain.CountTOC(items))
	domain.WalkTOC(items, func(item *domain.TOCItem) {
		entries = append(entries, Entry{
			Title: item.Title,
			Page:  item.PageNumber,
			Level: item.Level,
		})
	})
	return entries
}

// Init initialises the list.
func (l *TOCList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation keys.
func (l *TOCList) Update(msg tea.Msg) (*TOCList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the visible window of the list.
func (l *TOCList) View() string {
	lines := make([]string, 0, l.height)
	lines = append(lines, l.styles.Subtitle.Render("Contents"))

	if len(l.entries) == 0 {
		lines = append(lines, l.styles.Muted.Render("No outline"))
		return strings.Join(lines, "\n")
	}

	start, end := l.window()
	for i := start; i < end; i++ {
		lines = append(lines, l.renderEntry(i))
	}
	return strings.Join(lines, "\n")
}

// window returns the range of entries that fit, keeping the cursor visible.
func (l *TOCList) window() (int, int) {
	visible := max(l.height-1, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	return start, min(start+visible, len(l.entries))
}

// renderEntry formats one row: indent, title and page number.
func (l *TOCList) renderEntry(index int) string {
	e := l.entries[index]

	indicator := "  "
	if index == l.current {
		indicator = "▸ "
	}
	indent := strings.Repeat("  ", e.Level)
	page := fmt.Sprintf(" %d", e.Page)

	titleWidth := max(l.width-len(indicator)-len(indent)-len(page), 4)
	title := truncate(e.Title, titleWidth)
	row := fmt.Sprintf("%s%s%-*s%s", indicator, indent, titleWidth, title, page)

	switch {
	case l.focused && index == l.selected:
		return l.styles.Selected.Render(row)
	case index == l.current:
		return l.styles.Current.Render(row)
	default:
		return l.styles.Normal.Render(row)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// SetItems replaces the outline and resets the cursor.
func (l *TOCList) SetItems(items []domain.TOCItem) {
	l.entries = Flatten(items)
	l.selected = 0
	l.current = -1
}

// Entries returns the flattened rows.
func (l *TOCList) Entries() []Entry {
	return l.entries
}

// SetCurrentPage marks the last entry starting at or before page.
func (l *TOCList) SetCurrentPage(page int) {
	l.current = -1
	for i, e := range l.entries {
		if e.Page <= page && (l.current < 0 || e.Page >= l.entries[l.current].Page) {
			l.current = i
		}
	}
}

// Current returns the index of the entry being read, or -1.
func (l *TOCList) Current() int {
	return l.current
}

// Selected returns the cursor index.
func (l *TOCList) Selected() int {
	return l.selected
}

// SelectedEntry returns the entry under the cursor.
func (l *TOCList) SelectedEntry() (Entry, bool) {
	if l.selected < 0 || l.selected >= len(l.entries) {
		return Entry{}, false
	}
	return l.entries[l.selected], true
}

// MoveUp moves the cursor up.
func (l *TOCList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the cursor down.
func (l *TOCList) MoveDown() {
	if l.selected < len(l.entries)-1 {
		l.selected++
	}
}

// SetFocused toggles cursor highlighting.
func (l *TOCList) SetFocused(focused bool) {
	l.focused = focused
	if focused && l.current >= 0 {
		l.selected = l.current
	}
}

// Focused returns whether the list has focus.
func (l *TOCList) Focused() bool {
	return l.focused
}

// SetDimensions sets the component dimensions.
func (l *TOCList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of rows.
func (l *TOCList) Count() int {
	return len(l.entries)
}

// IsEmpty returns whether the list is empty.
func (l *TOCList) IsEmpty() bool {
	return len(l.entries) == 0
}
