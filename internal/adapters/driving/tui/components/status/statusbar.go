// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateAsking   State = "asking"
	StateThinking State = "thinking"
	StateError    State = "error"
)

// Bar displays the reading position and keybinding hints.
type Bar struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	state     State
	message   string
	nav       domain.NavigationState
	pageCount int
	width     int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateLoading,
		nav: domain.NavigationState{
			CurrentPage:  1,
			ActiveSource: domain.SourceViewer,
		},
		width: 80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is mostly passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight(s.bindings())

	inner := s.width - s.styles.StatusBar.GetHorizontalPadding()
	padding := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		right = s.renderRight([]key.Binding{s.keymap.Help})
		padding = max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the position and the current message.
func (s *Bar) renderLeft() string {
	switch s.state {
	case StateLoading:
		return s.styles.Muted.Render("Loading document...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateThinking:
		return s.position() + s.styles.Muted.Render("  Thinking...")
	case StateReady, StateAsking:
	}

	left := s.position()
	if s.message != "" {
		left += s.styles.Muted.Render("  " + s.message)
	}
	return left
}

// position renders "Page X/Y" with the active source.
func (s *Bar) position() string {
	page := fmt.Sprintf("Page %d", s.nav.CurrentPage)
	if s.pageCount > 0 {
		page = fmt.Sprintf("Page %d/%d", s.nav.CurrentPage, s.pageCount)
	}
	out := s.styles.Normal.Render(page) +
		s.styles.Muted.Render(" · "+s.nav.ActiveSource.String())
	if s.nav.IsAutoScrolling {
		out += s.styles.Warning.Render(" ↕")
	}
	return out
}

// bindings picks the hints for the current state.
func (s *Bar) bindings() []key.Binding {
	if s.state == StateAsking {
		return s.keymap.AskHelp()
	}
	return s.keymap.ShortHelp()
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight(bindings []key.Binding) string {
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetNavigation updates the displayed reading position.
func (s *Bar) SetNavigation(state domain.NavigationState) {
	s.nav = state
}

// Navigation returns the displayed reading position.
func (s *Bar) Navigation() domain.NavigationState {
	return s.nav
}

// SetPageCount sets the number of pages shown next to the current page.
func (s *Bar) SetPageCount(n int) {
	s.pageCount = max(n, 0)
}

// PageCount returns the page count.
func (s *Bar) PageCount() int {
	return s.pageCount
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear drops the message and returns to the ready state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}
