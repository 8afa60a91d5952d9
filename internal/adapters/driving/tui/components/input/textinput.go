// Package input provides text input components for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
)

// maxQuestionLength bounds a single question.
const maxQuestionLength = 500

// AskInput is the one-line question prompt of the reader.
type AskInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewAskInput creates a blurred question prompt.
func NewAskInput(s *styles.Styles) *AskInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about this document..."
	ti.CharLimit = maxQuestionLength
	ti.Width = 50

	return &AskInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the prompt.
func (a *AskInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (a *AskInput) Update(msg tea.Msg) (*AskInput, tea.Cmd) {
	var cmd tea.Cmd
	a.textinput, cmd = a.textinput.Update(msg)
	return a, cmd
}

// View renders the prompt.
func (a *AskInput) View() string {
	label := a.styles.Title.Render("Ask: ")
	field := a.styles.InputField.Render(a.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Question returns the trimmed input.
func (a *AskInput) Question() string {
	return strings.TrimSpace(a.textinput.Value())
}

// Value returns the raw input.
func (a *AskInput) Value() string {
	return a.textinput.Value()
}

// SetValue sets the input value.
func (a *AskInput) SetValue(value string) {
	a.textinput.SetValue(value)
}

// Focus sets focus on the prompt.
func (a *AskInput) Focus() tea.Cmd {
	return a.textinput.Focus()
}

// Blur removes focus from the prompt.
func (a *AskInput) Blur() {
	a.textinput.Blur()
}

// Focused returns whether the prompt is focused.
func (a *AskInput) Focused() bool {
	return a.textinput.Focused()
}

// SetWidth sets the width of the prompt.
func (a *AskInput) SetWidth(width int) {
	a.width = width
	// Account for label, border and padding
	a.textinput.Width = max(width-12, 20)
}

// Width returns the current width.
func (a *AskInput) Width() int {
	return a.width
}

// Reset clears the prompt.
func (a *AskInput) Reset() {
	a.textinput.Reset()
}
