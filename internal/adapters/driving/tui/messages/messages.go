// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/folio/internal/core/domain"
)

// Pane identifies which part of the reader has keyboard focus.
type Pane int

const (
	// PaneViewer is the scrolling page text.
	PaneViewer Pane = iota
	// PaneTOC is the table of contents sidebar.
	PaneTOC
	// PaneThumbnails is the page strip under the viewer.
	PaneThumbnails
	// PaneAsk is the question prompt.
	PaneAsk
)

// String returns the string representation of the pane.
func (p Pane) String() string {
	switch p {
	case PaneViewer:
		return "viewer"
	case PaneTOC:
		return "toc"
	case PaneThumbnails:
		return "thumbnails"
	case PaneAsk:
		return "ask"
	default:
		return "unknown"
	}
}

// Next returns the pane that tab moves to. The ask prompt is not in the cycle.
func (p Pane) Next() Pane {
	switch p {
	case PaneViewer:
		return PaneTOC
	case PaneTOC:
		return PaneThumbnails
	default:
		return PaneViewer
	}
}

// DocumentLoaded carries the open document and its table of contents.
type DocumentLoaded struct {
	Document *domain.Document
	TOC      []domain.TOCItem
	Err      error
}

// ScrollRequested asks the viewer to bring an anchor into view.
type ScrollRequested struct {
	Anchor string
}

// NavigationChanged carries a new navigation state snapshot.
type NavigationChanged struct {
	State domain.NavigationState
}

// QuestionAsked is sent when the user submits a question.
type QuestionAsked struct {
	Question string
}

// AnswerReceived carries the chat reply to a question.
type AnswerReceived struct {
	Question string
	Message  *domain.ChatMessage
	Err      error
}

// FocusChanged is sent when keyboard focus moves to another pane.
type FocusChanged struct {
	Pane Pane
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
