// Package tui provides the terminal reader for folio.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Session holds the open document and its table of contents.
	Session driving.SessionService

	// Navigation keeps the current page consistent across the reader's panes.
	Navigation driving.NavigationCoordinator

	// Chat answers questions about the document. Optional.
	Chat driving.ChatService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	session driving.SessionService,
	navigation driving.NavigationCoordinator,
	chat driving.ChatService,
) *Ports {
	return &Ports{
		Session:    session,
		Navigation: navigation,
		Chat:       chat,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Session == nil {
		return ErrMissingSessionService
	}
	if p.Navigation == nil {
		return ErrMissingNavigation
	}
	return nil
}
