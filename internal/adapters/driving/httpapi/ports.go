package httpapi

import (
	"errors"

	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("httpapi: session service is required")

// Ports aggregates the driving ports served over HTTP.
// Only Session is required; routes whose port is nil answer 503.
type Ports struct {
	Session    driving.SessionService
	Chat       driving.ChatService
	Store      driving.EmbeddingStore
	Concepts   driving.ConceptService
	Summaries  driving.SummaryService
	Flashcards driving.FlashcardService
	MCQ        driving.MCQService
	Navigation driving.NavigationCoordinator
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Session == nil {
		return ErrMissingSessionService
	}
	return nil
}
