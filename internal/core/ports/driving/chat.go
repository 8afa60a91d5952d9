package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// ChatService is the retrieval-augmented conversation over a document.
type ChatService interface {
	// Initialize indexes the document at url and prepares opening suggestions.
	Initialize(ctx context.Context, url string) error

	// GenerateReply answers message using retrieved context.
	GenerateReply(ctx context.Context, message string) (*domain.ChatMessage, error)

	// GenerateSuggestions refreshes the suggested follow-up questions.
	GenerateSuggestions(ctx context.Context) ([]string, error)

	Messages() []domain.ChatMessage
	Suggestions() []string
	Status() domain.ChatStatus

	// Err returns the message of the last failure while in the error state.
	Err() string
}
