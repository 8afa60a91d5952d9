// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService provides text completion for generation, chat and title enhancement.
// This is an optional service - when nil, those features report domain.ErrLLMUnavailable.
//
// Implementations may include:
//   - OpenAI (GPT-4o, GPT-4o-mini)
//   - Ollama (local models)
type LLMService interface {
	// Complete runs one completion over the given conversation.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ResponseFormat selects the shape of a completion.
type ResponseFormat string

// Response formats.
const (
	// ResponseFormatText returns free text.
	ResponseFormatText ResponseFormat = "text"

	// ResponseFormatJSON forces a single JSON object.
	ResponseFormatJSON ResponseFormat = "json"
)

// CompletionRequest is the input of one completion call.
type CompletionRequest struct {
	// Model overrides the adapter's configured model when set.
	Model string

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// Messages is the conversation, oldest first.
	Messages []ChatMessage

	// ResponseFormat defaults to text.
	ResponseFormat ResponseFormat

	// MaxTokens is the maximum number of tokens to generate. 0 uses the provider default.
	MaxTokens int
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}
