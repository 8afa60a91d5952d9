package domain

import "time"

// ChatRole is the author of a chat message.
type ChatRole string

// Chat roles.
const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of the document chat.
type ChatMessage struct {
	ID        string
	Role      ChatRole
	Content   string
	CreatedAt time.Time
	Metadata  ChatMetadata
}

// ChatMetadata holds grounding information for assistant replies.
type ChatMetadata struct {
	// Confidence is the highest similarity among the results used as context.
	Confidence float64

	Sources []ChatSource
}

// ChatSource is a page cited as context for a reply.
type ChatSource struct {
	PageNumber int
	Similarity float64
	Excerpt    string
}

// ChatStatus is the lifecycle state of a chat session.
type ChatStatus string

// Chat states.
const (
	ChatUninitialized ChatStatus = "uninitialized"
	ChatInitializing  ChatStatus = "initializing"
	ChatReady         ChatStatus = "ready"
	ChatGenerating    ChatStatus = "generating"
	ChatError         ChatStatus = "error"
)

// String returns the string representation.
func (s ChatStatus) String() string {
	return string(s)
}

// DefaultSuggestions are offered before a document has been indexed.
func DefaultSuggestions() []string {
	return []string{
		"📚 What is this document about?",
		"🔑 What are the key concepts?",
		"📝 Can you summarize the main points?",
		"❓ What should I study first?",
	}
}
