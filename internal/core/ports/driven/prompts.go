package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
// Templates are filled with fmt.Sprintf; the placeholders are listed per prompt.
const (
	// PromptChatSystem is the system instruction for document chat. No placeholders.
	PromptChatSystem = "chat_system"

	// PromptChatSuggestions asks for follow-up questions.
	// Placeholders: %s (recent conversation), %s (content excerpt).
	PromptChatSuggestions = "chat_suggestions"

	// PromptConcepts extracts concepts from one page.
	// Placeholders: %d (count), %d (page number), %s (page text).
	PromptConcepts = "concepts"

	// PromptConceptsBatch extracts concepts from several pages.
	// Placeholders: %d (concepts per page), %s (page blocks).
	PromptConceptsBatch = "concepts_batch"

	// PromptConceptsExtract is stage one of retrieval-backed concept generation.
	// Placeholders: %d (count), %s (retrieved context).
	PromptConceptsExtract = "concepts_extract"

	// PromptConceptsEnhance is stage two: unique titles, tags and emoji.
	// Placeholders: %s (raw concepts as JSON).
	PromptConceptsEnhance = "concepts_enhance"

	// PromptSummaryPage summarises one page.
	// Placeholders: %d (key points), %s (page text).
	PromptSummaryPage = "summary_page"

	// PromptSummaryDocument summarises the whole document.
	// Placeholders: %d (key points), %s (document text).
	PromptSummaryDocument = "summary_document"

	// PromptFlashcards generates flashcards.
	// Placeholders: %d (count), %s (text).
	PromptFlashcards = "flashcards"

	// PromptMCQ generates multiple-choice questions.
	// Placeholders: %d (count), %s (text).
	PromptMCQ = "mcq"

	// PromptTOCEnhance rewrites table of contents titles.
	// Placeholders: %s (items as JSON).
	PromptTOCEnhance = "toc_enhance"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
