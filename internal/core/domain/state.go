package domain

// State namespaces. Each is versioned independently so a schema change
// only invalidates its own slice.
const (
	NamespaceDocument    = "document"
	NamespaceTOC         = "toc"
	NamespaceConcepts    = "concepts"
	NamespaceFlashcards  = "flashcards"
	NamespaceMCQ         = "mcq"
	NamespaceSummaries   = "summaries"
	NamespaceSuggestions = "suggestions"
)

// Current schema versions per namespace.
const (
	DocumentStateVersion    = 1
	TOCStateVersion         = 2
	ConceptsStateVersion    = 1
	FlashcardsStateVersion  = 1
	MCQStateVersion         = 1
	SummariesStateVersion   = 1
	SuggestionsStateVersion = 1
)

// SliceKey addresses one persisted slice of session state.
type SliceKey struct {
	DocumentID string
	Namespace  string
	Version    int
}

// NewSliceKey returns the key of namespace at its current version.
func NewSliceKey(documentID, namespace string) SliceKey {
	return SliceKey{DocumentID: documentID, Namespace: namespace, Version: StateVersion(namespace)}
}

// StateVersion returns the current schema version of a namespace, 0 if unknown.
func StateVersion(namespace string) int {
	switch namespace {
	case NamespaceDocument:
		return DocumentStateVersion
	case NamespaceTOC:
		return TOCStateVersion
	case NamespaceConcepts:
		return ConceptsStateVersion
	case NamespaceFlashcards:
		return FlashcardsStateVersion
	case NamespaceMCQ:
		return MCQStateVersion
	case NamespaceSummaries:
		return SummariesStateVersion
	case NamespaceSuggestions:
		return SuggestionsStateVersion
	default:
		return 0
	}
}
