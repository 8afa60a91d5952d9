// Package domain defines the core business entities for folio.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: a loaded PDF with per-page text and a table of contents
//   - Chunk: a bounded slice of text prepared for embedding
//   - EmbeddingEntry: a stored vector with the chunk it was computed from
//   - TOCItem: one node of the hierarchical table of contents
//   - NavigationState: the shared "current page" record of a reading session
//   - Concept, Summary, Flashcard, MCQQuestion: generated learning aids
//   - ChatMessage: one turn of the document chat
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
