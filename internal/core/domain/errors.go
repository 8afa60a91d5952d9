package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Generation, chat and title enhancement are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Indexing and semantic search are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Pipeline Errors.

	// ErrLoad indicates the PDF could not be fetched or parsed.
	// Fatal for the document.
	ErrLoad = errors.New("failed to load document")

	// ErrPageExtraction indicates a single page could not be read.
	ErrPageExtraction = errors.New("page extraction failed")

	// ErrEmbeddingService indicates an embedding call failed.
	// Entries stored before the failure are kept.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrGenerationParse indicates the LLM returned malformed JSON.
	ErrGenerationParse = errors.New("failed to parse generation response")

	// ErrInvalidConfig indicates a misconfigured component (e.g. chunk overlap >= chunk size).
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDuplicateInitialization indicates initialize was called again for a different
	// document while a previous initialization was still running.
	ErrDuplicateInitialization = errors.New("initialization already in progress")

	// ErrNotInitialized indicates an operation requires a loaded document.
	ErrNotInitialized = errors.New("no document loaded")

	// ErrBusy indicates a reply is already being generated.
	ErrBusy = errors.New("a reply is already being generated")

	// ErrNoContent indicates there is no text to work with.
	ErrNoContent = errors.New("no content")

	// ErrDimensionMismatch indicates an embedding has a different length
	// from the vectors already held by the store.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrVersionMismatch indicates a persisted slice was written with another schema version.
	ErrVersionMismatch = errors.New("state version mismatch")
)

// PageExtractionError reports a failure to read one page.
// It matches ErrPageExtraction with errors.Is.
type PageExtractionError struct {
	Page int
	Err  error
}

func (e *PageExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("page %d: %s", e.Page, ErrPageExtraction)
	}
	return fmt.Sprintf("page %d: %s: %v", e.Page, ErrPageExtraction, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PageExtractionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrPageExtraction.
func (e *PageExtractionError) Is(target error) bool {
	return target == ErrPageExtraction
}
