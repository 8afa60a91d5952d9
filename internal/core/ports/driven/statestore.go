package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// StateStore persists versioned slices of per-document session state.
// Each slice is encoded with its schema version and save time.
type StateStore interface {
	// Save encodes v under key, replacing any previous slice of that namespace.
	Save(ctx context.Context, key domain.SliceKey, v any) error

	// Load decodes the slice at key into v.
	// Returns domain.ErrNotFound when nothing is stored and
	// domain.ErrVersionMismatch when the stored version differs from key.Version.
	Load(ctx context.Context, key domain.SliceKey, v any) error

	// Delete removes one namespace of a document.
	Delete(ctx context.Context, documentID, namespace string) error

	// ListNamespaces returns the namespaces stored for a document.
	ListNamespaces(ctx context.Context, documentID string) ([]string, error)

	// Close releases resources.
	Close() error
}
