package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/adapters/driven/storage/envelope"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore is an in-memory implementation of driven.StateStore.
// Slices are kept encoded so loads behave exactly like the SQLite store.
type StateStore struct {
	mu     sync.RWMutex
	slices map[string]map[string][]byte // documentID -> namespace -> envelope
	now    func() time.Time
}

// NewStateStore creates a new in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{
		slices: make(map[string]map[string][]byte),
		now:    time.Now,
	}
}

// Save encodes v under key.
func (s *StateStore) Save(_ context.Context, key domain.SliceKey, v any) error {
	raw, err := envelope.Encode(key.Version, s.now(), v)
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", key.DocumentID, key.Namespace, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.slices[key.DocumentID]
	if !ok {
		ns = make(map[string][]byte)
		s.slices[key.DocumentID] = ns
	}
	ns[key.Namespace] = raw
	return nil
}

// Load decodes the slice at key into v.
func (s *StateStore) Load(_ context.Context, key domain.SliceKey, v any) error {
	s.mu.RLock()
	raw, ok := s.slices[key.DocumentID][key.Namespace]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, key.DocumentID, key.Namespace)
	}
	if _, err := envelope.Decode(raw, key.Version, v); err != nil {
		return fmt.Errorf("load %s/%s: %w", key.DocumentID, key.Namespace, err)
	}
	return nil
}

// Delete removes one namespace of a document.
func (s *StateStore) Delete(_ context.Context, documentID, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slices[documentID], namespace)
	if len(s.slices[documentID]) == 0 {
		delete(s.slices, documentID)
	}
	return nil
}

// ListNamespaces returns the namespaces stored for a document, sorted.
func (s *StateStore) ListNamespaces(_ context.Context, documentID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.slices[documentID]))
	for ns := range s.slices[documentID] {
		names = append(names, ns)
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op.
func (s *StateStore) Close() error {
	return nil
}
