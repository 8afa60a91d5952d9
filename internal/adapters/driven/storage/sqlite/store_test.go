package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "folio-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "state.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	nestedDir := filepath.Join(t.TempDir(), "nested", "path", "to", "db")
	store, err := NewStore(nestedDir)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, nestedDir)
}

func TestNewStore_Migrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)

	var tableExists int
	err := store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='state_slices'",
	).Scan(&tableExists)
	require.NoError(t, err)
	assert.Equal(t, 1, tableExists)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	key := domain.NewSliceKey("doc", domain.NamespaceSuggestions)

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, key, []string{"why?"}))
	require.NoError(t, store.Close())

	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var got []string
	require.NoError(t, store.Load(ctx, key, &got))
	assert.Equal(t, []string{"why?"}, got)
}

func TestStore_SaveLoad(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	cache := domain.TOCCache{
		Items: []domain.TOCItem{
			{Title: "1. Intro", PageNumber: 1, Children: []domain.TOCItem{{Title: "1.1. Scope", PageNumber: 2, Level: 1}}},
		},
		ProcessingStatus: domain.TOCStatusComplete,
	}
	key := domain.NewSliceKey("doc-1", domain.NamespaceTOC)
	require.NoError(t, store.Save(ctx, key, cache))

	var got domain.TOCCache
	require.NoError(t, store.Load(ctx, key, &got))
	assert.Equal(t, cache, got)
}

func TestStore_SaveReplaces(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	key := domain.NewSliceKey("doc", domain.NamespaceConcepts)

	require.NoError(t, store.Save(ctx, key, []domain.Concept{{ID: "a"}}))
	require.NoError(t, store.Save(ctx, key, []domain.Concept{{ID: "b"}, {ID: "c"}}))

	var got []domain.Concept
	require.NoError(t, store.Load(ctx, key, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
}

func TestStore_SavedAtUsesClock(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	store.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	require.NoError(t, store.Save(ctx, domain.NewSliceKey("doc", domain.NamespaceMCQ), []int{}))

	var savedAt string
	require.NoError(t, store.db.QueryRow("SELECT saved_at FROM state_slices").Scan(&savedAt))
	assert.Equal(t, "2026-03-04T05:06:07Z", savedAt)
}

func TestStore_LoadErrors(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	var v []string
	err := store.Load(ctx, domain.NewSliceKey("missing", domain.NamespaceMCQ), &v)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	stale := domain.SliceKey{DocumentID: "doc", Namespace: domain.NamespaceTOC, Version: 1}
	require.NoError(t, store.Save(ctx, stale, domain.TOCCache{}))
	var cache domain.TOCCache
	err = store.Load(ctx, domain.NewSliceKey("doc", domain.NamespaceTOC), &cache)
	assert.True(t, errors.Is(err, domain.ErrVersionMismatch))
}

func TestStore_DeleteAndList(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for _, ns := range []string{domain.NamespaceSummaries, domain.NamespaceFlashcards, domain.NamespaceDocument} {
		require.NoError(t, store.Save(ctx, domain.NewSliceKey("doc", ns), map[string]int{}))
	}
	require.NoError(t, store.Save(ctx, domain.NewSliceKey("other", domain.NamespaceMCQ), []int{}))

	names, err := store.ListNamespaces(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, []string{"document", "flashcards", "summaries"}, names)

	require.NoError(t, store.Delete(ctx, "doc", domain.NamespaceFlashcards))
	names, err = store.ListNamespaces(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, []string{"document", "summaries"}, names)

	names, err = store.ListNamespaces(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStore_Close(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}
