package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

func sessionPDF() *fakePDF {
	return &fakePDF{
		fingerprint: "session-bytes",
		pages: []string{
			"Cells are the basic unit of life.",
			"Mitochondria produce energy.",
			"",
		},
		outline: []domain.OutlineNode{
			{Title: "Cells", PageNumber: 1},
			{Title: "Energy", PageNumber: 2},
		},
	}
}

func newTestSession(state driven.StateStore, clock *fakeClock, withEmbedder bool) *Session {
	cfg := SessionConfig{
		Loader:   &fakeLoader{pdf: sessionPDF()},
		Splitter: wordSplitter{},
		State:    state,
		Settings: domain.DefaultAppSettings(),
		Clock:    clock,
	}
	if withEmbedder {
		cfg.Embedder = newMockEmbedder()
	}
	return NewSession(cfg)
}

func TestSession_Open(t *testing.T) {
	state := memory.NewStateStore()
	session := newTestSession(state, newFakeClock(), false)
	ctx := context.Background()

	_, err := session.Document()
	assert.ErrorIs(t, err, domain.ErrNotInitialized)

	doc, err := session.Open(ctx, "/books/biology.pdf")
	require.NoError(t, err)
	defer session.Close()

	assert.Equal(t, DocumentID("session-bytes"), doc.ID)
	assert.Equal(t, "biology.pdf", doc.Filename)
	assert.Equal(t, []string{"Cells", "Energy"}, titles(doc.TableOfContents))

	current, err := session.Document()
	require.NoError(t, err)
	assert.Same(t, doc, current)

	toc, err := session.TableOfContents()
	require.NoError(t, err)
	assert.Equal(t, domain.TOCStatusComplete, toc.ProcessingStatus)

	session.Navigation.HandlePageChange(domain.SourceControls, 99)
	assert.Equal(t, 3, session.Navigation.State().CurrentPage)

	namespaces, err := state.ListNamespaces(ctx, doc.ID)
	require.NoError(t, err)
	assert.Contains(t, namespaces, domain.NamespaceDocument)
	assert.Contains(t, namespaces, domain.NamespaceTOC)
}

func TestSession_ReopenKeepsState(t *testing.T) {
	state := memory.NewStateStore()
	clock := newFakeClock()
	ctx := context.Background()

	first := newTestSession(state, clock, false)
	doc, err := first.Open(ctx, "biology.pdf")
	require.NoError(t, err)
	created := doc.CreatedAt
	require.NoError(t, first.Close())

	card := domain.Flashcard{ID: "card-1", PageNumber: 1, Front: "Unit of life?", Back: "The cell"}
	require.NoError(t, state.Save(ctx, domain.NewSliceKey(doc.ID, domain.NamespaceFlashcards), []domain.Flashcard{card}))

	clock.Advance(48 * time.Hour)
	second := newTestSession(state, clock, false)
	reopened, err := second.Open(ctx, "biology.pdf")
	require.NoError(t, err)
	defer second.Close()

	assert.True(t, created.Equal(reopened.CreatedAt), "creation time survives reopening")
	require.Len(t, second.Flashcards.Flashcards(), 1)
	assert.Equal(t, "card-1", second.Flashcards.Flashcards()[0].ID)
}

func TestSession_Index(t *testing.T) {
	session := newTestSession(memory.NewStateStore(), newFakeClock(), true)
	ctx := context.Background()

	assert.ErrorIs(t, session.Index(ctx), domain.ErrNotInitialized)

	_, err := session.Open(ctx, "biology.pdf")
	require.NoError(t, err)
	require.NoError(t, session.Index(ctx))

	doc, err := session.Document()
	require.NoError(t, err)
	assert.Len(t, doc.VectorIDs, 2)
	assert.Equal(t, 2, session.Store.Len())
	assert.Equal(t, domain.ChatReady, session.Chat.Status())

	require.NoError(t, session.Close())
	assert.Zero(t, session.Store.Len())
}

func TestSession_IndexWithoutEmbedder(t *testing.T) {
	session := newTestSession(nil, newFakeClock(), false)
	ctx := context.Background()

	_, err := session.Open(ctx, "biology.pdf")
	require.NoError(t, err)
	assert.ErrorIs(t, session.Index(ctx), domain.ErrEmbeddingUnavailable)
	assert.Nil(t, session.Store)
	require.NoError(t, session.Close())
}

func TestSession_OpenLoadError(t *testing.T) {
	session := NewSession(SessionConfig{
		Loader:   &fakeLoader{err: assert.AnError},
		Settings: domain.DefaultAppSettings(),
	})

	_, err := session.Open(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, domain.ErrLoad)
	_, err = session.Document()
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}
