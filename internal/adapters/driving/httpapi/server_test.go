package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fixture struct {
	session    *mockSession
	chat       *mockChat
	store      *mockStore
	gens       *mockGenerators
	flashcards *mockFlashcards
	mcq        *mockMCQ
	nav        *mockNavigation
	server     *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		session: &mockSession{doc: studyDoc(), toc: domain.TOCCache{
			Items: []domain.TOCItem{{Title: "Cells", PageNumber: 1, Children: []domain.TOCItem{
				{Title: "Energy", PageNumber: 3, Level: 1},
			}}},
			ProcessingStatus: domain.TOCStatusComplete,
		}},
		chat: &mockChat{
			status: domain.ChatReady,
			reply: &domain.ChatMessage{
				ID:      "m2",
				Role:    domain.RoleAssistant,
				Content: "🔬 Cells are the unit of life.",
				Metadata: domain.ChatMetadata{Confidence: 0.9, Sources: []domain.ChatSource{
					{PageNumber: 1, Similarity: 0.9, Excerpt: "Cells are"},
				}},
			},
			suggestions: domain.DefaultSuggestions(),
		},
		store:      &mockStore{},
		gens:       &mockGenerators{},
		flashcards: &mockFlashcards{},
		mcq:        &mockMCQ{},
		nav:        &mockNavigation{state: domain.NavigationState{CurrentPage: 1, ActiveSource: domain.SourceViewer}},
	}
	server, err := NewServer(&Ports{
		Session:    f.session,
		Chat:       f.chat,
		Store:      f.store,
		Concepts:   f.gens,
		Summaries:  f.gens,
		Flashcards: f.flashcards,
		MCQ:        f.mcq,
		Navigation: f.nav,
	}, WithDefaultDepth(domain.DepthBrief))
	require.NoError(t, err)
	f.server = server
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNewServer_RequiresSession(t *testing.T) {
	_, err := NewServer(&Ports{})
	assert.ErrorIs(t, err, ErrMissingSessionService)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()

	f.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestGetDocument(t *testing.T) {
	t.Run("open document", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodGet, "/api/document", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		doc := decode[documentResponse](t, rec)
		assert.Equal(t, "biology.pdf", doc.Filename)
		assert.Equal(t, 3, doc.PageCount)
		assert.False(t, doc.Indexed)
	})

	t.Run("no document", func(t *testing.T) {
		f := newFixture(t)
		f.session.doc = nil

		rec := f.do(t, http.MethodGet, "/api/document", nil)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), domain.ErrNotInitialized.Error())
	})
}

func TestGetPage(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		text   string
	}{
		{name: "existing page", path: "/api/pages/3", status: http.StatusOK, text: "Mitochondria produce energy."},
		{name: "empty page", path: "/api/pages/2", status: http.StatusOK, text: ""},
		{name: "out of range", path: "/api/pages/4", status: http.StatusNotFound},
		{name: "zero", path: "/api/pages/0", status: http.StatusBadRequest},
		{name: "not a number", path: "/api/pages/intro", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			rec := f.do(t, http.MethodGet, tt.path, nil)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				page := decode[pageResponse](t, rec)
				assert.Equal(t, tt.text, page.Text)
				assert.Equal(t, domain.PageAnchor(page.Page), page.Anchor)
			}
		})
	}
}

func TestGetTOC(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/toc", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	toc := decode[tocResponse](t, rec)
	assert.Equal(t, domain.TOCStatusComplete, toc.Status)
	require.Len(t, toc.Items, 1)
	assert.Equal(t, "Cells", toc.Items[0].Title)
	require.Len(t, toc.Items[0].Children, 1)
	assert.Equal(t, 3, toc.Items[0].Children[0].Page)
}

func TestPostIndex(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/index", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.session.indexed)
}

func TestPostChat(t *testing.T) {
	t.Run("answers with sources", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/api/chat", chatRequest{Message: "What is a cell?"})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		msg := decode[chatMessageResponse](t, rec)
		assert.Equal(t, "assistant", msg.Role)
		require.Len(t, msg.Sources, 1)
		assert.Equal(t, 1, msg.Sources[0].Page)
		assert.Equal(t, 0, f.session.indexed)
	})

	t.Run("indexes on first use", func(t *testing.T) {
		f := newFixture(t)
		f.chat.status = domain.ChatUninitialized

		rec := f.do(t, http.MethodPost, "/api/chat", chatRequest{Message: "hi"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, f.session.indexed)
	})

	t.Run("indexing failure", func(t *testing.T) {
		f := newFixture(t)
		f.chat.status = domain.ChatUninitialized
		f.session.indexErr = domain.ErrEmbeddingUnavailable

		rec := f.do(t, http.MethodPost, "/api/chat", chatRequest{Message: "hi"})

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("missing message", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/api/chat", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("busy", func(t *testing.T) {
		f := newFixture(t)
		f.chat.err = domain.ErrBusy

		rec := f.do(t, http.MethodPost, "/api/chat", chatRequest{Message: "hi"})

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("history is listed", func(t *testing.T) {
		f := newFixture(t)
		f.do(t, http.MethodPost, "/api/chat", chatRequest{Message: "hi"})

		rec := f.do(t, http.MethodGet, "/api/chat/messages", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"content":"hi"`)
		assert.Contains(t, rec.Body.String(), `"status":"ready"`)
	})
}

func TestGetSuggestions(t *testing.T) {
	t.Run("current suggestions", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodGet, "/api/chat/suggestions", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[suggestionsResponse](t, rec)
		assert.Equal(t, domain.DefaultSuggestions(), resp.Suggestions)
	})

	t.Run("refresh", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodGet, "/api/chat/suggestions?refresh=true", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[suggestionsResponse](t, rec)
		assert.Equal(t, []string{"🔁 Fresh question?"}, resp.Suggestions)
	})
}

func TestPostSearch(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f := newFixture(t)
		f.store.results = []domain.SimilarityResult{{
			ID: "e1", Content: "Cells", Similarity: 0.8,
			Metadata: domain.EmbeddingMetadata{PageNumber: 1}, MemberIDs: []string{"e1", "e2"},
		}}

		rec := f.do(t, http.MethodPost, "/api/search", searchRequest{Query: "cell"})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.DefaultSearchK, f.store.k)
		assert.InDelta(t, domain.DefaultSearchThreshold, f.store.threshold, 1e-9)
		assert.Contains(t, rec.Body.String(), `"members":2`)
		assert.Contains(t, rec.Body.String(), `"count":1`)
	})

	t.Run("embedding failure", func(t *testing.T) {
		f := newFixture(t)
		f.store.err = fmt.Errorf("%w: timeout", domain.ErrEmbeddingService)

		rec := f.do(t, http.MethodPost, "/api/search", searchRequest{Query: "cell", K: 2, Threshold: 0.1})

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, 2, f.store.k)
	})
}

func TestPostConcepts(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
		call   generatorCall
	}{
		{
			name:   "single page uses default depth",
			body:   conceptsRequest{generateRequest: generateRequest{Page: 3}},
			status: http.StatusOK,
			call:   generatorCall{method: "GenerateForPage", pages: []int{3}, depth: domain.DepthBrief},
		},
		{
			name:   "whole document batches pages with text",
			body:   nil,
			status: http.StatusOK,
			call:   generatorCall{method: "GenerateBatch", pages: []int{1, 3}, total: 4},
		},
		{
			name:   "retrieval mode",
			body:   conceptsRequest{generateRequest: generateRequest{Depth: "deep"}, Mode: conceptModeRAG},
			status: http.StatusOK,
			call:   generatorCall{method: "GenerateWithRAG", pages: []int{1, 3}, depth: domain.DepthDeep},
		},
		{
			name:   "explicit batch total",
			body:   conceptsRequest{Mode: conceptModeBatch, Total: 9},
			status: http.StatusOK,
			call:   generatorCall{method: "GenerateBatch", pages: []int{1, 3}, total: 9},
		},
		{
			name:   "unknown depth",
			body:   conceptsRequest{generateRequest: generateRequest{Depth: "extreme"}},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown mode",
			body:   conceptsRequest{Mode: "magic"},
			status: http.StatusBadRequest,
		},
		{
			name:   "page out of range",
			body:   conceptsRequest{generateRequest: generateRequest{Page: 7}},
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			rec := f.do(t, http.MethodPost, "/api/concepts", tt.body)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.call, f.gens.last())
				assert.Contains(t, rec.Body.String(), `"title":"Cell"`)
			}
		})
	}
}

func TestPostConcepts_LLMUnavailable(t *testing.T) {
	f := newFixture(t)
	f.gens.err = domain.ErrLLMUnavailable

	rec := f.do(t, http.MethodPost, "/api/concepts", conceptsRequest{generateRequest: generateRequest{Page: 1}})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPostSummary(t *testing.T) {
	t.Run("document", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/api/summary", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "SummarizeDocument", f.gens.last().method)
		assert.Equal(t, "Document summary", decode[summaryResponse](t, rec).Text)
	})

	t.Run("page", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/api/summary", generateRequest{Page: 1, Depth: "standard"})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, generatorCall{method: "SummarizePage", pages: []int{1}, depth: domain.DepthStandard}, f.gens.last())
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/api/summary", `{"page":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("parse failure", func(t *testing.T) {
		f := newFixture(t)
		f.gens.err = fmt.Errorf("%w: not JSON", domain.ErrGenerationParse)

		rec := f.do(t, http.MethodPost, "/api/summary", generateRequest{Page: 1})

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestPostFlashcardsAndMCQ(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/flashcards", generateRequest{Page: 3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, generatorCall{method: "Flashcards", pages: []int{3}, depth: domain.DepthBrief}, f.flashcards.last())
	assert.Contains(t, rec.Body.String(), `"difficulty":"easy"`)

	rec = f.do(t, http.MethodPost, "/api/mcq", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, generatorCall{method: "MCQ", pages: []int{1, 3}, depth: domain.DepthBrief}, f.mcq.last())
	assert.Contains(t, rec.Body.String(), `"correctIndex":1`)
}

func TestNavigation(t *testing.T) {
	t.Run("state", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodGet, "/api/navigation", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		nav := decode[navigationResponse](t, rec)
		assert.Equal(t, 1, nav.Page)
		assert.Equal(t, "page-1", nav.Anchor)
	})

	t.Run("page change", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/api/navigation", navigationRequest{Source: "toc", Page: 3})

		require.Equal(t, http.StatusOK, rec.Code)
		nav := decode[navigationResponse](t, rec)
		assert.Equal(t, 3, nav.Page)
		assert.Equal(t, "toc", nav.ActiveSource)
		assert.True(t, nav.IsAutoScrolling)

		rec = f.do(t, http.MethodPost, "/api/navigation/settled", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decode[navigationResponse](t, rec).IsAutoScrolling)
		assert.Equal(t, 1, f.nav.settled)
	})

	t.Run("rejects unknown source", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/api/navigation", navigationRequest{Source: "minimap", Page: 2})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, f.nav.changes)
	})

	t.Run("rejects missing page", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/api/navigation", `{"source":"controls"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetStats(t *testing.T) {
	f := newFixture(t)
	f.store.results = []domain.SimilarityResult{{ID: "a"}, {ID: "b"}}
	f.store.stats = domain.StoreStats{TotalDocuments: 2}

	rec := f.do(t, http.MethodGet, "/api/stats", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[statsResponse](t, rec)
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 2, stats.TotalDocuments)
	assert.Nil(t, stats.Oldest)
	assert.Equal(t, "ready", stats.ChatStatus)
}

func TestUnwiredPorts(t *testing.T) {
	server, err := NewServer(&Ports{Session: &mockSession{doc: studyDoc()}})
	require.NoError(t, err)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/chat"},
		{http.MethodPost, "/api/search"},
		{http.MethodPost, "/api/concepts"},
		{http.MethodPost, "/api/summary"},
		{http.MethodPost, "/api/flashcards"},
		{http.MethodPost, "/api/mcq"},
		{http.MethodGet, "/api/navigation"},
	} {
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, route.path)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		{domain.ErrInvalidConfig, http.StatusBadRequest},
		{domain.ErrNotInitialized, http.StatusConflict},
		{domain.ErrDuplicateInitialization, http.StatusConflict},
		{domain.ErrNoContent, http.StatusUnprocessableEntity},
		{domain.ErrEmbeddingUnavailable, http.StatusServiceUnavailable},
		{domain.ErrGenerationParse, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, statusFor(tt.err))
		})
	}
}

func TestSelectPages(t *testing.T) {
	doc := studyDoc()

	pages, err := selectPages(doc, 0)
	require.NoError(t, err)
	assert.Len(t, pages, 2)

	_, err = selectPages(doc, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = selectPages(&domain.Document{Filename: "blank.pdf"}, 0)
	assert.ErrorIs(t, err, domain.ErrNoContent)
}
