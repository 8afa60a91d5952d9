package mcp

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	doc *domain.Document
	toc domain.TOCCache
	err error
}

func (m *mockSessionService) Open(_ context.Context, _ string) (*domain.Document, error) {
	return m.doc, m.err
}

func (m *mockSessionService) Document() (*domain.Document, error) {
	if m.doc == nil {
		return nil, domain.ErrNotInitialized
	}
	return m.doc, m.err
}

func (m *mockSessionService) Index(_ context.Context) error {
	return m.err
}

func (m *mockSessionService) TableOfContents() (domain.TOCCache, error) {
	return m.toc, m.err
}

func (m *mockSessionService) Close() error {
	return nil
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	reply    *domain.ChatMessage
	err      error
	question string
}

func (m *mockChatService) Initialize(_ context.Context, _ string) error {
	return m.err
}

func (m *mockChatService) GenerateReply(_ context.Context, message string) (*domain.ChatMessage, error) {
	m.question = message
	return m.reply, m.err
}

func (m *mockChatService) GenerateSuggestions(_ context.Context) ([]string, error) {
	return domain.DefaultSuggestions(), m.err
}

func (m *mockChatService) Messages() []domain.ChatMessage { return nil }
func (m *mockChatService) Suggestions() []string          { return domain.DefaultSuggestions() }
func (m *mockChatService) Status() domain.ChatStatus      { return domain.ChatReady }
func (m *mockChatService) Err() string                    { return "" }

// mockEmbeddingStore is a mock implementation of driving.EmbeddingStore.
type mockEmbeddingStore struct {
	results   []domain.SimilarityResult
	err       error
	k         int
	threshold float64
}

func (m *mockEmbeddingStore) AddDocument(
	_ context.Context,
	_ string,
	_ domain.EmbeddingMetadata,
) ([]string, error) {
	return nil, m.err
}

func (m *mockEmbeddingStore) SimilaritySearch(
	_ context.Context,
	_ string,
	k int,
	threshold float64,
) ([]domain.SimilarityResult, error) {
	m.k = k
	m.threshold = threshold
	return m.results, m.err
}

func (m *mockEmbeddingStore) Cleanup() int             { return 0 }
func (m *mockEmbeddingStore) Remove(ids ...string) int { return len(ids) }
func (m *mockEmbeddingStore) Clear()                   {}
func (m *mockEmbeddingStore) Stats() domain.StoreStats { return domain.StoreStats{} }
func (m *mockEmbeddingStore) Len() int                 { return len(m.results) }

// studyDoc is a two page document with a nested table of contents.
func studyDoc() *domain.Document {
	return &domain.Document{
		ID:       "doc-1",
		Filename: "biology.pdf",
		URL:      "/books/biology.pdf",
		Metadata: domain.DocumentMetadata{PageCount: 2},
		Pages: []domain.PageContent{
			{PageNumber: 1, Text: "Cells are the unit of life.", Metadata: domain.PageMetadata{HasText: true}},
			{PageNumber: 2, Text: "Mitochondria produce energy.", Metadata: domain.PageMetadata{HasText: true}},
		},
		VectorIDs: []string{"v1", "v2"},
	}
}

func studyTOC() domain.TOCCache {
	return domain.TOCCache{
		Items: []domain.TOCItem{
			{Title: "Cells", PageNumber: 1, Level: 0, Children: []domain.TOCItem{
				{Title: "Organelles", PageNumber: 2, Level: 1},
			}},
		},
		ProcessingStatus: domain.TOCStatusComplete,
	}
}
