package httpapi

import (
	"context"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
)

type mockSession struct {
	doc      *domain.Document
	toc      domain.TOCCache
	indexErr error
	indexed  int
}

func (m *mockSession) Open(_ context.Context, _ string) (*domain.Document, error) {
	return m.doc, nil
}

func (m *mockSession) Document() (*domain.Document, error) {
	if m.doc == nil {
		return nil, domain.ErrNotInitialized
	}
	return m.doc, nil
}

func (m *mockSession) Index(_ context.Context) error {
	m.indexed++
	return m.indexErr
}

func (m *mockSession) TableOfContents() (domain.TOCCache, error) {
	if m.doc == nil {
		return domain.TOCCache{}, domain.ErrNotInitialized
	}
	return m.toc, nil
}

func (m *mockSession) Close() error { return nil }

type mockChat struct {
	status      domain.ChatStatus
	reply       *domain.ChatMessage
	err         error
	suggestions []string
	messages    []domain.ChatMessage
}

func (m *mockChat) Initialize(_ context.Context, _ string) error { return m.err }

func (m *mockChat) GenerateReply(_ context.Context, message string) (*domain.ChatMessage, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.messages = append(m.messages, domain.ChatMessage{Role: domain.RoleUser, Content: message}, *m.reply)
	return m.reply, nil
}

func (m *mockChat) GenerateSuggestions(_ context.Context) ([]string, error) {
	m.suggestions = []string{"🔁 Fresh question?"}
	return m.suggestions, m.err
}

func (m *mockChat) Messages() []domain.ChatMessage { return m.messages }
func (m *mockChat) Suggestions() []string          { return m.suggestions }
func (m *mockChat) Status() domain.ChatStatus      { return m.status }
func (m *mockChat) Err() string                    { return "" }

type mockStore struct {
	results   []domain.SimilarityResult
	err       error
	k         int
	threshold float64
	stats     domain.StoreStats
}

func (m *mockStore) AddDocument(_ context.Context, _ string, _ domain.EmbeddingMetadata) ([]string, error) {
	return nil, m.err
}

func (m *mockStore) SimilaritySearch(
	_ context.Context, _ string, k int, threshold float64,
) ([]domain.SimilarityResult, error) {
	m.k, m.threshold = k, threshold
	return m.results, m.err
}

func (m *mockStore) Cleanup() int             { return 0 }
func (m *mockStore) Remove(ids ...string) int { return len(ids) }
func (m *mockStore) Clear()                   {}
func (m *mockStore) Stats() domain.StoreStats { return m.stats }
func (m *mockStore) Len() int                 { return len(m.results) }

// generatorCall records what a generator was asked to do.
type generatorCall struct {
	method string
	pages  []int
	depth  domain.Depth
	total  int
}

type mockGenerators struct {
	mu    sync.Mutex
	calls []generatorCall
	err   error
}

func (m *mockGenerators) record(method string, pages []domain.PageContent, depth domain.Depth, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	nums := make([]int, len(pages))
	for i, p := range pages {
		nums[i] = p.PageNumber
	}
	m.calls = append(m.calls, generatorCall{method: method, pages: nums, depth: depth, total: total})
}

func (m *mockGenerators) last() generatorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return generatorCall{}
	}
	return m.calls[len(m.calls)-1]
}

func (m *mockGenerators) GenerateForPage(
	_ context.Context, page domain.PageContent, depth domain.Depth,
) ([]domain.Concept, error) {
	m.record("GenerateForPage", []domain.PageContent{page}, depth, 0)
	return []domain.Concept{{ID: "c1", PageNumber: page.PageNumber, Title: "Cell"}}, m.err
}

func (m *mockGenerators) GenerateBatch(
	_ context.Context, pages []domain.PageContent, total int,
) ([]domain.Concept, error) {
	m.record("GenerateBatch", pages, "", total)
	return []domain.Concept{{ID: "c1", PageNumber: 1, Title: "Cell"}}, m.err
}

func (m *mockGenerators) GenerateWithRAG(
	_ context.Context, pages []domain.PageContent, depth domain.Depth,
) ([]domain.Concept, error) {
	m.record("GenerateWithRAG", pages, depth, 0)
	return []domain.Concept{{ID: "c1", PageNumber: 1, Title: "Cell"}}, m.err
}

func (m *mockGenerators) Concepts() []domain.Concept       { return nil }
func (m *mockGenerators) Toggle(_ string, _, _ bool) error { return nil }

func (m *mockGenerators) SummarizePage(
	_ context.Context, page domain.PageContent, depth domain.Depth,
) (*domain.Summary, error) {
	m.record("SummarizePage", []domain.PageContent{page}, depth, 0)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Summary{ID: "s1", PageNumber: page.PageNumber, Text: "Page summary"}, nil
}

func (m *mockGenerators) SummarizeDocument(
	_ context.Context, doc *domain.Document, depth domain.Depth,
) (*domain.Summary, error) {
	m.record("SummarizeDocument", doc.Pages, depth, 0)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Summary{ID: "s0", Text: "Document summary", KeyPoints: []string{"cells"}}, nil
}

func (m *mockGenerators) Summaries() []domain.Summary { return nil }

type mockFlashcards struct{ mockGenerators }

func (m *mockFlashcards) Generate(
	_ context.Context, pages []domain.PageContent, depth domain.Depth,
) ([]domain.Flashcard, error) {
	m.record("Flashcards", pages, depth, 0)
	return []domain.Flashcard{{ID: "f1", Front: "Q", Back: "A", Difficulty: domain.DifficultyEasy}}, m.err
}

func (m *mockFlashcards) RecordAttempt(_ string, _ bool) (*domain.Flashcard, error) { return nil, nil }
func (m *mockFlashcards) Flashcards() []domain.Flashcard                            { return nil }

type mockMCQ struct{ mockGenerators }

func (m *mockMCQ) Generate(
	_ context.Context, pages []domain.PageContent, depth domain.Depth,
) ([]domain.MCQQuestion, error) {
	m.record("MCQ", pages, depth, 0)
	return []domain.MCQQuestion{{ID: "q1", Question: "Q?", Options: []string{"a", "b"}, CorrectIndex: 1}}, m.err
}

func (m *mockMCQ) RecordAnswer(_ string, _ int) (bool, error) { return false, nil }
func (m *mockMCQ) Questions() []domain.MCQQuestion            { return nil }

type mockNavigation struct {
	state   domain.NavigationState
	changes []domain.NavigationState
	settled int
}

func (m *mockNavigation) HandlePageChange(source domain.NavigationSource, page int) {
	m.state = domain.NavigationState{CurrentPage: page, ActiveSource: source, IsAutoScrolling: source != domain.SourceViewer}
	m.changes = append(m.changes, m.state)
}

func (m *mockNavigation) EndAutoScroll() {
	m.settled++
	m.state.IsAutoScrolling = false
}

func (m *mockNavigation) State() domain.NavigationState                   { return m.state }
func (m *mockNavigation) Subscribe(_ func(domain.NavigationState)) func() { return func() {} }
func (m *mockNavigation) SetPageCount(_ int)                              {}

func studyDoc() *domain.Document {
	return &domain.Document{
		ID:       "doc-1",
		Filename: "biology.pdf",
		URL:      "/books/biology.pdf",
		Metadata: domain.DocumentMetadata{PageCount: 3},
		Pages: []domain.PageContent{
			{PageNumber: 1, Text: "Cells are the unit of life.", Metadata: domain.PageMetadata{HasText: true}},
			{PageNumber: 2, Text: "", Metadata: domain.PageMetadata{HasText: false}},
			{PageNumber: 3, Text: "Mitochondria produce energy.", Metadata: domain.PageMetadata{HasText: true}},
		},
	}
}
