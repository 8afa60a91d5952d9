package cli

import (
	"context"
	"errors"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error

	embeddingSet bool
	llmSet       bool
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	m.embeddingSet = true
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	m.llmSet = true
	return nil
}

func (m *mockSettingsService) SetDepth(depth domain.Depth) error {
	m.settings.Generation.Depth = depth
	return nil
}

func (m *mockSettingsService) Validate() error                 { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return m.pingErr }
func (m *mockSettingsService) ValidateLLMConfig() error        { return m.pingErr }

// mockSession implements driving.SessionService for testing.
type mockSession struct {
	doc      *domain.Document
	openErr  error
	indexErr error
	toc      domain.TOCCache
	opened   []string
	indexed  int
}

func (m *mockSession) Open(_ context.Context, url string) (*domain.Document, error) {
	m.opened = append(m.opened, url)
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.doc, nil
}

func (m *mockSession) Document() (*domain.Document, error) {
	if m.doc == nil {
		return nil, domain.ErrNotInitialized
	}
	return m.doc, nil
}

func (m *mockSession) Index(context.Context) error {
	m.indexed++
	return m.indexErr
}

func (m *mockSession) TableOfContents() (domain.TOCCache, error) { return m.toc, nil }
func (m *mockSession) Close() error                              { return nil }

// mockChat implements driving.ChatService for testing.
type mockChat struct {
	reply    *domain.ChatMessage
	err      error
	asked    []string
	suggests []string
}

func (m *mockChat) Initialize(context.Context, string) error { return nil }

func (m *mockChat) GenerateReply(_ context.Context, message string) (*domain.ChatMessage, error) {
	m.asked = append(m.asked, message)
	return m.reply, m.err
}

func (m *mockChat) GenerateSuggestions(context.Context) ([]string, error) { return m.suggests, nil }
func (m *mockChat) Messages() []domain.ChatMessage                        { return nil }
func (m *mockChat) Suggestions() []string                                 { return m.suggests }
func (m *mockChat) Status() domain.ChatStatus                             { return domain.ChatReady }
func (m *mockChat) Err() string                                           { return "" }

// mockStore implements driving.EmbeddingStore for testing.
type mockStore struct {
	results   []domain.SimilarityResult
	k         int
	threshold float64
}

func (m *mockStore) AddDocument(context.Context, string, domain.EmbeddingMetadata) ([]string, error) {
	return nil, nil
}

func (m *mockStore) SimilaritySearch(_ context.Context, _ string, k int, threshold float64) ([]domain.SimilarityResult, error) {
	m.k = k
	m.threshold = threshold
	return m.results, nil
}

func (m *mockStore) Cleanup() int             { return 0 }
func (m *mockStore) Remove(ids ...string) int { return len(ids) }
func (m *mockStore) Clear()                   {}
func (m *mockStore) Stats() domain.StoreStats { return domain.StoreStats{} }
func (m *mockStore) Len() int                 { return 7 }

// mockConcepts implements driving.ConceptService for testing.
type mockConcepts struct {
	calls    []string
	total    int
	depth    domain.Depth
	pages    int
	concepts []domain.Concept
}

func (m *mockConcepts) GenerateForPage(_ context.Context, page domain.PageContent, depth domain.Depth) ([]domain.Concept, error) {
	m.calls = append(m.calls, "page")
	m.depth = depth
	m.pages = 1
	return m.concepts, nil
}

func (m *mockConcepts) GenerateBatch(_ context.Context, pages []domain.PageContent, total int) ([]domain.Concept, error) {
	m.calls = append(m.calls, "batch")
	m.total = total
	m.pages = len(pages)
	return m.concepts, nil
}

func (m *mockConcepts) GenerateWithRAG(_ context.Context, pages []domain.PageContent, depth domain.Depth) ([]domain.Concept, error) {
	m.calls = append(m.calls, "rag")
	m.depth = depth
	m.pages = len(pages)
	return m.concepts, nil
}

func (m *mockConcepts) Concepts() []domain.Concept      { return m.concepts }
func (m *mockConcepts) Toggle(string, bool, bool) error { return nil }

// mockSummaries implements driving.SummaryService for testing.
type mockSummaries struct {
	depth domain.Depth
	page  int
}

func (m *mockSummaries) SummarizePage(_ context.Context, page domain.PageContent, depth domain.Depth) (*domain.Summary, error) {
	m.depth = depth
	m.page = page.PageNumber
	return &domain.Summary{PageNumber: page.PageNumber, Text: "Page summary.", KeyPoints: []string{"one"}}, nil
}

func (m *mockSummaries) SummarizeDocument(_ context.Context, _ *domain.Document, depth domain.Depth) (*domain.Summary, error) {
	m.depth = depth
	return &domain.Summary{Text: "Document summary.", KeyPoints: []string{"first", "second"}}, nil
}

func (m *mockSummaries) Summaries() []domain.Summary { return nil }

// mockFlashcards implements driving.FlashcardService for testing.
type mockFlashcards struct {
	cards    []domain.Flashcard
	attempts map[string]bool
}

func (m *mockFlashcards) Generate(context.Context, []domain.PageContent, domain.Depth) ([]domain.Flashcard, error) {
	return m.cards, nil
}

func (m *mockFlashcards) RecordAttempt(id string, completed bool) (*domain.Flashcard, error) {
	if m.attempts == nil {
		m.attempts = make(map[string]bool)
	}
	m.attempts[id] = completed
	for i := range m.cards {
		if m.cards[i].ID == id {
			return &m.cards[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockFlashcards) Flashcards() []domain.Flashcard { return m.cards }

// mockMCQ implements driving.MCQService for testing.
type mockMCQ struct {
	questions []domain.MCQQuestion
	answers   map[string]int
}

func (m *mockMCQ) Generate(context.Context, []domain.PageContent, domain.Depth) ([]domain.MCQQuestion, error) {
	return m.questions, nil
}

func (m *mockMCQ) RecordAnswer(id string, choice int) (bool, error) {
	if m.answers == nil {
		m.answers = make(map[string]int)
	}
	m.answers[id] = choice
	for _, q := range m.questions {
		if q.ID == id {
			return q.IsCorrect(choice), nil
		}
	}
	return false, domain.ErrNotFound
}

func (m *mockMCQ) Questions() []domain.MCQQuestion { return m.questions }

// mockNavigation implements driving.NavigationCoordinator for testing.
type mockNavigation struct {
	state domain.NavigationState
}

func (m *mockNavigation) HandlePageChange(source domain.NavigationSource, page int) {
	m.state = domain.NavigationState{CurrentPage: page, ActiveSource: source}
}

func (m *mockNavigation) EndAutoScroll()                                {}
func (m *mockNavigation) State() domain.NavigationState                 { return m.state }
func (m *mockNavigation) Subscribe(func(domain.NavigationState)) func() { return func() {} }
func (m *mockNavigation) SetPageCount(int)                              {}

// testDocument has text on pages 1 and 3 only.
func testDocument() *domain.Document {
	return &domain.Document{
		ID:       "doc-1",
		Filename: "book.pdf",
		URL:      "book.pdf",
		Metadata: domain.DocumentMetadata{PageCount: 3},
		Pages: []domain.PageContent{
			{PageNumber: 1, Text: "Introduction to graphs.", Metadata: domain.PageMetadata{HasText: true}},
			{PageNumber: 2, Text: ""},
			{PageNumber: 3, Text: "Shortest paths.", Metadata: domain.PageMetadata{HasText: true}},
		},
	}
}

// testEnv holds the mocks installed by setupTestServices.
type testEnv struct {
	settings   *mockSettingsService
	session    *mockSession
	chat       *mockChat
	store      *mockStore
	concepts   *mockConcepts
	summaries  *mockSummaries
	flashcards *mockFlashcards
	mcq        *mockMCQ
	navigation *mockNavigation
	released   int
	noStore    bool
}

var errTestWorkspace = errors.New("workspace unavailable")

// env is the environment of the running test.
var env *testEnv

// setupTestServices installs mock services and returns a cleanup that
// restores the previous services and resets command flags.
func setupTestServices() func() {
	oldSettings := settingsService
	oldFactory := newWorkspace

	env = &testEnv{
		settings: newMockSettingsService(),
		session: &mockSession{
			doc: testDocument(),
			toc: domain.TOCCache{Items: []domain.TOCItem{
				{Title: "Introduction", PageNumber: 1, Level: 1, Children: []domain.TOCItem{
					{Title: "Graphs", PageNumber: 1, Level: 2},
				}},
				{Title: "Paths", PageNumber: 3, Level: 1},
			}},
		},
		chat: &mockChat{
			reply: &domain.ChatMessage{
				Role:    domain.RoleAssistant,
				Content: "Graphs have vertices and edges.",
				Metadata: domain.ChatMetadata{
					Confidence: 0.9,
					Sources:    []domain.ChatSource{{PageNumber: 1, Similarity: 0.9}},
				},
			},
			suggests: []string{"What is a graph?"},
		},
		store: &mockStore{results: []domain.SimilarityResult{
			{ID: "e1", Content: "Introduction to\ngraphs.", Similarity: 0.82,
				Metadata: domain.EmbeddingMetadata{PageNumber: 1}},
		}},
		concepts: &mockConcepts{concepts: []domain.Concept{
			{ID: "c1", PageNumber: 1, Title: "Graph", Description: "Vertices and edges.", Importance: 8, Tags: []string{"basics"}},
		}},
		summaries: &mockSummaries{},
		flashcards: &mockFlashcards{cards: []domain.Flashcard{
			{ID: "f1", PageNumber: 1, Front: "What is a graph?", Back: "Vertices and edges.", Difficulty: domain.DifficultyEasy},
			{ID: "f2", PageNumber: 3, Front: "What is Dijkstra?", Back: "A shortest path algorithm.", Difficulty: domain.DifficultyMedium},
		}},
		mcq: &mockMCQ{questions: []domain.MCQQuestion{
			{ID: "q1", PageNumber: 1, Question: "A graph has?", Options: []string{"Rows", "Vertices", "Pixels", "Keys"},
				CorrectIndex: 1, Explanation: "Graphs are vertices and edges.", Difficulty: domain.DifficultyEasy},
			{ID: "q2", PageNumber: 3, Question: "Dijkstra finds?", Options: []string{"Shortest paths", "Cycles"},
				CorrectIndex: 0, Difficulty: domain.DifficultyMedium},
		}},
		navigation: &mockNavigation{},
	}

	e := env
	SetServices(e.settings, func(context.Context) (*Workspace, func(), error) {
		if e.session == nil {
			return nil, nil, errTestWorkspace
		}
		ws := &Workspace{
			Session:    e.session,
			Chat:       e.chat,
			Concepts:   e.concepts,
			Summaries:  e.summaries,
			Flashcards: e.flashcards,
			MCQ:        e.mcq,
			Navigation: e.navigation,
			Depth:      domain.DepthStandard,
		}
		if !e.noStore {
			ws.Store = e.store
		}
		return ws, func() { e.released++ }, nil
	})

	return func() {
		settingsService = oldSettings
		newWorkspace = oldFactory
		resetFlags()
		rootCmd.SetIn(nil)
		env = nil
	}
}

// resetFlags restores every bound flag to its default.
func resetFlags() {
	verbose = false
	configDir = ""
	askJSON = false
	searchLimit = 10
	searchThreshold = domain.DefaultSearchThreshold
	searchJSON = false
	tocJSON = false
	tocRaw = false
	conceptsPage, conceptsDepth, conceptsTotal, conceptsRAG, conceptsJSON = 0, "", 0, false, false
	summaryPage, summaryDepth, summaryJSON = 0, "", false
	flashcardsPage, flashcardsDepth, flashcardsReview, flashcardsJSON = 0, "", false, false
	quizPage, quizDepth, quizJSON = 0, "", false
	serveAddr = "127.0.0.1:8080"
}
