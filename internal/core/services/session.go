package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure Session implements the interface.
var _ driving.SessionService = (*Session)(nil)

// SessionConfig holds the collaborators of a session. Embedder, LLM, State,
// Prompts and Scroller are optional; features that need a missing one
// report domain.ErrEmbeddingUnavailable or domain.ErrLLMUnavailable.
type SessionConfig struct {
	Loader   driven.PDFLoader
	Cleaner  driven.PostProcessorPipeline
	Splitter driven.TextSplitter
	Embedder driven.EmbeddingService
	LLM      driven.LLMService
	State    driven.StateStore
	Prompts  driven.PromptStore
	Scroller driven.Scroller
	Settings domain.AppSettings
	Clock    driven.Clock
}

// documentRecord is the persisted document slice. Page text is not stored;
// it is cheap to extract again and the PDF is needed for rendering anyway.
type documentRecord struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	PageCount int       `json:"pageCount"`
}

// Session is one viewing session: the current document and every service
// working on it, sharing a single embedding store.
type Session struct {
	settings domain.AppSettings
	state    driven.StateStore

	Extractor  *ExtractionService
	Store      *EmbeddingStore
	Chat       *ChatService
	TOC        *TOCService
	Concepts   *ConceptGenerator
	Summaries  *SummaryGenerator
	Flashcards *FlashcardGenerator
	MCQ        *MCQGenerator
	Navigation *NavigationCoordinator

	mu      sync.RWMutex
	doc     *domain.Document
	toc     domain.TOCCache
	stopJan context.CancelFunc
}

// NewSession wires the services of a session.
func NewSession(cfg SessionConfig) *Session {
	clock := cfg.Clock
	if clock == nil {
		clock = systemClock{}
	}
	settings := cfg.Settings
	gen := settings.Generation

	extractor := NewExtractionService(cfg.Loader, cfg.Cleaner, settings.Index.PageBatchSize)
	extractor.SetClock(clock)

	var store *EmbeddingStore
	var storePort driving.EmbeddingStore
	if cfg.Embedder != nil {
		store = NewEmbeddingStore(cfg.Embedder, cfg.Splitter,
			WithTTL(settings.Index.TTL),
			WithChunkOptions(settings.Index.ChunkOptions()),
			WithStoreClock(clock),
		)
		storePort = store
	}

	s := &Session{
		settings:   settings,
		state:      cfg.State,
		Extractor:  extractor,
		Store:      store,
		Chat:       NewChatService(cfg.LLM, storePort, extractor, cfg.State, settings.Index.PageBatchSize),
		TOC:        NewTOCService(cfg.LLM, cfg.State, gen),
		Concepts:   NewConceptGenerator(cfg.LLM, storePort, cfg.State, gen),
		Summaries:  NewSummaryGenerator(cfg.LLM, cfg.State, gen),
		Flashcards: NewFlashcardGenerator(cfg.LLM, cfg.State, gen),
		MCQ:        NewMCQGenerator(cfg.LLM, cfg.State, gen),
		Navigation: NewNavigationCoordinator(cfg.Scroller, WithNavigationClock(clock)),
	}
	s.Chat.SetClock(clock)
	if cfg.Prompts != nil {
		s.SetPromptStore(cfg.Prompts)
	}
	return s
}

// SetPromptStore hands the prompt store to every generating service.
func (s *Session) SetPromptStore(store driven.PromptStore) {
	for _, aware := range []driven.PromptStoreAware{s.Chat, s.TOC, s.Concepts, s.Summaries, s.Flashcards, s.MCQ} {
		aware.SetPromptStore(store)
	}
}

// Open extracts the document at url, builds its table of contents and
// restores the saved learning aids of the same file.
func (s *Session) Open(ctx context.Context, url string) (*domain.Document, error) {
	doc, src, err := s.Extractor.BuildDocument(ctx, url)
	if err != nil {
		return nil, err
	}
	s.restoreRecord(ctx, doc)

	cache, err := s.TOC.Build(ctx, doc, src)
	if err != nil {
		logger.Warn("table of contents: %v", err)
	}
	doc.TableOfContents = cache.Best()

	for name, bind := range map[string]func(context.Context, string) error{
		domain.NamespaceConcepts:   s.Concepts.Bind,
		domain.NamespaceSummaries:  s.Summaries.Bind,
		domain.NamespaceFlashcards: s.Flashcards.Bind,
		domain.NamespaceMCQ:        s.MCQ.Bind,
	} {
		if err := bind(ctx, doc.ID); err != nil {
			logger.Warn("restoring %s: %v", name, err)
		}
	}
	s.Navigation.SetPageCount(doc.Metadata.PageCount)
	s.saveRecord(ctx, doc)

	s.mu.Lock()
	s.doc = doc
	s.toc = cache
	s.mu.Unlock()
	s.startJanitor()
	return doc, nil
}

// restoreRecord keeps the first processing time of a file across runs.
func (s *Session) restoreRecord(ctx context.Context, doc *domain.Document) {
	if s.state == nil {
		return
	}
	var rec documentRecord
	err := s.state.Load(ctx, domain.NewSliceKey(doc.ID, domain.NamespaceDocument), &rec)
	switch {
	case err == nil:
		if !rec.CreatedAt.IsZero() {
			doc.CreatedAt = rec.CreatedAt
		}
	case errors.Is(err, domain.ErrVersionMismatch):
		_ = s.state.Delete(ctx, doc.ID, domain.NamespaceDocument)
	case !errors.Is(err, domain.ErrNotFound):
		logger.Warn("loading document record: %v", err)
	}
}

func (s *Session) saveRecord(ctx context.Context, doc *domain.Document) {
	if s.state == nil {
		return
	}
	rec := documentRecord{
		ID:        doc.ID,
		Filename:  doc.Filename,
		URL:       doc.URL,
		CreatedAt: doc.CreatedAt,
		PageCount: doc.Metadata.PageCount,
	}
	if err := s.state.Save(ctx, domain.NewSliceKey(doc.ID, domain.NamespaceDocument), rec); err != nil {
		logger.Warn("saving document record: %v", err)
	}
}

// Index embeds the current document for chat and retrieval-backed concepts.
func (s *Session) Index(ctx context.Context) error {
	doc, err := s.Document()
	if err != nil {
		return err
	}
	if err := s.Chat.InitializeDocument(ctx, doc); err != nil {
		return err
	}

	indexed := *doc
	indexed.VectorIDs = s.Chat.VectorIDs()
	s.mu.Lock()
	s.doc = &indexed
	s.mu.Unlock()
	return nil
}

// Document returns the current document or domain.ErrNotInitialized.
func (s *Session) Document() (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, domain.ErrNotInitialized
	}
	return s.doc, nil
}

// TableOfContents returns the cached table of contents of the current document.
func (s *Session) TableOfContents() (domain.TOCCache, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return domain.TOCCache{}, domain.ErrNotInitialized
	}
	return s.toc, nil
}

// Settings returns the settings the session was created with.
func (s *Session) Settings() domain.AppSettings {
	return s.settings
}

func (s *Session) startJanitor() {
	if s.Store == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopJan != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.stopJan = cancel
	s.Store.StartJanitor(ctx, s.settings.Index.SweepInterval)
}

// Close stops the expiry sweep and drops the semantic memory.
// The state store belongs to the caller and is left open.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.stopJan != nil {
		s.stopJan()
		s.stopJan = nil
	}
	s.mu.Unlock()
	if s.Store != nil {
		s.Store.Clear()
	}
	return nil
}
