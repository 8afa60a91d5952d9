package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// Retrieval and context parameters for chat replies.
const (
	chatSearchK         = 8
	chatSearchThreshold = 0.75
	chatContextResults  = 5
	chatHistoryMessages = 4
	chatSuggestionCount = 4
	chatExcerptRunes    = 1500
	chatSourceRunes     = 160
	chatTemperature     = 0.7
	defaultReplyEmoji   = "💡"
)

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// PageSourceID is the embedding DocumentID of one page, so search results
// combine per page rather than per file.
func PageSourceID(documentID string, page int) string {
	return fmt.Sprintf("%s:p%d", documentID, page)
}

// ChatService is the retrieval-augmented conversation over one document.
//
// State machine: uninitialized -> initializing -> ready <-> generating,
// with error reachable from initializing and generating. A document that
// was indexed before an error can still be chatted with.
type ChatService struct {
	llm       driven.LLMService
	store     driving.EmbeddingStore
	extractor driving.ExtractionService
	state     driven.StateStore
	prompts   driven.PromptStore
	clock     driven.Clock
	batchSize int

	inflight singleflight.Group

	mu          sync.RWMutex
	status      domain.ChatStatus
	errMsg      string
	location    string
	doc         *domain.Document
	vectorIDs   []string
	messages    []domain.ChatMessage
	suggestions []string
}

// NewChatService creates a chat service. llm may be nil, in which case
// replies fail with domain.ErrLLMUnavailable and suggestions stay at defaults.
func NewChatService(
	llm driven.LLMService,
	store driving.EmbeddingStore,
	extractor driving.ExtractionService,
	state driven.StateStore,
	batchSize int,
) *ChatService {
	if batchSize <= 0 {
		batchSize = domain.DefaultAppSettings().Index.PageBatchSize
	}
	return &ChatService{
		llm:         llm,
		store:       store,
		extractor:   extractor,
		state:       state,
		clock:       systemClock{},
		batchSize:   batchSize,
		status:      domain.ChatUninitialized,
		suggestions: domain.DefaultSuggestions(),
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *ChatService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// SetClock replaces the wall clock used for message timestamps.
func (s *ChatService) SetClock(clock driven.Clock) {
	s.clock = clock
}

// Initialize extracts and indexes the document at location. Concurrent calls
// for the same location share one run; a call for another location while one
// is running fails with domain.ErrDuplicateInitialization. A location that is
// already indexed is not indexed again.
func (s *ChatService) Initialize(ctx context.Context, location string) error {
	if s.indexed(location) {
		return nil
	}
	if err := s.begin(location); err != nil {
		return err
	}
	_, err, shared := s.inflight.Do(location, func() (any, error) {
		doc, _, err := s.extractor.BuildDocument(ctx, location)
		if err != nil {
			s.fail(err)
			return nil, err
		}
		return nil, s.index(ctx, doc)
	})
	if shared {
		logger.Debug("chat: joined in-flight initialization of %s", location)
	}
	return err
}

// InitializeDocument indexes an already extracted document.
func (s *ChatService) InitializeDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil {
		return domain.ErrNotInitialized
	}
	if s.indexed(doc.URL) {
		return nil
	}
	if err := s.begin(doc.URL); err != nil {
		return err
	}
	_, err, _ := s.inflight.Do(doc.URL, func() (any, error) {
		return nil, s.index(ctx, doc)
	})
	return err
}

// indexed reports whether location is the document already indexed and ready.
func (s *ChatService) indexed(location string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ready := s.status == domain.ChatReady || s.status == domain.ChatGenerating
	if ready && s.doc != nil && s.location == location {
		logger.Debug("chat: %s is already indexed", location)
		return true
	}
	return false
}

// begin moves to initializing unless another location is already in progress.
func (s *ChatService) begin(location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == domain.ChatInitializing && s.location != location {
		return fmt.Errorf("%w: %s is still being indexed", domain.ErrDuplicateInitialization, s.location)
	}
	if s.status == domain.ChatGenerating {
		return domain.ErrBusy
	}
	s.status = domain.ChatInitializing
	s.location = location
	s.errMsg = ""
	return nil
}

// index embeds every page with text, then prepares opening suggestions.
// Pages that fail to embed are logged and skipped; entries already stored are kept.
func (s *ChatService) index(ctx context.Context, doc *domain.Document) error {
	if s.store == nil {
		s.fail(domain.ErrEmbeddingUnavailable)
		return domain.ErrEmbeddingUnavailable
	}
	defer logger.Timed("index " + doc.Filename)()

	pages := withText(doc.Pages)
	if len(pages) == 0 {
		err := fmt.Errorf("%w: %s has no extractable text", domain.ErrNoContent, doc.Filename)
		s.fail(err)
		return err
	}

	// Entries from an earlier run are replaced, not duplicated.
	s.mu.Lock()
	stale := s.vectorIDs
	s.vectorIDs = nil
	sameDoc := s.doc != nil && s.doc.ID == doc.ID
	s.mu.Unlock()
	if len(stale) > 0 {
		logger.Debug("chat: dropping %d entr(ies) of the previous index", s.store.Remove(stale...))
	}

	ids := make([][]string, len(pages))
	errs := make([]error, len(pages))
	for start := 0; start < len(pages); start += s.batchSize {
		end := min(start+s.batchSize, len(pages))
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				p := pages[i]
				ids[i], errs[i] = s.store.AddDocument(ctx, p.Text, domain.EmbeddingMetadata{
					DocumentID: PageSourceID(doc.ID, p.PageNumber),
					Type:       domain.EmbeddingTypePage,
					PageNumber: p.PageNumber,
				})
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			s.fail(err)
			return err
		}
	}

	var vectorIDs []string
	failed := 0
	var lastErr error
	for i, err := range errs {
		vectorIDs = append(vectorIDs, ids[i]...)
		if err != nil {
			failed++
			lastErr = err
			logger.Warn("embedding page %d: %v", pages[i].PageNumber, err)
		}
	}
	if failed == len(pages) {
		s.mu.Lock()
		s.doc, s.vectorIDs = doc, vectorIDs
		s.mu.Unlock()
		s.fail(lastErr)
		return lastErr
	}
	logger.Info("indexed %d of %d page(s) of %s (%d entries)", len(pages)-failed, len(pages), doc.Filename, len(vectorIDs))

	s.mu.Lock()
	s.doc = doc
	s.vectorIDs = vectorIDs
	if !sameDoc {
		s.messages = nil
	}
	s.status = domain.ChatReady
	s.mu.Unlock()

	if !s.restoreSuggestions(ctx, doc.ID) {
		if _, err := s.GenerateSuggestions(ctx); err != nil {
			logger.Warn("opening suggestions: %v", err)
		}
	}
	return nil
}

func (s *ChatService) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = domain.ChatError
	s.errMsg = err.Error()
}

// GenerateReply answers message from the most similar stored pages.
// Only one reply may be in flight; a second call fails with domain.ErrBusy.
func (s *ChatService) GenerateReply(ctx context.Context, message string) (*domain.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	switch {
	case s.status == domain.ChatGenerating:
		s.mu.Unlock()
		return nil, domain.ErrBusy
	case s.doc == nil || s.status == domain.ChatInitializing:
		s.mu.Unlock()
		return nil, domain.ErrNotInitialized
	case s.llm == nil:
		s.mu.Unlock()
		return nil, domain.ErrLLMUnavailable
	}
	history := lastMessages(s.messages, chatHistoryMessages)
	s.messages = append(s.messages, domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      domain.RoleUser,
		Content:   message,
		CreatedAt: s.clock.Now(),
	})
	s.status = domain.ChatGenerating
	s.errMsg = ""
	s.mu.Unlock()

	reply, err := s.answer(ctx, message, history)
	if err != nil {
		s.fail(err)
		return nil, err
	}

	s.mu.Lock()
	s.messages = append(s.messages, *reply)
	s.status = domain.ChatReady
	s.mu.Unlock()

	if _, err := s.GenerateSuggestions(ctx); err != nil {
		logger.Warn("follow-up suggestions: %v", err)
	}
	return reply, nil
}

// answer retrieves context and runs the completion.
func (s *ChatService) answer(
	ctx context.Context, message string, history []domain.ChatMessage,
) (*domain.ChatMessage, error) {
	results, err := s.store.SimilaritySearch(ctx, message, chatSearchK, chatSearchThreshold)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}
	// Combined groups carry averaged scores, so rank them again before cutting.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > chatContextResults {
		results = results[:chatContextResults]
	}
	contextText, sources := assembleContext(results)
	logger.Debug("chat: %d context page(s) for %q", len(sources), message)

	msgs := []driven.ChatMessage{{Role: string(domain.RoleSystem), Content: loadPrompt(s.prompts, driven.PromptChatSystem)}}
	for _, m := range history {
		msgs = append(msgs, driven.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	user := "Question: " + message
	if contextText != "" {
		user = "Context:\n" + contextText + "\n\n" + user
	} else {
		user = "Context: no relevant passages were found in the document.\n\n" + user
	}
	msgs = append(msgs, driven.ChatMessage{Role: string(domain.RoleUser), Content: user})

	text, err := s.llm.Complete(ctx, driven.CompletionRequest{
		Temperature:    chatTemperature,
		Messages:       msgs,
		ResponseFormat: driven.ResponseFormatText,
	})
	if err != nil {
		return nil, fmt.Errorf("generating reply: %w", err)
	}

	confidence := 0.0
	for _, src := range sources {
		confidence = max(confidence, src.Similarity)
	}
	return &domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      domain.RoleAssistant,
		Content:   ensureEmoji(strings.TrimSpace(text), defaultReplyEmoji),
		CreatedAt: s.clock.Now(),
		Metadata:  domain.ChatMetadata{Confidence: confidence, Sources: sources},
	}, nil
}

// assembleContext groups results by page in rank order into
// "[Page N]:\n<chunks>" blocks joined by blank lines.
func assembleContext(results []domain.SimilarityResult) (string, []domain.ChatSource) {
	var order []int
	chunks := make(map[int][]string)
	best := make(map[int]float64)
	for _, r := range results {
		page := r.Metadata.PageNumber
		if _, ok := chunks[page]; !ok {
			order = append(order, page)
		}
		chunks[page] = append(chunks[page], r.Content)
		best[page] = max(best[page], r.Similarity)
	}

	blocks := make([]string, 0, len(order))
	sources := make([]domain.ChatSource, 0, len(order))
	for _, page := range order {
		body := strings.Join(chunks[page], "\n\n")
		if page > 0 {
			blocks = append(blocks, fmt.Sprintf("[Page %d]:\n%s", page, body))
		} else {
			blocks = append(blocks, body)
		}
		sources = append(sources, domain.ChatSource{
			PageNumber: page,
			Similarity: best[page],
			Excerpt:    truncateRunes(body, chatSourceRunes),
		})
	}
	return strings.Join(blocks, "\n\n"), sources
}

// GenerateSuggestions asks for follow-up questions conditioned on the last
// two messages. Before a document is indexed the defaults are returned.
// On failure the previous suggestions are kept and returned with the error.
func (s *ChatService) GenerateSuggestions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	doc := s.doc
	current := append([]string(nil), s.suggestions...)
	recent := lastMessages(s.messages, 2)
	s.mu.RUnlock()

	if doc == nil {
		return domain.DefaultSuggestions(), nil
	}
	if s.llm == nil {
		return current, nil
	}

	conversation := "(no messages yet)"
	if len(recent) > 0 {
		lines := make([]string, len(recent))
		for i, m := range recent {
			lines[i] = fmt.Sprintf("%s: %s", m.Role, m.Content)
		}
		conversation = strings.Join(lines, "\n")
	}
	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptChatSuggestions),
		conversation, truncateRunes(doc.FullText(), chatExcerptRunes))

	var resp suggestionsResponse
	err := jsonGeneration(ctx, s.llm, driven.CompletionRequest{
		Temperature: chatTemperature,
		Messages:    []driven.ChatMessage{{Role: string(domain.RoleUser), Content: prompt}},
	}, &resp)
	if err != nil {
		return current, fmt.Errorf("suggestions: %w", err)
	}

	suggestions := normalizeSuggestions(resp.Suggestions)
	if len(suggestions) == 0 {
		return current, fmt.Errorf("%w: no suggestions", domain.ErrGenerationParse)
	}

	s.mu.Lock()
	s.suggestions = suggestions
	s.mu.Unlock()
	s.saveSuggestions(ctx, doc.ID, suggestions)
	return suggestions, nil
}

func normalizeSuggestions(raw []string) []string {
	out := make([]string, 0, chatSuggestionCount)
	for _, q := range raw {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		out = append(out, ensureEmoji(q, "❓"))
		if len(out) == chatSuggestionCount {
			break
		}
	}
	return out
}

func (s *ChatService) restoreSuggestions(ctx context.Context, documentID string) bool {
	if s.state == nil {
		return false
	}
	var saved []string
	err := s.state.Load(ctx, domain.NewSliceKey(documentID, domain.NamespaceSuggestions), &saved)
	if err != nil {
		if errors.Is(err, domain.ErrVersionMismatch) {
			_ = s.state.Delete(ctx, documentID, domain.NamespaceSuggestions)
		}
		return false
	}
	if len(saved) == 0 {
		return false
	}
	s.mu.Lock()
	s.suggestions = saved
	s.mu.Unlock()
	return true
}

func (s *ChatService) saveSuggestions(ctx context.Context, documentID string, suggestions []string) {
	if s.state == nil {
		return
	}
	if err := s.state.Save(ctx, domain.NewSliceKey(documentID, domain.NamespaceSuggestions), suggestions); err != nil {
		logger.Warn("saving suggestions: %v", err)
	}
}

// Messages returns the conversation so far.
func (s *ChatService) Messages() []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ChatMessage(nil), s.messages...)
}

// Suggestions returns the current suggested questions.
func (s *ChatService) Suggestions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.suggestions...)
}

// Status returns the lifecycle state.
func (s *ChatService) Status() domain.ChatStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the message of the last failure while in the error state.
func (s *ChatService) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status != domain.ChatError {
		return ""
	}
	return s.errMsg
}

// VectorIDs returns the embedding entries created for the current document.
func (s *ChatService) VectorIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.vectorIDs...)
}

func lastMessages(msgs []domain.ChatMessage, n int) []domain.ChatMessage {
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return append([]domain.ChatMessage(nil), msgs...)
}

// ensureEmoji prefixes s with emoji unless it already starts with one.
func ensureEmoji(s, emoji string) string {
	if startsWithEmoji(s) {
		return s
	}
	return emoji + " " + s
}

func startsWithEmoji(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return false
	}
	return r >= 0x1F000 || (r >= 0x2600 && r <= 0x27BF) || unicode.Is(unicode.So, r)
}
