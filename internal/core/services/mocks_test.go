package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// mockEmbedder returns vectors from a table, falling back to a default.
type mockEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	failOn   func(text string) bool
	calls    []string
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{vectors: make(map[string][]float32), fallback: []float32{0, 0, 1}}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)
	if m.failOn != nil && m.failOn(text) {
		return nil, errors.New("embedding backend down")
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	for key, v := range m.vectors {
		if strings.Contains(text, key) {
			return v, nil
		}
	}
	return m.fallback, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return len(m.fallback) }
func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockLLM answers completions with a handler, recording every request.
type mockLLM struct {
	mu       sync.Mutex
	handler  func(req driven.CompletionRequest) (string, error)
	requests []driven.CompletionRequest
}

func newMockLLM(handler func(req driven.CompletionRequest) (string, error)) *mockLLM {
	return &mockLLM{handler: handler}
}

// replies returns a handler that hands out responses in order, repeating the last.
func replies(responses ...string) func(driven.CompletionRequest) (string, error) {
	var mu sync.Mutex
	i := 0
	return func(driven.CompletionRequest) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		r := responses[i]
		if i < len(responses)-1 {
			i++
		}
		return r, nil
	}
}

func (m *mockLLM) Complete(_ context.Context, req driven.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	handler := m.handler
	m.mu.Unlock()
	return handler(req)
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

func (m *mockLLM) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockLLM) lastUserPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return ""
	}
	msgs := m.requests[len(m.requests)-1].Messages
	return msgs[len(msgs)-1].Content
}

// userPrompt returns the last message of a request.
func userPrompt(req driven.CompletionRequest) string {
	return req.Messages[len(req.Messages)-1].Content
}

// fakeClock is a manually advanced clock. Timers fire synchronously in Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) driven.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and fires due timers in deadline order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.fn()
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// wordSplitter emits one chunk per blank-line separated paragraph.
type wordSplitter struct{}

func (wordSplitter) Split(text string, opts domain.ChunkOptions) ([]domain.Chunk, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	var chunks []domain.Chunk
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{Index: len(chunks), Content: strings.TrimSpace(p), Core: p})
	}
	return chunks, nil
}

// pageText builds n pages with distinct text.
func pageText(n int) []domain.PageContent {
	pages := make([]domain.PageContent, n)
	for i := range pages {
		pages[i] = domain.PageContent{
			PageNumber: i + 1,
			Text:       fmt.Sprintf("Page %d discusses topic %d in detail.", i+1, i+1),
			Metadata:   domain.PageMetadata{HasText: true},
		}
	}
	return pages
}
