// Package openai provides an embedding service adapter using the OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultModel     = "text-embedding-3-small"
	DefaultTimeout   = 60 * time.Second
	DefaultMaxInputs = 256

	fallbackDimensions = 1536
)

// Config selects the model and endpoint. Only APIKey is required.
type Config struct {
	APIKey string
	// BaseURL may point at any server speaking the OpenAI embeddings API.
	BaseURL string
	Model   string
	Timeout time.Duration
	// Dimensions shortens text-embedding-3-* vectors. Other models ignore it.
	Dimensions int
	// MaxInputs splits large batches, such as every chunk of a long page.
	MaxInputs int
}

// EmbeddingService turns chunk text into vectors for the embedding store.
type EmbeddingService struct {
	http     *http.Client
	endpoint string
	key      string
	model    string
	size     int
	// shorten sends size as the dimensions parameter.
	shorten   bool
	maxInputs int
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type vectorItem struct {
	Index  int       `json:"index"`
	Values []float64 `json:"embedding"`
}

type embeddingReply struct {
	Data  []vectorItem `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewEmbeddingService creates an OpenAI embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai embedding requires an API key", domain.ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxInputs <= 0 {
		cfg.MaxInputs = DefaultMaxInputs
	}

	shortenable := strings.HasPrefix(cfg.Model, "text-embedding-3-")
	size := domain.EmbeddingDimensions()[cfg.Model]
	if cfg.Dimensions > 0 && (shortenable || size == 0) {
		size = cfg.Dimensions
	}
	if size == 0 {
		size = fallbackDimensions
	}

	return &EmbeddingService{
		http:      &http.Client{Timeout: cfg.Timeout},
		endpoint:  strings.TrimRight(cfg.BaseURL, "/"),
		key:       cfg.APIKey,
		model:     cfg.Model,
		size:      size,
		shorten:   shortenable && cfg.Dimensions > 0,
		maxInputs: cfg.MaxInputs,
	}, nil
}

// Embed returns the vector of one text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one vector per text, in input order. Batches larger
// than MaxInputs are sent as several requests.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	inputs := make([]string, len(texts))
	for i, t := range texts {
		// Newlines in PDF text only add noise to the embedding.
		inputs[i] = strings.Join(strings.Fields(t), " ")
		if inputs[i] == "" {
			return nil, fmt.Errorf("%w: input %d is blank", domain.ErrInvalidInput, i)
		}
	}

	out := make([][]float32, 0, len(inputs))
	for start := 0; start < len(inputs); start += s.maxInputs {
		end := min(start+s.maxInputs, len(inputs))
		vecs, err := s.request(ctx, inputs[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// request embeds one batch and checks the reply against it.
func (s *EmbeddingService) request(ctx context.Context, inputs []string) ([][]float32, error) {
	in := embeddingRequest{Model: s.model, Input: inputs}
	if s.shorten {
		in.Dimensions = s.size
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("openai: encoding request: %w", err)
	}

	status, body, err := s.call(ctx, http.MethodPost, "/embeddings", payload)
	if err != nil {
		return nil, err
	}
	var reply embeddingReply
	decodeErr := json.Unmarshal(body, &reply)
	apiMsg := ""
	if reply.Error != nil {
		apiMsg = reply.Error.Message
	}
	if err := statusError(status, apiMsg, body); err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("openai: decoding response: %w", decodeErr)
	}
	return s.vectors(reply.Data, len(inputs))
}

// vectors orders items by index and checks there is exactly one vector of
// the model's size per input.
func (s *EmbeddingService) vectors(items []vectorItem, n int) ([][]float32, error) {
	if len(items) != n {
		return nil, fmt.Errorf("openai: got %d embeddings for %d inputs", len(items), n)
	}
	out := make([][]float32, n)
	for _, item := range items {
		if item.Index < 0 || item.Index >= n || out[item.Index] != nil {
			return nil, fmt.Errorf("openai: unexpected embedding index %d", item.Index)
		}
		if len(item.Values) != s.size {
			return nil, fmt.Errorf("%w: %s returned %d values, expected %d",
				domain.ErrDimensionMismatch, s.model, len(item.Values), s.size)
		}
		vec := make([]float32, len(item.Values))
		for i, v := range item.Values {
			vec[i] = float32(v)
		}
		out[item.Index] = vec
	}
	return out, nil
}

// call sends an authenticated request and returns the status and full body.
func (s *EmbeddingService) call(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("openai: creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("openai: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("openai: reading response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// statusError maps a failed reply to an error. Rejected keys are a
// configuration problem the settings command can fix.
func statusError(status int, apiMsg string, body []byte) error {
	if status == http.StatusOK && apiMsg == "" {
		return nil
	}
	msg := apiMsg
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: openai rejected the API key: %s", domain.ErrInvalidConfig, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: openai model not found: %s", domain.ErrInvalidConfig, msg)
	}
	return fmt.Errorf("openai error (status %d): %s", status, msg)
}

// Dimensions is the length of every vector this service returns.
func (s *EmbeddingService) Dimensions() int { return s.size }

// ModelName is the model embeddings are requested from.
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping checks the key against the /models endpoint without embedding anything.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	status, body, err := s.call(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return err
	}
	return statusError(status, "", body)
}

// Close is a no-op; the HTTP client holds no per-service resources.
func (s *EmbeddingService) Close() error { return nil }
