package ai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// embedServer answers Ollama pings and embeds every input as a vector of size dims.
func embedServer(t *testing.T, status, dims int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/api/embed":
			var req struct {
				Input []string `json:"input"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []string{sampleText}, req.Input)
			vecs := make([][]float64, len(req.Input))
			for i := range vecs {
				vecs[i] = make([]float64, dims)
				vecs[i][0] = 1
			}
			require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"embeddings": vecs}))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestConfigValidator_Embedding(t *testing.T) {
	validator := NewConfigValidator()

	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantErr  error
	}{
		{name: "nil settings"},
		{name: "unconfigured provider", settings: &domain.EmbeddingSettings{Model: "nomic-embed-text"}},
		{
			name: "reachable with expected size",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama, Model: "all-minilm", BaseURL: embedServer(t, http.StatusOK, 384).URL,
			},
		},
		{
			name: "unexpected vector size",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama, Model: "all-minilm", BaseURL: embedServer(t, http.StatusOK, 768).URL,
			},
			wantErr: domain.ErrDimensionMismatch,
		},
		{
			name: "unreachable",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama, BaseURL: embedServer(t, http.StatusBadGateway, 0).URL,
			},
			wantErr: domain.ErrEmbeddingUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateEmbedding(tt.settings)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfigValidator_LLM(t *testing.T) {
	validator := NewConfigValidator()

	assert.NoError(t, validator.ValidateLLM(nil))
	assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{Model: "llama3.2"}))
	assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama, BaseURL: ollamaServer(t, http.StatusOK).URL,
	}))

	err := validator.ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama, BaseURL: ollamaServer(t, http.StatusBadGateway).URL,
	})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestConfigValidator_Timeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(slow.Close)

	validator := NewConfigValidator().WithTimeout(20 * time.Millisecond)
	err := validator.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: slow.URL})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}
