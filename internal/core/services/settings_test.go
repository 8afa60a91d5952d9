package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/folio/internal/core/domain"
)

// envMap returns a getenv func backed by a map.
func envMap(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func newTestSettings(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	service.SetEnv(envMap(env))
	return service, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettings(nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Index, settings.Index)
	assert.Equal(t, defaults.Generation, settings.Generation)
	assert.Empty(t, settings.LLM.Provider)
	assert.Empty(t, settings.Embedding.Provider)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, store := newTestSettings(nil)
	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("llm.model", "mistral"))
	require.NoError(t, store.Set("index.chunk_size", int64(600)))
	require.NoError(t, store.Set("index.chunk_overlap", int64(50)))
	require.NoError(t, store.Set("index.ttl_seconds", int64(120)))
	require.NoError(t, store.Set("generation.depth", "deep"))
	require.NoError(t, store.Set("generation.batch_delay_ms", int64(250)))
	require.NoError(t, store.Set("generation.temperature", 0.7))
	require.NoError(t, store.Set("generation.priority_max", int64(5)))

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, "mistral", settings.LLM.Model)
	assert.Equal(t, "http://localhost:11434", settings.LLM.BaseURL)
	assert.Equal(t, 600, settings.Index.ChunkSize)
	assert.Equal(t, 50, settings.Index.ChunkOverlap)
	assert.Equal(t, 2*time.Minute, settings.Index.TTL)
	assert.Equal(t, domain.DepthDeep, settings.Generation.Depth)
	assert.Equal(t, 250*time.Millisecond, settings.Generation.BatchDelay)
	assert.Equal(t, 0.7, settings.Generation.Temperature)
	assert.Equal(t, 5.0, settings.Generation.PriorityMax)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	service, store := newTestSettings(nil)
	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("generation.depth", "exhaustive"))

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Empty(t, settings.LLM.Provider)
	assert.Equal(t, domain.DepthStandard, settings.Generation.Depth)
}

func TestSettingsService_Get_Environment(t *testing.T) {
	tests := []struct {
		name         string
		env          map[string]string
		wantProvider domain.AIProvider
		wantModel    string
		wantKey      string
		wantBaseURL  string
	}{
		{
			name:         "openai key selects openai",
			env:          map[string]string{EnvOpenAIKey: "sk-test"},
			wantProvider: domain.AIProviderOpenAI,
			wantModel:    "gpt-4o-mini",
			wantKey:      "sk-test",
		},
		{
			name:         "explicit ollama with custom url",
			env:          map[string]string{EnvLLMProvider: "ollama", EnvOllamaURL: "http://gpu:11434", EnvLLMModel: "qwen2"},
			wantProvider: domain.AIProviderOllama,
			wantModel:    "qwen2",
			wantBaseURL:  "http://gpu:11434",
		},
		{
			name: "nothing configured",
			env:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestSettings(tt.env)

			settings, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.wantProvider, settings.LLM.Provider)
			assert.Equal(t, tt.wantModel, settings.LLM.Model)
			assert.Equal(t, tt.wantKey, settings.LLM.APIKey)
			assert.Equal(t, tt.wantBaseURL, settings.LLM.BaseURL)
		})
	}
}

func TestSettingsService_Get_FileWinsOverEnvironment(t *testing.T) {
	service, store := newTestSettings(map[string]string{EnvOpenAIKey: "sk-env", EnvLLMProvider: "openai"})
	require.NoError(t, store.Set("llm.provider", "ollama"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Empty(t, settings.LLM.APIKey)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	service, _ := newTestSettings(nil)

	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOpenAI, Model: "gpt-4o", APIKey: "sk-file"}
	settings.Index.ChunkSize = 1500
	settings.Index.SweepInterval = time.Minute
	settings.Generation.Depth = domain.DepthBrief
	settings.Generation.PriorityMin = 2.5
	require.NoError(t, service.Save(&settings))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings.LLM, got.LLM)
	assert.Equal(t, 1500, got.Index.ChunkSize)
	assert.Equal(t, time.Minute, got.Index.SweepInterval)
	assert.Equal(t, domain.DepthBrief, got.Generation.Depth)
	assert.Equal(t, 2.5, got.Generation.PriorityMin)
}

func TestSettingsService_Save_SkipsEnvironmentKey(t *testing.T) {
	service, store := newTestSettings(map[string]string{EnvOpenAIKey: "sk-env"})

	settings, err := service.Get()
	require.NoError(t, err)
	require.Equal(t, "sk-env", settings.LLM.APIKey)
	require.NoError(t, service.Save(settings))

	_, ok := store.Get("llm.api_key")
	assert.False(t, ok)
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	t.Run("openai without key", func(t *testing.T) {
		service, _ := newTestSettings(nil)
		err := service.SetLLMProvider(domain.AIProviderOpenAI, "", "")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("invalid provider", func(t *testing.T) {
		service, _ := newTestSettings(nil)
		err := service.SetLLMProvider("bard", "", "")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("ollama gets default model and url", func(t *testing.T) {
		service, _ := newTestSettings(nil)
		require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "", ""))

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "llama3.2", settings.LLM.Model)
		assert.Equal(t, "http://localhost:11434", settings.LLM.BaseURL)
	})
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	service, _ := newTestSettings(nil)
	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "text-embedding-3-large", "sk-1"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, "sk-1", settings.Embedding.APIKey)
	assert.Empty(t, settings.Embedding.BaseURL)
}

func TestSettingsService_SetDepth(t *testing.T) {
	service, _ := newTestSettings(nil)

	require.NoError(t, service.SetDepth(domain.DepthDeep))
	settings, _ := service.Get()
	assert.Equal(t, domain.DepthDeep, settings.Generation.Depth)

	assert.True(t, errors.Is(service.SetDepth("huge"), domain.ErrInvalidInput))
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		env     map[string]string
		wantErr error
	}{
		{name: "defaults", values: map[string]any{}},
		{name: "overlap too large", values: map[string]any{"index.chunk_size": int64(100), "index.chunk_overlap": int64(100)}, wantErr: domain.ErrInvalidConfig},
		{name: "priority range inverted", values: map[string]any{"generation.priority_min": 9.0, "generation.priority_max": 3.0}, wantErr: domain.ErrInvalidConfig},
		{name: "openai llm without key", values: map[string]any{"llm.provider": "openai"}, wantErr: domain.ErrLLMUnavailable},
		{name: "openai embedding without key", values: map[string]any{"embedding.provider": "openai"}, wantErr: domain.ErrEmbeddingUnavailable},
		{name: "openai with env key", values: map[string]any{"llm.provider": "openai"}, env: map[string]string{EnvOpenAIKey: "sk"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStoreFrom(tt.values), nil)
			service.SetEnv(envMap(tt.env))

			err := service.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

type stubValidator struct {
	llmErr, embedErr error
	llmCalls         int
}

func (v *stubValidator) ValidateEmbedding(*domain.EmbeddingSettings) error { return v.embedErr }

func (v *stubValidator) ValidateLLM(*domain.LLMSettings) error {
	v.llmCalls++
	return v.llmErr
}

func TestSettingsService_ValidateConfigDelegates(t *testing.T) {
	validator := &stubValidator{llmErr: domain.ErrLLMUnavailable}
	service := NewSettingsService(memory.NewConfigStore(), validator)
	service.SetEnv(envMap(nil))

	assert.ErrorIs(t, service.ValidateLLMConfig(), domain.ErrLLMUnavailable)
	assert.NoError(t, service.ValidateEmbeddingConfig())
	assert.Equal(t, 1, validator.llmCalls)

	noValidator, _ := newTestSettings(nil)
	assert.NoError(t, noValidator.ValidateLLMConfig())
}
