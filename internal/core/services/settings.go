package services

import (
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyChunkSize        = "index.chunk_size"
	keyChunkOverlap     = "index.chunk_overlap"
	keyTTLSeconds       = "index.ttl_seconds"
	keySweepSeconds     = "index.sweep_interval_seconds"
	keyPageBatchSize    = "index.page_batch_size"
	keyDepth            = "generation.depth"
	keyBatchDelayMillis = "generation.batch_delay_ms"
	keyPriorityMin      = "generation.priority_min"
	keyPriorityMax      = "generation.priority_max"
	keyTemperature      = "generation.temperature"
	keyHTTPTimeout      = "source.http_timeout_seconds"
	keyS3Region         = "source.s3_region"
	keyS3Endpoint       = "source.s3_endpoint"
)

// Environment variables consulted when the config file leaves a value empty.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenAIKey         = "OPENAI_API_KEY"
	EnvLLMProvider       = "FOLIO_LLM_PROVIDER"
	EnvLLMModel          = "FOLIO_LLM_MODEL"
	EnvEmbeddingProvider = "FOLIO_EMBEDDING_PROVIDER"
	EnvEmbeddingModel    = "FOLIO_EMBEDDING_MODEL"
	EnvOllamaURL         = "FOLIO_OLLAMA_URL"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// SetEnv replaces the environment lookup. Used by tests.
func (s *SettingsService) SetEnv(getenv func(string) string) {
	s.getenv = getenv
}

// Get retrieves current application settings.
// Values missing from the config file are filled from the environment, then defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, EnvEmbeddingProvider),
			Model:    s.getString(keyEmbedModel, s.getenv(EnvEmbeddingModel)),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, EnvLLMProvider),
			Model:    s.getString(keyLLMModel, s.getenv(EnvLLMModel)),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Index: domain.IndexSettings{
			ChunkSize:     s.getInt(keyChunkSize, defaults.Index.ChunkSize),
			ChunkOverlap:  s.getInt(keyChunkOverlap, defaults.Index.ChunkOverlap),
			TTL:           s.getDuration(keyTTLSeconds, time.Second, defaults.Index.TTL),
			SweepInterval: s.getDuration(keySweepSeconds, time.Second, defaults.Index.SweepInterval),
			PageBatchSize: s.getInt(keyPageBatchSize, defaults.Index.PageBatchSize),
		},
		Generation: domain.GenerationSettings{
			Depth:       s.getDepth(defaults.Generation.Depth),
			BatchDelay:  s.getDuration(keyBatchDelayMillis, time.Millisecond, defaults.Generation.BatchDelay),
			PriorityMin: s.getFloat(keyPriorityMin, defaults.Generation.PriorityMin),
			PriorityMax: s.getFloat(keyPriorityMax, defaults.Generation.PriorityMax),
			Temperature: s.getFloat(keyTemperature, defaults.Generation.Temperature),
		},
		Source: domain.SourceSettings{
			HTTPTimeout: s.getDuration(keyHTTPTimeout, time.Second, defaults.Source.HTTPTimeout),
			S3Region:    s.configStore.GetString(keyS3Region),
			S3Endpoint:  s.configStore.GetString(keyS3Endpoint),
		},
	}

	s.fillFromEnv(&settings.Embedding.Provider, &settings.Embedding.Model, &settings.Embedding.BaseURL,
		&settings.Embedding.APIKey, domain.DefaultEmbeddingModels())
	s.fillFromEnv(&settings.LLM.Provider, &settings.LLM.Model, &settings.LLM.BaseURL,
		&settings.LLM.APIKey, domain.DefaultLLMModels())

	return settings, nil
}

// fillFromEnv completes a provider block: API key from OPENAI_API_KEY, the
// Ollama URL and the provider's default model.
func (s *SettingsService) fillFromEnv(provider *domain.AIProvider, model, baseURL, apiKey *string,
	defaultModels map[domain.AIProvider]string) {
	if *provider == "" && s.getenv(EnvOpenAIKey) != "" {
		*provider = domain.AIProviderOpenAI
	}
	switch *provider {
	case domain.AIProviderOpenAI:
		if *apiKey == "" {
			*apiKey = s.getenv(EnvOpenAIKey)
		}
	case domain.AIProviderOllama:
		if *baseURL == "" {
			*baseURL = s.getenv(EnvOllamaURL)
		}
		if *baseURL == "" {
			*baseURL = defaultOllamaURL
		}
	}
	if *model == "" {
		*model = defaultModels[*provider]
	}
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyChunkSize, settings.Index.ChunkSize},
		{keyChunkOverlap, settings.Index.ChunkOverlap},
		{keyTTLSeconds, int(settings.Index.TTL / time.Second)},
		{keySweepSeconds, int(settings.Index.SweepInterval / time.Second)},
		{keyPageBatchSize, settings.Index.PageBatchSize},
		{keyDepth, settings.Generation.Depth.String()},
		{keyBatchDelayMillis, int(settings.Generation.BatchDelay / time.Millisecond)},
		{keyPriorityMin, settings.Generation.PriorityMin},
		{keyPriorityMax, settings.Generation.PriorityMax},
		{keyTemperature, settings.Generation.Temperature},
		{keyHTTPTimeout, int(settings.Source.HTTPTimeout / time.Second)},
		{keyS3Region, settings.Source.S3Region},
		{keyS3Endpoint, settings.Source.S3Endpoint},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// API keys are only written when set so an environment key never lands on disk by accident.
	if settings.Embedding.APIKey != "" && settings.Embedding.APIKey != s.getenv(EnvOpenAIKey) {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" && settings.LLM.APIKey != s.getenv(EnvOpenAIKey) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" && s.getenv(EnvOpenAIKey) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" && s.getenv(EnvOpenAIKey) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetDepth updates the default generation depth.
func (s *SettingsService) SetDepth(depth domain.Depth) error {
	if !depth.IsValid() {
		return fmt.Errorf("%w: invalid depth: %s", domain.ErrInvalidInput, depth)
	}
	return s.configStore.Set(keyDepth, depth.String())
}

// Validate checks that the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Index.ChunkOptions().Validate(); err != nil {
		return err
	}
	if settings.Index.TTL <= 0 {
		return fmt.Errorf("%w: ttl must be positive", domain.ErrInvalidConfig)
	}
	if settings.Generation.PriorityMin > settings.Generation.PriorityMax {
		return fmt.Errorf("%w: priority_min (%g) exceeds priority_max (%g)",
			domain.ErrInvalidConfig, settings.Generation.PriorityMin, settings.Generation.PriorityMax)
	}
	if settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s is not fully configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %s is not fully configured",
			domain.ErrLLMUnavailable, settings.LLM.Provider)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, unit, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * unit
}

func (s *SettingsService) getDepth(defaultVal domain.Depth) domain.Depth {
	depth := domain.Depth(s.configStore.GetString(keyDepth))
	if !depth.IsValid() {
		return defaultVal
	}
	return depth
}

func (s *SettingsService) getProvider(key, envKey string) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		val = s.getenv(envKey)
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return ""
	}
	return provider
}
