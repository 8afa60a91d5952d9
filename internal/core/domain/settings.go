package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings controls chunking and the embedding store.
type IndexSettings struct {
	ChunkSize    int
	ChunkOverlap int

	// TTL is how long an embedding entry stays searchable.
	TTL time.Duration

	// SweepInterval is how often expired entries are deleted.
	SweepInterval time.Duration

	// PageBatchSize is how many pages are extracted concurrently.
	PageBatchSize int
}

// ChunkOptions returns the splitter configuration for these settings.
func (s IndexSettings) ChunkOptions() ChunkOptions {
	return ChunkOptions{
		ChunkSize:    s.ChunkSize,
		ChunkOverlap: s.ChunkOverlap,
		Separators:   DefaultSeparators(),
	}
}

// GenerationSettings controls the learning-aid generators.
type GenerationSettings struct {
	Depth Depth

	// BatchDelay is the pause between consecutive LLM batches.
	BatchDelay time.Duration

	// PriorityMin and PriorityMax bound concept importance scores.
	PriorityMin float64
	PriorityMax float64

	Temperature float64
}

// SourceSettings controls where PDF bytes are fetched from.
type SourceSettings struct {
	// HTTPTimeout bounds one http(s) download.
	HTTPTimeout time.Duration

	// S3Region and S3Endpoint configure s3:// locations. An empty region
	// defers to the AWS shared config and environment.
	S3Region   string
	S3Endpoint string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Index holds chunking and store settings.
	Index IndexSettings

	// Generation holds generator settings.
	Generation GenerationSettings

	// Source holds PDF download settings.
	Source SourceSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI features (Embedding, LLM) are left unconfigured by default.
// Users must explicitly configure them via the settings command.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{},
		LLM:       LLMSettings{},
		Index: IndexSettings{
			ChunkSize:     DefaultChunkSize,
			ChunkOverlap:  DefaultChunkOverlap,
			TTL:           DefaultEmbeddingTTL,
			SweepInterval: DefaultSweepInterval,
			PageBatchSize: 5,
		},
		Generation: GenerationSettings{
			Depth:       DepthStandard,
			BatchDelay:  2 * time.Second,
			PriorityMin: 1,
			PriorityMax: 10,
			Temperature: 0.3,
		},
		Source: SourceSettings{
			HTTPTimeout: 60 * time.Second,
		},
	}
}

// AllProviders returns providers that support both embeddings and completions.
func AllProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "llama3.2",
		AIProviderOpenAI: "gpt-4o-mini",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
