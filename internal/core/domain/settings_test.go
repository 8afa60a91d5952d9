package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{"ollama is valid", AIProviderOllama, true},
		{"openai is valid", AIProviderOpenAI, true},
		{"anthropic is not supported", AIProvider("anthropic"), false},
		{"empty is invalid", AIProvider(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_Traits(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOllama.IsLocal())
	assert.False(t, AIProviderOpenAI.IsLocal())
	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, "OpenAI (cloud)", AIProviderOpenAI.Description())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{"empty", EmbeddingSettings{}, false},
		{"ollama without key", EmbeddingSettings{Provider: AIProviderOllama}, true},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk-x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{"empty", LLMSettings{}, false},
		{"ollama", LLMSettings{Provider: AIProviderOllama, Model: "llama3.2"}, true},
		{"openai without key", LLMSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", LLMSettings{Provider: AIProviderOpenAI, APIKey: "sk-x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.False(t, s.Embedding.IsConfigured())
	assert.False(t, s.LLM.IsConfigured())
	assert.Equal(t, 1000, s.Index.ChunkSize)
	assert.Equal(t, 200, s.Index.ChunkOverlap)
	assert.Equal(t, time.Hour, s.Index.TTL)
	assert.Equal(t, 5*time.Minute, s.Index.SweepInterval)
	assert.Equal(t, DepthStandard, s.Generation.Depth)
	assert.Equal(t, 2*time.Second, s.Generation.BatchDelay)
	assert.Less(t, s.Generation.PriorityMin, s.Generation.PriorityMax)
	require.NoError(t, s.Index.ChunkOptions().Validate())
}

func TestDefaultModels(t *testing.T) {
	for _, p := range AllProviders() {
		assert.NotEmpty(t, DefaultEmbeddingModels()[p], p)
		assert.NotEmpty(t, DefaultLLMModels()[p], p)
	}
	dims := EmbeddingDimensions()
	assert.Equal(t, 768, dims[DefaultEmbeddingModels()[AIProviderOllama]])
	assert.Equal(t, 1536, dims[DefaultEmbeddingModels()[AIProviderOpenAI]])
}

func TestDepth(t *testing.T) {
	tests := []struct {
		depth    Depth
		valid    bool
		concepts int
		cards    int
	}{
		{DepthBrief, true, 2, 2},
		{DepthStandard, true, 4, 3},
		{DepthDeep, true, 6, 5},
		{Depth("huge"), false, 4, 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.depth), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.depth.IsValid())
			assert.Equal(t, tt.concepts, tt.depth.ConceptsPerPage())
			assert.Equal(t, tt.cards, tt.depth.CardsPerPage())
		})
	}
}

func TestParseDifficulty(t *testing.T) {
	assert.Equal(t, DifficultyEasy, ParseDifficulty("easy"))
	assert.Equal(t, DifficultyHard, ParseDifficulty("hard"))
	assert.Equal(t, DifficultyMedium, ParseDifficulty("impossible"))
	assert.Equal(t, DifficultyMedium, ParseDifficulty(""))
}

func TestNavigationSource_IsValid(t *testing.T) {
	for _, s := range AllNavigationSources() {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, NavigationSource("keyboard").IsValid())
}

func TestSliceKey(t *testing.T) {
	key := NewSliceKey("doc-1", NamespaceTOC)
	assert.Equal(t, SliceKey{DocumentID: "doc-1", Namespace: "toc", Version: TOCStateVersion}, key)
	assert.Equal(t, 0, StateVersion("unknown"))
}

func TestTOCHelpers(t *testing.T) {
	items := []TOCItem{
		{Title: "One", Children: []TOCItem{{Title: "One.A"}, {Title: "One.B"}}},
		{Title: "Two"},
	}

	assert.Equal(t, 4, CountTOC(items))

	clone := CloneTOC(items)
	clone[0].Children[0].Title = "changed"
	assert.Equal(t, "One.A", items[0].Children[0].Title)

	var titles []string
	WalkTOC(items, func(item *TOCItem) { titles = append(titles, item.Title) })
	assert.Equal(t, []string{"One", "One.A", "One.B", "Two"}, titles)

	cache := TOCCache{Items: items, AIProcessedItems: clone, IsAIProcessed: true}
	assert.Equal(t, "changed", cache.Best()[0].Children[0].Title)
	cache.IsAIProcessed = false
	assert.Equal(t, "One.A", cache.Best()[0].Children[0].Title)
}
