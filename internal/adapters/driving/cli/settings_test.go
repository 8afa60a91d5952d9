package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShow(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	env.settings.settings.LLM = domain.LLMSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "gpt-4o-mini",
		APIKey:   "sk-1234567890abcdef",
	}

	out, err := run(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "[LLM]")
	assert.Contains(t, out, "Model: gpt-4o-mini")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.Contains(t, out, "[Generation]")
	assert.Contains(t, out, "Depth: standard")
	assert.Contains(t, out, "Configuration is valid.")
	assert.NotContains(t, out, "sk-1234567890abcdef")
}

func TestSettingsShow_ValidationWarning(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	env.settings.validateErr = errors.New("llm not configured")

	out, err := run(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: llm not configured")
	assert.Contains(t, out, "folio settings wizard")
}

func TestSettingsWizard(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	input := "2\n\nsk-test-12345678\n" + // LLM: OpenAI, default model, key
		"1\nmxbai-embed-large\n" + // Embedding: Ollama, custom model
		"3\n" // Depth: deep

	out, err := run(t, input, "settings", "wizard")

	require.NoError(t, err)
	got := env.settings.settings
	assert.Equal(t, domain.AIProviderOpenAI, got.LLM.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderOpenAI], got.LLM.Model)
	assert.Equal(t, "sk-test-12345678", got.LLM.APIKey)
	assert.Equal(t, domain.AIProviderOllama, got.Embedding.Provider)
	assert.Equal(t, "mxbai-embed-large", got.Embedding.Model)
	assert.Equal(t, domain.DepthDeep, got.Generation.Depth)
	assert.Contains(t, out, "All settings are valid and saved.")
}

func TestSettingsLLM_RequiresAPIKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := run(t, "2\n\n\n", "settings", "llm")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
	assert.False(t, env.settings.llmSet)
}

func TestSettingsEmbedding_ValidationFailure(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	env.settings.pingErr = errors.New("connection refused")

	out, err := run(t, "1\n\n", "settings", "embedding")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding configuration validation failed")
	assert.Contains(t, out, "FAILED: connection refused")
}

func TestSettingsDepth(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		want    domain.Depth
		wantErr bool
	}{
		{name: "argument", args: []string{"settings", "depth", "brief"}, want: domain.DepthBrief},
		{name: "prompt", stdin: "3\n", args: []string{"settings", "depth"}, want: domain.DepthDeep},
		{name: "unknown argument", args: []string{"settings", "depth", "huge"}, wantErr: true},
		{name: "prompt without answer", stdin: "\n", args: []string{"settings", "depth"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestServices()
			defer cleanup()

			_, err := run(t, tt.stdin, tt.args...)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, domain.DepthStandard, env.settings.settings.Generation.Depth)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, env.settings.settings.Generation.Depth)
		})
	}
}
