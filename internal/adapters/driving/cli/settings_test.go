package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := map[string]string{
		"":                                   "****",
		"abc123":                             "****",
		"12345678":                           "****",
		"sk-1234567890abcdef":                "sk-1...cdef",
		"sk-ant-REDACTED": "sk-a...zzzz",
	}
	for key, want := range tests {
		assert.Equal(t, want, maskAPIKey(key), "key %q", key)
	}
}

func TestParseChoice(t *testing.T) {
	// Three providers offered, default is the first.
	tests := []struct {
		input string
		want  int
	}{
		{"", 1},
		{"2", 2},
		{"3", 3},
		{"4", 1},
		{"0", 1},
		{"-1", 1},
		{"openai", 1},
		{" 2", 1},
	}
	for _, tt := range tests {
		t.Run("input "+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseChoice(tt.input, 3, 1))
		})
	}
}

func withSettingsInput(t *testing.T, input string) {
	t.Helper()
	prev := settingsInput
	settingsInput = strings.NewReader(input)
	t.Cleanup(func() { settingsInput = prev })
}

func TestSettingsShowCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.settings.settings.Synthesis = domain.SynthesisSettings{
		Provider: domain.AIProviderAnthropic,
		Model:    "claude-3-5-sonnet-latest",
		APIKey:   "sk-ant-1234567890abcd",
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "Strategy: page")
	assert.Contains(t, out, "Top K: 5")
	assert.Contains(t, out, "Workers: 4")
	assert.Contains(t, out, "Provider: Ollama (local)")
	assert.Contains(t, out, "Provider: Anthropic (cloud)")
	assert.Contains(t, out, "API Key: sk-a...abcd")
	assert.Contains(t, out, "Index: sqlite (384 dimensions)")
	assert.Contains(t, out, "Blobs: /tmp/rfp/blobs")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShowCmd_ValidationWarning(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.settings.validateErr = errors.New("synthesis provider not configured")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Warning: synthesis provider not configured")
}

func TestSettingsEmbeddingCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	withSettingsInput(t, "2\n\nsk-test-key-123456\n")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "embedding"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, domain.AIProviderOpenAI, mocks.settings.embedProvider)
	assert.Equal(t, "text-embedding-3-small", mocks.settings.embedModel)
	assert.Equal(t, "sk-test-key-123456", mocks.settings.embedKey)
	assert.Contains(t, buf.String(), "Embedding provider configured: OpenAI (cloud)")
}

func TestSettingsSynthesisCmd_MissingKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	withSettingsInput(t, "3\ncustom-model\n\n")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"settings", "synthesis"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestSettingsSynthesisCmd_Local(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	withSettingsInput(t, "1\nmistral\n")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "llm"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, domain.AIProviderOllama, mocks.settings.settings.Synthesis.Provider)
	assert.Equal(t, "mistral", mocks.settings.settings.Synthesis.Model)
}

func TestSettingsChunkingCmd(t *testing.T) {
	t.Run("switches to window", func(t *testing.T) {
		cleanup := setupTestServices()
		defer cleanup()

		buf := new(bytes.Buffer)
		rootCmd.SetOut(buf)
		rootCmd.SetArgs([]string{"settings", "chunking", "--strategy", "window", "--size", "800", "--overlap", "200"})
		defer func() {
			rootCmd.SetArgs(nil)
		}()

		require.NoError(t, rootCmd.Execute())
		require.NotNil(t, mocks.settings.saved)
		assert.Equal(t, domain.ChunkingSettings{Strategy: domain.ChunkStrategyWindow, Size: 800, Overlap: 200}, mocks.settings.saved.Chunking)
	})

	t.Run("rejects overlap not below size", func(t *testing.T) {
		cleanup := setupTestServices()
		defer cleanup()

		buf := new(bytes.Buffer)
		rootCmd.SetOut(buf)
		rootCmd.SetErr(buf)
		rootCmd.SetArgs([]string{"settings", "chunking", "--strategy", "window", "--size", "100", "--overlap", "100"})
		defer func() {
			rootCmd.SetArgs(nil)
		}()

		err := rootCmd.Execute()
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Nil(t, mocks.settings.saved)
	})
}
