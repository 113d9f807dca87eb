package config

import (
	"testing"

	"github.com/flowlens/flowlens/engine/profile"
	"github.com/stretchr/testify/assert"
)

func TestEnsureProfile(t *testing.T) {
	configured := DefaultConfig()
	configured.Defaults.Profile = "python"

	tests := []struct {
		name       string
		providedID string
		cfg        *Config
		expectedID string
	}{
		{
			name:       "Should use provided id when given",
			providedID: "java",
			cfg:        configured,
			expectedID: "java",
		},
		{
			name:       "Should fall back to the configured default",
			providedID: "",
			cfg:        configured,
			expectedID: "python",
		},
		{
			name:       "Should fall back to the builtin default without a config",
			providedID: "",
			cfg:        nil,
			expectedID: profile.DefaultID,
		},
		{
			name:       "Should fall back to the builtin default when the config is blank",
			providedID: "",
			cfg:        &Config{},
			expectedID: profile.DefaultID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedID, EnsureProfile(tt.providedID, tt.cfg))
		})
	}
}

func TestEnsureFormat(t *testing.T) {
	configured := DefaultConfig()
	configured.Defaults.Format = "json"

	tests := []struct {
		name           string
		providedFormat string
		cfg            *Config
		expectedFormat string
	}{
		{
			name:           "Should use provided format when given",
			providedFormat: "csv",
			cfg:            configured,
			expectedFormat: "csv",
		},
		{
			name:           "Should fall back to the configured default",
			providedFormat: "",
			cfg:            configured,
			expectedFormat: "json",
		},
		{
			name:           "Should fall back to text without a config",
			providedFormat: "",
			cfg:            nil,
			expectedFormat: FormatText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedFormat, EnsureFormat(tt.providedFormat, tt.cfg))
		})
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Run("Should prefer the configured key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "env-key")

		cfg := DefaultConfig()
		cfg.LLM.APIKey = "config-key"

		assert.Equal(t, "config-key", ResolveAPIKey(cfg))
	})

	t.Run("Should fall back to the environment", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "env-key")

		assert.Equal(t, "env-key", ResolveAPIKey(DefaultConfig()))
	})

	t.Run("Should return empty when neither source is set", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")

		assert.Empty(t, ResolveAPIKey(nil))
	})
}
