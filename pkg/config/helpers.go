package config

import (
	"os"

	"github.com/flowlens/flowlens/engine/profile"
)

// EnsureProfile returns the provided profile id if it's not empty, otherwise
// falls back to the configured default. This keeps flag handling uniform:
// commands pass their --profile value through without checking it first.
func EnsureProfile(providedID string, cfg *Config) string {
	if providedID != "" {
		return providedID
	}
	if cfg != nil && cfg.Defaults.Profile != "" {
		return cfg.Defaults.Profile
	}
	return profile.DefaultID
}

// EnsureFormat returns the provided format name if it's not empty, otherwise
// falls back to the configured default.
func EnsureFormat(providedFormat string, cfg *Config) string {
	if providedFormat != "" {
		return providedFormat
	}
	if cfg != nil && cfg.Defaults.Format != "" {
		return cfg.Defaults.Format
	}
	return FormatText
}

// ResolveAPIKey returns the explanation backend key, preferring the config
// file over the OPENAI_API_KEY environment variable.
func ResolveAPIKey(cfg *Config) string {
	if cfg != nil && cfg.LLM.APIKey != "" {
		return cfg.LLM.APIKey
	}
	return os.Getenv("OPENAI_API_KEY")
}
