package mcp

import (
	"time"
)

// Config represents the MCP server configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Limits      LimitsConfig      `yaml:"limits"`
	Performance PerformanceConfig `yaml:"performance"`
}

// ServerConfig identifies the server to MCP hosts
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// LimitsConfig bounds the snippets the server accepts
type LimitsConfig struct {
	MaxSourceBytes int `yaml:"max_source_bytes"`
	MaxSourceLines int `yaml:"max_source_lines"`
}

// PerformanceConfig defines per-request performance settings
type PerformanceConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DefaultConfig returns default MCP configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "flowlens",
			Version: "1.0.0",
		},
		Limits: LimitsConfig{
			MaxSourceBytes: 1 << 20,
			MaxSourceLines: 5000,
		},
		Performance: PerformanceConfig{
			RequestTimeout: 30 * time.Second,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return &ConfigError{Field: "server.name", Message: "name cannot be empty"}
	}
	if c.Server.Version == "" {
		return &ConfigError{Field: "server.version", Message: "version cannot be empty"}
	}
	if c.Limits.MaxSourceBytes <= 0 {
		return &ConfigError{Field: "limits.max_source_bytes", Message: "max_source_bytes must be positive"}
	}
	if c.Limits.MaxSourceLines <= 0 {
		return &ConfigError{Field: "limits.max_source_lines", Message: "max_source_lines must be positive"}
	}
	if c.Performance.RequestTimeout <= 0 {
		return &ConfigError{Field: "performance.request_timeout", Message: "request_timeout must be positive"}
	}
	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config validation error: " + e.Field + " - " + e.Message
}
