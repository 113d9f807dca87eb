package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flowlens/flowlens/engine/analyzer"
	"github.com/flowlens/flowlens/engine/cache"
	"github.com/flowlens/flowlens/engine/core"
	"github.com/flowlens/flowlens/engine/export"
	"github.com/flowlens/flowlens/engine/heuristics"
	"github.com/flowlens/flowlens/engine/profile"
	"github.com/spf13/viper"
)

const (
	defaultConfigFileName = ".flowlens"
	defaultConfigType     = "yaml"
	envPrefix             = "FLOWLENS"

	// FormatText is the styled terminal report, alongside the export formats
	FormatText = "text"
)

// Config represents the application configuration
type Config struct {
	Defaults   DefaultsConfig   `mapstructure:"defaults"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Heuristics HeuristicsConfig `mapstructure:"heuristics"`
	LLM        LLMConfig        `mapstructure:"llm"`
}

// DefaultsConfig selects the profile and output format used when flags are absent
type DefaultsConfig struct {
	Profile string `mapstructure:"profile"`
	Format  string `mapstructure:"format"`
}

// CacheConfig sizes the analysis result cache
type CacheConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// HeuristicsConfig overrides the finding detector thresholds
type HeuristicsConfig struct {
	LongFunctionLines int `mapstructure:"long_function_lines"`
	DeepNestingDepth  int `mapstructure:"deep_nesting_depth"`
	ParameterCommaMax int `mapstructure:"parameter_comma_max"`
}

// LLMConfig configures the optional explanation backend
type LLMConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Profile: profile.DefaultID,
			Format:  FormatText,
		},
		Cache: CacheConfig{
			Capacity: cache.DefaultCapacity,
		},
		Heuristics: HeuristicsConfig{
			LongFunctionLines: heuristics.DefaultLongFunctionLines,
			DeepNestingDepth:  heuristics.DefaultDeepNestingDepth,
			ParameterCommaMax: heuristics.DefaultParameterCommaMax,
		},
		LLM: LLMConfig{
			APIKey: "",
			Model:  "",
		},
	}
}

// Load loads configuration from a file. With an empty path it searches the
// current directory and falls back to defaults plus FLOWLENS_* environment
// overrides when no file is present. An explicit path that does not exist
// is an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		// Look for config file in current directory - try both formats
		possiblePaths := []string{
			filepath.Join(".", "flowlens.yaml"),
			filepath.Join(".", defaultConfigFileName+"."+defaultConfigType),
		}
		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, core.NewError(
			fmt.Errorf("config file %s does not exist", configPath),
			core.ErrorCodeConfigNotFound,
			map[string]any{"path": configPath},
		)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType(defaultConfigType)

		if err := v.ReadInConfig(); err != nil {
			return nil, core.NewError(
				fmt.Errorf("failed to read config file: %w", err),
				core.ErrorCodeConfigInvalid,
				map[string]any{"path": configPath},
			)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, core.NewError(
			fmt.Errorf("failed to unmarshal config: %w", err),
			core.ErrorCodeConfigInvalid,
			map[string]any{"path": configPath},
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, core.NewError(
			fmt.Errorf("invalid config: %w", err),
			core.ErrorCodeConfigInvalid,
			map[string]any{"path": configPath},
		)
	}

	return cfg, nil
}

// Save saves the configuration to a file
func Save(cfg *Config, configPath string) error {
	if configPath == "" {
		configPath = filepath.Join(".", defaultConfigFileName+"."+defaultConfigType)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType(defaultConfigType)

	// Keys are written explicitly so a saved file reads back under the
	// same mapstructure names.
	v.Set("defaults", map[string]any{
		"profile": cfg.Defaults.Profile,
		"format":  cfg.Defaults.Format,
	})
	v.Set("cache", map[string]any{
		"capacity": cfg.Cache.Capacity,
	})
	v.Set("heuristics", map[string]any{
		"long_function_lines": cfg.Heuristics.LongFunctionLines,
		"deep_nesting_depth":  cfg.Heuristics.DeepNestingDepth,
		"parameter_comma_max": cfg.Heuristics.ParameterCommaMax,
	})
	v.Set("llm", map[string]any{
		"api_key": cfg.LLM.APIKey,
		"model":   cfg.LLM.Model,
	})

	if err := v.WriteConfig(); err != nil {
		return core.NewError(
			fmt.Errorf("failed to write config file: %w", err),
			core.ErrorCodeConfigWrite,
			map[string]any{"path": configPath},
		)
	}

	return nil
}

// ToAnalyzerConfig converts the file configuration into the analyzer's
func (c *Config) ToAnalyzerConfig() *analyzer.Config {
	cfg := analyzer.DefaultConfig()
	cfg.CacheCapacity = c.Cache.Capacity
	cfg.Heuristics = &heuristics.Config{
		LongFunctionLines: c.Heuristics.LongFunctionLines,
		DeepNestingDepth:  c.Heuristics.DeepNestingDepth,
		ParameterCommaMax: c.Heuristics.ParameterCommaMax,
	}
	return cfg
}

// Validate ensures the configuration is valid, normalizing optional fields
func (c *Config) Validate() error {
	if c.Cache.Capacity < 0 {
		return fmt.Errorf("cache.capacity cannot be negative")
	}

	if c.Defaults.Profile == "" {
		c.Defaults.Profile = profile.DefaultID
	}
	if c.Defaults.Format == "" {
		c.Defaults.Format = FormatText
	}
	if c.Defaults.Format != FormatText {
		if _, err := export.ParseFormat(c.Defaults.Format); err != nil {
			return fmt.Errorf("defaults.format: %w", err)
		}
	}

	if c.Heuristics.LongFunctionLines <= 0 {
		c.Heuristics.LongFunctionLines = heuristics.DefaultLongFunctionLines
	}
	if c.Heuristics.DeepNestingDepth <= 0 {
		c.Heuristics.DeepNestingDepth = heuristics.DefaultDeepNestingDepth
	}
	if c.Heuristics.ParameterCommaMax <= 0 {
		c.Heuristics.ParameterCommaMax = heuristics.DefaultParameterCommaMax
	}

	return nil
}

// setDefaults registers every key so environment overrides are visible to
// Unmarshal even when no config file exists.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("defaults.profile", defaults.Defaults.Profile)
	v.SetDefault("defaults.format", defaults.Defaults.Format)
	v.SetDefault("cache.capacity", defaults.Cache.Capacity)
	v.SetDefault("heuristics.long_function_lines", defaults.Heuristics.LongFunctionLines)
	v.SetDefault("heuristics.deep_nesting_depth", defaults.Heuristics.DeepNestingDepth)
	v.SetDefault("heuristics.parameter_comma_max", defaults.Heuristics.ParameterCommaMax)
	v.SetDefault("llm.api_key", defaults.LLM.APIKey)
	v.SetDefault("llm.model", defaults.LLM.Model)
}
