package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flowlens/flowlens/engine/cache"
	"github.com/flowlens/flowlens/engine/core"
	"github.com/flowlens/flowlens/engine/heuristics"
	"github.com/flowlens/flowlens/engine/profile"
	"github.com/flowlens/flowlens/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Run("Should return valid default configuration", func(t *testing.T) {
		cfg := config.DefaultConfig()

		// Defaults
		assert.Equal(t, profile.DefaultID, cfg.Defaults.Profile)
		assert.Equal(t, config.FormatText, cfg.Defaults.Format)

		// Cache defaults
		assert.Equal(t, cache.DefaultCapacity, cfg.Cache.Capacity)

		// Heuristic thresholds
		assert.Equal(t, heuristics.DefaultLongFunctionLines, cfg.Heuristics.LongFunctionLines)
		assert.Equal(t, heuristics.DefaultDeepNestingDepth, cfg.Heuristics.DeepNestingDepth)
		assert.Equal(t, heuristics.DefaultParameterCommaMax, cfg.Heuristics.ParameterCommaMax)

		// LLM is opt-in
		assert.Empty(t, cfg.LLM.APIKey)
		assert.Empty(t, cfg.LLM.Model)
	})
}

func TestLoad(t *testing.T) {
	t.Run("Should fail when an explicit path does not exist", func(t *testing.T) {
		_, err := config.Load("non-existent-file.yaml")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")

		var coreErr *core.Error
		require.ErrorAs(t, err, &coreErr)
		assert.Equal(t, core.ErrorCodeConfigNotFound, coreErr.Code)
		assert.Equal(t, "non-existent-file.yaml", coreErr.Metadata["path"])
	})

	t.Run("Should load config from YAML file", func(t *testing.T) {
		// Create a temporary config file
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".flowlens.yaml")

		configContent := `
defaults:
  profile: python
  format: json
cache:
  capacity: 16
heuristics:
  long_function_lines: 30
  deep_nesting_depth: 4
  parameter_comma_max: 6
llm:
  api_key: test-key
  model: gpt-4o
`
		err := os.WriteFile(configPath, []byte(configContent), 0644)
		require.NoError(t, err)

		// Load the config
		cfg, err := config.Load(configPath)

		require.NoError(t, err)
		assert.Equal(t, "python", cfg.Defaults.Profile)
		assert.Equal(t, "json", cfg.Defaults.Format)
		assert.Equal(t, 16, cfg.Cache.Capacity)
		assert.Equal(t, 30, cfg.Heuristics.LongFunctionLines)
		assert.Equal(t, 4, cfg.Heuristics.DeepNestingDepth)
		assert.Equal(t, 6, cfg.Heuristics.ParameterCommaMax)
		assert.Equal(t, "test-key", cfg.LLM.APIKey)
		assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	})

	t.Run("Should keep defaults for keys the file omits", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".flowlens.yaml")

		configContent := `
defaults:
  profile: java
`
		err := os.WriteFile(configPath, []byte(configContent), 0644)
		require.NoError(t, err)

		cfg, err := config.Load(configPath)

		require.NoError(t, err)
		assert.Equal(t, "java", cfg.Defaults.Profile)
		assert.Equal(t, config.FormatText, cfg.Defaults.Format)
		assert.Equal(t, cache.DefaultCapacity, cfg.Cache.Capacity)
		assert.Equal(t, heuristics.DefaultDeepNestingDepth, cfg.Heuristics.DeepNestingDepth)
	})

	t.Run("Should load config from current directory when path is empty", func(t *testing.T) {
		// Save current directory and restore it after test
		originalDir, err := os.Getwd()
		require.NoError(t, err)
		defer func() {
			err := os.Chdir(originalDir)
			require.NoError(t, err)
		}()

		// Create a temporary directory and change to it
		tmpDir := t.TempDir()
		err = os.Chdir(tmpDir)
		require.NoError(t, err)

		// Create config file in the temp directory
		configContent := `
defaults:
  profile: c
`
		err = os.WriteFile("flowlens.yaml", []byte(configContent), 0644)
		require.NoError(t, err)

		// Load config with empty path
		cfg, err := config.Load("")

		require.NoError(t, err)
		assert.Equal(t, "c", cfg.Defaults.Profile)
	})

	t.Run("Should return defaults when no config file is present", func(t *testing.T) {
		originalDir, err := os.Getwd()
		require.NoError(t, err)
		defer func() {
			err := os.Chdir(originalDir)
			require.NoError(t, err)
		}()

		tmpDir := t.TempDir()
		err = os.Chdir(tmpDir)
		require.NoError(t, err)

		cfg, err := config.Load("")

		require.NoError(t, err)
		assert.Equal(t, profile.DefaultID, cfg.Defaults.Profile)
		assert.Equal(t, cache.DefaultCapacity, cfg.Cache.Capacity)
	})

	t.Run("Should apply environment overrides without a config file", func(t *testing.T) {
		originalDir, err := os.Getwd()
		require.NoError(t, err)
		defer func() {
			err := os.Chdir(originalDir)
			require.NoError(t, err)
		}()

		tmpDir := t.TempDir()
		err = os.Chdir(tmpDir)
		require.NoError(t, err)

		t.Setenv("FLOWLENS_DEFAULTS_PROFILE", "python")
		t.Setenv("FLOWLENS_CACHE_CAPACITY", "64")

		cfg, err := config.Load("")

		require.NoError(t, err)
		assert.Equal(t, "python", cfg.Defaults.Profile)
		assert.Equal(t, 64, cfg.Cache.Capacity)
	})

	t.Run("Should handle invalid YAML gracefully", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yaml")

		// Write invalid YAML
		err := os.WriteFile(configPath, []byte("invalid: yaml: content:"), 0644)
		require.NoError(t, err)

		_, err = config.Load(configPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")

		var coreErr *core.Error
		require.ErrorAs(t, err, &coreErr)
		assert.Equal(t, core.ErrorCodeConfigInvalid, coreErr.Code)
	})

	t.Run("Should reject a file with an unknown format", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".flowlens.yaml")

		configContent := `
defaults:
  format: xml
`
		err := os.WriteFile(configPath, []byte(configContent), 0644)
		require.NoError(t, err)

		_, err = config.Load(configPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
		assert.Contains(t, err.Error(), "defaults.format")
	})
}

func TestSave(t *testing.T) {
	t.Run("Should save config to specified file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "test-config.yaml")

		cfg := &config.Config{
			Defaults: config.DefaultsConfig{
				Profile: "java",
				Format:  "yaml",
			},
			Cache: config.CacheConfig{
				Capacity: 32,
			},
			Heuristics: config.HeuristicsConfig{
				LongFunctionLines: 40,
				DeepNestingDepth:  6,
				ParameterCommaMax: 5,
			},
			LLM: config.LLMConfig{
				APIKey: "saved-key",
				Model:  "gpt-4o-mini",
			},
		}

		err := config.Save(cfg, configPath)
		require.NoError(t, err)

		// Verify file was created
		_, err = os.Stat(configPath)
		require.NoError(t, err)

		// Load the saved config to verify
		loadedCfg, err := config.Load(configPath)
		require.NoError(t, err)

		assert.Equal(t, cfg.Defaults, loadedCfg.Defaults)
		assert.Equal(t, cfg.Cache, loadedCfg.Cache)
		assert.Equal(t, cfg.Heuristics, loadedCfg.Heuristics)
		assert.Equal(t, cfg.LLM, loadedCfg.LLM)
	})

	t.Run("Should save to default location when path is empty", func(t *testing.T) {
		// Save current directory and restore it after test
		originalDir, err := os.Getwd()
		require.NoError(t, err)
		defer func() {
			err := os.Chdir(originalDir)
			require.NoError(t, err)
		}()

		// Create and change to temp directory
		tmpDir := t.TempDir()
		err = os.Chdir(tmpDir)
		require.NoError(t, err)

		cfg := config.DefaultConfig()
		cfg.Defaults.Profile = "python"

		err = config.Save(cfg, "")
		require.NoError(t, err)

		// Verify file was created at default location
		_, err = os.Stat(".flowlens.yaml")
		require.NoError(t, err)

		// Load and verify
		loadedCfg, err := config.Load("")
		require.NoError(t, err)
		assert.Equal(t, "python", loadedCfg.Defaults.Profile)
	})

	t.Run("Should handle write errors", func(t *testing.T) {
		// A regular file cannot serve as a parent directory, so the write
		// fails regardless of the user running the test.
		tmpDir := t.TempDir()
		blocker := filepath.Join(tmpDir, "not-a-dir")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		cfg := config.DefaultConfig()
		err := config.Save(cfg, filepath.Join(blocker, "config.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write config file")

		var coreErr *core.Error
		require.ErrorAs(t, err, &coreErr)
		assert.Equal(t, core.ErrorCodeConfigWrite, coreErr.Code)
	})
}

func TestConfig_ToAnalyzerConfig(t *testing.T) {
	t.Run("Should carry cache and heuristic settings into the pipeline config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Cache.Capacity = 32
		cfg.Heuristics.LongFunctionLines = 25
		cfg.Heuristics.DeepNestingDepth = 3
		cfg.Heuristics.ParameterCommaMax = 2

		pipelineCfg := cfg.ToAnalyzerConfig()

		assert.Equal(t, 32, pipelineCfg.CacheCapacity)
		require.NotNil(t, pipelineCfg.Heuristics)
		assert.Equal(t, 25, pipelineCfg.Heuristics.LongFunctionLines)
		assert.Equal(t, 3, pipelineCfg.Heuristics.DeepNestingDepth)
		assert.Equal(t, 2, pipelineCfg.Heuristics.ParameterCommaMax)
		assert.True(t, pipelineCfg.ValidateIndentation)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("Should pass validation with defaults", func(t *testing.T) {
		cfg := config.DefaultConfig()

		err := cfg.Validate()
		assert.NoError(t, err)
	})

	t.Run("Should reject negative cache capacity", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Cache.Capacity = -1

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache.capacity cannot be negative")
	})

	t.Run("Should allow zero capacity to disable caching", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Cache.Capacity = 0

		err := cfg.Validate()
		assert.NoError(t, err)
	})

	t.Run("Should normalize an empty profile to the default", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Defaults.Profile = ""

		err := cfg.Validate()
		assert.NoError(t, err)
		assert.Equal(t, profile.DefaultID, cfg.Defaults.Profile)
	})

	t.Run("Should normalize an empty format to text", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Defaults.Format = ""

		err := cfg.Validate()
		assert.NoError(t, err)
		assert.Equal(t, config.FormatText, cfg.Defaults.Format)
	})

	t.Run("Should accept every export format", func(t *testing.T) {
		for _, format := range []string{"json", "yaml", "csv"} {
			cfg := config.DefaultConfig()
			cfg.Defaults.Format = format

			err := cfg.Validate()
			assert.NoError(t, err, "format %s", format)
		}
	})

	t.Run("Should reject an unknown format", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Defaults.Format = "xml"

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "defaults.format")
		assert.Contains(t, err.Error(), "unsupported export format")
	})

	t.Run("Should normalize non-positive thresholds to defaults", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Heuristics.LongFunctionLines = 0
		cfg.Heuristics.DeepNestingDepth = -2
		cfg.Heuristics.ParameterCommaMax = 0

		err := cfg.Validate()
		assert.NoError(t, err)
		assert.Equal(t, heuristics.DefaultLongFunctionLines, cfg.Heuristics.LongFunctionLines)
		assert.Equal(t, heuristics.DefaultDeepNestingDepth, cfg.Heuristics.DeepNestingDepth)
		assert.Equal(t, heuristics.DefaultParameterCommaMax, cfg.Heuristics.ParameterCommaMax)
	})
}

func TestConfigIntegration(t *testing.T) {
	t.Run("Should handle full config lifecycle", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "integration-test.yaml")

		// Create a config
		originalCfg := &config.Config{
			Defaults: config.DefaultsConfig{
				Profile: "python",
				Format:  "csv",
			},
			Cache: config.CacheConfig{
				Capacity: 8,
			},
			Heuristics: config.HeuristicsConfig{
				LongFunctionLines: 20,
				DeepNestingDepth:  2,
				ParameterCommaMax: 3,
			},
			LLM: config.LLMConfig{
				APIKey: "integration-key",
				Model:  "gpt-4o",
			},
		}

		// Save it
		err := config.Save(originalCfg, configPath)
		require.NoError(t, err)

		// Load it back
		loadedCfg, err := config.Load(configPath)
		require.NoError(t, err)

		// Verify all fields match
		assert.Equal(t, originalCfg.Defaults, loadedCfg.Defaults)
		assert.Equal(t, originalCfg.Cache, loadedCfg.Cache)
		assert.Equal(t, originalCfg.Heuristics, loadedCfg.Heuristics)
		assert.Equal(t, originalCfg.LLM, loadedCfg.LLM)

		// Convert to the pipeline config and verify
		pipelineCfg := loadedCfg.ToAnalyzerConfig()
		assert.Equal(t, 8, pipelineCfg.CacheCapacity)
		require.NotNil(t, pipelineCfg.Heuristics)
		assert.Equal(t, 20, pipelineCfg.Heuristics.LongFunctionLines)
	})
}
