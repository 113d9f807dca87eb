package commands

import (
	"fmt"
	"os"
	"sync"

	"github.com/flowlens/flowlens/pkg/config"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new flowlens configuration file",
	Long: `Initialize creates a new flowlens.yaml configuration file in the current
directory with default settings. This file lets you pick a default
language profile and output format, size the analysis cache, tune the
heuristic thresholds, and configure the LLM explainer.

The configuration file includes:
  • Default profile and output format
  • Analysis cache capacity
  • Heuristic thresholds (function length, nesting, parameters)
  • OpenAI key and model for the explain command

Example:
  flowlens init

This will create a flowlens.yaml file with sensible defaults that you can
then customize according to your needs.`,
	Example: `  # Create a default configuration file
  flowlens init

  # After creation, edit flowlens.yaml to customize:
  # - Default profile and format
  # - Heuristic thresholds
  # - OpenAI API key for explanations`,
	RunE: func(_ *cobra.Command, _ []string) error {
		configFile := "flowlens.yaml"
		if cfgFile != "" {
			configFile = cfgFile
		}

		// Check if file exists and force flag is not set
		if _, err := os.Stat(configFile); err == nil && !forceOverwrite {
			return fmt.Errorf("config file %s already exists. Use --force to overwrite", configFile)
		}

		if err := config.Save(config.DefaultConfig(), configFile); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		fmt.Printf("✓ Configuration file '%s' created successfully\n", configFile)
		fmt.Println("\nNext steps:")
		fmt.Println("1. Edit the config file to set defaults or an OpenAI key")
		fmt.Println("2. Run 'flowlens analyze <file>' to analyze a snippet")
		return nil
	},
}

var (
	initInitOnce   sync.Once
	forceOverwrite bool
)

// InitInitCommand registers the init command
func InitInitCommand() {
	initInitOnce.Do(func() {
		initCmd.Flags().BoolVar(&forceOverwrite, "force", false, "Force overwrite existing config file")
		rootCmd.AddCommand(initCmd)
	})
}
