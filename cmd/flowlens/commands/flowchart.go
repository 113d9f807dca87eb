package commands

import (
	"fmt"
	"sync"

	"github.com/flowlens/flowlens/engine/analyzer"
	"github.com/flowlens/flowlens/engine/flowchart"
	"github.com/flowlens/flowlens/pkg/config"
	"github.com/flowlens/flowlens/pkg/logger"
	"github.com/spf13/cobra"
)

var flowchartCmd = &cobra.Command{
	Use:   "flowchart [file]",
	Short: "Render the control-flow graph of a snippet as Mermaid text",
	Long: `Flowchart builds the control-flow graph of a snippet and prints it as
Mermaid flowchart text. Conditionals become decision diamonds with Yes
and No branches, loops get emphasized back-edges, and every run of
straight-line statements becomes a process node.

The output renders directly in Mermaid-aware tools such as GitHub
markdown, mermaid.live, and most documentation generators.`,
	Example: `  # Print the flowchart for a snippet
  flowlens flowchart fibonacci.js

  # Read the snippet from stdin
  cat fibonacci.js | flowlens flowchart -

  # Write the Mermaid text to a file
  flowlens flowchart fibonacci.js --output fibonacci.mmd`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		profileID, err := cmd.Flags().GetString("profile")
		if err != nil {
			return fmt.Errorf("failed to get profile flag: %w", err)
		}
		outputPath, err := cmd.Flags().GetString("output")
		if err != nil {
			return fmt.Errorf("failed to get output flag: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if outputPath == "" {
			logger.Quiet()
		}

		source, err := readSource(cmd, path)
		if err != nil {
			return err
		}

		service := analyzer.NewService(cfg.ToAnalyzerConfig(), nil)
		result, err := service.Analyze(cmd.Context(), &analyzer.AnalysisInput{
			ProfileID: config.EnsureProfile(profileID, cfg),
			Source:    source,
		})
		if err != nil {
			return fmt.Errorf("failed to analyze snippet: %w", err)
		}

		for _, warning := range result.Graph.Warnings {
			logger.Warn("indentation inconsistency", "detail", warning)
		}

		mermaid := flowchart.NewSerializer().Serialize(result.Graph)
		if outputPath != "" {
			return writeOutputFile(outputPath, []byte(mermaid))
		}
		fmt.Fprint(cmd.OutOrStdout(), mermaid)
		return nil
	},
}

var initFlowchartOnce sync.Once

// InitFlowchartCommand registers the flowchart command
func InitFlowchartCommand() {
	initFlowchartOnce.Do(func() {
		rootCmd.AddCommand(flowchartCmd)

		flowchartCmd.Flags().StringP("profile", "p", "", "Language profile id (javascript, python, java, c)")
		flowchartCmd.Flags().StringP("output", "o", "", "Write the Mermaid text to a file instead of stdout")
	})
}
