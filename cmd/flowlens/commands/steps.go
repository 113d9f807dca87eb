package commands

import (
	"fmt"
	"sync"

	"github.com/flowlens/flowlens/engine/analyzer"
	"github.com/flowlens/flowlens/pkg/config"
	"github.com/flowlens/flowlens/pkg/walkthrough"
	"github.com/spf13/cobra"
)

var stepsCmd = &cobra.Command{
	Use:   "steps [file]",
	Short: "Narrate the execution of a snippet step by step",
	Long: `Steps narrates a snippet as an ordered list of execution steps. Each
step names the statement, explains what it does in beginner terms, and
records the memory events it causes, such as creating or updating a
variable.

With --interactive the steps open in a terminal walkthrough: arrow keys
move between steps, space toggles autoplay, and the source pane keeps
the current line in view. Without it, or when stdout is not a terminal,
the steps print as a plain numbered list.`,
	Example: `  # Print the execution steps
  flowlens steps fibonacci.js

  # Walk the steps interactively
  flowlens steps fibonacci.js --interactive

  # Narrate a python snippet from stdin
  cat loop.py | flowlens steps - --profile python`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		profileID, err := cmd.Flags().GetString("profile")
		if err != nil {
			return fmt.Errorf("failed to get profile flag: %w", err)
		}
		interactive, err := cmd.Flags().GetBool("interactive")
		if err != nil {
			return fmt.Errorf("failed to get interactive flag: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
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

		if interactive {
			return walkthrough.Run(result, source, cmd.OutOrStdout())
		}

		fmt.Fprint(cmd.OutOrStdout(), walkthrough.RenderPlain(result))
		return nil
	},
}

var initStepsOnce sync.Once

// InitStepsCommand registers the steps command
func InitStepsCommand() {
	initStepsOnce.Do(func() {
		rootCmd.AddCommand(stepsCmd)

		stepsCmd.Flags().StringP("profile", "p", "", "Language profile id (javascript, python, java, c)")
		stepsCmd.Flags().BoolP("interactive", "i", false, "Open the steps in an interactive walkthrough")
	})
}
