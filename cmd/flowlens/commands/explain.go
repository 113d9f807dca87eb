package commands

import (
	"fmt"

	"github.com/flowlens/flowlens/engine/analyzer"
	"github.com/flowlens/flowlens/engine/llm"
	"github.com/flowlens/flowlens/pkg/config"
	"github.com/flowlens/flowlens/pkg/logger"
	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain [file]",
	Short: "Explain an analysis in plain language using an LLM",
	Long: `Explain analyzes a snippet and asks an OpenAI model to turn the result
into a short plain-language explanation aimed at a learner: what the
snippet does, what the complexity estimates mean, and which reported
issue is most worth fixing.

The command needs an OpenAI API key, taken from the llm.api_key config
entry or the OPENAI_API_KEY environment variable.`,
	Example: `  # Explain a snippet with the configured model
  flowlens explain fibonacci.js

  # Use a specific model
  flowlens explain fibonacci.js --model gpt-4o

  # Explain a python snippet from stdin
  cat loop.py | flowlens explain - --profile python`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		profileID, err := cmd.Flags().GetString("profile")
		if err != nil {
			return fmt.Errorf("failed to get profile flag: %w", err)
		}
		model, err := cmd.Flags().GetString("model")
		if err != nil {
			return fmt.Errorf("failed to get model flag: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if model == "" {
			model = cfg.LLM.Model
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

		explainer := llm.NewOpenAIExplainer(llm.ExplainerConfig{
			APIKey: config.ResolveAPIKey(cfg),
			Model:  model,
		})
		explanation, err := explainer.Explain(cmd.Context(), result)
		if err != nil {
			return fmt.Errorf("failed to explain analysis: %w", err)
		}
		logger.Debug("explanation generated",
			"model", explanation.Model,
			"tokens", explanation.TokensUsed)

		fmt.Fprintln(cmd.OutOrStdout(), explanation.Text)
		return nil
	},
}

// RegisterExplainCommand registers the explain command with the root command
func RegisterExplainCommand() {
	explainCmd.Flags().StringP("profile", "p", "", "Language profile id (javascript, python, java, c)")
	explainCmd.Flags().String("model", "", "OpenAI model to use (default from config)")

	rootCmd.AddCommand(explainCmd)
}
