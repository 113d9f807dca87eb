package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/flowlens/flowlens/engine/analyzer"
	"github.com/flowlens/flowlens/engine/core"
	"github.com/flowlens/flowlens/engine/export"
	"github.com/flowlens/flowlens/pkg/config"
	pkgerrors "github.com/flowlens/flowlens/pkg/errors"
	"github.com/flowlens/flowlens/pkg/logger"
	"github.com/flowlens/flowlens/pkg/walkthrough"
	"github.com/spf13/cobra"
)

// stdinPath is the conventional argument for reading the snippet from stdin
const stdinPath = "-"

// watchInterval is the polling period for --watch mode
const watchInterval = 500 * time.Millisecond

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a source snippet and report metrics, findings, and steps",
	Long: `Analyze runs the full pipeline over one source snippet: every line is
classified against the language profile, a control-flow graph is built,
complexity and quality metrics are computed, the heuristic detectors
run, and the execution is narrated as ordered steps.

The analysis includes:
  • Line accounting (code, comment, and blank lines)
  • Cyclomatic complexity and maximum nesting depth
  • Estimated time and space complexity
  • A quality score with a rating and a security risk level
  • Findings grouped by quality, performance, security, and patterns
  • Optimization suggestions and narrated execution steps

Pass "-" as the file to read the snippet from stdin. The default text
format prints a styled terminal report; json, yaml, and csv produce the
same output as the export tooling.`,
	Example: `  # Analyze a JavaScript snippet
  flowlens analyze fibonacci.js

  # Read the snippet from stdin
  cat fibonacci.js | flowlens analyze -

  # Force the python profile and JSON output
  flowlens analyze loop.py --profile python --format json

  # Write a YAML report to a file
  flowlens analyze fibonacci.js --format yaml --output report.yaml

  # Re-analyze whenever the file changes
  flowlens analyze fibonacci.js --watch`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		// Wrap the entire command execution with panic recovery
		return pkgerrors.WithRecover("analyze_command", func() error {
			profileID, err := cmd.Flags().GetString("profile")
			if err != nil {
				return fmt.Errorf("failed to get profile flag: %w", err)
			}
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}
			outputPath, err := cmd.Flags().GetString("output")
			if err != nil {
				return fmt.Errorf("failed to get output flag: %w", err)
			}
			watch, err := cmd.Flags().GetBool("watch")
			if err != nil {
				return fmt.Errorf("failed to get watch flag: %w", err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			resolvedProfile := config.EnsureProfile(profileID, cfg)
			resolvedFormat := config.EnsureFormat(format, cfg)

			service := analyzer.NewService(cfg.ToAnalyzerConfig(), nil)

			if watch {
				if path == stdinPath {
					return fmt.Errorf("cannot watch stdin, pass a file path")
				}
				return runWatch(cmd, service, path, resolvedProfile, resolvedFormat, outputPath)
			}

			if resolvedFormat != config.FormatText && outputPath == "" {
				logger.Quiet()
			}

			source, err := readSource(cmd, path)
			if err != nil {
				return err
			}

			logger.Info("analyzing snippet", "path", path, "profile", resolvedProfile)
			result, err := service.Analyze(cmd.Context(), &analyzer.AnalysisInput{
				ProfileID: resolvedProfile,
				Source:    source,
			})
			if err != nil {
				return fmt.Errorf("failed to analyze snippet: %w", err)
			}
			logger.Debug("analysis completed",
				"statements", result.Metrics.StatementCount,
				"findings", result.Report.TotalIssues(),
				"duration", result.Duration.Round(time.Microsecond))

			return writeResult(cmd, result, resolvedFormat, outputPath)
		})
	},
}

// runWatch polls the snippet file and re-analyzes whenever its modification
// time or size changes. The service is reused across runs so unchanged
// content comes out of the cache.
func runWatch(
	cmd *cobra.Command,
	service analyzer.Service,
	path, profileID, format, outputPath string,
) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("watching snippet", "path", path, "interval", watchInterval)

	if err := analyzeOnce(cmd, service, path, profileID, format, outputPath); err != nil {
		logger.Error("analysis failed", "error", err)
	}

	var lastMod time.Time
	var lastSize int64
	if info, err := os.Stat(path); err == nil {
		lastMod = info.ModTime()
		lastSize = info.Size()
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			logger.Info("stopping watch")
			return nil
		case <-cmd.Context().Done():
			return nil
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				logger.Warn("snippet unavailable", "path", path, "error", err)
				continue
			}
			if info.ModTime().Equal(lastMod) && info.Size() == lastSize {
				continue
			}
			lastMod = info.ModTime()
			lastSize = info.Size()

			if err := analyzeOnce(cmd, service, path, profileID, format, outputPath); err != nil {
				logger.Error("analysis failed", "error", err)
			}
		}
	}
}

// analyzeOnce performs one watch-mode run. The read is retried because
// editors often truncate the file before rewriting it.
func analyzeOnce(
	cmd *cobra.Command,
	service analyzer.Service,
	path, profileID, format, outputPath string,
) error {
	source, err := pkgerrors.WithRetryTyped(cmd.Context(), "read_snippet", nil, func() (string, error) {
		return readSnippetFile(path)
	})
	if err != nil {
		return err
	}

	result, err := service.Analyze(cmd.Context(), &analyzer.AnalysisInput{
		ProfileID: profileID,
		Source:    source,
	})
	if err != nil {
		return fmt.Errorf("failed to analyze snippet: %w", err)
	}
	logger.Info("snippet analyzed",
		"statements", result.Metrics.StatementCount,
		"quality", result.Metrics.QualityScore)

	return writeResult(cmd, result, format, outputPath)
}

// readSource reads the snippet from stdin when the path is "-", otherwise
// from the file.
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == stdinPath {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", core.NewError(fmt.Errorf("failed to read stdin: %w", err), core.ErrorCodeSnippetRead, nil)
		}
		return string(data), nil
	}
	return readSnippetFile(path)
}

func readSnippetFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", core.NewError(
			fmt.Errorf("failed to read snippet: %w", err),
			core.ErrorCodeSnippetRead,
			map[string]any{"path": path},
		)
	}
	return string(data), nil
}

// writeResult renders the analysis in the requested format. The text format
// is the terminal report; everything else goes through the exporter.
func writeResult(cmd *cobra.Command, result *core.AnalysisResult, format, outputPath string) error {
	if format == config.FormatText {
		styled := outputPath == "" && walkthrough.IsInteractive()
		text := renderReport(result, styled)
		if outputPath != "" {
			return writeOutputFile(outputPath, []byte(text))
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	}

	exportFormat, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	exporter := export.NewExporter(export.DefaultExportOptions(exportFormat))

	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return core.NewError(
				fmt.Errorf("failed to create output file: %w", err),
				core.ErrorCodeExportFailed,
				map[string]any{"path": outputPath},
			)
		}
		defer file.Close()
		if err := exporter.Export(file, result); err != nil {
			return fmt.Errorf("failed to export analysis: %w", err)
		}
		logger.Info("analysis exported", "path", outputPath, "format", format)
		return nil
	}

	if err := exporter.Export(cmd.OutOrStdout(), result); err != nil {
		return fmt.Errorf("failed to export analysis: %w", err)
	}
	return nil
}

func writeOutputFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return core.NewError(
			fmt.Errorf("failed to write output file: %w", err),
			core.ErrorCodeExportFailed,
			map[string]any{"path": path},
		)
	}
	logger.Info("report written", "path", path)
	return nil
}

var initAnalyzeOnce sync.Once

// InitAnalyzeCommand registers the analyze command
func InitAnalyzeCommand() {
	initAnalyzeOnce.Do(func() {
		rootCmd.AddCommand(analyzeCmd)

		analyzeCmd.Flags().StringP("profile", "p", "", "Language profile id (javascript, python, java, c)")
		analyzeCmd.Flags().StringP("format", "f", "", "Output format: text, json, yaml, or csv")
		analyzeCmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
		analyzeCmd.Flags().Bool("watch", false, "Re-analyze whenever the file changes")
	})
}
