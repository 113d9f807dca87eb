package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowlens/flowlens/engine/analyzer"
	"github.com/flowlens/flowlens/engine/llm"
	"github.com/flowlens/flowlens/engine/mcp"
	"github.com/flowlens/flowlens/pkg/config"
	"github.com/flowlens/flowlens/pkg/logger"
	mcpconfig "github.com/flowlens/flowlens/pkg/mcp"
	"github.com/spf13/cobra"
)

var (
	mcpMaxSourceBytes int
	mcpMaxSourceLines int
	mcpTimeout        time.Duration
	mcpLogJSON        bool
)

// serveMCPCmd represents the serve-mcp command
var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server to expose snippet analysis to LLM applications",
	Long: `Start the Model Context Protocol (MCP) server to expose FlowLens snippet
analysis to LLM applications. This allows AI assistants to analyze code
snippets through standardized MCP tools over stdio transport.

The MCP server provides:
  • analyze_snippet for the full pipeline result
  • get_flowchart for Mermaid flowchart text
  • get_execution_steps for the narrated walkthrough
  • get_metrics and detect_issues for targeted insights
  • explain_analysis for LLM-backed explanations
  • list_profiles, cache_stats, and clear_cache for service management

Examples:
  # Start MCP server with default settings
  flowlens serve-mcp

  # Raise the snippet size limits
  flowlens serve-mcp --max-source-bytes 2097152 --max-source-lines 10000

  # Tighten the per-request timeout
  flowlens serve-mcp --timeout 10s

  # Emit JSON log records for a host that captures stderr
  flowlens serve-mcp --log-json`,
	RunE: runServeMCP,
}

// RegisterMCPCommand registers the MCP command with the root command
func RegisterMCPCommand() {
	// Setup flags
	serveMCPCmd.Flags().IntVar(&mcpMaxSourceBytes, "max-source-bytes", 0, "Override the snippet size limit in bytes")
	serveMCPCmd.Flags().IntVar(&mcpMaxSourceLines, "max-source-lines", 0, "Override the snippet line limit")
	serveMCPCmd.Flags().DurationVar(&mcpTimeout, "timeout", 0, "Per-request analysis timeout")
	serveMCPCmd.Flags().BoolVar(&mcpLogJSON, "log-json", false, "Emit logs as JSON records")

	// Add to root command
	rootCmd.AddCommand(serveMCPCmd)
}

func runServeMCP(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if mcpLogJSON {
		logger.SetJSON(true)
	}

	serverCfg, err := prepareMCPConfiguration(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	server := createMCPServer(serverCfg, cfg)

	runMCPServerWithGracefulShutdown(ctx, cancel, server)
	return nil
}

func prepareMCPConfiguration(cmd *cobra.Command) (*mcpconfig.Config, error) {
	serverCfg := mcpconfig.DefaultConfig()
	applyCommandLineFlagOverrides(cmd, serverCfg)

	if err := serverCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid MCP configuration: %w", err)
	}
	return serverCfg, nil
}

func applyCommandLineFlagOverrides(cmd *cobra.Command, serverCfg *mcpconfig.Config) {
	if cmd.Flags().Changed("max-source-bytes") {
		serverCfg.Limits.MaxSourceBytes = mcpMaxSourceBytes
	}
	if cmd.Flags().Changed("max-source-lines") {
		serverCfg.Limits.MaxSourceLines = mcpMaxSourceLines
	}
	if cmd.Flags().Changed("timeout") {
		serverCfg.Performance.RequestTimeout = mcpTimeout
	}
}

func createMCPServer(serverCfg *mcpconfig.Config, cfg *config.Config) *mcp.Server {
	service := analyzer.NewService(cfg.ToAnalyzerConfig(), nil)

	var explainer llm.Explainer
	if apiKey := config.ResolveAPIKey(cfg); apiKey != "" {
		explainer = llm.NewOpenAIExplainer(llm.ExplainerConfig{
			APIKey: apiKey,
			Model:  cfg.LLM.Model,
		})
	} else {
		logger.Info("No OpenAI key configured, explain_analysis will report unavailable")
	}

	return mcp.NewServer(serverCfg, service, explainer)
}

func runMCPServerWithGracefulShutdown(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go startMCPServer(ctx, cancel, server)

	select {
	case <-sigChan:
		logger.Info("Received shutdown signal")
	case <-ctx.Done():
		logger.Info("Context canceled")
	}

	logger.Info("Shutting down MCP server...")
}

func startMCPServer(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	logger.Info("Starting MCP server with stdio transport")
	if err := server.Start(ctx); err != nil {
		logger.Error("MCP server error", "error", err)
		cancel()
	}
}
