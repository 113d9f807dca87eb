package mcp

import (
	"context"

	"github.com/flowlens/flowlens/engine/analyzer"
	"github.com/flowlens/flowlens/engine/flowchart"
	"github.com/flowlens/flowlens/engine/llm"
	"github.com/flowlens/flowlens/pkg/logger"
	mcpconfig "github.com/flowlens/flowlens/pkg/mcp"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server exposes the snippet analyzer over the Model Context Protocol
type Server struct {
	config     *mcpconfig.Config
	service    analyzer.Service
	explainer  llm.Explainer
	serializer *flowchart.Serializer
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance. A nil config uses defaults,
// a nil service builds the default analyzer pipeline, and a nil explainer
// leaves explain_analysis reporting unavailable.
func NewServer(config *mcpconfig.Config, service analyzer.Service, explainer llm.Explainer) *Server {
	if config == nil {
		config = mcpconfig.DefaultConfig()
	}
	if service == nil {
		service = analyzer.NewService(nil, nil)
	}
	s := &Server{
		config:     config,
		service:    service,
		explainer:  explainer,
		serializer: flowchart.NewSerializer(),
	}

	// Create MCP server instance
	s.mcpServer = server.NewMCPServer(
		config.Server.Name,
		config.Server.Version,
		server.WithToolCapabilities(false), // Static tool set
	)

	// Register all tools
	s.registerTools()

	return s
}

// Start starts the MCP server
func (s *Server) Start(_ context.Context) error {
	logger.Info("Starting MCP server on stdio")

	// Use stdio transport for CLI integration
	return server.ServeStdio(s.mcpServer)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.registerAnalysisTools()
	s.registerInsightTools()
	s.registerServiceTools()
}

// registerAnalysisTools registers the tools that run the full pipeline
func (s *Server) registerAnalysisTools() {
	// analyze_snippet tool
	analyzeSnippetTool := mcp.NewTool(
		"analyze_snippet",
		mcp.WithDescription("Analyze a source snippet and return the full result: statements, flowchart, metrics, findings, and execution steps"),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source snippet to analyze")),
		mcp.WithString(
			"profile",
			mcp.Description("Language profile id: javascript, python, java, or c (default: javascript)"),
		),
	)
	s.mcpServer.AddTool(analyzeSnippetTool, s.handleAnalyzeSnippet)

	// get_flowchart tool
	getFlowchartTool := mcp.NewTool(
		"get_flowchart",
		mcp.WithDescription("Build the control-flow graph of a snippet and return it as Mermaid flowchart text"),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source snippet to analyze")),
		mcp.WithString(
			"profile",
			mcp.Description("Language profile id: javascript, python, java, or c (default: javascript)"),
		),
	)
	s.mcpServer.AddTool(getFlowchartTool, s.handleGetFlowchart)

	// get_execution_steps tool
	getExecutionStepsTool := mcp.NewTool(
		"get_execution_steps",
		mcp.WithDescription("Narrate a snippet as an ordered list of execution steps"),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source snippet to analyze")),
		mcp.WithString(
			"profile",
			mcp.Description("Language profile id: javascript, python, java, or c (default: javascript)"),
		),
		mcp.WithBoolean(
			"include_variable_flow",
			mcp.Description("Include the per-variable event timeline in the resource payload"),
		),
	)
	s.mcpServer.AddTool(getExecutionStepsTool, s.handleGetExecutionSteps)
}

// registerInsightTools registers the metric and finding tools
func (s *Server) registerInsightTools() {
	// get_metrics tool
	getMetricsTool := mcp.NewTool(
		"get_metrics",
		mcp.WithDescription("Compute complexity and quality metrics for a snippet"),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source snippet to analyze")),
		mcp.WithString(
			"profile",
			mcp.Description("Language profile id: javascript, python, java, or c (default: javascript)"),
		),
	)
	s.mcpServer.AddTool(getMetricsTool, s.handleGetMetrics)

	// detect_issues tool
	detectIssuesTool := mcp.NewTool(
		"detect_issues",
		mcp.WithDescription("Run the heuristic detectors and return findings grouped by quality, performance, security, and patterns"),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source snippet to analyze")),
		mcp.WithString(
			"profile",
			mcp.Description("Language profile id: javascript, python, java, or c (default: javascript)"),
		),
	)
	s.mcpServer.AddTool(detectIssuesTool, s.handleDetectIssues)

	// explain_analysis tool
	explainAnalysisTool := mcp.NewTool(
		"explain_analysis",
		mcp.WithDescription("Generate a plain-language explanation of the analysis (requires a configured OpenAI key)"),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source snippet to analyze")),
		mcp.WithString(
			"profile",
			mcp.Description("Language profile id: javascript, python, java, or c (default: javascript)"),
		),
	)
	s.mcpServer.AddTool(explainAnalysisTool, s.handleExplainAnalysis)
}

// registerServiceTools registers the registry and cache management tools
func (s *Server) registerServiceTools() {
	// list_profiles tool
	listProfilesTool := mcp.NewTool(
		"list_profiles",
		mcp.WithDescription("List the built-in language profiles"),
	)
	s.mcpServer.AddTool(listProfilesTool, s.handleListProfiles)

	// cache_stats tool
	cacheStatsTool := mcp.NewTool(
		"cache_stats",
		mcp.WithDescription("Report analysis cache occupancy and hit rate"),
	)
	s.mcpServer.AddTool(cacheStatsTool, s.handleCacheStats)

	// clear_cache tool
	clearCacheTool := mcp.NewTool(
		"clear_cache",
		mcp.WithDescription("Drop all cached analysis results"),
	)
	s.mcpServer.AddTool(clearCacheTool, s.handleClearCache)
}

func (s *Server) handleAnalyzeSnippet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return nil, err
	}
	profile := getString(req, "profile")

	response, err := s.HandleAnalyzeSnippetInternal(ctx, map[string]any{
		"source":  source,
		"profile": profile,
	})
	if err != nil {
		return nil, err
	}

	return toolResult(response)
}

func (s *Server) handleGetFlowchart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return nil, err
	}
	profile := getString(req, "profile")

	response, err := s.HandleGetFlowchartInternal(ctx, map[string]any{
		"source":  source,
		"profile": profile,
	})
	if err != nil {
		return nil, err
	}

	return toolResult(response)
}

func (s *Server) handleGetExecutionSteps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return nil, err
	}
	profile := getString(req, "profile")
	includeFlow := getBool(req, "include_variable_flow")

	response, err := s.HandleGetExecutionStepsInternal(ctx, map[string]any{
		"source":                source,
		"profile":               profile,
		"include_variable_flow": includeFlow,
	})
	if err != nil {
		return nil, err
	}

	return toolResult(response)
}

func (s *Server) handleGetMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return nil, err
	}
	profile := getString(req, "profile")

	response, err := s.HandleGetMetricsInternal(ctx, map[string]any{
		"source":  source,
		"profile": profile,
	})
	if err != nil {
		return nil, err
	}

	return toolResult(response)
}

func (s *Server) handleDetectIssues(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return nil, err
	}
	profile := getString(req, "profile")

	response, err := s.HandleDetectIssuesInternal(ctx, map[string]any{
		"source":  source,
		"profile": profile,
	})
	if err != nil {
		return nil, err
	}

	return toolResult(response)
}

func (s *Server) handleExplainAnalysis(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return nil, err
	}
	profile := getString(req, "profile")

	response, err := s.HandleExplainAnalysisInternal(ctx, map[string]any{
		"source":  source,
		"profile": profile,
	})
	if err != nil {
		return nil, err
	}

	return toolResult(response)
}

func (s *Server) handleListProfiles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response, err := s.HandleListProfilesInternal(ctx, map[string]any{})
	if err != nil {
		return nil, err
	}

	return toolResult(response)
}

func (s *Server) handleCacheStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response, err := s.HandleCacheStatsInternal(ctx, map[string]any{})
	if err != nil {
		return nil, err
	}

	return toolResult(response)
}

func (s *Server) handleClearCache(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response, err := s.HandleClearCacheInternal(ctx, map[string]any{})
	if err != nil {
		return nil, err
	}

	return toolResult(response)
}
