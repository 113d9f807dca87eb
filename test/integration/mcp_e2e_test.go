package integration

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flowlens/flowlens/engine/analyzer"
	"github.com/flowlens/flowlens/engine/core"
	"github.com/flowlens/flowlens/engine/llm"
	"github.com/flowlens/flowlens/engine/mcp"
	"github.com/flowlens/flowlens/engine/profile"
	mcpconfig "github.com/flowlens/flowlens/pkg/mcp"
	"github.com/flowlens/flowlens/pkg/testhelpers"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMCPServerIntegration drives the MCP tool handlers against the real
// analysis pipeline
func TestMCPServerIntegration(t *testing.T) {
	projectRoot := getProjectRoot()
	ctx := context.Background()

	service := analyzer.NewService(nil, nil)
	server := mcp.NewServer(mcpconfig.DefaultConfig(), service, nil)

	fibonacci := testhelpers.ReadSnippetFile(t, filepath.Join(projectRoot, "testdata", "fibonacci.js"))

	t.Run("Should analyze a snippet via MCP tool", func(t *testing.T) {
		response, err := server.HandleAnalyzeSnippetInternal(ctx, map[string]any{
			"source":  fibonacci,
			"profile": profile.IDJavaScript,
		})
		require.NoError(t, err)
		require.NotNil(t, response)

		text := firstTextContent(t, response)
		assert.Contains(t, text, "Analyzed")
		assert.Contains(t, text, profile.IDJavaScript)

		result, ok := resourceData(t, response).(*core.AnalysisResult)
		require.True(t, ok, "resource data should carry the analysis result")
		assert.Equal(t, profile.IDJavaScript, result.Profile)
		assert.NotEmpty(t, result.Statements)
	})

	t.Run("Should produce a Mermaid flowchart via MCP tool", func(t *testing.T) {
		response, err := server.HandleGetFlowchartInternal(ctx, map[string]any{
			"source": fibonacci,
		})
		require.NoError(t, err)

		text := firstTextContent(t, response)
		assert.True(t, strings.HasPrefix(text, "flowchart TD"))
		assert.Contains(t, text, "-->")

		data, ok := resourceData(t, response).(map[string]any)
		require.True(t, ok)
		assert.Equal(t, true, data["consistent"])
	})

	t.Run("Should narrate execution steps via MCP tool", func(t *testing.T) {
		response, err := server.HandleGetExecutionStepsInternal(ctx, map[string]any{
			"source":                fibonacci,
			"include_variable_flow": true,
		})
		require.NoError(t, err)

		data, ok := resourceData(t, response).(map[string]any)
		require.True(t, ok)
		assert.NotEmpty(t, data["steps"])
		assert.Contains(t, data, "variable_flow")
	})

	t.Run("Should compute metrics via MCP tool", func(t *testing.T) {
		response, err := server.HandleGetMetricsInternal(ctx, map[string]any{
			"source": fibonacci,
		})
		require.NoError(t, err)

		assert.Contains(t, firstTextContent(t, response), "Cyclomatic complexity")
	})

	t.Run("Should detect issues via MCP tool", func(t *testing.T) {
		source := testhelpers.ReadSnippetFile(t, filepath.Join(projectRoot, "testdata", "nested_loops.py"))

		response, err := server.HandleDetectIssuesInternal(ctx, map[string]any{
			"source":  source,
			"profile": profile.IDPython,
		})
		require.NoError(t, err)

		assert.Contains(t, firstTextContent(t, response), "findings")

		report, ok := resourceData(t, response).(*core.AnalysisReport)
		require.True(t, ok, "resource data should carry the report")
		assert.NotEmpty(t, report.Performance)
	})

	t.Run("Should list the built-in profiles via MCP tool", func(t *testing.T) {
		response, err := server.HandleListProfilesInternal(ctx, nil)
		require.NoError(t, err)

		data, ok := resourceData(t, response).(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 4, data["count"])
		assert.Equal(t, profile.DefaultID, data["default"])
	})

	t.Run("Should report and clear the analysis cache", func(t *testing.T) {
		_, err := server.HandleAnalyzeSnippetInternal(ctx, map[string]any{
			"source": fibonacci,
		})
		require.NoError(t, err)

		response, err := server.HandleCacheStatsInternal(ctx, nil)
		require.NoError(t, err)
		data, ok := resourceData(t, response).(map[string]any)
		require.True(t, ok)
		entries, ok := data["entries"].(int)
		require.True(t, ok)
		assert.Greater(t, entries, 0)

		_, err = server.HandleClearCacheInternal(ctx, nil)
		require.NoError(t, err)

		response, err = server.HandleCacheStatsInternal(ctx, nil)
		require.NoError(t, err)
		data, ok = resourceData(t, response).(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 0, data["entries"])
	})

	t.Run("Should reject a request without source", func(t *testing.T) {
		_, err := server.HandleAnalyzeSnippetInternal(ctx, map[string]any{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source is required")
	})

	t.Run("Should reject snippets above the configured size limit", func(t *testing.T) {
		limited := mcpconfig.DefaultConfig()
		limited.Limits.MaxSourceBytes = 16
		limitedServer := mcp.NewServer(limited, service, nil)

		_, err := limitedServer.HandleAnalyzeSnippetInternal(ctx, map[string]any{
			"source": strings.Repeat("let n = 1;\n", 8),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "above the configured limit")
	})

	t.Run("Should report explain_analysis unavailable without an explainer", func(t *testing.T) {
		_, err := server.HandleExplainAnalysisInternal(ctx, map[string]any{
			"source": fibonacci,
		})
		require.Error(t, err)

		var coreErr *core.Error
		require.True(t, errors.As(err, &coreErr))
		assert.Equal(t, core.ErrorCodeExplainUnavailable, coreErr.Code)
	})

	t.Run("Should handle multiple concurrent MCP operations", func(t *testing.T) {
		numOperations := 5
		results := make(chan error, numOperations)

		for i := 0; i < numOperations; i++ {
			go func() {
				_, err := server.HandleGetMetricsInternal(ctx, map[string]any{
					"source": fibonacci,
				})
				results <- err
			}()
		}

		for i := 0; i < numOperations; i++ {
			assert.NoError(t, <-results)
		}
	})
}

// TestMCPExplainAnalysis wires a canned chat client through the explain tool
func TestMCPExplainAnalysis(t *testing.T) {
	projectRoot := getProjectRoot()
	ctx := context.Background()

	t.Run("Should explain an analysis through the configured client", func(t *testing.T) {
		client := &fakeChatClient{reply: "The snippet computes Fibonacci numbers iteratively."}
		explainer := llm.NewOpenAIExplainerWithClient(client, "gpt-4o-mini")
		server := mcp.NewServer(nil, analyzer.NewService(nil, nil), explainer)

		source := testhelpers.ReadSnippetFile(t, filepath.Join(projectRoot, "testdata", "fibonacci.js"))
		response, err := server.HandleExplainAnalysisInternal(ctx, map[string]any{
			"source":  source,
			"profile": profile.IDJavaScript,
		})
		require.NoError(t, err)

		assert.Equal(t, client.reply, firstTextContent(t, response))
		assert.Equal(t, 1, client.calls)

		data, ok := resourceData(t, response).(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "gpt-4o-mini", data["model"])
		assert.Equal(t, 321, data["tokens_used"])
	})

	t.Run("Should surface client failures as LLM API errors", func(t *testing.T) {
		explainer := llm.NewOpenAIExplainerWithClient(&fakeChatClient{err: errors.New("rate limited")}, "")
		server := mcp.NewServer(nil, analyzer.NewService(nil, nil), explainer)

		_, err := server.HandleExplainAnalysisInternal(ctx, map[string]any{
			"source": "let samples = 0;",
		})
		require.Error(t, err)

		var coreErr *core.Error
		require.True(t, errors.As(err, &coreErr))
		assert.Equal(t, core.ErrorCodeLLMAPI, coreErr.Code)
	})
}

// fakeChatClient returns a fixed completion for every request
type fakeChatClient struct {
	reply string
	err   error
	calls int
}

func (f *fakeChatClient) CreateChatCompletion(
	_ context.Context,
	_ openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.reply}},
		},
		Usage: openai.Usage{TotalTokens: 321},
	}, nil
}

// firstTextContent extracts the text entry of a tool response
func firstTextContent(t *testing.T, response *mcp.ToolResponse) string {
	t.Helper()
	require.NotEmpty(t, response.Content)
	entry, ok := response.Content[0].(map[string]any)
	require.True(t, ok, "first content entry should be a map")
	text, _ := entry["text"].(string)
	return text
}

// resourceData extracts the resource payload of a tool response
func resourceData(t *testing.T, response *mcp.ToolResponse) any {
	t.Helper()
	for _, entry := range response.Content {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		resource, ok := m["resource"].(map[string]any)
		if !ok {
			continue
		}
		return resource["data"]
	}
	t.Fatal("tool response carries no resource entry")
	return nil
}
