package analyzer_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/flowlens/flowlens/engine/analyzer"
	"github.com/flowlens/flowlens/engine/core"
	"github.com/flowlens/flowlens/engine/profile"
)

func loadSnippet(t *testing.T, name string) string {
	t.Helper()
	archive, err := txtar.ParseFile(filepath.Join("testdata", "snippets.txtar"))
	require.NoError(t, err)
	for _, file := range archive.Files {
		if file.Name == name {
			return string(file.Data)
		}
	}
	t.Fatalf("snippet %q not found in fixture archive", name)
	return ""
}

func newService() analyzer.Service {
	return analyzer.NewService(nil, nil)
}

func analyzeSnippet(t *testing.T, svc analyzer.Service, profileID, source string) *core.AnalysisResult {
	t.Helper()
	result, err := svc.Analyze(context.Background(), &analyzer.AnalysisInput{
		ProfileID: profileID,
		Source:    source,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func TestService_Analyze_IterativeFibonacci(t *testing.T) {
	source := loadSnippet(t, "fibonacci.js")
	result := analyzeSnippet(t, newService(), profile.IDJavaScript, source)

	t.Run("Should count one statement per retained line", func(t *testing.T) {
		assert.Len(t, result.Statements, 13)
		assert.Equal(t, 13, result.Metrics.StatementCount)
	})

	t.Run("Should score the single branch and single loop", func(t *testing.T) {
		assert.Equal(t, 3, result.Metrics.CyclomaticComplexity)
		assert.Equal(t, "O(n)", result.Metrics.TimeComplexity)
		assert.Equal(t, "O(1)", result.Metrics.SpaceComplexity)
	})

	t.Run("Should not report a nested-loop pattern", func(t *testing.T) {
		for _, finding := range result.Report.Performance {
			assert.NotEqual(t, core.FindingNestedLoops, finding.Type)
		}
	})

	t.Run("Should narrate every statement in order", func(t *testing.T) {
		require.Len(t, result.Steps, len(result.Statements))
		for i, step := range result.Steps {
			assert.Equal(t, i+1, step.StepNumber)
			assert.Equal(t, result.Statements[i].Line, step.Line)
		}
	})

	t.Run("Should track the accumulator variables in the flow map", func(t *testing.T) {
		require.Contains(t, result.VariableFlow, "a")
		events := result.VariableFlow["a"]
		require.NotEmpty(t, events)
		assert.Equal(t, core.MemoryActionCreate, events[0].Action)
	})

	t.Run("Should keep the graph anchored by terminal nodes", func(t *testing.T) {
		require.NotNil(t, result.Graph)
		start := result.Graph.NodeByID("start")
		require.NotNil(t, start)
		assert.Equal(t, core.NodeShapeTerminal, start.Shape)
		assert.Zero(t, result.Graph.InDegree("start"))
		assert.GreaterOrEqual(t, len(result.Graph.Edges), len(result.Graph.Nodes)-1)
		assert.True(t, result.Graph.Consistent)
	})
}

func TestService_Analyze_BubbleSort(t *testing.T) {
	source := loadSnippet(t, "bubblesort.js")
	result := analyzeSnippet(t, newService(), profile.IDJavaScript, source)

	t.Run("Should estimate quadratic time from the nested loops", func(t *testing.T) {
		assert.Equal(t, "O(n²)", result.Metrics.TimeComplexity)
	})

	t.Run("Should report the nested-loop pattern", func(t *testing.T) {
		require.Len(t, result.Report.Performance, 1)
		assert.Equal(t, core.FindingNestedLoops, result.Report.Performance[0].Type)
		assert.Equal(t, "quadratic", result.Report.Performance[0].Detail)
	})

	t.Run("Should suggest an algorithmic improvement", func(t *testing.T) {
		var found bool
		for _, suggestion := range result.Report.Suggestions {
			if suggestion.Type == core.SuggestionAlgorithmOptimization {
				found = true
				assert.Equal(t, core.PriorityHigh, suggestion.Priority)
			}
		}
		assert.True(t, found, "expected an algorithm-optimization suggestion")
	})
}

func TestService_Analyze_EmptyInput(t *testing.T) {
	result := analyzeSnippet(t, newService(), profile.IDJavaScript, "")

	t.Run("Should return a valid result with no statements", func(t *testing.T) {
		assert.Empty(t, result.Statements)
		assert.Equal(t, 0, result.Metrics.StatementCount)
		assert.Equal(t, 1, result.Metrics.CyclomaticComplexity)
		assert.Equal(t, core.ComplexityNA, result.Metrics.TimeComplexity)
	})

	t.Run("Should wire start straight to finish", func(t *testing.T) {
		require.NotNil(t, result.Graph)
		assert.Len(t, result.Graph.Nodes, 2)
		assert.Len(t, result.Graph.Edges, 1)
	})
}

func TestService_Analyze_SecuritySmell(t *testing.T) {
	source := loadSnippet(t, "insecure.js")
	result := analyzeSnippet(t, newService(), profile.IDJavaScript, source)

	t.Run("Should report one high-severity evaluation finding", func(t *testing.T) {
		require.Len(t, result.Report.Security, 1)
		assert.Equal(t, core.FindingDynamicEval, result.Report.Security[0].Type)
		assert.Equal(t, core.SeverityHigh, result.Report.Security[0].Severity)
	})

	t.Run("Should rate a single finding as medium risk", func(t *testing.T) {
		assert.Equal(t, core.RiskMedium, result.Report.RiskLevel)
	})
}

func TestService_Analyze_OtherProfiles(t *testing.T) {
	t.Run("Should analyze an indentation-delimited snippet", func(t *testing.T) {
		source := loadSnippet(t, "countdown.py")
		result := analyzeSnippet(t, newService(), profile.IDPython, source)
		assert.Equal(t, profile.IDPython, result.Profile)
		assert.Equal(t, 1, result.Stats.CommentLines)
		assert.Equal(t, "O(n)", result.Metrics.TimeComplexity)
	})

	t.Run("Should analyze a typed method-oriented snippet", func(t *testing.T) {
		source := loadSnippet(t, "sum.java")
		result := analyzeSnippet(t, newService(), profile.IDJava, source)
		assert.Equal(t, "O(n)", result.Metrics.TimeComplexity)
		require.Contains(t, result.VariableFlow, "total")
	})

	t.Run("Should analyze a function-oriented snippet with includes", func(t *testing.T) {
		source := loadSnippet(t, "max.c")
		result := analyzeSnippet(t, newService(), profile.IDC, source)
		assert.Equal(t, 3, result.Metrics.CyclomaticComplexity)
		assert.Equal(t, "O(n)", result.Metrics.TimeComplexity)
	})

	t.Run("Should fall back to the default profile for unknown ids", func(t *testing.T) {
		result := analyzeSnippet(t, newService(), "ruby", "let x = 1")
		assert.Equal(t, profile.DefaultID, result.Profile)
	})
}

func TestService_Analyze_Memoization(t *testing.T) {
	source := loadSnippet(t, "fibonacci.js")

	t.Run("Should return the identical result instance on a repeat", func(t *testing.T) {
		svc := newService()
		first := analyzeSnippet(t, svc, profile.IDJavaScript, source)
		second := analyzeSnippet(t, svc, profile.IDJavaScript, source)
		assert.Same(t, first, second)

		stats := svc.CacheStats()
		assert.Equal(t, int64(1), stats.Hits)
	})

	t.Run("Should recompute after the cache is cleared", func(t *testing.T) {
		svc := newService()
		first := analyzeSnippet(t, svc, profile.IDJavaScript, source)
		svc.ClearCache()
		second := analyzeSnippet(t, svc, profile.IDJavaScript, source)
		assert.NotSame(t, first, second)
		assert.Equal(t, first.Metrics.CyclomaticComplexity, second.Metrics.CyclomaticComplexity)
	})

	t.Run("Should share entries across aliases of the same profile", func(t *testing.T) {
		svc := newService()
		first := analyzeSnippet(t, svc, "ruby", "let x = 1")
		second := analyzeSnippet(t, svc, profile.IDJavaScript, "let x = 1")
		assert.Same(t, first, second)
	})
}

func TestService_Analyze_IndentationWarnings(t *testing.T) {
	t.Run("Should flag a mixed-style snippet on the graph", func(t *testing.T) {
		source := "function f() {\n\tlet a = 1\n  let b = 2\n}"
		result := analyzeSnippet(t, newService(), profile.IDJavaScript, source)
		assert.False(t, result.Graph.Consistent)
		assert.NotEmpty(t, result.Graph.Warnings)
	})

	t.Run("Should keep a clean snippet consistent", func(t *testing.T) {
		source := loadSnippet(t, "fibonacci.js")
		result := analyzeSnippet(t, newService(), profile.IDJavaScript, source)
		assert.True(t, result.Graph.Consistent)
		assert.Empty(t, result.Graph.Warnings)
	})
}

func TestService_Analyze_InputValidation(t *testing.T) {
	t.Run("Should reject a nil input", func(t *testing.T) {
		_, err := newService().Analyze(context.Background(), nil)
		require.Error(t, err)
		var coreErr *core.Error
		require.True(t, errors.As(err, &coreErr))
		assert.Equal(t, core.ErrorCodeInvalidInput, coreErr.Code)
	})

	t.Run("Should stop when the context is already canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newService().Analyze(ctx, &analyzer.AnalysisInput{
			ProfileID: profile.IDJavaScript,
			Source:    "let x = 1",
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
