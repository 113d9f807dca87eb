package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowlens/flowlens/engine/analyzer"
	"github.com/flowlens/flowlens/engine/core"
	"github.com/flowlens/flowlens/engine/profile"
	"github.com/flowlens/flowlens/pkg/logger"
)

// analyzeFromInput validates the tool input and runs the shared analyzer
func (s *Server) analyzeFromInput(ctx context.Context, input map[string]any) (*core.AnalysisResult, error) {
	source, ok := input["source"].(string)
	if !ok {
		return nil, fmt.Errorf("source is required")
	}
	if err := s.checkSourceLimits(source); err != nil {
		return nil, err
	}
	profileID, _ := input["profile"].(string)

	if timeout := s.config.Performance.RequestTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return s.service.Analyze(ctx, &analyzer.AnalysisInput{
		ProfileID: profileID,
		Source:    source,
	})
}

// checkSourceLimits enforces the configured snippet size bounds
func (s *Server) checkSourceLimits(source string) error {
	if maxBytes := s.config.Limits.MaxSourceBytes; maxBytes > 0 && len(source) > maxBytes {
		return fmt.Errorf("source is %d bytes, above the configured limit of %d", len(source), maxBytes)
	}
	if maxLines := s.config.Limits.MaxSourceLines; maxLines > 0 {
		if lines := strings.Count(source, "\n") + 1; lines > maxLines {
			return fmt.Errorf("source is %d lines, above the configured limit of %d", lines, maxLines)
		}
	}
	return nil
}

// HandleAnalyzeSnippetInternal runs the full pipeline and returns the result
func (s *Server) HandleAnalyzeSnippetInternal(ctx context.Context, input map[string]any) (*ToolResponse, error) {
	result, err := s.analyzeFromInput(ctx, input)
	if err != nil {
		return nil, err
	}

	logger.Info("analyzed snippet", "profile", result.Profile, "statements", len(result.Statements))

	return &ToolResponse{
		Content: []any{
			textItem(fmt.Sprintf(
				"Analyzed %d statements using the %s profile",
				len(result.Statements),
				result.Profile,
			)),
			resourceItem("/analysis/"+string(result.ID), result),
		},
	}, nil
}

// HandleGetFlowchartInternal builds the control-flow graph as Mermaid text
func (s *Server) HandleGetFlowchartInternal(ctx context.Context, input map[string]any) (*ToolResponse, error) {
	result, err := s.analyzeFromInput(ctx, input)
	if err != nil {
		return nil, err
	}

	mermaid := s.serializer.Serialize(result.Graph)

	graphData := map[string]any{
		"nodes":      len(result.Graph.Nodes),
		"edges":      len(result.Graph.Edges),
		"consistent": result.Graph.Consistent,
		"warnings":   result.Graph.Warnings,
	}

	return &ToolResponse{
		Content: []any{
			textItem(mermaid),
			resourceItem("/flowchart/"+string(result.ID), graphData),
		},
	}, nil
}

// HandleGetExecutionStepsInternal narrates the snippet step by step
func (s *Server) HandleGetExecutionStepsInternal(ctx context.Context, input map[string]any) (*ToolResponse, error) {
	result, err := s.analyzeFromInput(ctx, input)
	if err != nil {
		return nil, err
	}

	stepData := map[string]any{
		"steps": result.Steps,
		"count": len(result.Steps),
	}
	if includeFlow, _ := input["include_variable_flow"].(bool); includeFlow {
		stepData["variable_flow"] = result.VariableFlow
	}

	return &ToolResponse{
		Content: []any{
			textItem(fmt.Sprintf(
				"Generated %d execution steps using the %s profile",
				len(result.Steps),
				result.Profile,
			)),
			resourceItem("/steps/"+string(result.ID), stepData),
		},
	}, nil
}

// HandleGetMetricsInternal computes the metric block for a snippet
func (s *Server) HandleGetMetricsInternal(ctx context.Context, input map[string]any) (*ToolResponse, error) {
	result, err := s.analyzeFromInput(ctx, input)
	if err != nil {
		return nil, err
	}

	m := result.Metrics

	return &ToolResponse{
		Content: []any{
			textItem(fmt.Sprintf(
				"Cyclomatic complexity %d, nesting depth %d, quality %d/100, time %s, space %s",
				m.CyclomaticComplexity,
				m.MaxNestingDepth,
				m.QualityScore,
				m.TimeComplexity,
				m.SpaceComplexity,
			)),
			resourceItem("/metrics/"+string(result.ID), map[string]any{
				"metrics": m,
				"stats":   result.Stats,
			}),
		},
	}, nil
}

// HandleDetectIssuesInternal runs the heuristic detectors
func (s *Server) HandleDetectIssuesInternal(ctx context.Context, input map[string]any) (*ToolResponse, error) {
	result, err := s.analyzeFromInput(ctx, input)
	if err != nil {
		return nil, err
	}

	report := result.Report
	total := len(report.Quality) + len(report.Performance) + len(report.Security) + len(report.Patterns)

	return &ToolResponse{
		Content: []any{
			textItem(fmt.Sprintf(
				"Found %d findings (risk %s, quality %s)",
				total,
				report.RiskLevel,
				report.QualityRating,
			)),
			resourceItem("/issues/"+string(result.ID), report),
		},
	}, nil
}

// HandleExplainAnalysisInternal generates the LLM explanation for a snippet
func (s *Server) HandleExplainAnalysisInternal(ctx context.Context, input map[string]any) (*ToolResponse, error) {
	if s.explainer == nil {
		return nil, core.NewError(
			fmt.Errorf("no explainer configured"),
			core.ErrorCodeExplainUnavailable,
			nil,
		)
	}

	result, err := s.analyzeFromInput(ctx, input)
	if err != nil {
		return nil, err
	}

	explanation, err := s.explainer.Explain(ctx, result)
	if err != nil {
		return nil, err
	}

	logger.Info("explained analysis", "profile", result.Profile, "model", explanation.Model)

	return &ToolResponse{
		Content: []any{
			textItem(explanation.Text),
			resourceItem("/explanation/"+string(result.ID), map[string]any{
				"model":       explanation.Model,
				"tokens_used": explanation.TokensUsed,
			}),
		},
	}, nil
}

// HandleListProfilesInternal lists the built-in language profiles
func (s *Server) HandleListProfilesInternal(_ context.Context, _ map[string]any) (*ToolResponse, error) {
	profiles := s.service.Registry().List()

	profileData := make([]map[string]any, len(profiles))
	for i := range profiles {
		profileData[i] = map[string]any{
			"id":          profiles[i].ID,
			"name":        profiles[i].Name,
			"description": profiles[i].Description,
		}
	}

	result := map[string]any{
		"profiles": profileData,
		"count":    len(profiles),
		"default":  profile.DefaultID,
	}

	return &ToolResponse{
		Content: []any{
			textItem(fmt.Sprintf("%d language profiles available", len(profiles))),
			resourceItem("/profiles", result),
		},
	}, nil
}

// HandleCacheStatsInternal reports cache occupancy and hit rate
func (s *Server) HandleCacheStatsInternal(_ context.Context, _ map[string]any) (*ToolResponse, error) {
	stats := s.service.CacheStats()

	result := map[string]any{
		"hits":     stats.Hits,
		"misses":   stats.Misses,
		"entries":  stats.Entries,
		"capacity": stats.Capacity,
		"hit_rate": stats.HitRate(),
	}

	return &ToolResponse{
		Content: []any{
			textItem(fmt.Sprintf(
				"Cache holds %d of %d entries (hit rate %.0f%%)",
				stats.Entries,
				stats.Capacity,
				stats.HitRate()*100,
			)),
			resourceItem("/cache/stats", result),
		},
	}, nil
}

// HandleClearCacheInternal drops all cached analysis results
func (s *Server) HandleClearCacheInternal(_ context.Context, _ map[string]any) (*ToolResponse, error) {
	s.service.ClearCache()

	logger.Info("analysis cache cleared")

	return &ToolResponse{
		Content: []any{
			textItem("Analysis cache cleared"),
		},
	}, nil
}
