package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/flowlens/flowlens/engine/cache"
	"github.com/flowlens/flowlens/engine/classifier"
	"github.com/flowlens/flowlens/engine/core"
	"github.com/flowlens/flowlens/engine/flowchart"
	"github.com/flowlens/flowlens/engine/heuristics"
	"github.com/flowlens/flowlens/engine/metrics"
	"github.com/flowlens/flowlens/engine/narrator"
	"github.com/flowlens/flowlens/engine/profile"
	"github.com/flowlens/flowlens/pkg/logger"
)

// service implements the Service interface
type service struct {
	config     *Config
	classifier classifier.Classifier
	builder    flowchart.Builder
	metrics    metrics.Engine
	heuristics heuristics.Analyzer
	narrator   narrator.Narrator
	cache      cache.Cache
}

// NewService creates the analysis pipeline. A nil config selects the
// defaults; a nil cache gets an LRU bounded by the configured capacity,
// so a composition root can inject its own cache for isolation.
func NewService(config *Config, analysisCache cache.Cache) Service {
	if config == nil {
		config = DefaultConfig()
	}
	if analysisCache == nil {
		analysisCache = cache.NewLRU(config.CacheCapacity)
	}
	return &service{
		config:     config,
		classifier: classifier.NewService(nil),
		builder:    flowchart.NewBuilder(config.Flowchart),
		metrics:    metrics.NewEngine(),
		heuristics: heuristics.NewService(config.Heuristics),
		narrator:   narrator.NewService(),
		cache:      analysisCache,
	}
}

// Analyze runs classify, graph construction, metrics, heuristics, and
// narration over one snippet, returning the memoized result when the
// same profile and content were analyzed before.
func (s *service) Analyze(ctx context.Context, input *AnalysisInput) (*core.AnalysisResult, error) {
	if input == nil {
		return nil, core.NewError(
			fmt.Errorf("analysis input is required"),
			core.ErrorCodeInvalidInput,
			nil,
		)
	}
	startTime := time.Now()

	p := s.classifier.Registry().Get(input.ProfileID)
	if cached, ok := s.cache.Get(p.ID, input.Source); ok {
		logger.Debug("analysis cache hit", "profile", p.ID)
		return cached, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	classified := s.classifier.Classify(input.Source, p.ID)
	statements := classified.Statements

	graph := s.builder.Build(statements)
	if s.config.ValidateIndentation {
		annotateIndentation(graph, input.Source)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	computed := s.metrics.Compute(statements, classified.Stats, classified.Profile)
	report := s.heuristics.Analyze(statements, computed, classified.Stats)
	steps, flow := s.narrator.Narrate(statements)

	result := &core.AnalysisResult{
		ID:           core.NewID(),
		Profile:      p.ID,
		Statements:   statements,
		Graph:        graph,
		Metrics:      computed,
		Report:       report,
		Steps:        steps,
		VariableFlow: flow,
		Stats:        classified.Stats,
		AnalyzedAt:   startTime,
		Duration:     time.Since(startTime),
	}
	s.cache.Put(p.ID, input.Source, result)

	logger.Debug("analysis complete",
		"profile", p.ID,
		"statements", len(statements),
		"complexity", computed.CyclomaticComplexity,
		"duration", result.Duration,
	)
	return result, nil
}

// Registry exposes the profile registry backing the pipeline
func (s *service) Registry() *profile.Registry {
	return s.classifier.Registry()
}

// CacheStats reports the memoization counters
func (s *service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// ClearCache drops every memoized result
func (s *service) ClearCache() {
	s.cache.Clear()
}

// annotateIndentation runs the optional indentation validation pass and
// downgrades the graph's consistency flag when violations turn up. The
// graph itself is left as built; the flag tells the caller how much to
// trust the heuristic edge targets.
func annotateIndentation(graph *core.FlowGraph, source string) {
	violations := classifier.ValidateIndentation(source)
	if len(violations) == 0 {
		return
	}
	graph.Consistent = false
	for _, v := range violations {
		graph.Warnings = append(graph.Warnings, fmt.Sprintf("line %d: %s", v.Line, v.Message))
	}
}
