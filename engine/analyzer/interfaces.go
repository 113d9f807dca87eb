package analyzer

import (
	"context"

	"github.com/flowlens/flowlens/engine/cache"
	"github.com/flowlens/flowlens/engine/core"
	"github.com/flowlens/flowlens/engine/flowchart"
	"github.com/flowlens/flowlens/engine/heuristics"
	"github.com/flowlens/flowlens/engine/profile"
)

// Service defines the contract for snippet analysis operations
type Service interface {
	// Analyze runs the full pipeline for one snippet and memoizes the
	// result. Empty input yields a valid result, never an error.
	Analyze(ctx context.Context, input *AnalysisInput) (*core.AnalysisResult, error)

	// Registry exposes the language profiles available to callers
	Registry() *profile.Registry

	// CacheStats reports the memoization counters
	CacheStats() cache.Stats

	// ClearCache drops every memoized result
	ClearCache()
}

// AnalysisInput contains the input data for one analysis call
type AnalysisInput struct {
	ProfileID string // Requested profile; unknown ids fall back to the default
	Source    string // Raw snippet text
}

// Config tunes the pipeline composition
type Config struct {
	CacheCapacity       int
	ValidateIndentation bool
	Flowchart           *flowchart.BuilderConfig
	Heuristics          *heuristics.Config
}

// DefaultConfig returns the stock pipeline configuration
func DefaultConfig() *Config {
	return &Config{
		CacheCapacity:       cache.DefaultCapacity,
		ValidateIndentation: true,
	}
}
