package heuristics

import (
	"github.com/flowlens/flowlens/engine/core"
)

// Default detector thresholds
const (
	// DefaultLongFunctionLines is the line span above which a function
	// body is flagged
	DefaultLongFunctionLines = 50
	// DefaultDeepNestingDepth is the indent depth (two units per level)
	// above which a statement counts as deeply nested
	DefaultDeepNestingDepth = 8
	// DefaultParameterCommaMax is the comma count above which a function
	// header is flagged for its parameter list
	DefaultParameterCommaMax = 4
)

// Config tunes the detector thresholds
type Config struct {
	LongFunctionLines int
	DeepNestingDepth  int
	ParameterCommaMax int
}

// DefaultConfig returns the stock thresholds
func DefaultConfig() *Config {
	return &Config{
		LongFunctionLines: DefaultLongFunctionLines,
		DeepNestingDepth:  DefaultDeepNestingDepth,
		ParameterCommaMax: DefaultParameterCommaMax,
	}
}

// Analyzer runs the independent heuristic detectors over a classified
// snippet and aggregates their findings into one report. Detectors never
// fail; an empty stream yields an empty report with a low risk level.
type Analyzer interface {
	Analyze(statements []core.Statement, m *core.Metrics, stats core.SourceStats) *core.AnalysisReport
}
