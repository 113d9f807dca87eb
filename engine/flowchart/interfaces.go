package flowchart

import (
	"github.com/flowlens/flowlens/engine/core"
)

// Builder constructs a control-flow graph from an ordered statement stream
type Builder interface {
	// Build creates the graph: a start terminal, one node per statement,
	// an end terminal, and the sequential/branch/loop edges between them.
	// An empty stream yields the two terminals wired directly together.
	Build(statements []core.Statement) *core.FlowGraph
}

// BuilderConfig holds configuration for graph construction
type BuilderConfig struct {
	// LabelBudget caps node label length before truncation
	LabelBudget int
}

// DefaultBuilderConfig returns the default builder configuration
func DefaultBuilderConfig() *BuilderConfig {
	return &BuilderConfig{
		LabelBudget: 30,
	}
}

// Node ids used by the builder: the two terminals are fixed, statement
// nodes are numbered in stream order.
const (
	StartNodeID = "start"
	EndNodeID   = "finish"
)
