package metrics

import (
	"fmt"

	"github.com/flowlens/flowlens/engine/core"
	"github.com/flowlens/flowlens/engine/profile"
)

// Scoring thresholds. Complexity above ComplexityPenaltyThreshold and
// nesting above NestingPenaltyThreshold erode the quality score; a
// code-to-comment ratio strictly inside (CommentRatioMin, CommentRatioMax)
// earns the flat CommentBonus.
const (
	ComplexityPenaltyThreshold = 10
	ComplexityPenaltyWeight    = 5
	NestingPenaltyThreshold    = 4
	NestingPenaltyWeight       = 10
	CommentRatioMin            = 3.0
	CommentRatioMax            = 10.0
	CommentBonus               = 10

	// DistinctVariableCap separates O(1) from O(n) space for
	// non-recursive snippets
	DistinctVariableCap = 10
)

// Engine computes the scalar measures for one statement stream
type Engine interface {
	// Compute derives all metrics from the stream and its line
	// accounting. The profile supplies the boolean-operator tokens its
	// conditions use.
	Compute(statements []core.Statement, stats core.SourceStats, p *profile.Profile) *core.Metrics
}

type engine struct{}

// NewEngine creates a metrics engine
func NewEngine() Engine {
	return &engine{}
}

func (e *engine) Compute(statements []core.Statement, stats core.SourceStats, p *profile.Profile) *core.Metrics {
	m := &core.Metrics{
		StatementCount:       len(statements),
		CyclomaticComplexity: cyclomaticComplexity(statements, p),
		MaxNestingDepth:      maxNestingDepth(statements),
		TimeComplexity:       timeComplexity(statements),
		SpaceComplexity:      spaceComplexity(statements),
	}
	m.QualityScore = qualityScore(m, stats)
	return m
}

// cyclomaticComplexity is base 1, plus one per branching construct, plus
// one per extra boolean operator in each conditional's condition text.
func cyclomaticComplexity(statements []core.Statement, p *profile.Profile) int {
	complexity := 1
	for i := range statements {
		stmt := &statements[i]
		if stmt.Kind.IsBranch() {
			complexity++
		}
		if stmt.Kind == core.StatementConditional && stmt.Condition != "" {
			complexity += p.CountBooleanOperators(stmt.Condition)
		}
	}
	return complexity
}

// maxNestingDepth is the deepest control or function statement measured in
// nesting levels, two indent-depth units per level.
func maxNestingDepth(statements []core.Statement) int {
	maxIndent := 0
	for i := range statements {
		stmt := &statements[i]
		if stmt.Kind.IsBranch() || stmt.Kind == core.StatementFunctionDefinition {
			if stmt.IndentDepth > maxIndent {
				maxIndent = stmt.IndentDepth
			}
		}
	}
	return maxIndent / 2
}

// timeComplexity tracks a running loop depth: each loop statement opens a
// scope that closes when indentation falls back to the loop header's
// depth. The maximum depth reached maps to the O(n^d) ladder. This is a
// structural approximation; loops on exclusive branches still stack.
func timeComplexity(statements []core.Statement) string {
	if len(statements) == 0 {
		return core.ComplexityNA
	}

	var openLoops []int
	maxDepth := 0
	for i := range statements {
		stmt := &statements[i]
		for len(openLoops) > 0 && stmt.IndentDepth <= openLoops[len(openLoops)-1] {
			openLoops = openLoops[:len(openLoops)-1]
		}
		if stmt.Kind.IsLoop() {
			openLoops = append(openLoops, stmt.IndentDepth)
			if len(openLoops) > maxDepth {
				maxDepth = len(openLoops)
			}
		}
	}

	switch maxDepth {
	case 0:
		return "O(1)"
	case 1:
		return "O(n)"
	case 2:
		return "O(n²)"
	case 3:
		return "O(n³)"
	default:
		return fmt.Sprintf("O(n^%d)", maxDepth)
	}
}

// spaceComplexity is O(n) for recursive snippets, otherwise keyed on the
// count of distinct variables the snippet touches.
func spaceComplexity(statements []core.Statement) string {
	if len(statements) == 0 {
		return core.ComplexityNA
	}
	if DetectRecursion(statements) {
		return "O(n)"
	}
	if distinctVariables(statements) < DistinctVariableCap {
		return "O(1)"
	}
	return "O(n)"
}

// DetectRecursion reports whether any defined function name is also the
// target of a call statement anywhere in the stream. The match is not
// restricted to the function's own body; that over-approximation is
// shared with the pattern detectors.
func DetectRecursion(statements []core.Statement) bool {
	defined := make(map[string]bool)
	for i := range statements {
		if statements[i].Kind == core.StatementFunctionDefinition && statements[i].Name != "" {
			defined[statements[i].Name] = true
		}
	}
	if len(defined) == 0 {
		return false
	}
	for i := range statements {
		if statements[i].Kind == core.StatementCall && defined[statements[i].Name] {
			return true
		}
	}
	return false
}

func distinctVariables(statements []core.Statement) int {
	seen := make(map[string]bool)
	for i := range statements {
		stmt := &statements[i]
		switch stmt.Kind {
		case core.StatementVariableDeclaration, core.StatementAssignment:
			if stmt.Name != "" {
				seen[stmt.Name] = true
			}
		case core.StatementForLoop:
			if stmt.LoopVariable != "" {
				seen[stmt.LoopVariable] = true
			}
		}
	}
	return len(seen)
}

// qualityScore starts at 100, pays the complexity and nesting penalties,
// earns the comment-ratio bonus, and clamps to [0, 100].
func qualityScore(m *core.Metrics, stats core.SourceStats) int {
	score := 100
	if m.CyclomaticComplexity > ComplexityPenaltyThreshold {
		score -= ComplexityPenaltyWeight * (m.CyclomaticComplexity - ComplexityPenaltyThreshold)
	}
	if m.MaxNestingDepth > NestingPenaltyThreshold {
		score -= NestingPenaltyWeight * (m.MaxNestingDepth - NestingPenaltyThreshold)
	}
	if stats.CommentLines > 0 {
		ratio := float64(stats.CodeLines) / float64(stats.CommentLines)
		if ratio > CommentRatioMin && ratio < CommentRatioMax {
			score += CommentBonus
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
