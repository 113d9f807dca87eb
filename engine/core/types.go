package core

import (
	"time"

	"github.com/google/uuid"
)

// ID represents a unique identifier
type ID string

// NewID generates a new unique ID
func NewID() ID {
	return ID(uuid.New().String())
}

// String returns the string representation of the ID
func (id ID) String() string {
	return string(id)
}

// StatementKind classifies one line-granular statement
type StatementKind string

const (
	StatementVariableDeclaration StatementKind = "variable-declaration"
	StatementAssignment          StatementKind = "assignment"
	StatementFunctionDefinition  StatementKind = "function-definition"
	StatementConditional         StatementKind = "conditional"
	StatementForLoop             StatementKind = "for-loop"
	StatementWhileLoop           StatementKind = "while-loop"
	StatementReturn              StatementKind = "return"
	StatementCall                StatementKind = "call"
	StatementOpaque              StatementKind = "opaque"
)

// IsLoop reports whether the kind is a loop construct
func (k StatementKind) IsLoop() bool {
	return k == StatementForLoop || k == StatementWhileLoop
}

// IsBranch reports whether the kind contributes a decision point
func (k StatementKind) IsBranch() bool {
	return k == StatementConditional || k.IsLoop()
}

// Statement is one classified line of the snippet
type Statement struct {
	Kind         StatementKind `json:"kind"`
	Line         int           `json:"line"`
	IndentDepth  int           `json:"indent_depth"`
	Raw          string        `json:"raw"`
	Name         string        `json:"name,omitempty"`
	Condition    string        `json:"condition,omitempty"`
	LoopVariable string        `json:"loop_variable,omitempty"`
	References   []string      `json:"references,omitempty"`
}

// NodeShape determines how a flow node is drawn
type NodeShape string

const (
	NodeShapeTerminal NodeShape = "terminal"
	NodeShapeDecision NodeShape = "decision"
	NodeShapeProcess  NodeShape = "process"
)

// Flow node kinds for the two synthetic terminals; statement nodes
// carry their StatementKind as the node kind.
const (
	NodeKindStart = "start"
	NodeKindEnd   = "end"
)

// Edge labels distinguishing branch outcomes
const (
	EdgeLabelYes      = "Yes"
	EdgeLabelNo       = "No"
	EdgeLabelContinue = "Continue"
	EdgeLabelExit     = "Exit"
	EdgeLabelLoop     = "Loop"
)

// EdgeStyleEmphasis marks edges rendered with emphasis (loop back-edges,
// negative branches)
const EdgeStyleEmphasis = "emphasis"

// FlowNode is a node in the control-flow graph
type FlowNode struct {
	ID    string    `json:"id"`
	Kind  string    `json:"kind"`
	Label string    `json:"label"`
	Shape NodeShape `json:"shape"`
}

// FlowEdge is a directed edge between two flow nodes, referenced by id
type FlowEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
	Style string `json:"style,omitempty"`
}

// FlowGraph is the control-flow graph for one snippet. Consistent is false
// when the indentation validation pass found violations; Warnings carries
// the human-readable descriptions.
type FlowGraph struct {
	Nodes      []FlowNode `json:"nodes"`
	Edges      []FlowEdge `json:"edges"`
	Consistent bool       `json:"consistent"`
	Warnings   []string   `json:"warnings,omitempty"`
}

// NodeByID returns the node with the given id, or nil
func (g *FlowGraph) NodeByID(id string) *FlowNode {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// OutEdges returns the edges leaving the given node id
func (g *FlowGraph) OutEdges(id string) []FlowEdge {
	var out []FlowEdge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// InDegree returns the number of edges entering the given node id
func (g *FlowGraph) InDegree(id string) int {
	n := 0
	for _, e := range g.Edges {
		if e.To == id {
			n++
		}
	}
	return n
}

// ComplexityNA is reported when a snippet has no statements to estimate
const ComplexityNA = "N/A"

// Metrics holds the scalar measures computed for one snippet
type Metrics struct {
	CyclomaticComplexity int    `json:"cyclomatic_complexity"`
	MaxNestingDepth      int    `json:"max_nesting_depth"`
	QualityScore         int    `json:"quality_score"`
	TimeComplexity       string `json:"time_complexity"`
	SpaceComplexity      string `json:"space_complexity"`
	StatementCount       int    `json:"statement_count"`
}

// SourceStats is the line accounting produced by classification
type SourceStats struct {
	TotalLines   int `json:"total_lines"`
	CodeLines    int `json:"code_lines"`
	CommentLines int `json:"comment_lines"`
	BlankLines   int `json:"blank_lines"`
}

// Severity indicates the severity level of a finding
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// RiskLevel is the aggregate security posture of a snippet
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// QualityRating is the aggregate quality classification of a snippet
type QualityRating string

const (
	QualityExcellent        QualityRating = "excellent"
	QualityGood             QualityRating = "good"
	QualityFair             QualityRating = "fair"
	QualityNeedsImprovement QualityRating = "needs-improvement"
)

// Finding types emitted by the heuristic detectors
const (
	FindingLongFunction      = "long-function"
	FindingDeepNesting       = "deep-nesting"
	FindingMagicNumber       = "magic-number"
	FindingLongParameterList = "long-parameter-list"
	FindingNestedLoops       = "nested-loops"
	FindingRecursion         = "recursion"
	FindingDynamicEval       = "dynamic-code-evaluation"
	FindingUnsafeHTML        = "unsafe-html-assignment"
)

// Finding is one detector hit against the snippet
type Finding struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
	Detail   string   `json:"detail,omitempty"`
}

// Suggestion types and priorities for optimization advice
const (
	SuggestionAlgorithmOptimization = "algorithm-optimization"
	SuggestionMemoization           = "memoization"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Suggestion is one optimization recommendation
type Suggestion struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

// AnalysisReport aggregates the heuristic findings by group
type AnalysisReport struct {
	Quality       []Finding     `json:"quality"`
	Performance   []Finding     `json:"performance"`
	Security      []Finding     `json:"security"`
	Patterns      []Finding     `json:"patterns"`
	Suggestions   []Suggestion  `json:"suggestions"`
	RiskLevel     RiskLevel     `json:"risk_level"`
	QualityRating QualityRating `json:"quality_rating"`
}

// TotalIssues counts the quality-group findings that feed the rating
func (r *AnalysisReport) TotalIssues() int {
	return len(r.Quality)
}

// StepCategory groups execution steps for walkthrough display
type StepCategory string

const (
	StepCategoryMemory    StepCategory = "memory"
	StepCategoryControl   StepCategory = "control"
	StepCategoryExecution StepCategory = "execution"
	StepCategoryStructure StepCategory = "structure"
)

// MemoryAction is a recorded effect against a named variable
type MemoryAction string

const (
	MemoryActionCreate MemoryAction = "create"
	MemoryActionUpdate MemoryAction = "update"
	MemoryActionDelete MemoryAction = "delete"
)

// MemoryEvent records one variable effect attached to an execution step.
// Kind is a coarse value-kind guess (number, string, boolean, array,
// object, function, unknown).
type MemoryEvent struct {
	Action   MemoryAction `json:"action"`
	Variable string       `json:"variable"`
	Kind     string       `json:"kind"`
}

// ExecutionStep is the narrated rendering of one statement
type ExecutionStep struct {
	StepNumber       int           `json:"step_number"`
	Line             int           `json:"line"`
	Kind             StatementKind `json:"kind"`
	Description      string        `json:"description"`
	Explanation      string        `json:"explanation"`
	Category         StepCategory  `json:"category"`
	ComplexityWeight int           `json:"complexity_weight"`
	MemoryEvents     []MemoryEvent `json:"memory_events,omitempty"`
}

// VariableEvent is one entry in the variable-flow map
type VariableEvent struct {
	Line   int          `json:"line"`
	Kind   string       `json:"kind"`
	Action MemoryAction `json:"action"`
}

// AnalysisResult aggregates everything the pipeline produces for one
// snippet. Edges reference node ids, never node objects, so the result
// is fully serializable.
type AnalysisResult struct {
	ID           ID                         `json:"id"`
	Profile      string                     `json:"profile"`
	Statements   []Statement                `json:"statements"`
	Graph        *FlowGraph                 `json:"graph"`
	Metrics      *Metrics                   `json:"metrics"`
	Report       *AnalysisReport            `json:"report"`
	Steps        []ExecutionStep            `json:"steps"`
	VariableFlow map[string][]VariableEvent `json:"variable_flow,omitempty"`
	Stats        SourceStats                `json:"stats"`
	AnalyzedAt   time.Time                  `json:"analyzed_at"`
	Duration     time.Duration              `json:"duration"`
}
