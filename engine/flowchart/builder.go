package flowchart

import (
	"fmt"

	"github.com/flowlens/flowlens/engine/core"
)

// builder implements Builder
type builder struct {
	config *BuilderConfig
}

// NewBuilder creates a new graph builder. A nil config uses defaults.
func NewBuilder(config *BuilderConfig) Builder {
	if config == nil {
		config = DefaultBuilderConfig()
	}
	return &builder{config: config}
}

// Build walks the statement stream once. Sequential edges chain adjacent
// statements; conditionals fork Yes/No, loops fork Continue/Exit with a
// Loop back-edge when their scope closes, and returns get an extra edge
// straight to the end terminal.
func (b *builder) Build(statements []core.Statement) *core.FlowGraph {
	graph := &core.FlowGraph{Consistent: true}

	graph.Nodes = append(graph.Nodes, core.FlowNode{
		ID:    StartNodeID,
		Kind:  core.NodeKindStart,
		Label: "Start",
		Shape: core.NodeShapeTerminal,
	})
	ids := make([]string, len(statements))
	for i := range statements {
		ids[i] = fmt.Sprintf("n%d", i+1)
		graph.Nodes = append(graph.Nodes, b.nodeFor(ids[i], &statements[i]))
	}
	graph.Nodes = append(graph.Nodes, core.FlowNode{
		ID:    EndNodeID,
		Kind:  core.NodeKindEnd,
		Label: "End",
		Shape: core.NodeShapeTerminal,
	})

	if len(statements) == 0 {
		graph.Edges = append(graph.Edges, core.FlowEdge{From: StartNodeID, To: EndNodeID})
		return graph
	}
	graph.Edges = append(graph.Edges, core.FlowEdge{From: StartNodeID, To: ids[0]})

	scopes := newScopeStack()
	for i := range statements {
		stmt := &statements[i]

		for _, frame := range scopes.closeAt(stmt.IndentDepth) {
			if i-1 > frame.index {
				graph.Edges = append(graph.Edges, core.FlowEdge{
					From:  ids[i-1],
					To:    ids[frame.index],
					Label: core.EdgeLabelLoop,
					Style: core.EdgeStyleEmphasis,
				})
			}
		}

		next := EndNodeID
		if i+1 < len(statements) {
			next = ids[i+1]
		}

		switch stmt.Kind {
		case core.StatementConditional:
			graph.Edges = append(graph.Edges, core.FlowEdge{
				From:  ids[i],
				To:    next,
				Label: core.EdgeLabelYes,
			})
			noTarget := EndNodeID
			if j := nextAtOrBelowDepth(statements, i+1, stmt.IndentDepth); j >= 0 {
				noTarget = ids[j]
			}
			graph.Edges = append(graph.Edges, core.FlowEdge{
				From:  ids[i],
				To:    noTarget,
				Label: core.EdgeLabelNo,
				Style: core.EdgeStyleEmphasis,
			})

		case core.StatementForLoop, core.StatementWhileLoop:
			graph.Edges = append(graph.Edges, core.FlowEdge{
				From:  ids[i],
				To:    next,
				Label: core.EdgeLabelContinue,
			})
			exitTarget := EndNodeID
			if j := nextAtOrBelowDepth(statements, i+1, stmt.IndentDepth); j >= 0 {
				exitTarget = ids[j]
			}
			graph.Edges = append(graph.Edges, core.FlowEdge{
				From:  ids[i],
				To:    exitTarget,
				Label: core.EdgeLabelExit,
			})
			scopes.push(i, stmt.IndentDepth)

		case core.StatementReturn:
			if i+1 < len(statements) {
				graph.Edges = append(graph.Edges, core.FlowEdge{From: ids[i], To: next})
			}
			graph.Edges = append(graph.Edges, core.FlowEdge{From: ids[i], To: EndNodeID})

		default:
			graph.Edges = append(graph.Edges, core.FlowEdge{From: ids[i], To: next})
		}
	}

	last := len(statements) - 1
	for _, frame := range scopes.drain() {
		if last > frame.index {
			graph.Edges = append(graph.Edges, core.FlowEdge{
				From:  ids[last],
				To:    ids[frame.index],
				Label: core.EdgeLabelLoop,
				Style: core.EdgeStyleEmphasis,
			})
		}
	}

	return graph
}

// nodeFor renders one statement as a graph node with a kind-specific label
func (b *builder) nodeFor(id string, stmt *core.Statement) core.FlowNode {
	node := core.FlowNode{
		ID:    id,
		Kind:  string(stmt.Kind),
		Shape: core.NodeShapeProcess,
	}

	switch stmt.Kind {
	case core.StatementConditional:
		node.Shape = core.NodeShapeDecision
		node.Label = coalesce(stmt.Condition, stmt.Raw)
	case core.StatementForLoop:
		node.Shape = core.NodeShapeDecision
		node.Label = "for " + coalesce(stmt.Condition, stmt.Raw)
	case core.StatementWhileLoop:
		node.Shape = core.NodeShapeDecision
		node.Label = "while " + coalesce(stmt.Condition, stmt.Raw)
	case core.StatementFunctionDefinition:
		if stmt.Name != "" {
			node.Label = stmt.Name + "()"
		} else {
			node.Label = stmt.Raw
		}
	default:
		node.Label = stmt.Raw
	}

	node.Label = truncateLabel(node.Label, b.config.LabelBudget)
	return node
}

func coalesce(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func truncateLabel(label string, budget int) string {
	if budget <= 0 {
		return label
	}
	runes := []rune(label)
	if len(runes) <= budget {
		return label
	}
	return string(runes[:budget]) + "..."
}
