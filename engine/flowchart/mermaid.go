package flowchart

import (
	"fmt"
	"strings"

	"github.com/flowlens/flowlens/engine/core"
)

// Mermaid serialization of the flow graph: one declaration line per node,
// one per edge, with a linkStyle directive following every emphasized
// edge. The output is consumed by external Mermaid renderers verbatim.

const mermaidHeader = "flowchart TD"

// emphasisStyle is applied to loop back-edges and negative branches
const emphasisStyle = "stroke:#f66,stroke-width:2px"

// Serializer renders flow graphs as Mermaid flowchart text
type Serializer struct {
	indent string
}

// NewSerializer creates a Mermaid serializer
func NewSerializer() *Serializer {
	return &Serializer{indent: "    "}
}

// Serialize renders the graph. Node shapes map to Mermaid delimiters:
// terminal to parentheses, decision to braces, process to brackets.
func (s *Serializer) Serialize(graph *core.FlowGraph) string {
	var b strings.Builder
	b.WriteString(mermaidHeader)
	b.WriteByte('\n')

	for _, node := range graph.Nodes {
		open, closing := shapeDelimiters(node.Shape)
		fmt.Fprintf(&b, "%s%s%s\"%s\"%s\n", s.indent, node.ID, open, escapeLabel(node.Label), closing)
	}

	for i, edge := range graph.Edges {
		if edge.Label != "" {
			fmt.Fprintf(&b, "%s%s -->|\"%s\"| %s\n", s.indent, edge.From, escapeLabel(edge.Label), edge.To)
		} else {
			fmt.Fprintf(&b, "%s%s --> %s\n", s.indent, edge.From, edge.To)
		}
		if edge.Style == core.EdgeStyleEmphasis {
			fmt.Fprintf(&b, "%slinkStyle %d %s\n", s.indent, i, emphasisStyle)
		}
	}

	return b.String()
}

func shapeDelimiters(shape core.NodeShape) (string, string) {
	switch shape {
	case core.NodeShapeTerminal:
		return "(", ")"
	case core.NodeShapeDecision:
		return "{", "}"
	default:
		return "[", "]"
	}
}

// escapeLabel makes a label safe for a quoted Mermaid segment: double
// quotes become the #quot; entity and newlines collapse to spaces.
func escapeLabel(label string) string {
	label = strings.ReplaceAll(label, "\"", "#quot;")
	label = strings.ReplaceAll(label, "\r\n", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return label
}
