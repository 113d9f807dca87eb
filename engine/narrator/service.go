package narrator

import (
	"fmt"
	"strings"

	"github.com/flowlens/flowlens/engine/core"
)

// descriptionBudget caps how much raw text a step description quotes
const descriptionBudget = 40

// Value kinds recorded on memory events, inferred from the text on the
// right-hand side of a declaration or assignment.
const (
	ValueNumber   = "number"
	ValueString   = "string"
	ValueBoolean  = "boolean"
	ValueArray    = "array"
	ValueObject   = "object"
	ValueFunction = "function"
	ValueUnknown  = "unknown"
)

type stepShape struct {
	category core.StepCategory
	weight   int
}

// Each statement kind narrates with a fixed category and complexity
// weight; only declarations, assignments, and for-loops carry memory
// events.
var stepShapes = map[core.StatementKind]stepShape{
	core.StatementVariableDeclaration: {core.StepCategoryMemory, 1},
	core.StatementAssignment:          {core.StepCategoryMemory, 1},
	core.StatementFunctionDefinition:  {core.StepCategoryStructure, 1},
	core.StatementConditional:         {core.StepCategoryControl, 2},
	core.StatementForLoop:             {core.StepCategoryControl, 3},
	core.StatementWhileLoop:           {core.StepCategoryControl, 2},
	core.StatementReturn:              {core.StepCategoryControl, 1},
	core.StatementCall:                {core.StepCategoryExecution, 1},
	core.StatementOpaque:              {core.StepCategoryExecution, 1},
}

type service struct{}

// NewService creates a step narrator
func NewService() Narrator {
	return &service{}
}

func (s *service) Narrate(statements []core.Statement) ([]core.ExecutionStep, map[string][]core.VariableEvent) {
	steps := make([]core.ExecutionStep, 0, len(statements))
	flow := make(map[string][]core.VariableEvent)

	for i := range statements {
		stmt := &statements[i]
		shape, ok := stepShapes[stmt.Kind]
		if !ok {
			shape = stepShapes[core.StatementOpaque]
		}

		step := core.ExecutionStep{
			StepNumber:       i + 1,
			Line:             stmt.Line,
			Kind:             stmt.Kind,
			Description:      describe(stmt),
			Explanation:      explain(stmt),
			Category:         shape.category,
			ComplexityWeight: shape.weight,
			MemoryEvents:     memoryEvents(stmt),
		}
		steps = append(steps, step)

		for _, event := range step.MemoryEvents {
			flow[event.Variable] = append(flow[event.Variable], core.VariableEvent{
				Line:   stmt.Line,
				Kind:   event.Kind,
				Action: event.Action,
			})
		}
	}
	return steps, flow
}

func describe(stmt *core.Statement) string {
	switch stmt.Kind {
	case core.StatementVariableDeclaration:
		return fmt.Sprintf("Declare variable '%s'", stmt.Name)
	case core.StatementAssignment:
		return fmt.Sprintf("Update variable '%s'", stmt.Name)
	case core.StatementFunctionDefinition:
		return fmt.Sprintf("Define function '%s'", stmt.Name)
	case core.StatementConditional:
		return fmt.Sprintf("Check condition: %s", clip(stmt.Condition))
	case core.StatementForLoop:
		return fmt.Sprintf("Start for-loop: %s", clip(stmt.Condition))
	case core.StatementWhileLoop:
		if stmt.Condition == "" {
			return "Start do-while loop"
		}
		return fmt.Sprintf("Loop while: %s", clip(stmt.Condition))
	case core.StatementReturn:
		return "Return to caller"
	case core.StatementCall:
		return fmt.Sprintf("Call '%s'", stmt.Name)
	default:
		return fmt.Sprintf("Execute: %s", clip(stmt.Raw))
	}
}

func explain(stmt *core.Statement) string {
	switch stmt.Kind {
	case core.StatementVariableDeclaration:
		return fmt.Sprintf("Allocates storage for '%s' and records its initial value.", stmt.Name)
	case core.StatementAssignment:
		return fmt.Sprintf("Writes a new value into the existing variable '%s'.", stmt.Name)
	case core.StatementFunctionDefinition:
		return fmt.Sprintf("Introduces '%s'; its body runs only when the function is called.", stmt.Name)
	case core.StatementConditional:
		return "Evaluates the condition and picks the matching branch."
	case core.StatementForLoop:
		if stmt.LoopVariable != "" {
			return fmt.Sprintf(
				"Creates the loop variable '%s' and repeats the body while the header allows.",
				stmt.LoopVariable,
			)
		}
		return "Repeats the body while the loop header allows."
	case core.StatementWhileLoop:
		return "Repeats the body as long as the condition stays true."
	case core.StatementReturn:
		return "Ends the current function and hands its result back to the caller."
	case core.StatementCall:
		return fmt.Sprintf("Transfers control to '%s' and resumes once it returns.", stmt.Name)
	default:
		return "Runs a statement outside the recognized shapes; treated as plain execution."
	}
}

func memoryEvents(stmt *core.Statement) []core.MemoryEvent {
	switch stmt.Kind {
	case core.StatementVariableDeclaration:
		if stmt.Name == "" {
			return nil
		}
		return []core.MemoryEvent{{
			Action:   core.MemoryActionCreate,
			Variable: stmt.Name,
			Kind:     InferValueKind(declaredValue(stmt.Raw)),
		}}
	case core.StatementAssignment:
		if stmt.Name == "" {
			return nil
		}
		return []core.MemoryEvent{{
			Action:   core.MemoryActionUpdate,
			Variable: stmt.Name,
			Kind:     InferValueKind(declaredValue(stmt.Raw)),
		}}
	case core.StatementForLoop:
		if stmt.LoopVariable == "" {
			return nil
		}
		return []core.MemoryEvent{{
			Action:   core.MemoryActionCreate,
			Variable: stmt.LoopVariable,
			Kind:     loopValueKind(stmt.Condition),
		}}
	}
	return nil
}

// declaredValue extracts the right-hand side of the first single "="
// in a raw line, or empty when the line declares without initializing.
func declaredValue(raw string) string {
	idx := strings.Index(raw, "=")
	if idx < 0 || idx+1 >= len(raw) {
		return ""
	}
	// skip comparison heads such as == and walrus-like noise
	rhs := raw[idx+1:]
	rhs = strings.TrimPrefix(rhs, "=")
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rhs), ";"))
}

// loopValueKind keys on the loop header style: a three-part header
// initializes a counter, an iteration header binds elements of an
// unknown kind.
func loopValueKind(condition string) string {
	if eq := strings.Index(condition, "="); eq >= 0 {
		initSegment := condition
		if semi := strings.Index(condition, ";"); semi > eq {
			initSegment = condition[:semi]
		}
		if at := strings.Index(initSegment, "="); at >= 0 && at+1 < len(initSegment) {
			return InferValueKind(strings.TrimSpace(initSegment[at+1:]))
		}
	}
	return ValueUnknown
}

// InferValueKind guesses the kind of a value from the text that produces
// it. Heuristic only; anything unrecognized is reported as unknown.
func InferValueKind(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return ValueUnknown
	}
	switch {
	case strings.HasPrefix(expr, `"`), strings.HasPrefix(expr, "'"), strings.HasPrefix(expr, "`"):
		return ValueString
	case expr == "true" || expr == "false" || expr == "True" || expr == "False":
		return ValueBoolean
	case strings.HasPrefix(expr, "["):
		return ValueArray
	case strings.HasPrefix(expr, "{"), strings.HasPrefix(expr, "new "):
		return ValueObject
	case strings.HasPrefix(expr, "function"), strings.Contains(expr, "=>"), strings.HasPrefix(expr, "lambda"):
		return ValueFunction
	}
	head := expr[0]
	if head >= '0' && head <= '9' {
		return ValueNumber
	}
	if (head == '-' || head == '+') && len(expr) > 1 && expr[1] >= '0' && expr[1] <= '9' {
		return ValueNumber
	}
	return ValueUnknown
}

func clip(text string) string {
	runes := []rune(text)
	if len(runes) <= descriptionBudget {
		return text
	}
	return string(runes[:descriptionBudget]) + "..."
}
