package narrator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/engine/core"
	"github.com/flowlens/flowlens/engine/narrator"
)

func TestService_Narrate_Ordering(t *testing.T) {
	t.Run("Should emit one step per statement in stream order", func(t *testing.T) {
		statements := []core.Statement{
			{Kind: core.StatementVariableDeclaration, Name: "total", Line: 1, Raw: "let total = 0"},
			{Kind: core.StatementForLoop, Line: 2, Condition: "let i = 0; i < n; i++", LoopVariable: "i"},
			{Kind: core.StatementReturn, Line: 4},
		}
		steps, _ := narrator.NewService().Narrate(statements)
		require.Len(t, steps, 3)
		for i, step := range steps {
			assert.Equal(t, i+1, step.StepNumber)
			assert.Equal(t, statements[i].Line, step.Line)
			assert.Equal(t, statements[i].Kind, step.Kind)
		}
	})

	t.Run("Should return no steps for an empty stream", func(t *testing.T) {
		steps, flow := narrator.NewService().Narrate(nil)
		assert.Empty(t, steps)
		assert.Empty(t, flow)
	})
}

func TestService_Narrate_StepShapes(t *testing.T) {
	narrate := func(t *testing.T, stmt core.Statement) core.ExecutionStep {
		t.Helper()
		steps, _ := narrator.NewService().Narrate([]core.Statement{stmt})
		require.Len(t, steps, 1)
		return steps[0]
	}

	t.Run("Should narrate declarations as weighted memory steps", func(t *testing.T) {
		step := narrate(t, core.Statement{
			Kind: core.StatementVariableDeclaration,
			Name: "count",
			Line: 1,
			Raw:  "let count = 0",
		})
		assert.Equal(t, core.StepCategoryMemory, step.Category)
		assert.Equal(t, 1, step.ComplexityWeight)
		assert.Contains(t, step.Description, "count")
		require.Len(t, step.MemoryEvents, 1)
		assert.Equal(t, core.MemoryActionCreate, step.MemoryEvents[0].Action)
		assert.Equal(t, "count", step.MemoryEvents[0].Variable)
		assert.Equal(t, narrator.ValueNumber, step.MemoryEvents[0].Kind)
	})

	t.Run("Should narrate assignments as updates", func(t *testing.T) {
		step := narrate(t, core.Statement{
			Kind: core.StatementAssignment,
			Name: "name",
			Line: 2,
			Raw:  `name = "ada"`,
		})
		assert.Equal(t, core.StepCategoryMemory, step.Category)
		require.Len(t, step.MemoryEvents, 1)
		assert.Equal(t, core.MemoryActionUpdate, step.MemoryEvents[0].Action)
		assert.Equal(t, narrator.ValueString, step.MemoryEvents[0].Kind)
	})

	t.Run("Should weight conditionals and loops by branching cost", func(t *testing.T) {
		conditional := narrate(t, core.Statement{Kind: core.StatementConditional, Condition: "x > 0", Line: 1})
		assert.Equal(t, core.StepCategoryControl, conditional.Category)
		assert.Equal(t, 2, conditional.ComplexityWeight)
		assert.Empty(t, conditional.MemoryEvents)

		forLoop := narrate(t, core.Statement{
			Kind:         core.StatementForLoop,
			Condition:    "let i = 0; i < 10; i++",
			LoopVariable: "i",
			Line:         2,
		})
		assert.Equal(t, 3, forLoop.ComplexityWeight)
		require.Len(t, forLoop.MemoryEvents, 1)
		assert.Equal(t, core.MemoryActionCreate, forLoop.MemoryEvents[0].Action)
		assert.Equal(t, "i", forLoop.MemoryEvents[0].Variable)
		assert.Equal(t, narrator.ValueNumber, forLoop.MemoryEvents[0].Kind)

		whileLoop := narrate(t, core.Statement{Kind: core.StatementWhileLoop, Condition: "left < right", Line: 3})
		assert.Equal(t, 2, whileLoop.ComplexityWeight)
		assert.Empty(t, whileLoop.MemoryEvents)
	})

	t.Run("Should narrate structure and execution kinds without events", func(t *testing.T) {
		function := narrate(t, core.Statement{Kind: core.StatementFunctionDefinition, Name: "fib", Line: 1})
		assert.Equal(t, core.StepCategoryStructure, function.Category)
		assert.Empty(t, function.MemoryEvents)

		call := narrate(t, core.Statement{Kind: core.StatementCall, Name: "fib", Line: 2})
		assert.Equal(t, core.StepCategoryExecution, call.Category)
		assert.Equal(t, 1, call.ComplexityWeight)

		ret := narrate(t, core.Statement{Kind: core.StatementReturn, Line: 3})
		assert.Equal(t, core.StepCategoryControl, ret.Category)
		assert.Equal(t, 1, ret.ComplexityWeight)

		opaque := narrate(t, core.Statement{Kind: core.StatementOpaque, Raw: "#pragma once", Line: 4})
		assert.Equal(t, core.StepCategoryExecution, opaque.Category)
		assert.Contains(t, opaque.Description, "#pragma once")
	})

	t.Run("Should clip long condition text in descriptions", func(t *testing.T) {
		condition := strings.Repeat("x && ", 30) + "y"
		step := narrate(t, core.Statement{Kind: core.StatementConditional, Condition: condition, Line: 1})
		assert.True(t, strings.HasSuffix(step.Description, "..."))
		assert.Less(t, len(step.Description), len(condition))
	})
}

func TestService_Narrate_VariableFlow(t *testing.T) {
	t.Run("Should track creates and updates per variable in order", func(t *testing.T) {
		statements := []core.Statement{
			{Kind: core.StatementVariableDeclaration, Name: "sum", Line: 1, Raw: "let sum = 0"},
			{Kind: core.StatementForLoop, Line: 2, Condition: "let i = 0; i < n; i++", LoopVariable: "i"},
			{Kind: core.StatementAssignment, Name: "sum", Line: 3, Raw: "sum = sum + i"},
		}
		_, flow := narrator.NewService().Narrate(statements)
		require.Len(t, flow, 2)

		sum := flow["sum"]
		require.Len(t, sum, 2)
		assert.Equal(t, core.MemoryActionCreate, sum[0].Action)
		assert.Equal(t, 1, sum[0].Line)
		assert.Equal(t, core.MemoryActionUpdate, sum[1].Action)
		assert.Equal(t, 3, sum[1].Line)

		i := flow["i"]
		require.Len(t, i, 1)
		assert.Equal(t, core.MemoryActionCreate, i[0].Action)
	})

	t.Run("Should leave the flow empty when nothing touches memory", func(t *testing.T) {
		statements := []core.Statement{
			{Kind: core.StatementCall, Name: "print", Line: 1},
			{Kind: core.StatementReturn, Line: 2},
		}
		_, flow := narrator.NewService().Narrate(statements)
		assert.Empty(t, flow)
	})
}

func TestInferValueKind(t *testing.T) {
	t.Run("Should classify literal shapes", func(t *testing.T) {
		cases := map[string]string{
			"42":             narrator.ValueNumber,
			"-3":             narrator.ValueNumber,
			`"hello"`:        narrator.ValueString,
			"'c'":            narrator.ValueString,
			"true":           narrator.ValueBoolean,
			"False":          narrator.ValueBoolean,
			"[1, 2, 3]":      narrator.ValueArray,
			"{ a: 1 }":       narrator.ValueObject,
			"new Map()":      narrator.ValueObject,
			"() => x":        narrator.ValueFunction,
			"lambda x: x":    narrator.ValueFunction,
			"someCall(a, b)": narrator.ValueUnknown,
			"":               narrator.ValueUnknown,
		}
		for expr, want := range cases {
			assert.Equal(t, want, narrator.InferValueKind(expr), "expr %q", expr)
		}
	})
}
