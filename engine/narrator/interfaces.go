package narrator

import (
	"github.com/flowlens/flowlens/engine/core"
)

// Narrator renders one execution step per statement, in stream order, and
// collects the variable-flow history implied by the steps' memory events.
type Narrator interface {
	Narrate(statements []core.Statement) ([]core.ExecutionStep, map[string][]core.VariableEvent)
}
