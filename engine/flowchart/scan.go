package flowchart

import (
	"github.com/flowlens/flowlens/engine/core"
)

// Boundary scans over the statement stream. Both treat indentation depth
// as the block signal: they assume consistent, monotonic indentation per
// nesting level and do not track brace or keyword delimiters. On input
// violating that precondition they attach edges to the wrong node, which
// the indentation validation pass surfaces as reduced graph confidence.

// nextAtOrBelowDepth returns the index of the first statement at or after
// from whose indent depth is less than or equal to depth, or -1 when the
// stream ends first. It locates the statement a negative branch or a loop
// exit lands on.
func nextAtOrBelowDepth(statements []core.Statement, from, depth int) int {
	for j := from; j < len(statements); j++ {
		if statements[j].IndentDepth <= depth {
			return j
		}
	}
	return -1
}

// lastDeeperThan returns the index of the last statement in the
// contiguous run starting at from whose indent depth exceeds depth, or -1
// when the run is empty. The run ends at the first statement at or below
// depth. It locates the loop body statement a back-edge leaves from.
func lastDeeperThan(statements []core.Statement, from, depth int) int {
	last := -1
	for j := from; j < len(statements); j++ {
		if statements[j].IndentDepth <= depth {
			break
		}
		last = j
	}
	return last
}

// scopeFrame records one open loop scope during construction
type scopeFrame struct {
	index int // statement index of the loop header
	depth int // indent depth of the loop header
}

// scopeStack tracks open loop scopes by indent depth while the builder
// walks the stream, so back-edges are emitted the moment a scope closes
// instead of through implicit call-stack state.
type scopeStack struct {
	frames []scopeFrame
}

func newScopeStack() *scopeStack {
	return &scopeStack{}
}

// push opens a loop scope for the statement at index with the given depth
func (s *scopeStack) push(index, depth int) {
	s.frames = append(s.frames, scopeFrame{index: index, depth: depth})
}

// closeAt pops every scope whose depth is at or above the current
// statement's depth and reports the closed frames, innermost first.
func (s *scopeStack) closeAt(depth int) []scopeFrame {
	var closed []scopeFrame
	for len(s.frames) > 0 {
		top := s.frames[len(s.frames)-1]
		if depth > top.depth {
			break
		}
		s.frames = s.frames[:len(s.frames)-1]
		closed = append(closed, top)
	}
	return closed
}

// drain pops all remaining scopes, innermost first
func (s *scopeStack) drain() []scopeFrame {
	closed := make([]scopeFrame, 0, len(s.frames))
	for i := len(s.frames) - 1; i >= 0; i-- {
		closed = append(closed, s.frames[i])
	}
	s.frames = s.frames[:0]
	return closed
}
