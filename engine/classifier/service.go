package classifier

import (
	"strings"

	"github.com/flowlens/flowlens/engine/core"
	"github.com/flowlens/flowlens/engine/profile"
	"github.com/flowlens/flowlens/pkg/logger"
)

// service implements Classifier over a profile registry
type service struct {
	registry *profile.Registry
}

// NewService creates a new classifier. A nil registry loads the built-in
// profiles.
func NewService(registry *profile.Registry) Classifier {
	if registry == nil {
		registry = profile.NewRegistry()
	}
	return &service{registry: registry}
}

// Registry returns the profile registry backing this classifier
func (s *service) Registry() *profile.Registry {
	return s.registry
}

// Classify walks the snippet line by line: blank and comment lines are
// skipped before classification, every retained line becomes exactly one
// statement, and unmatched lines degrade to the opaque kind.
func (s *service) Classify(source string, profileID string) *Result {
	p, known := s.registry.Lookup(profileID)
	if !known {
		p = s.registry.Get(profileID)
		logger.Debug("unknown profile id, using default", "requested", profileID, "profile", p.ID)
	}

	result := &Result{Profile: p}
	if source == "" {
		return result
	}

	lines := strings.Split(source, "\n")
	result.Stats.TotalLines = len(lines)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			result.Stats.BlankLines++
			continue
		}
		if p.IsComment(trimmed) {
			result.Stats.CommentLines++
			continue
		}
		result.Stats.CodeLines++

		kind, frag := p.Classify(trimmed)
		stmt := core.Statement{
			Kind:         kind,
			Line:         i + 1,
			IndentDepth:  indentDepth(line),
			Raw:          trimmed,
			Name:         frag.Name,
			Condition:    frag.Condition,
			LoopVariable: frag.LoopVariable,
		}
		if stmt.Condition != "" {
			stmt.References = profile.Identifiers(stmt.Condition)
		}
		result.Statements = append(result.Statements, stmt)
	}
	return result
}

// indentDepth derives the block-ordering signal from leading whitespace:
// one depth unit per two whitespace characters, tabs counted as one
// character each.
func indentDepth(line string) int {
	count := 0
	for _, r := range line {
		if r != ' ' && r != '\t' {
			break
		}
		count++
	}
	return count / 2
}
