package classifier

import (
	"github.com/flowlens/flowlens/engine/core"
	"github.com/flowlens/flowlens/engine/profile"
)

// Classifier turns snippet text into the ordered statement stream
type Classifier interface {
	// Classify walks the line stream under the named profile. Unknown
	// profile ids fall back to the default profile; classification never
	// fails for text input.
	Classify(source string, profileID string) *Result

	// Registry exposes the profile registry backing this classifier
	Registry() *profile.Registry
}

// Result carries the statement stream plus the line accounting for one
// classification pass.
type Result struct {
	Profile    *profile.Profile
	Statements []core.Statement
	Stats      core.SourceStats
}

// StatementCount is the number of classified statements, equal to the
// count of non-blank, non-comment lines.
func (r *Result) StatementCount() int {
	return len(r.Statements)
}
