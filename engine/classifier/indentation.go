package classifier

import (
	"fmt"
	"strings"
)

// Violation describes one indentation inconsistency found by the optional
// validation pass.
type Violation struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ValidateIndentation checks the consistent-indentation precondition the
// graph builder's boundary scans rely on. It reports leading runs mixing
// tabs and spaces, lines whose indentation character differs from the rest
// of the file, and indent jumps larger than the file's own step size. The
// pass is advisory: violations degrade graph confidence, they never fail
// an analysis.
func ValidateIndentation(source string) []Violation {
	if source == "" {
		return nil
	}

	lines := strings.Split(source, "\n")
	var violations []Violation

	fileStyle := byte(0)
	depths := make([]int, 0, len(lines))
	lineNums := make([]int, 0, len(lines))

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lead := leadingRun(line)

		hasSpace := strings.ContainsRune(lead, ' ')
		hasTab := strings.ContainsRune(lead, '\t')
		if hasSpace && hasTab {
			violations = append(violations, Violation{
				Line:    i + 1,
				Message: "leading whitespace mixes tabs and spaces",
			})
		} else if len(lead) > 0 {
			style := lead[0]
			if fileStyle == 0 {
				fileStyle = style
			} else if style != fileStyle {
				violations = append(violations, Violation{
					Line:    i + 1,
					Message: fmt.Sprintf("indentation uses %s while the file uses %s", styleName(style), styleName(fileStyle)),
				})
			}
		}

		depths = append(depths, len(lead)/2)
		lineNums = append(lineNums, i+1)
	}

	// The file's own step size is the smallest increase between
	// consecutive statements; anything larger than one step is a jump.
	step := 0
	for i := 1; i < len(depths); i++ {
		if delta := depths[i] - depths[i-1]; delta > 0 && (step == 0 || delta < step) {
			step = delta
		}
	}
	if step > 0 {
		for i := 1; i < len(depths); i++ {
			if delta := depths[i] - depths[i-1]; delta > step {
				violations = append(violations, Violation{
					Line:    lineNums[i],
					Message: fmt.Sprintf("indentation jumps %d levels at once", delta/step),
				})
			}
		}
	}

	return violations
}

func leadingRun(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return line
}

func styleName(c byte) string {
	if c == '\t' {
		return "tabs"
	}
	return "spaces"
}
