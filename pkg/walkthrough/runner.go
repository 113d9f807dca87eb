package walkthrough

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/flowlens/flowlens/engine/core"
)

// -----
// Runner
// -----

// Run opens the interactive walkthrough, or prints the plain listing when
// stdout is not attached to a terminal.
func Run(result *core.AnalysisResult, source string, output io.Writer) error {
	if !IsInteractive() {
		_, err := fmt.Fprint(output, RenderPlain(result))
		return err
	}

	model := New(result, source)
	program := tea.NewProgram(&model, tea.WithOutput(output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run walkthrough: %w", err)
	}
	return nil
}

// IsInteractive reports whether stdout is attached to a terminal
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// RenderPlain renders the execution steps as a numbered text listing
func RenderPlain(result *core.AnalysisResult) string {
	if result == nil || len(result.Steps) == 0 {
		return "No execution steps to display.\n"
	}

	width := len(strconv.Itoa(len(result.Steps)))
	var b strings.Builder
	for _, step := range result.Steps {
		fmt.Fprintf(&b, "%*d. [line %d] %s\n", width, step.StepNumber, step.Line, step.Description)
		if step.Explanation != "" {
			fmt.Fprintf(&b, "%*s  %s\n", width+1, "", step.Explanation)
		}
		for _, event := range step.MemoryEvents {
			fmt.Fprintf(&b, "%*s  %s %s (%s)\n", width+1, "", event.Action, event.Variable, event.Kind)
		}
	}
	return b.String()
}
