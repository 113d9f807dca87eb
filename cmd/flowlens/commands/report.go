package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/flowlens/flowlens/engine/core"
)

// Terminal report rendering for the analyze command. The styled variant is
// used on interactive terminals; the plain variant serves pipes and files.

var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#F9FAFB"})

	reportLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}).
				Width(16)

	reportValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"})

	reportBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"}).
			Padding(1, 2)

	reportSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#6366F1", Dark: "#8B5CF6"})

	severityStyles = map[core.Severity]lipgloss.Style{
		core.SeverityLow:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}),
		core.SeverityMedium: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"}),
		core.SeverityHigh:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"}),
	}
)

// findingGroup pairs a report section name with its findings
type findingGroup struct {
	name     string
	findings []core.Finding
}

// findingGroups returns the non-empty report sections in display order
func findingGroups(report *core.AnalysisReport) []findingGroup {
	all := []findingGroup{
		{"Quality", report.Quality},
		{"Performance", report.Performance},
		{"Security", report.Security},
		{"Patterns", report.Patterns},
	}
	out := make([]findingGroup, 0, len(all))
	for _, g := range all {
		if len(g.findings) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// renderReport renders the analysis for the terminal
func renderReport(result *core.AnalysisResult, styled bool) string {
	if !styled {
		return renderReportPlain(result)
	}

	var content strings.Builder
	content.WriteString(reportTitleStyle.Render("📊 Analysis Report"))
	content.WriteString("\n\n")

	row := func(label, value string) {
		content.WriteString(reportLabelStyle.Render(label))
		content.WriteString(" " + reportValueStyle.Render(value) + "\n")
	}

	row("Profile:", result.Profile)
	row("Quality:", fmt.Sprintf("%d/100 (%s)", result.Metrics.QualityScore, result.Report.QualityRating))
	row("Risk Level:", string(result.Report.RiskLevel))
	row("Duration:", result.Duration.Round(time.Microsecond).String())
	content.WriteString("\n")

	row("Lines:", fmt.Sprintf("%d total, %d code, %d comment, %d blank",
		result.Stats.TotalLines, result.Stats.CodeLines, result.Stats.CommentLines, result.Stats.BlankLines))
	row("Statements:", fmt.Sprintf("%d", result.Metrics.StatementCount))
	content.WriteString("\n")

	row("Cyclomatic:", fmt.Sprintf("%d", result.Metrics.CyclomaticComplexity))
	row("Max Nesting:", fmt.Sprintf("%d", result.Metrics.MaxNestingDepth))
	row("Time Estimate:", result.Metrics.TimeComplexity)
	row("Space Estimate:", result.Metrics.SpaceComplexity)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", reportBoxStyle.Render(content.String()))

	groups := findingGroups(result.Report)
	if len(groups) == 0 {
		fmt.Fprintf(&b, "%s\n", reportSectionStyle.Render("✓ No findings"))
	}
	for _, group := range groups {
		fmt.Fprintf(&b, "%s\n", reportSectionStyle.Render(group.name+":"))
		for _, finding := range group.findings {
			style, ok := severityStyles[finding.Severity]
			if !ok {
				style = lipgloss.NewStyle()
			}
			fmt.Fprintf(&b, "  %s %s\n", style.Render("["+string(finding.Severity)+"]"), findingText(&finding))
		}
		b.WriteString("\n")
	}

	if len(result.Report.Suggestions) > 0 {
		fmt.Fprintf(&b, "%s\n", reportSectionStyle.Render("Suggestions:"))
		for _, s := range result.Report.Suggestions {
			fmt.Fprintf(&b, "  • %s\n", s.Message)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s\n",
		reportSectionStyle.Render(fmt.Sprintf("💡 %d execution steps. Run 'flowlens steps <file>' to walk them.", len(result.Steps))))

	return b.String()
}

// renderReportPlain renders the analysis without styling
func renderReportPlain(result *core.AnalysisResult) string {
	var b strings.Builder

	b.WriteString("Analysis Report\n")
	fmt.Fprintf(&b, "%-16s %s\n", "Profile:", result.Profile)
	fmt.Fprintf(&b, "%-16s %d/100 (%s)\n", "Quality:", result.Metrics.QualityScore, result.Report.QualityRating)
	fmt.Fprintf(&b, "%-16s %s\n", "Risk Level:", result.Report.RiskLevel)
	fmt.Fprintf(&b, "%-16s %s\n", "Duration:", result.Duration.Round(time.Microsecond))
	b.WriteString("\n")

	fmt.Fprintf(&b, "%-16s %d total, %d code, %d comment, %d blank\n", "Lines:",
		result.Stats.TotalLines, result.Stats.CodeLines, result.Stats.CommentLines, result.Stats.BlankLines)
	fmt.Fprintf(&b, "%-16s %d\n", "Statements:", result.Metrics.StatementCount)
	fmt.Fprintf(&b, "%-16s %d\n", "Cyclomatic:", result.Metrics.CyclomaticComplexity)
	fmt.Fprintf(&b, "%-16s %d\n", "Max Nesting:", result.Metrics.MaxNestingDepth)
	fmt.Fprintf(&b, "%-16s %s\n", "Time Estimate:", result.Metrics.TimeComplexity)
	fmt.Fprintf(&b, "%-16s %s\n", "Space Estimate:", result.Metrics.SpaceComplexity)
	b.WriteString("\n")

	groups := findingGroups(result.Report)
	if len(groups) == 0 {
		b.WriteString("No findings\n")
	}
	for _, group := range groups {
		fmt.Fprintf(&b, "%s:\n", group.name)
		for _, finding := range group.findings {
			fmt.Fprintf(&b, "  [%s] %s\n", finding.Severity, findingText(&finding))
		}
	}

	if len(result.Report.Suggestions) > 0 {
		b.WriteString("Suggestions:\n")
		for _, s := range result.Report.Suggestions {
			fmt.Fprintf(&b, "  - %s\n", s.Message)
		}
	}

	fmt.Fprintf(&b, "\n%d execution steps\n", len(result.Steps))
	return b.String()
}

// findingText appends the line reference to a finding message when present
func findingText(finding *core.Finding) string {
	if finding.Line > 0 {
		return fmt.Sprintf("%s (line %d)", finding.Message, finding.Line)
	}
	return finding.Message
}
