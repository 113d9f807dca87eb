package heuristics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/flowlens/flowlens/engine/core"
)

// Substrings the security detectors look for, matched case-insensitively
// against each statement's raw text.
const (
	dynamicEvalMarker = "eval("
	unsafeHTMLMarker  = "innerhtml"
)

var integerPattern = regexp.MustCompile(`\b\d+\b`)

type service struct {
	config *Config
}

// NewService creates a heuristic analyzer. A nil config selects the
// default thresholds.
func NewService(config *Config) Analyzer {
	if config == nil {
		config = DefaultConfig()
	}
	return &service{config: config}
}

func (s *service) Analyze(
	statements []core.Statement,
	m *core.Metrics,
	stats core.SourceStats,
) *core.AnalysisReport {
	report := &core.AnalysisReport{
		Quality:     []core.Finding{},
		Performance: []core.Finding{},
		Security:    []core.Finding{},
		Patterns:    []core.Finding{},
		Suggestions: []core.Suggestion{},
	}

	report.Quality = append(report.Quality, s.detectLongFunctions(statements, stats)...)
	report.Quality = append(report.Quality, s.detectDeepNesting(statements)...)
	report.Quality = append(report.Quality, detectMagicNumbers(statements)...)
	report.Quality = append(report.Quality, s.detectLongParameterLists(statements)...)
	report.Performance = append(report.Performance, detectNestedLoops(statements)...)
	report.Patterns = append(report.Patterns, detectRecursion(statements)...)
	report.Security = append(report.Security, detectSecuritySmells(statements)...)

	report.RiskLevel = riskLevel(len(report.Security))
	report.QualityRating = qualityRating(report.TotalIssues())
	report.Suggestions = suggest(report, m)
	return report
}

// detectLongFunctions measures each function header against the next one,
// or against the end of the input for the last function.
func (s *service) detectLongFunctions(statements []core.Statement, stats core.SourceStats) []core.Finding {
	findings := []core.Finding{}
	for i := range statements {
		stmt := &statements[i]
		if stmt.Kind != core.StatementFunctionDefinition {
			continue
		}
		endLine := stats.TotalLines + 1
		for j := i + 1; j < len(statements); j++ {
			if statements[j].Kind == core.StatementFunctionDefinition {
				endLine = statements[j].Line
				break
			}
		}
		span := endLine - stmt.Line
		if span > s.config.LongFunctionLines {
			findings = append(findings, core.Finding{
				Type:     core.FindingLongFunction,
				Severity: core.SeverityMedium,
				Message:  fmt.Sprintf("function %q spans %d lines", stmt.Name, span),
				Line:     stmt.Line,
			})
		}
	}
	return findings
}

// detectDeepNesting reports one finding carrying the count of statements
// past the depth threshold.
func (s *service) detectDeepNesting(statements []core.Statement) []core.Finding {
	count := 0
	firstLine := 0
	for i := range statements {
		if statements[i].IndentDepth > s.config.DeepNestingDepth {
			if count == 0 {
				firstLine = statements[i].Line
			}
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return []core.Finding{{
		Type:     core.FindingDeepNesting,
		Severity: core.SeverityMedium,
		Message: fmt.Sprintf(
			"%d statements exceed %d levels of nesting",
			count,
			s.config.DeepNestingDepth/2,
		),
		Line: firstLine,
	}}
}

// detectMagicNumbers flags integer literals above 1, except the round
// values 100 and 1000.
func detectMagicNumbers(statements []core.Statement) []core.Finding {
	findings := []core.Finding{}
	for i := range statements {
		stmt := &statements[i]
		var magic []string
		for _, token := range integerPattern.FindAllString(stmt.Raw, -1) {
			value, err := strconv.Atoi(token)
			if err != nil {
				continue
			}
			if value > 1 && value != 100 && value != 1000 {
				magic = append(magic, token)
			}
		}
		if len(magic) > 0 {
			findings = append(findings, core.Finding{
				Type:     core.FindingMagicNumber,
				Severity: core.SeverityLow,
				Message:  "magic numbers should be replaced with named constants",
				Line:     stmt.Line,
				Detail:   strings.Join(magic, ", "),
			})
		}
	}
	return findings
}

func (s *service) detectLongParameterLists(statements []core.Statement) []core.Finding {
	findings := []core.Finding{}
	for i := range statements {
		stmt := &statements[i]
		if stmt.Kind != core.StatementFunctionDefinition {
			continue
		}
		if strings.Count(stmt.Raw, ",") > s.config.ParameterCommaMax {
			findings = append(findings, core.Finding{
				Type:     core.FindingLongParameterList,
				Severity: core.SeverityLow,
				Message:  fmt.Sprintf("function %q declares a long parameter list", stmt.Name),
				Line:     stmt.Line,
			})
		}
	}
	return findings
}

// detectNestedLoops reports the first for-loop pair where the later loop
// sits at strictly greater depth than the earlier one.
func detectNestedLoops(statements []core.Statement) []core.Finding {
	for i := range statements {
		if statements[i].Kind != core.StatementForLoop {
			continue
		}
		for j := i + 1; j < len(statements); j++ {
			if statements[j].Kind == core.StatementForLoop &&
				statements[j].IndentDepth > statements[i].IndentDepth {
				return []core.Finding{{
					Type:     core.FindingNestedLoops,
					Severity: core.SeverityMedium,
					Message:  "nested loops detected",
					Line:     statements[j].Line,
					Detail:   "quadratic",
				}}
			}
		}
	}
	return nil
}

// detectRecursion flags every defined function whose name also appears as
// a call target anywhere in the stream. The match is not restricted to
// the function's own body.
func detectRecursion(statements []core.Statement) []core.Finding {
	called := make(map[string]bool)
	for i := range statements {
		if statements[i].Kind == core.StatementCall && statements[i].Name != "" {
			called[statements[i].Name] = true
		}
	}
	findings := []core.Finding{}
	seen := make(map[string]bool)
	for i := range statements {
		stmt := &statements[i]
		if stmt.Kind != core.StatementFunctionDefinition || stmt.Name == "" {
			continue
		}
		if called[stmt.Name] && !seen[stmt.Name] {
			seen[stmt.Name] = true
			findings = append(findings, core.Finding{
				Type:     core.FindingRecursion,
				Severity: core.SeverityLow,
				Message:  fmt.Sprintf("function %q appears in a recursive call pattern", stmt.Name),
				Line:     stmt.Line,
			})
		}
	}
	return findings
}

func detectSecuritySmells(statements []core.Statement) []core.Finding {
	findings := []core.Finding{}
	for i := range statements {
		stmt := &statements[i]
		raw := strings.ToLower(stmt.Raw)
		if strings.Contains(raw, dynamicEvalMarker) {
			findings = append(findings, core.Finding{
				Type:     core.FindingDynamicEval,
				Severity: core.SeverityHigh,
				Message:  "dynamic code evaluation executes arbitrary strings",
				Line:     stmt.Line,
			})
		}
		if strings.Contains(raw, unsafeHTMLMarker) {
			findings = append(findings, core.Finding{
				Type:     core.FindingUnsafeHTML,
				Severity: core.SeverityMedium,
				Message:  "assigning markup directly can inject unsanitized HTML",
				Line:     stmt.Line,
			})
		}
	}
	return findings
}

func suggest(report *core.AnalysisReport, m *core.Metrics) []core.Suggestion {
	suggestions := []core.Suggestion{}
	if m != nil && quadraticOrWorse(m.TimeComplexity) {
		suggestions = append(suggestions, core.Suggestion{
			Type:     core.SuggestionAlgorithmOptimization,
			Priority: core.PriorityHigh,
			Message: fmt.Sprintf(
				"nested iteration drives the estimated cost to %s; consider a more efficient algorithm or data structure",
				m.TimeComplexity,
			),
		})
	}
	if hasFinding(report.Patterns, core.FindingRecursion) {
		suggestions = append(suggestions, core.Suggestion{
			Type:     core.SuggestionMemoization,
			Priority: core.PriorityMedium,
			Message:  "recursive calls can recompute the same inputs; consider memoizing intermediate results",
		})
	}
	return suggestions
}

func quadraticOrWorse(timeComplexity string) bool {
	switch timeComplexity {
	case "", "O(1)", "O(n)", core.ComplexityNA:
		return false
	}
	return true
}

func hasFinding(findings []core.Finding, findingType string) bool {
	for i := range findings {
		if findings[i].Type == findingType {
			return true
		}
	}
	return false
}

func riskLevel(securityFindings int) core.RiskLevel {
	switch {
	case securityFindings == 0:
		return core.RiskLow
	case securityFindings <= 2:
		return core.RiskMedium
	default:
		return core.RiskHigh
	}
}

func qualityRating(totalIssues int) core.QualityRating {
	switch {
	case totalIssues == 0:
		return core.QualityExcellent
	case totalIssues <= 2:
		return core.QualityGood
	case totalIssues <= 5:
		return core.QualityFair
	default:
		return core.QualityNeedsImprovement
	}
}
