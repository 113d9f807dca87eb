package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flowlens/flowlens/engine/core"
	"github.com/flowlens/flowlens/engine/profile"
)

// SnippetFixture describes one snippet file under testdata/ together with
// the analysis properties integration tests assert on.
type SnippetFixture struct {
	Name            string
	ProfileID       string
	File            string
	TimeComplexity  string
	SpaceComplexity string
	FindingTypes    []string
}

// ProfileFixtures returns one fixture per built-in profile. The files live
// under testdata/ at the repository root.
func ProfileFixtures() []SnippetFixture {
	return []SnippetFixture{
		{
			Name:            "iterative fibonacci",
			ProfileID:       profile.IDJavaScript,
			File:            "fibonacci.js",
			TimeComplexity:  "O(n)",
			SpaceComplexity: "O(1)",
			FindingTypes:    []string{core.FindingMagicNumber},
		},
		{
			Name:            "pairwise product table",
			ProfileID:       profile.IDPython,
			File:            "nested_loops.py",
			TimeComplexity:  "O(n²)",
			SpaceComplexity: "O(1)",
			FindingTypes:    []string{core.FindingNestedLoops, core.FindingMagicNumber},
		},
		{
			Name:            "recursive countdown",
			ProfileID:       profile.IDJava,
			File:            "countdown.java",
			TimeComplexity:  "O(1)",
			SpaceComplexity: "O(n)",
			FindingTypes:    []string{core.FindingRecursion},
		},
		{
			Name:            "buffer sum",
			ProfileID:       profile.IDC,
			File:            "buffer_sum.c",
			TimeComplexity:  "O(n)",
			SpaceComplexity: "O(1)",
			FindingTypes:    nil,
		},
	}
}

// UnsafeRenderFixture is a JavaScript snippet that trips both security
// detectors.
func UnsafeRenderFixture() SnippetFixture {
	return SnippetFixture{
		Name:           "unsafe expression rendering",
		ProfileID:      profile.IDJavaScript,
		File:           "unsafe_render.js",
		TimeComplexity: "O(1)",
		FindingTypes:   []string{core.FindingDynamicEval, core.FindingUnsafeHTML},
	}
}

// ReadFixture loads a fixture's source from the repository testdata directory
func ReadFixture(t *testing.T, projectRoot string, fixture SnippetFixture) string {
	t.Helper()
	return ReadSnippetFile(t, filepath.Join(projectRoot, "testdata", fixture.File))
}

// ReadSnippetFile reads a snippet from disk, failing the test on error
func ReadSnippetFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read snippet %s: %v", path, err)
	}
	return string(data)
}

// WriteSnippetFile writes a snippet into dir and returns its path
func WriteSnippetFile(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("Failed to write snippet %s: %v", path, err)
	}
	return path
}

// AllFindings flattens the grouped report findings into one slice
func AllFindings(report *core.AnalysisReport) []core.Finding {
	if report == nil {
		return nil
	}
	findings := make([]core.Finding, 0,
		len(report.Quality)+len(report.Performance)+len(report.Security)+len(report.Patterns))
	findings = append(findings, report.Quality...)
	findings = append(findings, report.Performance...)
	findings = append(findings, report.Security...)
	findings = append(findings, report.Patterns...)
	return findings
}

// HasFindingType reports whether any finding in the slice carries the type
func HasFindingType(findings []core.Finding, findingType string) bool {
	for i := range findings {
		if findings[i].Type == findingType {
			return true
		}
	}
	return false
}
