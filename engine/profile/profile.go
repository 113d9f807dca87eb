package profile

import (
	"regexp"
	"strings"

	"github.com/flowlens/flowlens/engine/core"
)

// Fragment is the statement content a rule extracts from a matched line.
// Fields are blank when the rule carries no extraction for them.
type Fragment struct {
	Name         string
	Condition    string
	LoopVariable string
}

// Rule identifies one statement kind from a line's shape. Match is a pure
// function of the trimmed line text; it never fails, it only declines.
type Rule struct {
	Name    string
	Kind    core.StatementKind
	pattern *regexp.Regexp
	extract func(groups []string) Fragment
}

// NewRule builds a rule from a pattern and an optional extractor over the
// pattern's capture groups.
func NewRule(name string, kind core.StatementKind, pattern string, extract func(groups []string) Fragment) Rule {
	return Rule{
		Name:    name,
		Kind:    kind,
		pattern: regexp.MustCompile(pattern),
		extract: extract,
	}
}

// Match tries the rule against a trimmed line and returns the extracted
// fragment on success.
func (r *Rule) Match(line string) (Fragment, bool) {
	groups := r.pattern.FindStringSubmatch(line)
	if groups == nil {
		return Fragment{}, false
	}
	if r.extract == nil {
		return Fragment{}, true
	}
	return r.extract(groups), true
}

// Profile is the rule set identifying one supported surface syntax. Rules
// are ordered by classification precedence and tried first-match-wins;
// profiles are immutable after registration.
type Profile struct {
	ID             string
	Name           string
	Description    string
	Rules          []Rule
	CommentMarkers []string
	BooleanTokens  []string
}

// IsComment reports whether a trimmed line is a comment under this profile
func (p *Profile) IsComment(trimmed string) bool {
	for _, marker := range p.CommentMarkers {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}

// Classify runs the profile's rules in precedence order against a trimmed
// line. Unmatched lines report the opaque kind, never an error.
func (p *Profile) Classify(trimmed string) (core.StatementKind, Fragment) {
	for i := range p.Rules {
		if frag, ok := p.Rules[i].Match(trimmed); ok {
			return p.Rules[i].Kind, frag
		}
	}
	return core.StatementOpaque, Fragment{}
}

// CountBooleanOperators counts the profile's logical AND/OR tokens in a
// condition string.
func (p *Profile) CountBooleanOperators(condition string) int {
	n := 0
	for _, tok := range p.BooleanTokens {
		if strings.ContainsAny(tok, "&|") {
			n += strings.Count(condition, tok)
			continue
		}
		// Word tokens need boundaries so "order" does not count as "or".
		n += countWordToken(condition, tok)
	}
	return n
}

func countWordToken(s, word string) int {
	n := 0
	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return n
		}
		start := idx + i
		end := start + len(word)
		if (start == 0 || !isWordChar(s[start-1])) && (end == len(s) || !isWordChar(s[end])) {
			n++
		}
		idx = end
	}
}

func isWordChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

var identifierPattern = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

// reserved words never reported as referenced variables
var reservedWords = map[string]bool{
	"true": true, "false": true, "null": true, "nil": true, "None": true,
	"True": true, "False": true, "undefined": true, "new": true, "not": true,
	"and": true, "or": true, "in": true, "of": true, "is": true,
	"let": true, "var": true, "const": true, "int": true, "long": true,
	"char": true, "float": true, "double": true, "boolean": true,
	"len": true, "range": true, "typeof": true, "instanceof": true,
}

// Identifiers extracts the candidate variable names referenced in an
// expression, in order of first appearance.
func Identifiers(expr string) []string {
	var out []string
	seen := map[string]bool{}
	for _, id := range identifierPattern.FindAllString(expr, -1) {
		if reservedWords[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// compactHeader collapses runs of whitespace in an extracted header so the
// stored condition stays single-line.
func compactHeader(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
