package profile

import (
	"regexp"
	"strings"

	"github.com/flowlens/flowlens/engine/core"
)

// Built-in profile identifiers, one per supported surface syntax
const (
	IDJavaScript = "javascript"
	IDPython     = "python"
	IDJava       = "java"
	IDC          = "c"

	// DefaultID is used when an unknown profile id is requested
	DefaultID = IDJavaScript
)

// Registry holds the built-in profiles and resolves ids with fallback
type Registry struct {
	profiles map[string]*Profile
	order    []string
}

// NewRegistry creates a registry loaded with the built-in profiles
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]*Profile)}
	r.Register(newJavaScriptProfile())
	r.Register(newPythonProfile())
	r.Register(newJavaProfile())
	r.Register(newCProfile())
	return r
}

// Register adds a profile to the registry, replacing any previous profile
// with the same id.
func (r *Registry) Register(p *Profile) {
	if _, exists := r.profiles[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	r.profiles[p.ID] = p
}

// Lookup returns the profile for the exact id
func (r *Registry) Lookup(id string) (*Profile, bool) {
	p, ok := r.profiles[normalizeID(id)]
	return p, ok
}

// Get resolves an id to a profile, falling back to the default profile for
// unknown ids rather than failing.
func (r *Registry) Get(id string) *Profile {
	if p, ok := r.Lookup(id); ok {
		return p
	}
	return r.profiles[DefaultID]
}

// List returns the profiles in registration order
func (r *Registry) List() []*Profile {
	out := make([]*Profile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id])
	}
	return out
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// -----
// JavaScript: brace-delimited blocks, untyped declarations
// -----

var (
	jsDeclaredLoopVar = regexp.MustCompile(`(?:let|var|const)\s+([A-Za-z_$][\w$]*)`)
	bareAssignedVar   = regexp.MustCompile(`^\s*([A-Za-z_$][\w$]*)\s*=`)
)

func newJavaScriptProfile() *Profile {
	return &Profile{
		ID:             IDJavaScript,
		Name:           "JavaScript",
		Description:    "Brace-delimited blocks with untyped declarations",
		CommentMarkers: []string{"//", "/*", "*"},
		BooleanTokens:  []string{"&&", "||"},
		Rules: []Rule{
			NewRule("variable-declaration", core.StatementVariableDeclaration,
				`^(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)`,
				func(g []string) Fragment { return Fragment{Name: g[1]} }),
			NewRule("function-definition", core.StatementFunctionDefinition,
				`^(?:export\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)\s*\(`,
				func(g []string) Fragment { return Fragment{Name: g[1]} }),
			NewRule("conditional", core.StatementConditional,
				`^(?:\}\s*)?(?:else\s+)?if\s*\((.*)\)`,
				func(g []string) Fragment { return Fragment{Condition: compactHeader(g[1])} }),
			NewRule("for-loop", core.StatementForLoop,
				`^for\s*\((.*)\)`,
				func(g []string) Fragment {
					return Fragment{Condition: compactHeader(g[1]), LoopVariable: braceLoopVariable(g[1], jsDeclaredLoopVar)}
				}),
			NewRule("while-loop", core.StatementWhileLoop,
				`^(?:\}\s*)?(?:while\s*\((.*)\)|do\b)`,
				func(g []string) Fragment { return Fragment{Condition: compactHeader(g[1])} }),
			NewRule("return", core.StatementReturn,
				`^return\b`, nil),
			NewRule("call", core.StatementCall,
				`^(?:await\s+)?([A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*)\s*\(`,
				func(g []string) Fragment { return Fragment{Name: lastSegment(g[1])} }),
			NewRule("assignment", core.StatementAssignment,
				`^([A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*|\[[^\]]*\])*)\s*(?:[+\-*/%]|\*\*)?=(?:[^=]|$)`,
				func(g []string) Fragment { return Fragment{Name: rootSegment(g[1])} }),
		},
	}
}

// -----
// Python: indentation-delimited blocks, untyped declarations
// -----

func newPythonProfile() *Profile {
	return &Profile{
		ID:             IDPython,
		Name:           "Python",
		Description:    "Indentation-delimited blocks with untyped declarations",
		CommentMarkers: []string{"#"},
		BooleanTokens:  []string{"and", "or"},
		Rules: []Rule{
			NewRule("variable-declaration", core.StatementVariableDeclaration,
				`^([A-Za-z_]\w*)\s*(?::\s*[^=]+?\s*)?=(?:[^=]|$)`,
				func(g []string) Fragment { return Fragment{Name: g[1]} }),
			NewRule("function-definition", core.StatementFunctionDefinition,
				`^(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(`,
				func(g []string) Fragment { return Fragment{Name: g[1]} }),
			NewRule("conditional", core.StatementConditional,
				`^(?:el)?if\s+(.*?)\s*:`,
				func(g []string) Fragment { return Fragment{Condition: compactHeader(g[1])} }),
			NewRule("for-loop", core.StatementForLoop,
				`^(?:async\s+)?for\s+([A-Za-z_]\w*(?:\s*,\s*[A-Za-z_]\w*)*)\s+in\s+(.*?)\s*:`,
				func(g []string) Fragment {
					return Fragment{
						Condition:    compactHeader(g[1] + " in " + g[2]),
						LoopVariable: firstIdentifier(g[1]),
					}
				}),
			NewRule("while-loop", core.StatementWhileLoop,
				`^while\s+(.*?)\s*:`,
				func(g []string) Fragment { return Fragment{Condition: compactHeader(g[1])} }),
			NewRule("return", core.StatementReturn,
				`^return\b`, nil),
			NewRule("call", core.StatementCall,
				`^(?:await\s+)?([A-Za-z_][\w.]*)\s*\(`,
				func(g []string) Fragment { return Fragment{Name: lastSegment(g[1])} }),
			NewRule("assignment", core.StatementAssignment,
				`^([A-Za-z_][\w.]*(?:\[[^\]]*\])*)\s*(?:[+\-*/%@&|^]|//|\*\*|>>|<<)?=(?:[^=]|$)`,
				func(g []string) Fragment { return Fragment{Name: rootSegment(g[1])} }),
		},
	}
}

// -----
// Java: brace-delimited blocks, explicit types, method-oriented
// -----

var javaDeclaredLoopVar = regexp.MustCompile(`(?:int|long|short|var|[A-Z][\w$]*)\s+([a-z_$][\w$]*)\s*[=:]`)

func newJavaProfile() *Profile {
	return &Profile{
		ID:             IDJava,
		Name:           "Java",
		Description:    "Brace-delimited blocks with explicit types, method-oriented",
		CommentMarkers: []string{"//", "/*", "*"},
		BooleanTokens:  []string{"&&", "||"},
		Rules: []Rule{
			NewRule("variable-declaration", core.StatementVariableDeclaration,
				`^(?:final\s+)?(?:int|long|short|byte|char|float|double|boolean|var|String|[A-Z][\w$]*(?:<[^>]*>)?)(?:\[\])*\s+([a-z_$][\w$]*)\s*(?:=(?:[^=]|$)|;)`,
				func(g []string) Fragment { return Fragment{Name: g[1]} }),
			NewRule("function-definition", core.StatementFunctionDefinition,
				`^(?:(?:public|private|protected|static|final|abstract|synchronized)\s+)+[\w$<>\[\],\s]*?([A-Za-z_$][\w$]*)\s*\(`,
				func(g []string) Fragment { return Fragment{Name: g[1]} }),
			NewRule("conditional", core.StatementConditional,
				`^(?:\}\s*)?(?:else\s+)?if\s*\((.*)\)`,
				func(g []string) Fragment { return Fragment{Condition: compactHeader(g[1])} }),
			NewRule("for-loop", core.StatementForLoop,
				`^for\s*\((.*)\)`,
				func(g []string) Fragment {
					return Fragment{Condition: compactHeader(g[1]), LoopVariable: braceLoopVariable(g[1], javaDeclaredLoopVar)}
				}),
			NewRule("while-loop", core.StatementWhileLoop,
				`^(?:\}\s*)?(?:while\s*\((.*)\)|do\b)`,
				func(g []string) Fragment { return Fragment{Condition: compactHeader(g[1])} }),
			NewRule("return", core.StatementReturn,
				`^return\b`, nil),
			NewRule("call", core.StatementCall,
				`^([A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*)\s*\(`,
				func(g []string) Fragment { return Fragment{Name: lastSegment(g[1])} }),
			NewRule("assignment", core.StatementAssignment,
				`^([A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*|\[[^\]]*\])*)\s*(?:[+\-*/%&|^]|<<|>>)?=(?:[^=]|$)`,
				func(g []string) Fragment { return Fragment{Name: rootSegment(g[1])} }),
		},
	}
}

// -----
// C: brace-delimited blocks, explicit types, function-oriented with
// preprocessor-style includes
// -----

var cDeclaredLoopVar = regexp.MustCompile(`(?:(?:int|long|short|size_t|unsigned|register)\s+)?([A-Za-z_]\w*)\s*=`)

func newCProfile() *Profile {
	return &Profile{
		ID:             IDC,
		Name:           "C",
		Description:    "Brace-delimited blocks with explicit types, function-oriented",
		CommentMarkers: []string{"//", "/*", "*"},
		BooleanTokens:  []string{"&&", "||"},
		Rules: []Rule{
			NewRule("variable-declaration", core.StatementVariableDeclaration,
				`^(?:(?:static|const|unsigned|signed|register|volatile)\s+)*(?:int|long|short|char|float|double|size_t|\w+_t|struct\s+\w+)\s*\**\s*([A-Za-z_]\w*)\s*(?:=(?:[^=]|$)|;|\[|,)`,
				func(g []string) Fragment { return Fragment{Name: g[1]} }),
			NewRule("function-definition", core.StatementFunctionDefinition,
				`^(?:(?:static|inline|extern)\s+)*(?:(?:unsigned|signed|const)\s+)*(?:void|int|long|short|char|float|double|size_t|\w+_t|struct\s+\w+)\s*\**\s*([A-Za-z_]\w*)\s*\([^;]*$`,
				func(g []string) Fragment { return Fragment{Name: g[1]} }),
			NewRule("conditional", core.StatementConditional,
				`^(?:\}\s*)?(?:else\s+)?if\s*\((.*)\)`,
				func(g []string) Fragment { return Fragment{Condition: compactHeader(g[1])} }),
			NewRule("for-loop", core.StatementForLoop,
				`^for\s*\((.*)\)`,
				func(g []string) Fragment {
					return Fragment{Condition: compactHeader(g[1]), LoopVariable: braceLoopVariable(g[1], cDeclaredLoopVar)}
				}),
			NewRule("while-loop", core.StatementWhileLoop,
				`^(?:\}\s*)?(?:while\s*\((.*)\)|do\b)`,
				func(g []string) Fragment { return Fragment{Condition: compactHeader(g[1])} }),
			NewRule("return", core.StatementReturn,
				`^return\b`, nil),
			NewRule("call", core.StatementCall,
				`^([A-Za-z_]\w*)\s*\(`,
				func(g []string) Fragment { return Fragment{Name: g[1]} }),
			NewRule("assignment", core.StatementAssignment,
				`^(\**[A-Za-z_]\w*(?:(?:->|\.)[A-Za-z_]\w*|\[[^\]]*\])*)\s*(?:[+\-*/%&|^]|<<|>>)?=(?:[^=]|$)`,
				func(g []string) Fragment { return Fragment{Name: rootSegment(strings.TrimLeft(g[1], "*"))} }),
		},
	}
}

// -----
// Shared extraction helpers
// -----

// braceLoopVariable pulls the loop variable out of a three-part brace
// header, preferring a declared variable over a bare assignment.
func braceLoopVariable(header string, declared *regexp.Regexp) string {
	if m := declared.FindStringSubmatch(header); m != nil {
		return m[1]
	}
	if m := bareAssignedVar.FindStringSubmatch(header); m != nil {
		return m[1]
	}
	return ""
}

func firstIdentifier(s string) string {
	ids := Identifiers(s)
	if len(ids) == 0 {
		return strings.TrimSpace(s)
	}
	return ids[0]
}

// lastSegment returns the final path segment of a dotted call target
func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

// rootSegment returns the base variable of a dotted or indexed target
func rootSegment(target string) string {
	for i := 0; i < len(target); i++ {
		switch target[i] {
		case '.', '[', '-':
			return target[:i]
		}
	}
	return target
}
