// Package matcher matches IRIs and entity names against glob or regex
// patterns. In a glob, '*' matches any run of characters including '/' and
// '#', so "http://www.w3.org/*" covers a whole namespace.
package matcher

import (
	"fmt"
	"regexp"
	"strings"
)

// Syntax selects how a pattern string is interpreted.
type Syntax int

const (
	// Glob patterns support *, ? and [] classes and always match the whole input.
	Glob Syntax = iota
	// Regex patterns are Go regular expressions and match anywhere unless anchored.
	Regex
	// Auto picks Regex when the pattern uses regex-only constructs.
	Auto
)

func (s Syntax) String() string {
	switch s {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Pattern is one compiled pattern.
type Pattern struct {
	source string
	syntax Syntax
	re     *regexp.Regexp
}

// Compile compiles pattern. With fold set, matching ignores case.
func Compile(pattern string, syntax Syntax, fold bool) (*Pattern, error) {
	if syntax == Auto {
		syntax = detect(pattern)
	}

	var expr string
	switch syntax {
	case Glob:
		var err error
		if expr, err = globExpr(pattern); err != nil {
			return nil, err
		}
	case Regex:
		expr = pattern
	default:
		return nil, fmt.Errorf("unsupported pattern syntax %v", syntax)
	}
	if fold {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid %s pattern %q: %w", syntax, pattern, err)
	}
	return &Pattern{source: pattern, syntax: syntax, re: re}, nil
}

// Match reports whether input matches.
func (p *Pattern) Match(input string) bool {
	return p.re.MatchString(input)
}

// String returns the pattern as written.
func (p *Pattern) String() string {
	return p.source
}

// Syntax returns the resolved syntax, never Auto.
func (p *Pattern) Syntax() Syntax {
	return p.syntax
}

// Set matches when any of its patterns does. The zero Set matches nothing.
type Set []*Pattern

// NewSet compiles every non-blank pattern.
func NewSet(syntax Syntax, fold bool, patterns ...string) (Set, error) {
	set := make(Set, 0, len(patterns))
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		p, err := Compile(pattern, syntax, fold)
		if err != nil {
			return nil, err
		}
		set = append(set, p)
	}
	return set, nil
}

// Match reports whether any pattern matches input.
func (s Set) Match(input string) bool {
	for _, p := range s {
		if p.Match(input) {
			return true
		}
	}
	return false
}

// Strings returns the patterns as written.
func (s Set) Strings() []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.source
	}
	return out
}

// detect treats a pattern as a regex when it carries anchors, escapes,
// groups, alternation or quantifiers a glob cannot express.
func detect(pattern string) Syntax {
	if strings.HasPrefix(pattern, "^") || strings.HasSuffix(pattern, "$") {
		return Regex
	}
	for _, marker := range []string{`\d`, `\w`, `\s`, ".*", ".+", "(", "|", "{", "+"} {
		if strings.Contains(pattern, marker) {
			return Regex
		}
	}
	return Glob
}

// globExpr translates a glob into an anchored regular expression.
func globExpr(glob string) (string, error) {
	var b strings.Builder
	b.WriteByte('^')
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				return "", fmt.Errorf("invalid glob pattern %q: unterminated class", glob)
			}
			class := glob[i+1 : i+1+end]
			b.WriteByte('[')
			if strings.HasPrefix(class, "!") {
				b.WriteByte('^')
				class = class[1:]
			}
			b.WriteString(strings.ReplaceAll(class, `\`, `\\`))
			b.WriteByte(']')
			i += end + 1
		case '\\':
			if i+1 < len(glob) {
				i++
				b.WriteString(regexp.QuoteMeta(glob[i : i+1]))
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteByte('$')
	return b.String(), nil
}
