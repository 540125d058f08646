// Package pattern compiles glob-style ownership patterns into matchers
// for repository-relative paths.
//
// Translation rules, in order:
//
//  1. Regex metacharacters that are not glob syntax are escaped. The dot
//     is translated to "any single character excluding the separator"
//     rather than a literal: legacy store rows carry regex-flavored
//     patterns like "app/.*", and a literal dot would orphan them.
//     Character classes pass through so "[0-9]" keeps working; an
//     unbalanced class surfaces as a PATTERN_INVALID compile error.
//  2. "**" matches any sequence of characters, including path separators.
//     "**/" additionally matches at repository root.
//  3. A leading "/" anchors the pattern to the repository root. Unanchored
//     patterns match at any depth.
//  4. A bare "*" matches any sequence excluding the path separator.
//  5. "?" matches exactly one character, excluding the path separator.
//
// A trailing "/" marks a directory pattern and matches everything beneath
// it. Any other pattern also matches as a directory prefix ("src/ui"
// matches "src/ui/Main.x"), mirroring CODEOWNERS semantics.
package pattern

import (
	"regexp"
	"strings"

	"whoowns/internal/errors"
)

// Matcher is a compiled ownership pattern
type Matcher struct {
	raw      string
	anchored bool
	re       *regexp.Regexp
}

// Compile translates a glob-style pattern into a Matcher.
// Returns a PATTERN_INVALID error for patterns that do not compile.
func Compile(glob string) (*Matcher, error) {
	if strings.TrimSpace(glob) == "" {
		return nil, errors.New(errors.PatternInvalid, "empty pattern")
	}

	anchored := strings.HasPrefix(glob, "/")
	body := translate(strings.TrimPrefix(glob, "/"))

	var sb strings.Builder
	sb.WriteString("^")
	if !anchored {
		sb.WriteString(`(?:.*/)?`)
	}
	sb.WriteString(body)
	if strings.HasSuffix(glob, "/") {
		// Directory pattern: match everything beneath it
		sb.WriteString(".*")
	} else {
		// Also match as a directory prefix
		sb.WriteString(`(?:/.*)?`)
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, errors.Wrap(errors.PatternInvalid, "pattern does not compile", err).
			WithDetails(map[string]interface{}{"pattern": glob})
	}

	return &Matcher{raw: glob, anchored: anchored, re: re}, nil
}

// translate converts glob syntax to regex syntax. Escaping happens as each
// character is visited, before wildcard markers are emitted, so emitted
// wildcards are never themselves escaped.
func translate(glob string) string {
	var b strings.Builder

	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				if i+2 < len(glob) && glob[i+2] == '/' {
					// "**/" matches zero or more leading directories
					b.WriteString(`(?:.*/)?`)
					i += 2
					continue
				}
				b.WriteString(".*")
				i++
				continue
			}
			b.WriteString("[^/]*")
		case '?', '.':
			b.WriteString("[^/]")
		case '+', '^', '$', '(', ')', '{', '}', '|':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

// Matches reports whether a repository-relative path matches the pattern
func (m *Matcher) Matches(path string) bool {
	return m.re.MatchString(path)
}

// String returns the original pattern text
func (m *Matcher) String() string {
	return m.raw
}

// Anchored reports whether the pattern is anchored to the repository root
func (m *Matcher) Anchored() bool {
	return m.anchored
}
