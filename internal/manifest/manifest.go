// Package manifest loads the ownership manifest: a line-oriented file of
// "<glob-pattern> <owner-handles...>" rules, CODEOWNERS style.
//
// Manifest rules are authoritative declarations, so every match carries
// the maximal strength of 100. A malformed pattern never aborts loading;
// the offending line is skipped with a warning.
package manifest

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"whoowns/internal/errors"
	"whoowns/internal/logging"
	"whoowns/internal/pattern"
)

// DeclaredStrength is the strength assigned to every manifest rule.
// The manifest is an explicit declaration, not an inferred signal.
const DeclaredStrength = 100

// Rule is a single parsed manifest rule with its precompiled matcher
type Rule struct {
	Pattern    string
	Matcher    *pattern.Matcher
	Owners     []string
	LineNumber int
}

// Match is a manifest hit for one artifact path
type Match struct {
	Owner    string
	Pattern  string
	Strength int
}

// Source is a loaded ownership manifest
type Source struct {
	path   string
	rules  []Rule
	logger *logging.Logger
}

// StandardLocations are the places Discover looks for a manifest,
// in priority order.
var StandardLocations = []string{
	".github/CODEOWNERS",
	"CODEOWNERS",
	"docs/CODEOWNERS",
}

// Discover returns the path of the first manifest found in the standard
// locations, or "" when none exists
func Discover(repoRoot string) string {
	for _, loc := range StandardLocations {
		p := filepath.Join(repoRoot, loc)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load parses the manifest at path. An unreadable file is a
// configuration-time error; malformed individual lines are not.
func Load(path string, logger *logging.Logger) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ManifestUnreadable, "cannot open ownership manifest", err).
			WithDetails(map[string]interface{}{"path": path})
	}
	defer func() { _ = f.Close() }()

	src := &Source{path: path, logger: logger}
	scanner := bufio.NewScanner(f)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			// Pattern with no owners, or owners with no pattern
			continue
		}

		glob := fields[0]
		owners := fields[1:]

		m, err := pattern.Compile(glob)
		if err != nil {
			logger.Warn("Skipping malformed manifest pattern", map[string]interface{}{
				"path":    path,
				"line":    lineNumber,
				"pattern": glob,
				"error":   err.Error(),
			})
			continue
		}

		src.rules = append(src.rules, Rule{
			Pattern:    glob,
			Matcher:    m,
			Owners:     owners,
			LineNumber: lineNumber,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ManifestUnreadable, "error reading ownership manifest", err).
			WithDetails(map[string]interface{}{"path": path})
	}

	logger.Debug("Ownership manifest loaded", map[string]interface{}{
		"path":  path,
		"rules": len(src.rules),
	})

	return src, nil
}

// Path returns the manifest file path
func (s *Source) Path() string {
	return s.path
}

// Rules returns all parsed rules in file order
func (s *Source) Rules() []Rule {
	return s.rules
}

// OwnersFor returns the manifest matches for a path. Rules are evaluated
// in file order and the last matching rule wins, as in CODEOWNERS; every
// owner of the winning rule is returned at DeclaredStrength.
func (s *Source) OwnersFor(path string) []Match {
	var winner *Rule
	for i := range s.rules {
		if s.rules[i].Matcher.Matches(path) {
			winner = &s.rules[i]
		}
	}
	if winner == nil {
		return nil
	}

	matches := make([]Match, 0, len(winner.Owners))
	for _, owner := range winner.Owners {
		matches = append(matches, Match{
			Owner:    owner,
			Pattern:  winner.Pattern,
			Strength: DeclaredStrength,
		})
	}
	return matches
}
