// Package history derives candidate owners for a path from git commit
// history. This is a frequency ranking over a trailing time window, not a
// graded strength signal: callers assign the fixed low-confidence point
// value to every returned author.
package history

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strings"

	"whoowns/internal/errors"
	"whoowns/internal/logging"
)

const (
	// DefaultWindowMonths is the trailing window for commit counting
	DefaultWindowMonths = 6

	// DefaultMaxCandidates caps the number of returned authors
	DefaultMaxCandidates = 3
)

// DefaultBotPatterns match authors that are automation, not owners
var DefaultBotPatterns = []string{
	`\[bot\]$`,
	`^dependabot`,
	`^renovate`,
	`^github-actions`,
}

// Author is one candidate owner derived from commit frequency
type Author struct {
	Name    string
	Email   string // Most recent commit email, feeds identity mapping
	Commits int
}

// Runner executes a git command in dir and returns its output lines.
// Injectable so tests can fake git.
type Runner func(ctx context.Context, dir string, args ...string) ([]string, error)

// Config controls the history window and candidate cap
type Config struct {
	RepoRoot      string
	WindowMonths  int
	MaxCandidates int
	BotPatterns   []string
	Runner        Runner // nil means real git
}

// Source answers ownership-by-frequency queries against git history
type Source struct {
	repoRoot      string
	windowMonths  int
	maxCandidates int
	botPatterns   []*regexp.Regexp
	run           Runner
	logger        *logging.Logger
}

// NewSource creates a history source. Zero config values fall back to the
// package defaults.
func NewSource(cfg Config, logger *logging.Logger) *Source {
	if cfg.WindowMonths <= 0 {
		cfg.WindowMonths = DefaultWindowMonths
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	patterns := cfg.BotPatterns
	if patterns == nil {
		patterns = DefaultBotPatterns
	}

	var compiled []*regexp.Regexp
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			logger.Warn("Skipping invalid bot pattern", map[string]interface{}{
				"pattern": p,
				"error":   err.Error(),
			})
			continue
		}
		compiled = append(compiled, re)
	}

	run := cfg.Runner
	if run == nil {
		run = gitRunner
	}

	return &Source{
		repoRoot:      cfg.RepoRoot,
		windowMonths:  cfg.WindowMonths,
		maxCandidates: cfg.MaxCandidates,
		botPatterns:   compiled,
		run:           run,
		logger:        logger,
	}
}

// gitRunner executes real git and splits output into non-empty lines
func gitRunner(ctx context.Context, dir string, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrap(errors.GitUnavailable, "git command failed", err).
			WithDetails(map[string]interface{}{"args": strings.Join(args, " ")})
	}

	var lines []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// OwnersForPath counts commits touching path within the trailing window,
// grouped by author name, ordered by commit count descending (ties keep
// first-appearance order), truncated to the candidate cap. Bot authors are
// excluded. The returned email is the author's most recent one.
func (s *Source) OwnersForPath(ctx context.Context, path string) ([]Author, error) {
	args := []string{
		"log",
		"--format=%an|%ae",
		fmt.Sprintf("--since=%d months ago", s.windowMonths),
		"--",
		path,
	}

	lines, err := s.run(ctx, s.repoRoot, args...)
	if err != nil {
		return nil, err
	}

	// git log is newest-first, so the first email seen per author is the
	// most recent one.
	counts := make(map[string]*Author)
	var order []string

	for _, line := range lines {
		parts := strings.SplitN(line, "|", 2)
		name := strings.TrimSpace(parts[0])
		email := ""
		if len(parts) == 2 {
			email = strings.TrimSpace(parts[1])
		}
		if name == "" || s.isBot(name, email) {
			continue
		}

		a, ok := counts[name]
		if !ok {
			a = &Author{Name: name, Email: email}
			counts[name] = a
			order = append(order, name)
		}
		a.Commits++
	}

	authors := make([]Author, 0, len(order))
	for _, name := range order {
		authors = append(authors, *counts[name])
	}

	sort.SliceStable(authors, func(i, j int) bool {
		return authors[i].Commits > authors[j].Commits
	})

	if len(authors) > s.maxCandidates {
		authors = authors[:s.maxCandidates]
	}

	s.logger.Debug("History candidates computed", map[string]interface{}{
		"path":       path,
		"candidates": len(authors),
	})

	return authors, nil
}

func (s *Source) isBot(name, email string) bool {
	for _, re := range s.botPatterns {
		if re.MatchString(name) || re.MatchString(email) {
			return true
		}
	}
	return false
}
