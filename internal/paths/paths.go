// Package paths normalizes and validates artifact tokens before resolution.
// A token is either a repository-relative file path or a bare module name.
package paths

import (
	"path/filepath"
	"regexp"
	"strings"

	"whoowns/internal/errors"
)

// moduleTokenRe matches bare module names: no path separators, no dots.
// Anything else is treated as a file path.
var moduleTokenRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Normalize converts a raw token to canonical repo-relative form:
// backslashes become forward slashes, a leading "./" is trimmed, and
// redundant separators are cleaned.
func Normalize(token string) string {
	t := strings.ReplaceAll(strings.TrimSpace(token), "\\", "/")
	t = strings.TrimPrefix(t, "./")
	// Clean collapses "a//b" and "a/./b" but leaves module tokens alone
	if strings.Contains(t, "/") {
		t = filepath.ToSlash(filepath.Clean(t))
	}
	return t
}

// IsModuleToken reports whether a normalized token is a bare module name
// rather than a file path
func IsModuleToken(token string) bool {
	if strings.ContainsAny(token, "/.") {
		return false
	}
	return moduleTokenRe.MatchString(token)
}

// Validate rejects tokens that must not reach resolution: empty tokens,
// absolute paths, traversal sequences, and control characters. Callers skip
// the offending token and continue with the rest of the request.
func Validate(token string) error {
	if token == "" {
		return errors.New(errors.ArtifactInvalid, "empty artifact token")
	}
	if strings.HasPrefix(token, "/") {
		return errors.New(errors.ArtifactInvalid, "artifact token must be repository-relative").
			WithDetails(map[string]interface{}{"token": token})
	}
	if token == ".." || strings.HasPrefix(token, "../") ||
		strings.HasSuffix(token, "/..") || strings.Contains(token, "/../") {
		return errors.New(errors.ArtifactInvalid, "artifact token contains path traversal").
			WithDetails(map[string]interface{}{"token": token})
	}
	for _, r := range token {
		if r < 0x20 || r == 0x7f {
			return errors.New(errors.ArtifactInvalid, "artifact token contains control characters").
				WithDetails(map[string]interface{}{"token": token})
		}
	}
	return nil
}

// IsWithinRepo checks that a filesystem path resolves inside the repo root
func IsWithinRepo(path string, repoRoot string) bool {
	rel, err := filepath.Rel(repoRoot, filepath.Join(repoRoot, filepath.FromSlash(path)))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(filepath.ToSlash(rel), "../")
}
