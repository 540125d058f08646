package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"whoowns/internal/errors"
	"whoowns/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Level: logging.ErrorLevel})
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "CODEOWNERS")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, `# Ownership manifest
* @default-owner

# UI
src/ui/** @alice @ui-team

# Pattern without owners is skipped
orphan/pattern/**

# Malformed pattern is skipped with a warning
src/[0-9 @nobody

/docs/ @docs-team
`)

	src, err := Load(path, testLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	rules := src.Rules()
	if len(rules) != 3 {
		t.Fatalf("Expected 3 rules, got %d", len(rules))
	}

	if rules[1].Pattern != "src/ui/**" {
		t.Errorf("rules[1].Pattern = %q, want src/ui/**", rules[1].Pattern)
	}
	wantOwners := []string{"@alice", "@ui-team"}
	if diff := cmp.Diff(wantOwners, rules[1].Owners); diff != "" {
		t.Errorf("rules[1].Owners mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadUnreadable(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"), testLogger())
	if err == nil {
		t.Fatal("Load should fail for a missing manifest")
	}
	if !errors.HasCode(err, errors.ManifestUnreadable) {
		t.Errorf("error code = %v, want MANIFEST_UNREADABLE", errors.CodeOf(err))
	}
}

func TestOwnersFor(t *testing.T) {
	path := writeManifest(t, `* @default
src/ui/** @alice
src/ui/legacy/** @bob @carol
`)

	src, err := Load(path, testLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want []Match
	}{
		{
			path: "README.md",
			want: []Match{{Owner: "@default", Pattern: "*", Strength: 100}},
		},
		{
			path: "src/ui/Main.x",
			want: []Match{{Owner: "@alice", Pattern: "src/ui/**", Strength: 100}},
		},
		{
			// Last matching rule wins, all of its owners returned
			path: "src/ui/legacy/Old.x",
			want: []Match{
				{Owner: "@bob", Pattern: "src/ui/legacy/**", Strength: 100},
				{Owner: "@carol", Pattern: "src/ui/legacy/**", Strength: 100},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := src.OwnersFor(tt.path)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("OwnersFor(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestOwnersForNoMatch(t *testing.T) {
	path := writeManifest(t, `src/ui/** @alice`)

	src, err := Load(path, testLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := src.OwnersFor("lib/util.go"); got != nil {
		t.Errorf("OwnersFor on non-matching path = %v, want nil", got)
	}
}

func TestDiscover(t *testing.T) {
	repoRoot := t.TempDir()

	if got := Discover(repoRoot); got != "" {
		t.Errorf("Discover in empty repo = %q, want empty", got)
	}

	rootManifest := filepath.Join(repoRoot, "CODEOWNERS")
	if err := os.WriteFile(rootManifest, []byte("* @owner"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := Discover(repoRoot); got != rootManifest {
		t.Errorf("Discover = %q, want %q", got, rootManifest)
	}

	// .github/CODEOWNERS takes priority over the repo root
	githubDir := filepath.Join(repoRoot, ".github")
	if err := os.MkdirAll(githubDir, 0755); err != nil {
		t.Fatal(err)
	}
	githubManifest := filepath.Join(githubDir, "CODEOWNERS")
	if err := os.WriteFile(githubManifest, []byte("* @owner"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := Discover(repoRoot); got != githubManifest {
		t.Errorf("Discover = %q, want %q", got, githubManifest)
	}
}
