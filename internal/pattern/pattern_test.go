package pattern

import (
	"testing"

	"whoowns/internal/errors"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		// Wildcard all
		{"*", "anything.txt", true},
		{"*", "path/to/file.txt", true},

		// Double asterisk crosses separators
		{"src/ui/**", "src/ui/Main.x", true},
		{"src/ui/**", "src/ui/deep/nested/file.x", true},
		{"src/ui/**", "src/api/Main.x", false},
		{"**/test/**", "src/test/file.go", true},
		{"**/test/**", "deep/path/test/more/file.go", true},
		{"**/test/**", "test/file.go", true},
		{"**/test/**", "src/main.go", false},

		// Bare asterisk stops at separators
		{"src/*.go", "src/main.go", true},
		{"src/*.go", "src/sub/main.go", false},

		// Extension patterns match at any depth
		{"*.go", "main.go", true},
		{"*.go", "internal/query/engine.go", true},
		{"*.go", "main.txt", false},

		// Question mark is exactly one character
		{"file?.txt", "file1.txt", true},
		{"file?.txt", "file12.txt", false},
		{"file?.txt", "file.txt", false},

		// Root anchoring
		{"/docs/", "docs/README.md", true},
		{"/docs/", "docs/guide/intro.md", true},
		{"/docs/", "other/docs/file.md", false},
		{"/config.json", "config.json", true},
		{"/config.json", "dir/config.json", false},

		// Unanchored directory patterns match at any level
		{"docs/", "docs/README.md", true},
		{"docs/", "sub/docs/README.md", true},

		// Non-wildcard patterns also match as a directory prefix
		{"src/ui", "src/ui/Main.x", true},
		{"src/ui", "src/ui", true},
		{"src/ui", "src/uikit/Main.x", false},

		// Legacy regex-flavored store rows: dot as any single character
		{"app/.*", "app/Main.x", true},
		{"app/.*", "app/", false},
		{"app/.*", "lib/Main.x", false},

		// Character classes pass through
		{"src/v[0-9]/**", "src/v2/api.go", true},
		{"src/v[0-9]/**", "src/vx/api.go", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" vs "+tt.path, func(t *testing.T) {
			m, err := Compile(tt.pattern)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.pattern, err)
			}
			if got := m.Matches(tt.path); got != tt.want {
				t.Errorf("Compile(%q).Matches(%q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"unbalanced class", "src/[0-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.pattern)
			if err == nil {
				t.Fatalf("Compile(%q) should fail", tt.pattern)
			}
			if !errors.HasCode(err, errors.PatternInvalid) {
				t.Errorf("Compile(%q) code = %v, want PATTERN_INVALID", tt.pattern, errors.CodeOf(err))
			}
		})
	}
}

func TestAnchored(t *testing.T) {
	anchored, err := Compile("/src/**")
	if err != nil {
		t.Fatal(err)
	}
	if !anchored.Anchored() {
		t.Error("/src/** should be anchored")
	}

	free, err := Compile("src/**")
	if err != nil {
		t.Fatal(err)
	}
	if free.Anchored() {
		t.Error("src/** should not be anchored")
	}
}

func TestString(t *testing.T) {
	m, err := Compile("src/ui/**")
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != "src/ui/**" {
		t.Errorf("String() = %q, want original pattern", m.String())
	}
}
