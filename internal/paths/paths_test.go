package paths

import (
	"testing"

	"whoowns/internal/errors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"src/ui/Main.x", "src/ui/Main.x"},
		{"./src/ui/Main.x", "src/ui/Main.x"},
		{"src//ui/Main.x", "src/ui/Main.x"},
		{"src\\ui\\Main.x", "src/ui/Main.x"},
		{"  domain  ", "domain"},
		{"domain", "domain"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsModuleToken(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"domain", true},
		{"auth_service", true},
		{"ui-kit", true},
		{"src/ui/Main.x", false},
		{"main.go", false},
		{"a b", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsModuleToken(tt.token); got != tt.want {
			t.Errorf("IsModuleToken(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"plain path", "src/ui/Main.x", false},
		{"module token", "domain", false},
		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"leading traversal", "../secrets", true},
		{"embedded traversal", "src/../../etc", true},
		{"bare dotdot", "..", true},
		{"control char", "src/\x00evil", true},
		{"dotfile is fine", ".github/CODEOWNERS", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%q) error = %v, wantErr %v", tt.token, err, tt.wantErr)
			}
			if err != nil && !errors.HasCode(err, errors.ArtifactInvalid) {
				t.Errorf("Validate(%q) code = %v, want ARTIFACT_INVALID", tt.token, errors.CodeOf(err))
			}
		})
	}
}

func TestIsWithinRepo(t *testing.T) {
	if !IsWithinRepo("src/main.go", "/repo") {
		t.Error("src/main.go should be within repo")
	}
	if IsWithinRepo("../outside", "/repo") {
		t.Error("../outside should not be within repo")
	}
}
