package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := New(PatternInvalid, "unbalanced character class")
		want := "[PATTERN_INVALID] unbalanced character class"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("with cause", func(t *testing.T) {
		cause := stderrors.New("missing closing ]")
		err := Wrap(PatternInvalid, "unbalanced character class", cause)
		if !strings.Contains(err.Error(), "missing closing ]") {
			t.Errorf("Error() = %q, want cause included", err.Error())
		}
	})
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("database is locked")
	err := Wrap(StoreUnavailable, "rule query failed", cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"direct", New(ArtifactInvalid, "traversal"), ArtifactInvalid},
		{"wrapped in fmt", fmt.Errorf("outer: %w", New(GitUnavailable, "no repo")), GitUnavailable},
		{"plain error", stderrors.New("plain"), InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	err := Wrap(StoreUnavailable, "unreachable", stderrors.New("io"))
	if !HasCode(err, StoreUnavailable) {
		t.Error("expected HasCode to match StoreUnavailable")
	}
	if HasCode(err, PatternInvalid) {
		t.Error("HasCode matched the wrong code")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(ArtifactInvalid, "rejected token").WithDetails(map[string]interface{}{
		"token": "../etc/passwd",
	})
	details, ok := err.Details.(map[string]interface{})
	if !ok || details["token"] != "../etc/passwd" {
		t.Errorf("Details = %v, want token detail", err.Details)
	}
}
