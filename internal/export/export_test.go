package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"whoowns/internal/storage"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.dump")

	rules := []storage.Rule{
		{
			Pattern:         "src/ui/**",
			OwnerName:       "@alice",
			CanonicalHandle: "alice",
			Strength:        100,
			Scope:           storage.ScopeFile,
			Source:          storage.SourceManifest,
			LastVerified:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			Pattern:         "domain",
			OwnerName:       "carol",
			CanonicalHandle: "carol",
			Strength:        50,
			Scope:           storage.ScopeModule,
			Source:          storage.SourceHistory,
			LastVerified:    time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC),
		},
	}

	if err := Write(path, rules); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	dump, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if dump.FormatVersion != FormatVersion {
		t.Errorf("format version = %d, want %d", dump.FormatVersion, FormatVersion)
	}
	if dump.RuleCount != len(rules) {
		t.Errorf("rule count = %d, want %d", dump.RuleCount, len(rules))
	}
	if diff := cmp.Diff(rules, dump.Rules); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteEmptyDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.dump")

	if err := Write(path, nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	dump, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if dump.RuleCount != 0 || len(dump.Rules) != 0 {
		t.Errorf("empty dump = %+v, want zero rules", dump)
	}
}

func TestReadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.dump")
	if err := os.WriteFile(path, []byte("not a zstd stream"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Read(path); err == nil {
		t.Error("Read on corrupt file succeeded, want error")
	}
}

func TestReadRejectsMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "absent.dump")); err == nil {
		t.Error("Read on missing file succeeded, want error")
	}
}
