// Package export writes and reads rule dumps: zstd-compressed JSON
// snapshots of the ownership store, used to move learned rules between
// repositories or back them up.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"

	"whoowns/internal/storage"
)

// FormatVersion is bumped when the dump layout changes incompatibly
const FormatVersion = 1

// RuleDump is the on-disk snapshot shape
type RuleDump struct {
	FormatVersion int            `json:"formatVersion"`
	ExportedAt    time.Time      `json:"exportedAt"`
	RuleCount     int            `json:"ruleCount"`
	Rules         []storage.Rule `json:"rules"`
}

// Write dumps rules to path as zstd-compressed JSON
func Write(path string, rules []storage.Rule) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dump file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to initialize compressor: %w", err)
	}

	dump := RuleDump{
		FormatVersion: FormatVersion,
		ExportedAt:    time.Now().UTC(),
		RuleCount:     len(rules),
		Rules:         rules,
	}

	if err := json.NewEncoder(enc).Encode(&dump); err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to encode rule dump: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish compressed stream: %w", err)
	}

	return f.Close()
}

// Read loads a rule dump from path, verifying the format version
func Read(path string) (*RuleDump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize decompressor: %w", err)
	}
	defer dec.Close()

	var dump RuleDump
	if err := json.NewDecoder(dec.IOReadCloser()).Decode(&dump); err != nil {
		return nil, fmt.Errorf("failed to decode rule dump: %w", err)
	}

	if dump.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("unsupported dump format version %d (expected %d)",
			dump.FormatVersion, FormatVersion)
	}
	if dump.RuleCount != len(dump.Rules) {
		return nil, fmt.Errorf("rule dump is truncated: header says %d rules, found %d",
			dump.RuleCount, len(dump.Rules))
	}

	return &dump, nil
}
