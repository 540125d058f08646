// Package identity maps raw contributor names to canonical platform
// handles, and verifies handle existence against the hosting platform.
package identity

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"whoowns/internal/errors"
)

// noReplyRe extracts the embedded handle from platform-generated no-reply
// addresses: "12345+handle@users.noreply.github.com" or the older
// "handle@users.noreply.github.com" form.
var noReplyRe = regexp.MustCompile(`^(?:\d+\+)?([A-Za-z0-9-]+)@users\.noreply\.github\.com$`)

// identityMapFile is the YAML shape of an identity map file
type identityMapFile struct {
	Identities map[string]string `yaml:"identities"`
}

// Mapper resolves raw author names to canonical handles.
// The zero-value Mapper has no overrides and is usable.
type Mapper struct {
	overrides map[string]string
}

// NewMapper creates a mapper from an explicit override table
func NewMapper(overrides map[string]string) *Mapper {
	return &Mapper{overrides: overrides}
}

// LoadMapper reads a YAML identity map:
//
//	identities:
//	  "Erin Doe": erind
//	  "Frank Roe": frankr
//
// A missing file yields an empty mapper; a malformed file is a
// configuration error.
func LoadMapper(path string) (*Mapper, error) {
	if path == "" {
		return &Mapper{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Mapper{}, nil
		}
		return nil, errors.Wrap(errors.ConfigInvalid, "cannot read identity map", err).
			WithDetails(map[string]interface{}{"path": path})
	}

	var parsed identityMapFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid, "malformed identity map", err).
			WithDetails(map[string]interface{}{"path": path})
	}

	return &Mapper{overrides: parsed.Identities}, nil
}

// ToCanonicalHandle maps a raw author name to a canonical handle.
// Resolution order: explicit override, embedded handle in a no-reply
// commit email, then the raw name unchanged. Total: never fails.
func (m *Mapper) ToCanonicalHandle(rawName, lastEmail string) string {
	if handle, ok := m.overrides[rawName]; ok && handle != "" {
		return handle
	}

	if groups := noReplyRe.FindStringSubmatch(strings.ToLower(lastEmail)); groups != nil {
		return groups[1]
	}

	return rawName
}

// CanonicalizeOwner strips the manifest "@" prefix from an owner handle.
// Team handles ("@org/team") keep their org qualifier.
func CanonicalizeOwner(owner string) string {
	return strings.TrimPrefix(owner, "@")
}
