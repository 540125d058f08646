package storage

import (
	"sort"
	"sync"
	"time"

	"whoowns/internal/pattern"
)

// Scope says what kind of artifact a rule binds to
type Scope string

const (
	// ScopeFile rules match repository paths by pattern
	ScopeFile Scope = "file"
	// ScopeModule rules match bare module tokens exactly
	ScopeModule Scope = "module"
)

// RuleSource says where a rule was learned from
type RuleSource string

const (
	// SourceManifest rules come from the ownership manifest
	SourceManifest RuleSource = "manifest"
	// SourceStore rules were seeded directly into the store
	SourceStore RuleSource = "store"
	// SourceHistory rules were inferred from commit history
	SourceHistory RuleSource = "history"
)

// Rule is one persisted ownership rule
type Rule struct {
	Pattern         string     `json:"pattern"`
	OwnerName       string     `json:"ownerName"`
	CanonicalHandle string     `json:"canonicalHandle"`
	Strength        int        `json:"strength"` // Integer 0-100, never a float
	Scope           Scope      `json:"scope"`
	Source          RuleSource `json:"source"`
	LastVerified    time.Time  `json:"lastVerified"`
}

// OwnerStrength is a query hit: a canonical handle with the rule strength
type OwnerStrength struct {
	CanonicalHandle string
	Strength        int
}

// matcherCache holds precompiled matchers keyed by pattern text, so
// repeated queries never rebuild match expressions at runtime
var matcherCache = struct {
	sync.Mutex
	m map[string]*pattern.Matcher
}{m: make(map[string]*pattern.Matcher)}

func compiledMatcher(glob string) (*pattern.Matcher, error) {
	matcherCache.Lock()
	defer matcherCache.Unlock()

	if m, ok := matcherCache.m[glob]; ok {
		return m, nil
	}
	m, err := pattern.Compile(glob)
	if err != nil {
		return nil, err
	}
	matcherCache.m[glob] = m
	return m, nil
}

// UpsertRule inserts or refreshes a rule. The write is keyed by
// (pattern, owner_name) and resolved by the database's own conflict
// clause in a single statement, so concurrent writers cannot race a
// read-then-write into duplicate rows.
func (db *DB) UpsertRule(r Rule) error {
	lastVerified := r.LastVerified
	if lastVerified.IsZero() {
		lastVerified = time.Now().UTC()
	}

	_, err := db.Exec(`
		INSERT INTO ownership_rules (
			file_pattern, owner_type, owner_name, canonical_handle,
			strength, source, last_verified
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_pattern, owner_name) DO UPDATE SET
			canonical_handle = excluded.canonical_handle,
			strength = excluded.strength,
			source = excluded.source,
			last_verified = excluded.last_verified
	`, r.Pattern, string(r.Scope), r.OwnerName, r.CanonicalHandle,
		r.Strength, string(r.Source), lastVerified.Format(time.RFC3339))
	return err
}

// QueryByArtifact matches a file path against stored file-scope patterns
// and returns the owners ordered by descending strength, capped at the
// query limit. An unreachable store degrades to an empty result so
// resolution can continue with the next source.
func (db *DB) QueryByArtifact(artifact string) []OwnerStrength {
	rows, err := db.Query(`
		SELECT file_pattern, canonical_handle, strength
		FROM ownership_rules
		WHERE owner_type = 'file'
		ORDER BY rowid
	`)
	if err != nil {
		db.logger.Warn("Rule store unavailable, skipping store source", map[string]interface{}{
			"artifact": artifact,
			"error":    err.Error(),
		})
		return nil
	}
	defer func() { _ = rows.Close() }()

	var matches []OwnerStrength
	for rows.Next() {
		var glob, handle string
		var strength int
		if err := rows.Scan(&glob, &handle, &strength); err != nil {
			db.logger.Warn("Skipping unreadable rule row", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}

		m, err := compiledMatcher(glob)
		if err != nil {
			db.logger.Debug("Skipping rule with uncompilable pattern", map[string]interface{}{
				"pattern": glob,
				"error":   err.Error(),
			})
			continue
		}

		if m.Matches(artifact) {
			matches = append(matches, OwnerStrength{CanonicalHandle: handle, Strength: strength})
		}
	}
	if err := rows.Err(); err != nil {
		db.logger.Warn("Rule store scan failed mid-query", map[string]interface{}{
			"artifact": artifact,
			"error":    err.Error(),
		})
		return nil
	}

	// Stable: ties keep insertion (rowid) order for reproducible results
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Strength > matches[j].Strength
	})

	if len(matches) > db.queryLimit {
		matches = matches[:db.queryLimit]
	}

	return matches
}

// QueryByModule matches a bare module token against module-scope rules by
// exact token equality. Same degradation contract as QueryByArtifact.
func (db *DB) QueryByModule(token string) []OwnerStrength {
	rows, err := db.Query(`
		SELECT canonical_handle, strength
		FROM ownership_rules
		WHERE owner_type = 'module' AND file_pattern = ?
		ORDER BY strength DESC, rowid
		LIMIT ?
	`, token, db.queryLimit)
	if err != nil {
		db.logger.Warn("Rule store unavailable, skipping store source", map[string]interface{}{
			"module": token,
			"error":  err.Error(),
		})
		return nil
	}
	defer func() { _ = rows.Close() }()

	var matches []OwnerStrength
	for rows.Next() {
		var hit OwnerStrength
		if err := rows.Scan(&hit.CanonicalHandle, &hit.Strength); err != nil {
			continue
		}
		matches = append(matches, hit)
	}
	if err := rows.Err(); err != nil {
		db.logger.Warn("Rule store scan failed mid-query", map[string]interface{}{
			"module": token,
			"error":  err.Error(),
		})
		return nil
	}

	return matches
}

// ListRules returns stored rules, optionally filtered by a pattern
// substring, newest first. limit <= 0 means no limit.
func (db *DB) ListRules(patternFilter string, limit int) ([]Rule, error) {
	query := `
		SELECT file_pattern, owner_type, owner_name, canonical_handle,
		       strength, source, last_verified
		FROM ownership_rules
	`
	var args []interface{}
	if patternFilter != "" {
		query += " WHERE file_pattern LIKE ?"
		args = append(args, "%"+patternFilter+"%")
	}
	query += " ORDER BY last_verified DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rules []Rule
	for rows.Next() {
		var r Rule
		var scope, source, lastVerified string
		if err := rows.Scan(&r.Pattern, &scope, &r.OwnerName, &r.CanonicalHandle,
			&r.Strength, &source, &lastVerified); err != nil {
			return nil, err
		}
		r.Scope = Scope(scope)
		r.Source = RuleSource(source)
		if ts, err := time.Parse(time.RFC3339, lastVerified); err == nil {
			r.LastVerified = ts
		}
		rules = append(rules, r)
	}

	return rules, rows.Err()
}

// CountRules returns the number of stored rules
func (db *DB) CountRules() (int, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM ownership_rules").Scan(&n)
	return n, err
}
