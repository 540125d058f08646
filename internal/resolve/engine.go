package resolve

import (
	"context"

	"whoowns/internal/history"
	"whoowns/internal/identity"
	"whoowns/internal/logging"
	"whoowns/internal/manifest"
	"whoowns/internal/paths"
	"whoowns/internal/storage"
)

// FallbackPoints is the fixed score credited per module-token match and
// per history-derived candidate. Both are low-confidence signals, so they
// share one constant: a single such hit (50) never clears the ranking
// threshold on its own, two independent ones (100) always do.
const FallbackPoints = 50

// ManifestSource answers declared-ownership queries for a file path
type ManifestSource interface {
	OwnersFor(path string) []manifest.Match
}

// RuleStore answers learned-rule queries and accepts write-through of
// newly derived rules
type RuleStore interface {
	QueryByArtifact(artifact string) []storage.OwnerStrength
	QueryByModule(token string) []storage.OwnerStrength
	UpsertRule(r storage.Rule) error
}

// HistorySource derives candidate owners from commit history
type HistorySource interface {
	OwnersForPath(ctx context.Context, path string) ([]history.Author, error)
}

// HandleMapper maps raw author names to canonical handles
type HandleMapper interface {
	ToCanonicalHandle(rawName, lastEmail string) string
}

// Options configures an Engine. Any source may be nil, in which case that
// link of the precedence chain is skipped.
type Options struct {
	Manifest ManifestSource
	Store    RuleStore
	History  HistorySource
	Identity HandleMapper

	// DefaultOwner is returned when no candidate clears the threshold.
	// Empty means no default; the result is then empty with method
	// "default".
	DefaultOwner string

	// WriteThrough persists manifest and history findings back to the
	// store after a request completes
	WriteThrough bool
}

// Engine resolves ownership requests through the fixed precedence chain:
// manifest, then learned rules, then commit history as last resort.
type Engine struct {
	opts   Options
	ranker Ranker
	logger *logging.Logger
}

// NewEngine creates a resolution engine with the default ranker
func NewEngine(opts Options, logger *logging.Logger) *Engine {
	if opts.Identity == nil {
		opts.Identity = identity.NewMapper(nil)
	}
	return &Engine{
		opts:   opts,
		ranker: NewRanker(),
		logger: logger,
	}
}

// SetRanker overrides the default ranking policy
func (e *Engine) SetRanker(r Ranker) {
	e.ranker = r
}

// Resolve processes one request: each artifact token is normalized,
// validated, and scored through the precedence chain; the accumulated
// totals are then ranked. Scoring is purely additive over integers, so
// results are deterministic for a given request and source state.
//
// Learned rules are written back only after every artifact has been
// processed, so a failing artifact late in the request cannot leave a
// partial write-through behind.
func (e *Engine) Resolve(ctx context.Context, req Request) *Result {
	result := &Result{RequestID: req.ID}
	acc := newAccumulator()
	var learned []storage.Rule

	for _, raw := range req.Artifacts {
		token := paths.Normalize(raw)
		if err := paths.Validate(token); err != nil {
			e.logger.Warn("Skipping invalid artifact token", map[string]interface{}{
				"request_id": req.ID,
				"token":      raw,
				"error":      err.Error(),
			})
			result.Skipped = append(result.Skipped, raw)
			continue
		}

		artifactAcc, rules := e.scoreArtifact(ctx, req.ID, token)
		acc.merge(artifactAcc)
		learned = append(learned, rules...)
	}

	result.Candidates = e.ranker.Rank(acc)
	result.Method = MethodOwnership

	if len(result.Candidates) == 0 {
		result.Method = MethodDefault
		if e.opts.DefaultOwner != "" {
			result.Candidates = []Candidate{{Handle: e.opts.DefaultOwner}}
		}
	}

	if e.opts.WriteThrough && e.opts.Store != nil {
		e.writeThrough(req.ID, learned)
	}

	e.logger.Debug("Resolution complete", map[string]interface{}{
		"request_id": req.ID,
		"method":     string(result.Method),
		"candidates": len(result.Candidates),
		"skipped":    len(result.Skipped),
	})

	return result
}

// scoreArtifact scores one validated token into a fresh accumulator and
// returns any rules learned along the way
func (e *Engine) scoreArtifact(ctx context.Context, requestID, token string) (*accumulator, []storage.Rule) {
	acc := newAccumulator()

	if paths.IsModuleToken(token) {
		if e.opts.Store != nil {
			// Module matches carry the fixed fallback value regardless of
			// stored strength: token-to-module association is too coarse
			// to grade.
			for _, hit := range e.opts.Store.QueryByModule(token) {
				acc.add(hit.CanonicalHandle, FallbackPoints)
			}
		}
		return acc, nil
	}

	// File path: manifest first, and exclusively when it matches
	if e.opts.Manifest != nil {
		matches := e.opts.Manifest.OwnersFor(token)
		if len(matches) > 0 {
			var learned []storage.Rule
			for _, m := range matches {
				handle := identity.CanonicalizeOwner(m.Owner)
				acc.add(handle, m.Strength)
				learned = append(learned, storage.Rule{
					Pattern:         m.Pattern,
					OwnerName:       m.Owner,
					CanonicalHandle: handle,
					Strength:        m.Strength,
					Scope:           storage.ScopeFile,
					Source:          storage.SourceManifest,
				})
			}
			return acc, learned
		}
	}

	// Learned rules next
	if e.opts.Store != nil {
		hits := e.opts.Store.QueryByArtifact(token)
		if len(hits) > 0 {
			for _, hit := range hits {
				acc.add(hit.CanonicalHandle, hit.Strength)
			}
			return acc, nil
		}
	}

	// Commit history as last resort. A history failure degrades this one
	// artifact to no score, it never fails the request.
	if e.opts.History == nil {
		return acc, nil
	}
	authors, err := e.opts.History.OwnersForPath(ctx, token)
	if err != nil {
		e.logger.Warn("History source failed, artifact scores nothing", map[string]interface{}{
			"request_id": requestID,
			"token":      token,
			"error":      err.Error(),
		})
		return acc, nil
	}

	var learned []storage.Rule
	for _, a := range authors {
		handle := e.opts.Identity.ToCanonicalHandle(a.Name, a.Email)
		acc.add(handle, FallbackPoints)
		learned = append(learned, storage.Rule{
			Pattern:         token, // Literal path, matches exactly
			OwnerName:       a.Name,
			CanonicalHandle: handle,
			Strength:        FallbackPoints,
			Scope:           storage.ScopeFile,
			Source:          storage.SourceHistory,
		})
	}
	return acc, learned
}

// writeThrough persists learned rules. Failures are logged and swallowed:
// write-through is an optimization, not part of the resolution contract.
func (e *Engine) writeThrough(requestID string, rules []storage.Rule) {
	for _, r := range rules {
		if err := e.opts.Store.UpsertRule(r); err != nil {
			e.logger.Warn("Failed to persist learned rule", map[string]interface{}{
				"request_id": requestID,
				"pattern":    r.Pattern,
				"owner":      r.OwnerName,
				"error":      err.Error(),
			})
		}
	}
}
