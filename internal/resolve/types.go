// Package resolve fuses manifest, store, and history ownership signals
// into a ranked candidate list under a fixed precedence chain.
package resolve

import (
	"github.com/google/uuid"
)

// Method tags how the result was produced
type Method string

const (
	// MethodOwnership means at least one candidate survived ranking
	MethodOwnership Method = "ownership"
	// MethodDefault means resolution fell through to the configured
	// default owner
	MethodDefault Method = "default"
)

// Request is one resolution request: an ordered list of artifact tokens,
// each a repository-relative path or a bare module name. Order is not
// semantically significant but is preserved for reproducible tie-breaking.
type Request struct {
	ID        string
	Artifacts []string
}

// NewRequest creates a request with a fresh correlation ID
func NewRequest(artifacts []string) Request {
	return Request{
		ID:        uuid.NewString(),
		Artifacts: artifacts,
	}
}

// Candidate is one ranked owner candidate
type Candidate struct {
	Handle                string `json:"handle"`
	AggregateScore        int    `json:"aggregateScore"`
	ContributingRuleCount int    `json:"contributingRuleCount"`
}

// Result is the ranked outcome of one resolution request
type Result struct {
	RequestID  string      `json:"requestId"`
	Method     Method      `json:"method"`
	Candidates []Candidate `json:"candidates"`

	// Skipped lists artifact tokens rejected as invalid. A rejected
	// token never aborts the rest of the request.
	Skipped []string `json:"skipped,omitempty"`
}

// Handles returns the candidate handles in rank order, for direct
// consumption by assignment or review-request collaborators
func (r *Result) Handles() []string {
	handles := make([]string, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		handles = append(handles, c.Handle)
	}
	return handles
}

// accumulator collects per-owner point totals across a request. It is a
// local value passed explicitly through resolution, never process-wide
// state; per-artifact accumulators merge into the request accumulator, so
// artifact processing could run in parallel behind the single merge step
// without changing observable results.
type accumulator struct {
	totals    map[string]int
	ruleCount map[string]int
	order     []string // first-discovery order, breaks ranking ties
}

func newAccumulator() *accumulator {
	return &accumulator{
		totals:    make(map[string]int),
		ruleCount: make(map[string]int),
	}
}

// add credits points to a handle, recording first discovery
func (a *accumulator) add(handle string, points int) {
	if _, seen := a.totals[handle]; !seen {
		a.order = append(a.order, handle)
	}
	a.totals[handle] += points
	a.ruleCount[handle]++
}

// merge folds another accumulator into this one, preserving the other's
// internal discovery order after this one's
func (a *accumulator) merge(other *accumulator) {
	for _, handle := range other.order {
		if _, seen := a.totals[handle]; !seen {
			a.order = append(a.order, handle)
		}
		a.totals[handle] += other.totals[handle]
		a.ruleCount[handle] += other.ruleCount[handle]
	}
}
