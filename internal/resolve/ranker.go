package resolve

import "sort"

const (
	// DefaultScoreThreshold is the exclusive minimum aggregate score: a
	// candidate must score strictly above it to be returned
	DefaultScoreThreshold = 50

	// DefaultMaxCandidates caps the ranked output
	DefaultMaxCandidates = 3
)

// Ranker turns accumulated scores into an ordered candidate list
type Ranker interface {
	Rank(acc *accumulator) []Candidate
}

// thresholdRanker is the standard policy: sort by aggregate score
// descending with ties broken by first-discovery order, drop everything
// at or below the threshold, cap the remainder.
type thresholdRanker struct {
	threshold     int
	maxCandidates int
}

// NewRanker returns the standard ranker with default threshold and cap
func NewRanker() Ranker {
	return &thresholdRanker{
		threshold:     DefaultScoreThreshold,
		maxCandidates: DefaultMaxCandidates,
	}
}

// NewRankerWith returns a ranker with explicit threshold and cap.
// Non-positive maxCandidates falls back to the default cap.
func NewRankerWith(threshold, maxCandidates int) Ranker {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	return &thresholdRanker{
		threshold:     threshold,
		maxCandidates: maxCandidates,
	}
}

func (r *thresholdRanker) Rank(acc *accumulator) []Candidate {
	candidates := make([]Candidate, 0, len(acc.order))
	for _, handle := range acc.order {
		candidates = append(candidates, Candidate{
			Handle:                handle,
			AggregateScore:        acc.totals[handle],
			ContributingRuleCount: acc.ruleCount[handle],
		})
	}

	// Stable over first-discovery order, so equal scores rank by when the
	// owner was first seen
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].AggregateScore > candidates[j].AggregateScore
	})

	// Strictly above the threshold: a single fallback hit at exactly the
	// threshold value is not enough evidence
	filtered := candidates[:0]
	for _, c := range candidates {
		if c.AggregateScore > r.threshold {
			filtered = append(filtered, c)
		}
	}

	if len(filtered) > r.maxCandidates {
		filtered = filtered[:r.maxCandidates]
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}
