package domain

import "sort"

// TokenBundle is the classifiable view of one input, built fresh per record.
type TokenBundle struct {
	// Haystack is the normalized concatenation of URL remnants, title/venue
	// text, and author text. Venue and keyword patterns match against it.
	Haystack string
	// DOIPrefix is the lower-cased registrant prefix of the first DOI-shaped
	// substring found in the haystack ("10.1002" from "10.1002/abc"), or "".
	DOIPrefix string
	// Authors is the cleaned author text, matched preferentially by the
	// author tier; the haystack is the fallback when empty.
	Authors string
}

// Empty reports whether the bundle short-circuits classification.
func (t TokenBundle) Empty() bool {
	return t.Haystack == ""
}

// Tally accumulates the weighted evidence for a single category.
type Tally struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// ScoreMap maps each category with any evidence to its accumulated tally.
// Built fresh for each classification and never persisted across records.
type ScoreMap map[Category]*Tally

// Add accumulates weight and a provenance string for a category.
func (m ScoreMap) Add(c Category, weight int, reason string) {
	t, ok := m[c]
	if !ok {
		t = &Tally{}
		m[c] = t
	}
	t.Score += weight
	t.Reasons = append(t.Reasons, reason)
}

// Top returns the highest accumulated score, or 0 for an empty map.
func (m ScoreMap) Top() int {
	top := 0
	for _, t := range m {
		if t.Score > top {
			top = t.Score
		}
	}
	return top
}

// SortedCategories returns the scored categories in lexicographic order.
// Map iteration order is never allowed to leak into results.
func (m ScoreMap) SortedCategories() []Category {
	out := make([]Category, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Result is a single classification outcome with its full evidence map.
type Result struct {
	Category Category `json:"category"`
	Scores   ScoreMap `json:"scores"`
}

// LabeledRecord pairs a publication with its resolved category for batch
// output and dashboard aggregation.
type LabeledRecord struct {
	Category Category     `json:"category"`
	Record   *Publication `json:"record"`
	// Scores is retained through batch classification so the rebalancer can
	// find best non-overflow alternatives without re-scoring.
	Scores ScoreMap `json:"-"`
}
