package classifier

import (
	ahocorasick "github.com/cloudflare/ahocorasick"
)

// literalMatcher answers "which literal patterns of this tier occur in the
// text" in a single pass. Substring containment for a literal pattern is
// exactly what its regexp would test, so the fast path never changes results,
// only the cost of testing every rule against every record.
type literalMatcher struct {
	matcher *ahocorasick.Matcher
	ruleIdx []int // matcher hit index -> index into the tier's rule slice
}

// newLiteralMatcher builds the automaton over the literal patterns of one
// tier. Returns a matcher with a nil automaton when the tier has none.
func newLiteralMatcher(rules []compiledRule) *literalMatcher {
	lm := &literalMatcher{}

	patterns := make([]string, 0, len(rules))
	for i, cr := range rules {
		if cr.literal == "" {
			continue
		}
		patterns = append(patterns, cr.literal)
		lm.ruleIdx = append(lm.ruleIdx, i)
	}
	if len(patterns) > 0 {
		lm.matcher = ahocorasick.NewStringMatcher(patterns)
	}
	return lm
}

// hits returns the set of tier rule indexes whose literal pattern occurs in
// text. The caller iterates rules in definition order and consults this set,
// keeping provenance order independent of automaton hit order.
func (lm *literalMatcher) hits(text string) map[int]bool {
	if lm.matcher == nil || text == "" {
		return nil
	}
	found := lm.matcher.Match([]byte(text))
	if len(found) == 0 {
		return nil
	}
	set := make(map[int]bool, len(found))
	for _, hit := range found {
		if hit < len(lm.ruleIdx) {
			set[lm.ruleIdx[hit]] = true
		}
	}
	return set
}
