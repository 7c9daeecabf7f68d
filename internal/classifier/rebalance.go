package classifier

import (
	"sort"

	"github.com/pubdash/classifier/internal/domain"
)

// rebalanceCandidate is an overflow record eligible for reassignment.
type rebalanceCandidate struct {
	index    int // position in the labeled slice
	category domain.Category
	altScore int
	topScore int
}

// Rebalance caps the overflow bucket of a labeled batch at maxOverflow by
// reassigning the weakest-confidence overflow records to their best
// non-overflow alternative. It mutates categories in place and returns the
// number of reassignments made.
//
// Invariants: non-overflow records are never touched; reassignment only ever
// moves overflow -> specific category; records with zero non-overflow signal
// always stay in overflow, even if that leaves the cap exceeded. The
// algorithm never fabricates a category with no evidence.
func Rebalance(labeled []domain.LabeledRecord, maxOverflow int) int {
	if maxOverflow < 0 {
		maxOverflow = 0
	}

	overflowCount := 0
	candidates := make([]rebalanceCandidate, 0)
	for i := range labeled {
		if !labeled[i].Category.IsOverflow() {
			continue
		}
		overflowCount++
		alt, altScore, ok := BestAlternative(labeled[i].Scores)
		if !ok {
			continue
		}
		candidates = append(candidates, rebalanceCandidate{
			index:    i,
			category: alt,
			altScore: altScore,
			topScore: labeled[i].Scores.Top(),
		})
	}

	if overflowCount <= maxOverflow {
		return 0
	}

	// Strongest alternatives move first; input order is the stable final key.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].altScore != candidates[j].altScore {
			return candidates[i].altScore > candidates[j].altScore
		}
		return candidates[i].topScore > candidates[j].topScore
	})

	excess := overflowCount - maxOverflow
	if excess > len(candidates) {
		excess = len(candidates)
	}

	for _, c := range candidates[:excess] {
		labeled[c.index].Category = c.category
		if labeled[c.index].Record != nil {
			labeled[c.index].Record.Topic = c.category
		}
	}
	return excess
}
