package classifier

import (
	"sort"
	"strings"

	"github.com/pubdash/classifier/internal/domain"
)

// venueReasonPrefix marks venue-tier provenance entries.
var venueReasonPrefix = string(domain.TierVenue) + ":"

// Resolve picks exactly one category from a score map. The chain is fully
// deterministic for a fixed rule table:
//
//  1. empty map, or top score below the confidence floor -> overflow bucket;
//  2. unique top scorer wins;
//  3. among tied top scorers, a category with venue-tier provenance beats
//     ones without (venue matches are the most trustworthy signal);
//  4. remaining ties fall to provenance density (most reasons), then to
//     lexicographic category order as the final stable fallback.
func Resolve(scores domain.ScoreMap, weights domain.Weights) domain.Category {
	if len(scores) == 0 {
		return domain.CategoryOther
	}

	top := scores.Top()
	if top < weights.ConfidenceFloor {
		return domain.CategoryOther
	}

	// Lexicographic base order keeps everything downstream independent of
	// map iteration order.
	tied := make([]domain.Category, 0, 2)
	for _, c := range scores.SortedCategories() {
		if scores[c].Score == top {
			tied = append(tied, c)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}

	venueQualified := make([]domain.Category, 0, len(tied))
	for _, c := range tied {
		if hasVenueReason(scores[c]) {
			venueQualified = append(venueQualified, c)
		}
	}
	if len(venueQualified) == 1 {
		return venueQualified[0]
	}

	candidates := tied
	if len(venueQualified) > 0 {
		candidates = venueQualified
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := len(scores[candidates[i]].Reasons), len(scores[candidates[j]].Reasons)
		if ri != rj {
			return ri > rj
		}
		return candidates[i] < candidates[j]
	})
	return candidates[0]
}

// BestAlternative returns the strongest non-overflow candidate from a score
// map, ignoring the confidence floor. Used by the rebalancer to reassign
// weak overflow records; the boolean is false only when there is no signal
// at all.
func BestAlternative(scores domain.ScoreMap) (domain.Category, int, bool) {
	best := domain.CategoryOther
	bestScore := 0
	bestReasons := 0

	for _, c := range scores.SortedCategories() {
		if c.IsOverflow() {
			continue
		}
		t := scores[c]
		if t.Score <= 0 {
			continue
		}
		if t.Score > bestScore ||
			(t.Score == bestScore && len(t.Reasons) > bestReasons) {
			best, bestScore, bestReasons = c, t.Score, len(t.Reasons)
		}
	}

	if bestScore == 0 {
		return domain.CategoryOther, 0, false
	}
	return best, bestScore, true
}

func hasVenueReason(t *domain.Tally) bool {
	for _, r := range t.Reasons {
		if strings.HasPrefix(r, venueReasonPrefix) {
			return true
		}
	}
	return false
}
