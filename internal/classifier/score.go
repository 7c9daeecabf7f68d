package classifier

import (
	"fmt"

	"github.com/pubdash/classifier/internal/domain"
)

// Score applies every enabled rule in every tier to the bundle and
// accumulates a weighted score per category with per-match provenance.
// Tiers are not mutually exclusive: one record can collect venue, keyword,
// author, and DOI evidence for the same category, and the weights sum.
// The result is purely a function of the bundle and the rule table.
func (rs *RuleSet) Score(tokens domain.TokenBundle) domain.ScoreMap {
	scores := make(domain.ScoreMap)
	if tokens.Empty() {
		return scores
	}

	for _, tier := range domain.Tiers() {
		input := rs.tierInput(tier, tokens)
		if input == "" {
			continue
		}

		rules := rs.tiers[tier]
		literalHits := rs.matchers[tier].hits(input)
		weight := rs.weights.ForTier(tier)

		for i := range rules {
			cr := &rules[i]
			matched := false
			if cr.literal != "" {
				matched = literalHits[i]
			} else {
				matched = cr.re.MatchString(input)
			}
			if matched {
				scores.Add(cr.rule.Category, weight, fmt.Sprintf("%s:%s", tier, cr.rule.Pattern))
			}
		}
	}

	return scores
}

// tierInput selects the designated input text for a tier: the haystack for
// venue and keyword rules, the author text (haystack fallback) for author
// rules, and the DOI registrant prefix for DOI rules. An empty DOI prefix
// skips the DOI tier entirely.
func (rs *RuleSet) tierInput(tier domain.Tier, tokens domain.TokenBundle) string {
	switch tier {
	case domain.TierVenue, domain.TierKeyword:
		return tokens.Haystack
	case domain.TierAuthor:
		if tokens.Authors != "" {
			return tokens.Authors
		}
		return tokens.Haystack
	case domain.TierDOI:
		return tokens.DOIPrefix
	}
	return ""
}
