package classifier

import (
	"fmt"
	"regexp"

	"github.com/pubdash/classifier/internal/domain"
)

// compiledRule is a pattern rule ready for matching. Patterns with no regex
// metacharacters keep substring semantics and are served by the per-tier
// Aho-Corasick matcher; everything else compiles to a regexp.
type compiledRule struct {
	rule    domain.PatternRule
	literal string         // non-empty for plain substring patterns
	re      *regexp.Regexp // nil when literal
}

// RuleSet is the immutable, compiled rule table shared by all
// classifications. Constructed once, validated at load time, and never
// mutated afterwards, so concurrent readers need no locking.
type RuleSet struct {
	weights  domain.Weights
	tiers    map[domain.Tier][]compiledRule
	matchers map[domain.Tier]*literalMatcher
	total    int
}

// NewRuleSet compiles and validates a rule table. A rule referencing a
// category outside the canonical taxonomy, an unknown tier, or an
// uncompilable pattern is a configuration error, not something to skip
// silently. Disabled rules are dropped here.
func NewRuleSet(rules []domain.PatternRule, weights domain.Weights) (*RuleSet, error) {
	rs := &RuleSet{
		weights:  weights,
		tiers:    make(map[domain.Tier][]compiledRule),
		matchers: make(map[domain.Tier]*literalMatcher),
	}

	for i := range rules {
		rule := rules[i]
		if !domain.ValidTier(rule.Tier) {
			return nil, fmt.Errorf("rule %q: unknown tier %q", rule.Pattern, rule.Tier)
		}
		if !domain.ValidCategory(rule.Category) {
			return nil, fmt.Errorf("rule %q: unknown category %q", rule.Pattern, rule.Category)
		}
		if rule.Category.IsOverflow() {
			return nil, fmt.Errorf("rule %q: rules may not target the overflow bucket", rule.Pattern)
		}
		if rule.Pattern == "" {
			return nil, fmt.Errorf("rule %d (%s tier): empty pattern", rule.ID, rule.Tier)
		}
		if !rule.Enabled {
			continue
		}

		cr := compiledRule{rule: rule}
		if regexp.QuoteMeta(rule.Pattern) == rule.Pattern {
			cr.literal = rule.Pattern
		} else {
			re, err := regexp.Compile(rule.Pattern)
			if err != nil {
				return nil, fmt.Errorf("rule %q (%s tier): %w", rule.Pattern, rule.Tier, err)
			}
			cr.re = re
		}
		rs.tiers[rule.Tier] = append(rs.tiers[rule.Tier], cr)
		rs.total++
	}

	for _, tier := range domain.Tiers() {
		rs.matchers[tier] = newLiteralMatcher(rs.tiers[tier])
	}

	return rs, nil
}

// Weights returns the tier weights and confidence floor in effect.
func (rs *RuleSet) Weights() domain.Weights {
	return rs.weights
}

// Len returns the number of enabled rules across all tiers.
func (rs *RuleSet) Len() int {
	return rs.total
}

// TierLen returns the number of enabled rules in one tier.
func (rs *RuleSet) TierLen(t domain.Tier) int {
	return len(rs.tiers[t])
}

// Rules returns a copy of the enabled rules in tier order, for audit views.
func (rs *RuleSet) Rules() []domain.PatternRule {
	out := make([]domain.PatternRule, 0, rs.total)
	for _, tier := range domain.Tiers() {
		for _, cr := range rs.tiers[tier] {
			out = append(out, cr.rule)
		}
	}
	return out
}
