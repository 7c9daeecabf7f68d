package domain

import "time"

// Tier identifies the signal tier a pattern rule belongs to. Each tier
// carries a fixed evidentiary weight: an exact venue-name match is far
// stronger evidence than a keyword hit, which in turn beats a bare
// DOI-registrant hint.
type Tier string

// Tier constants, highest precision first.
const (
	TierVenue   Tier = "venue"
	TierKeyword Tier = "keyword"
	TierAuthor  Tier = "author"
	TierDOI     Tier = "doi"
)

// Tiers returns the tiers in evaluation order.
func Tiers() []Tier {
	return []Tier{TierVenue, TierKeyword, TierAuthor, TierDOI}
}

// ValidTier reports whether t is a known tier.
func ValidTier(t Tier) bool {
	switch t {
	case TierVenue, TierKeyword, TierAuthor, TierDOI:
		return true
	}
	return false
}

// Weights holds the per-tier scoring weights and the confidence floor.
// These are tuned empirically against the corpus and are configuration,
// not algorithm constants, so resolver behavior can be tested parametrically.
type Weights struct {
	Venue           int `json:"venue"            yaml:"venue"`
	Keyword         int `json:"keyword"          yaml:"keyword"`
	Author          int `json:"author"           yaml:"author"`
	DOI             int `json:"doi"              yaml:"doi"`
	ConfidenceFloor int `json:"confidence_floor" yaml:"confidence_floor"`
}

// DefaultWeights returns the production weight set: venue 3, keyword 2,
// author 2, doi 1, floor 2. The floor of 2 means a single DOI-tier-only
// match can never commit a classification on its own.
func DefaultWeights() Weights {
	return Weights{Venue: 3, Keyword: 2, Author: 2, DOI: 1, ConfidenceFloor: 2}
}

// ForTier returns the weight of the given tier.
func (w Weights) ForTier(t Tier) int {
	switch t {
	case TierVenue:
		return w.Venue
	case TierKeyword:
		return w.Keyword
	case TierAuthor:
		return w.Author
	case TierDOI:
		return w.DOI
	}
	return 0
}

// PatternRule associates a text pattern with a category within a tier.
// Venue and keyword patterns match against the normalized haystack, author
// patterns against the author text (falling back to the haystack), and DOI
// patterns against the lower-cased DOI registrant prefix.
type PatternRule struct {
	ID        int       `db:"id"         json:"id"`
	Pattern   string    `db:"pattern"    json:"pattern"`
	Category  Category  `db:"category"   json:"category"`
	Tier      Tier      `db:"tier"       json:"tier"`
	Enabled   bool      `db:"enabled"    json:"enabled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
