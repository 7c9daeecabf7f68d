package api

import (
	"github.com/pubdash/classifier/internal/domain"
)

// ClassifyRequest carries one input: either a structured record or a bare
// text string (citation, DOI, URL, author blob). When both are present the
// record wins.
type ClassifyRequest struct {
	Record *domain.RawRecord `json:"record,omitempty"`
	Text   string            `json:"text,omitempty"`
}

// ClassifyResponse is a single classification outcome.
type ClassifyResponse struct {
	Category domain.Category `json:"category"`
}

// ExplainResponse is a classification outcome with its full evidence map.
type ExplainResponse struct {
	Category domain.Category `json:"category"`
	Scores   domain.ScoreMap `json:"scores"`
}

// BatchRequest carries a batch of raw records. MaxOverflow below zero means
// "no rebalancing requested" for /batch and "use the configured default"
// for /batch/balanced.
type BatchRequest struct {
	Records     []*domain.RawRecord `json:"records" binding:"required,min=1"`
	MaxOverflow *int                `json:"max_overflow,omitempty"`
}

// BatchResponse is a labeled batch plus its category count table. Dropped
// counts records with no classifiable title; Deduplicated counts duplicate
// records eliminated before classification.
type BatchResponse struct {
	Results      []domain.LabeledRecord  `json:"results"`
	Counts       map[domain.Category]int `json:"counts"`
	Total        int                     `json:"total"`
	Dropped      int                     `json:"dropped"`
	Deduplicated int                     `json:"deduplicated"`
	Indexed      int                     `json:"indexed,omitempty"`
}

// CategoryCount is one row of the dashboard count table, in taxonomy order.
type CategoryCount struct {
	Category domain.Category `json:"category"`
	Count    int             `json:"count"`
}

// StatsResponse is the per-category audit count table.
type StatsResponse struct {
	Counts []CategoryCount `json:"counts"`
	Total  int             `json:"total"`
}

// CreateRuleRequest creates one pattern rule.
type CreateRuleRequest struct {
	Pattern  string          `json:"pattern"  binding:"required"`
	Category domain.Category `json:"category" binding:"required"`
	Tier     domain.Tier     `json:"tier"     binding:"required"`
	Enabled  *bool           `json:"enabled"`
}

// UpdateRuleRequest rewrites one pattern rule; zero-valued fields keep their
// stored values.
type UpdateRuleRequest struct {
	Pattern  string          `json:"pattern"`
	Category domain.Category `json:"category"`
	Tier     domain.Tier     `json:"tier"`
	Enabled  *bool           `json:"enabled"`
}

// RulesListResponse is a rule listing with its total.
type RulesListResponse struct {
	Rules []domain.PatternRule `json:"rules"`
	Total int                  `json:"total"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// countsInOrder flattens a count map into taxonomy order for stable output.
func countsInOrder(counts map[domain.Category]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for _, cat := range domain.Categories() {
		out = append(out, CategoryCount{Category: cat, Count: counts[cat]})
	}
	return out
}
