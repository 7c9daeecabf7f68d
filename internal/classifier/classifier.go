// Package classifier implements the deterministic, rule-based topic
// inference engine for bibliographic publication records: normalization,
// tokenization, tiered weighted scoring with provenance, confidence-gated
// resolution, batch overflow rebalancing, and title/author field repair.
package classifier

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pubdash/classifier/internal/domain"
	"github.com/pubdash/classifier/internal/logging"
	"github.com/pubdash/classifier/internal/telemetry"
)

// Config holds classifier construction options.
type Config struct {
	Weights domain.Weights
	// MaxOverflow is the default overflow-bucket cap applied by
	// ClassifyBatchBalanced when the caller passes a negative value.
	MaxOverflow int
	Telemetry   *telemetry.Provider
}

// Classifier is the topic inference engine. Classification itself is pure
// and side-effect-free; the only mutable state is the rule-table pointer,
// guarded for hot reload.
type Classifier struct {
	mu          sync.RWMutex
	rules       *RuleSet
	weights     domain.Weights
	maxOverflow int
	telemetry   *telemetry.Provider
	logger      logging.Logger
}

// New builds a classifier from a rule table. Rule validation errors
// (unknown category or tier, bad pattern) are returned, never skipped.
func New(logger logging.Logger, rules []domain.PatternRule, cfg Config) (*Classifier, error) {
	weights := cfg.Weights
	if weights == (domain.Weights{}) {
		weights = domain.DefaultWeights()
	}

	ruleSet, err := NewRuleSet(rules, weights)
	if err != nil {
		return nil, fmt.Errorf("compile rule table: %w", err)
	}

	c := &Classifier{
		rules:       ruleSet,
		weights:     weights,
		maxOverflow: cfg.MaxOverflow,
		telemetry:   cfg.Telemetry,
		logger:      logger,
	}

	logger.Info("classifier initialized",
		logging.Int("rules", ruleSet.Len()),
		logging.Int("confidence_floor", weights.ConfidenceFloor),
	)
	return c, nil
}

// UpdateRules hot-swaps the rule table. In-flight classifications finish
// against the table they started with.
func (c *Classifier) UpdateRules(rules []domain.PatternRule) error {
	ruleSet, err := NewRuleSet(rules, c.weights)
	if err != nil {
		return fmt.Errorf("compile rule table: %w", err)
	}

	c.mu.Lock()
	c.rules = ruleSet
	c.mu.Unlock()

	c.logger.Info("rule table updated", logging.Int("rules", ruleSet.Len()))
	return nil
}

// Rules returns the currently loaded rule table.
func (c *Classifier) Rules() []domain.PatternRule {
	return c.ruleSet().Rules()
}

func (c *Classifier) ruleSet() *RuleSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rules
}

// ClassifyText classifies a free-text input: a citation string, a bare DOI,
// a URL, or an author-list blob. Empty input short-circuits to the overflow
// bucket without evaluating any rule.
func (c *Classifier) ClassifyText(input string) domain.Category {
	return c.ExplainText(input).Category
}

// ClassifyRecord classifies a structured raw record.
func (c *Classifier) ClassifyRecord(rec *domain.RawRecord) domain.Category {
	return c.ExplainRecord(rec).Category
}

// ExplainText classifies free text and returns the full score breakdown for
// audit tooling.
func (c *Classifier) ExplainText(input string) domain.Result {
	return c.explain(TokenizeText(input))
}

// ExplainRecord classifies a record and returns the full score breakdown.
// The record's title/venue/authors are repaired first, so a serialized
// author list in the title field is scored against the recovered title.
func (c *Classifier) ExplainRecord(rec *domain.RawRecord) domain.Result {
	if rec == nil {
		return domain.Result{Category: domain.CategoryOther, Scores: domain.ScoreMap{}}
	}
	repaired := c.repair(rec)
	return c.explain(TokenizeRecord(repaired))
}

func (c *Classifier) explain(tokens domain.TokenBundle) domain.Result {
	if tokens.Empty() {
		return domain.Result{Category: domain.CategoryOther, Scores: domain.ScoreMap{}}
	}

	start := time.Now()
	rules := c.ruleSet()
	scores := rules.Score(tokens)
	category := Resolve(scores, rules.Weights())

	if c.telemetry != nil {
		c.telemetry.RecordClassification(string(category), time.Since(start))
	}
	return domain.Result{Category: category, Scores: scores}
}

// repair applies the field disambiguator to a copy of the record.
func (c *Classifier) repair(rec *domain.RawRecord) *domain.RawRecord {
	title, venue, authors := Disambiguate(rec.Title, rec.Venue, rec.Authors)
	if title == rec.Title && venue == rec.Venue && len(authors) == len(rec.Authors) {
		return rec
	}

	c.logger.Debug("title field repaired",
		logging.String("record_id", rec.ID),
		logging.Int("recovered_authors", len(authors)),
	)

	repaired := *rec
	repaired.Title = title
	repaired.Venue = venue
	repaired.Authors = authors
	return &repaired
}

// BatchStats counts the records a batch excluded, by reason.
type BatchStats struct {
	// Dropped counts records with no resolvable title after repair,
	// including nil entries.
	Dropped int `json:"dropped"`
	// Deduplicated counts later occurrences of an already-seen dedupe key.
	Deduplicated int `json:"deduplicated"`
}

// ClassifyBatch classifies a batch of records independently, deduplicating
// by (year, best discriminating text) with first occurrence winning.
// Records with no resolvable title after repair are excluded: they cannot
// appear in the dashboard and their classification would be meaningless.
// The stats report how many records each exclusion removed.
func (c *Classifier) ClassifyBatch(records []*domain.RawRecord) ([]domain.LabeledRecord, BatchStats) {
	labeled := make([]domain.LabeledRecord, 0, len(records))
	seen := make(map[string]bool, len(records))
	var stats BatchStats

	for _, rec := range records {
		if rec == nil {
			stats.Dropped++
			continue
		}
		repaired := c.repair(rec)
		if strings.TrimSpace(repaired.Title) == "" {
			stats.Dropped++
			continue
		}

		key := dedupeKey(repaired)
		if seen[key] {
			stats.Deduplicated++
			continue
		}
		seen[key] = true

		result := c.explain(TokenizeRecord(repaired))
		pub := domain.NewPublication(repaired)
		pub.Topic = result.Category
		labeled = append(labeled, domain.LabeledRecord{
			Category: result.Category,
			Record:   pub,
			Scores:   result.Scores,
		})
	}

	if c.telemetry != nil {
		c.telemetry.RecordBatch(len(labeled))
		c.telemetry.RecordDropped(stats.Dropped)
	}
	return labeled, stats
}

// ClassifyBatchBalanced classifies a batch and then caps the overflow bucket
// at maxOverflow by reassigning the weakest overflow records to their best
// non-overflow alternative. A negative maxOverflow uses the configured
// default. Zero-signal records always stay in overflow.
func (c *Classifier) ClassifyBatchBalanced(records []*domain.RawRecord, maxOverflow int) ([]domain.LabeledRecord, BatchStats) {
	if maxOverflow < 0 {
		maxOverflow = c.maxOverflow
	}

	labeled, stats := c.ClassifyBatch(records)
	moved := Rebalance(labeled, maxOverflow)

	if moved > 0 {
		c.logger.Info("overflow bucket rebalanced",
			logging.Int("reassigned", moved),
			logging.Int("max_overflow", maxOverflow),
		)
		if c.telemetry != nil {
			c.telemetry.RecordReassignments(moved)
		}
	}
	return labeled, stats
}

// CountsByCategory aggregates a labeled batch into a per-category count
// table, zero-initialized over the full taxonomy so the dashboard always
// sees every category, matched or not.
func CountsByCategory(labeled []domain.LabeledRecord) map[domain.Category]int {
	counts := make(map[domain.Category]int, len(domain.Categories()))
	for _, cat := range domain.Categories() {
		counts[cat] = 0
	}
	for _, l := range labeled {
		counts[l.Category]++
	}
	return counts
}

// dedupeKey builds the composite duplicate-detection key: the year plus the
// best available discriminating text (title, then URL, then venue).
func dedupeKey(rec *domain.RawRecord) string {
	text := Normalize(rec.Title)
	if text == "" {
		text = Normalize(rec.URL)
	}
	if text == "" {
		text = Normalize(rec.Venue)
	}
	return fmt.Sprintf("%d|%s", rec.Year, text)
}
