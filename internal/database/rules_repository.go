package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pubdash/classifier/internal/domain"
)

// ErrRuleNotFound is returned when a rule id does not exist.
var ErrRuleNotFound = errors.New("rule not found")

// RulesRepository handles database operations for pattern rules. Queries are
// written with ? placeholders and rebound per driver, so the same repository
// serves PostgreSQL and SQLite.
type RulesRepository struct {
	db *sqlx.DB
}

// NewRulesRepository creates a new rules repository.
func NewRulesRepository(db *sqlx.DB) *RulesRepository {
	return &RulesRepository{db: db}
}

// Create inserts a new rule and fills in its generated id and timestamps.
func (r *RulesRepository) Create(ctx context.Context, rule *domain.PatternRule) error {
	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO pattern_rules (pattern, category, tier, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)

	if r.db.DriverName() == "postgres" {
		query = r.db.Rebind(`
			INSERT INTO pattern_rules (pattern, category, tier, enabled, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id
		`)
		err := r.db.QueryRowContext(ctx, query,
			rule.Pattern, rule.Category, rule.Tier, rule.Enabled, rule.CreatedAt, rule.UpdatedAt,
		).Scan(&rule.ID)
		if err != nil {
			return fmt.Errorf("create rule: %w", err)
		}
		return nil
	}

	res, err := r.db.ExecContext(ctx, query,
		rule.Pattern, rule.Category, rule.Tier, rule.Enabled, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create rule: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rule.ID = int(id)
	}
	return nil
}

// GetByID retrieves a rule by its id.
func (r *RulesRepository) GetByID(ctx context.Context, id int) (*domain.PatternRule, error) {
	var rule domain.PatternRule
	query := r.db.Rebind(`
		SELECT id, pattern, category, tier, enabled, created_at, updated_at
		FROM pattern_rules
		WHERE id = ?
	`)

	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("get rule %d: %w", id, err)
	}
	return &rule, nil
}

// List retrieves rules, optionally filtered by tier and enabled flag,
// ordered by tier then id so rule evaluation order is reproducible.
func (r *RulesRepository) List(ctx context.Context, tier domain.Tier, enabled *bool) ([]domain.PatternRule, error) {
	query := `
		SELECT id, pattern, category, tier, enabled, created_at, updated_at
		FROM pattern_rules
	`

	var clauses []string
	var args []any
	if tier != "" {
		clauses = append(clauses, "tier = ?")
		args = append(args, tier)
	}
	if enabled != nil {
		clauses = append(clauses, "enabled = ?")
		args = append(args, *enabled)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += `
		ORDER BY CASE tier
			WHEN 'venue' THEN 1
			WHEN 'keyword' THEN 2
			WHEN 'author' THEN 3
			WHEN 'doi' THEN 4
		END, id
	`

	rules := []domain.PatternRule{}
	if err := r.db.SelectContext(ctx, &rules, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}

// Update rewrites the mutable fields of a rule.
func (r *RulesRepository) Update(ctx context.Context, rule *domain.PatternRule) error {
	rule.UpdatedAt = time.Now().UTC()

	query := r.db.Rebind(`
		UPDATE pattern_rules
		SET pattern = ?, category = ?, tier = ?, enabled = ?, updated_at = ?
		WHERE id = ?
	`)

	res, err := r.db.ExecContext(ctx, query,
		rule.Pattern, rule.Category, rule.Tier, rule.Enabled, rule.UpdatedAt, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("update rule %d: %w", rule.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// Delete removes a rule.
func (r *RulesRepository) Delete(ctx context.Context, id int) error {
	query := r.db.Rebind(`DELETE FROM pattern_rules WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete rule %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// Count returns the number of stored rules.
func (r *RulesRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM pattern_rules`); err != nil {
		return 0, fmt.Errorf("count rules: %w", err)
	}
	return n, nil
}

// Seed bulk-inserts rules into an empty store. Used to load the built-in
// table on first boot; a non-empty store is left untouched.
func (r *RulesRepository) Seed(ctx context.Context, rules []domain.PatternRule) (int, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed rules: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	query := tx.Rebind(`
		INSERT INTO pattern_rules (pattern, category, tier, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	for _, rule := range rules {
		if _, err := tx.ExecContext(ctx, query,
			rule.Pattern, rule.Category, rule.Tier, rule.Enabled, now, now,
		); err != nil {
			return 0, fmt.Errorf("seed rule %q: %w", rule.Pattern, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed rules: %w", err)
	}
	return len(rules), nil
}
