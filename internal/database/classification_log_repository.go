package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pubdash/classifier/internal/domain"
)

// LogEntry is one audit row: what was classified, where it landed, and the
// evidence that put it there.
type LogEntry struct {
	ID           int             `db:"id"            json:"id"`
	RecordID     string          `db:"record_id"     json:"record_id,omitempty"`
	Title        string          `db:"title"         json:"title"`
	Category     domain.Category `db:"category"      json:"category"`
	TopScore     int             `db:"top_score"     json:"top_score"`
	Reasons      string          `db:"reasons"       json:"reasons,omitempty"`
	ClassifiedAt time.Time       `db:"classified_at" json:"classified_at"`
}

// ClassificationLogRepository persists classification audit rows.
type ClassificationLogRepository struct {
	db *sqlx.DB
}

// NewClassificationLogRepository creates a new audit log repository.
func NewClassificationLogRepository(db *sqlx.DB) *ClassificationLogRepository {
	return &ClassificationLogRepository{db: db}
}

// Record writes one audit row for a labeled record.
func (r *ClassificationLogRepository) Record(ctx context.Context, labeled domain.LabeledRecord) error {
	if labeled.Record == nil {
		return nil
	}

	entry := LogEntry{
		RecordID:     labeled.Record.ID,
		Title:        labeled.Record.Title,
		Category:     labeled.Category,
		TopScore:     labeled.Scores.Top(),
		Reasons:      joinReasons(labeled.Scores, labeled.Category),
		ClassifiedAt: time.Now().UTC(),
	}

	query := r.db.Rebind(`
		INSERT INTO classification_log (record_id, title, category, top_score, reasons, classified_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if _, err := r.db.ExecContext(ctx, query,
		entry.RecordID, entry.Title, entry.Category, entry.TopScore, entry.Reasons, entry.ClassifiedAt,
	); err != nil {
		return fmt.Errorf("record classification: %w", err)
	}
	return nil
}

// RecordBatch writes audit rows for a whole labeled batch in one transaction.
func (r *ClassificationLogRepository) RecordBatch(ctx context.Context, labeled []domain.LabeledRecord) error {
	if len(labeled) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record batch: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	query := tx.Rebind(`
		INSERT INTO classification_log (record_id, title, category, top_score, reasons, classified_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	for _, l := range labeled {
		if l.Record == nil {
			continue
		}
		if _, err := tx.ExecContext(ctx, query,
			l.Record.ID, l.Record.Title, l.Category, l.Scores.Top(), joinReasons(l.Scores, l.Category), now,
		); err != nil {
			return fmt.Errorf("record batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record batch: %w", err)
	}
	return nil
}

// CountsSince returns per-category audit counts for rows newer than since.
func (r *ClassificationLogRepository) CountsSince(ctx context.Context, since time.Time) (map[domain.Category]int, error) {
	rows := []struct {
		Category domain.Category `db:"category"`
		Count    int             `db:"count"`
	}{}

	query := r.db.Rebind(`
		SELECT category, COUNT(*) AS count
		FROM classification_log
		WHERE classified_at >= ?
		GROUP BY category
	`)
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("count classifications: %w", err)
	}

	counts := make(map[domain.Category]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

// joinReasons flattens the winning category's provenance into one column.
func joinReasons(scores domain.ScoreMap, category domain.Category) string {
	tally := scores[category]
	if tally == nil {
		return ""
	}
	return strings.Join(tally.Reasons, "; ")
}
