// Package database provides the rule store and classification audit log on
// top of sqlx. Production runs against PostgreSQL; local development can use
// a single-file SQLite database instead.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver for local development

	"github.com/pubdash/classifier/internal/config"
)

// DefaultPingTimeout bounds the connection verification on startup.
const DefaultPingTimeout = 5 * time.Second

// Open connects to the configured rule store, applies pool settings, and
// verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	var driver, dsn string
	switch cfg.Driver {
	case "postgres":
		driver = "postgres"
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
		)
	case "sqlite3":
		driver = "sqlite3"
		dsn = cfg.SQLitePath
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	return db, nil
}

// schemaFor returns DDL for the connected driver. The only dialect
// difference is the auto-incrementing id column: SQLite auto-increments a
// plain INTEGER PRIMARY KEY, PostgreSQL needs an identity column.
func schemaFor(driver string) []string {
	idCol := "INTEGER PRIMARY KEY"
	if driver == "postgres" {
		idCol = "INTEGER PRIMARY KEY GENERATED BY DEFAULT AS IDENTITY"
	}
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS pattern_rules (
		id %s,
		pattern TEXT NOT NULL,
		category TEXT NOT NULL,
		tier TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`, idCol),
		`CREATE INDEX IF NOT EXISTS idx_pattern_rules_tier ON pattern_rules (tier)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS classification_log (
		id %s,
		record_id TEXT,
		title TEXT NOT NULL,
		category TEXT NOT NULL,
		top_score INTEGER NOT NULL,
		reasons TEXT,
		classified_at TIMESTAMP NOT NULL
	)`, idCol),
		`CREATE INDEX IF NOT EXISTS idx_classification_log_category ON classification_log (category)`,
	}
}

// EnsureSchema creates the rule-store tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaFor(db.DriverName()) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
