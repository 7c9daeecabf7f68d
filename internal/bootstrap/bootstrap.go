// Package bootstrap wires the classifier service's components from
// configuration. Both the HTTP server and the one-shot batch processor
// share this setup path.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pubdash/classifier/internal/api"
	"github.com/pubdash/classifier/internal/classifier"
	"github.com/pubdash/classifier/internal/config"
	"github.com/pubdash/classifier/internal/database"
	"github.com/pubdash/classifier/internal/domain"
	"github.com/pubdash/classifier/internal/logging"
	"github.com/pubdash/classifier/internal/lookup"
	"github.com/pubdash/classifier/internal/processor"
	"github.com/pubdash/classifier/internal/search"
	"github.com/pubdash/classifier/internal/telemetry"
)

// Components holds the wired core of the classifier service. RuleStore,
// AuditLog and Indexer are nil when the corresponding backend is not
// configured or unreachable; the classification path works without them.
type Components struct {
	DB         *sqlx.DB
	RuleStore  api.RuleStore
	AuditLog   api.AuditLog
	Indexer    api.Indexer
	Classifier *classifier.Classifier
	Batch      *processor.BatchProcessor
	Telemetry  *telemetry.Provider
}

// Setup connects the rule store, loads the active rule table, and builds
// the classification engine and batch processor.
func Setup(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Components, error) {
	tel := telemetry.NewProvider()

	db, ruleStore, auditLog, rules, err := openRuleStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	cls, err := classifier.New(logger, rules, classifier.Config{
		Weights:     cfg.Classification.Weights,
		MaxOverflow: cfg.Classification.MaxOverflow,
		Telemetry:   tel,
	})
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("rule table rejected: %w", err)
	}
	tel.SetRulesLoaded(len(rules))
	logger.Info("classifier initialized", logging.Int("rules", len(rules)))

	resolver := lookup.NewCache(lookup.NopResolver{}, tel)
	limiter := processor.NewRateLimiter(cfg.Service.RateLimit, cfg.Service.RateBurst, logger)
	batch := processor.NewBatchProcessor(cls, resolver, limiter, cfg.Service.Concurrency, logger)

	return &Components{
		DB:         db,
		RuleStore:  ruleStore,
		AuditLog:   auditLog,
		Indexer:    setupSearch(cfg, logger),
		Classifier: cls,
		Batch:      batch,
		Telemetry:  tel,
	}, nil
}

// Close releases held connections.
func (c *Components) Close() {
	if c.DB != nil {
		_ = c.DB.Close()
	}
}

// openRuleStore connects to the rule database and loads the enabled rule
// table. An unreachable database degrades to the builtin table without
// persistence when builtin rules are allowed, and is an error otherwise.
func openRuleStore(
	ctx context.Context,
	cfg *config.Config,
	logger logging.Logger,
) (*sqlx.DB, api.RuleStore, api.AuditLog, []domain.PatternRule, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		if !cfg.Classification.UseBuiltinRules {
			return nil, nil, nil, nil, fmt.Errorf("connect database: %w", err)
		}
		logger.Warn("database unreachable, using builtin rules without persistence",
			logging.Error(err))
		return nil, nil, nil, classifier.DefaultRules(), nil
	}

	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	repo := database.NewRulesRepository(db)
	if cfg.Classification.UseBuiltinRules {
		seeded, err := repo.Seed(ctx, classifier.DefaultRules())
		if err != nil {
			_ = db.Close()
			return nil, nil, nil, nil, fmt.Errorf("seed rules: %w", err)
		}
		if seeded > 0 {
			logger.Info("seeded builtin rules", logging.Int("count", seeded))
		}
	}

	enabled := true
	rules, err := repo.List(ctx, "", &enabled)
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, nil, fmt.Errorf("load rules: %w", err)
	}
	logger.Info("rules loaded", logging.Int("count", len(rules)))

	return db, repo, database.NewClassificationLogRepository(db), rules, nil
}

// setupSearch builds the optional publication indexer. A missing or
// unreachable search backend disables indexing, never the service.
func setupSearch(cfg *config.Config, logger logging.Logger) api.Indexer {
	if !cfg.Elasticsearch.Enabled {
		return nil
	}
	client, err := search.NewClient(cfg.Elasticsearch)
	if err != nil {
		logger.Warn("elasticsearch unavailable, indexing disabled", logging.Error(err))
		return nil
	}
	logger.Info("search indexing enabled", logging.String("index", cfg.Elasticsearch.Index))
	return search.NewIndexer(client, cfg.Elasticsearch.Index, cfg.Elasticsearch.FlushRecords, logger)
}
