package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pubdash/classifier/internal/classifier"
	"github.com/pubdash/classifier/internal/database"
	"github.com/pubdash/classifier/internal/domain"
	"github.com/pubdash/classifier/internal/logging"
	"github.com/pubdash/classifier/internal/processor"
	"github.com/pubdash/classifier/internal/telemetry"
)

// RuleStore is the persistence surface the handlers need for rules CRUD.
type RuleStore interface {
	Create(ctx context.Context, rule *domain.PatternRule) error
	GetByID(ctx context.Context, id int) (*domain.PatternRule, error)
	List(ctx context.Context, tier domain.Tier, enabled *bool) ([]domain.PatternRule, error)
	Update(ctx context.Context, rule *domain.PatternRule) error
	Delete(ctx context.Context, id int) error
}

// AuditLog records classification outcomes and serves count queries.
type AuditLog interface {
	RecordBatch(ctx context.Context, labeled []domain.LabeledRecord) error
	CountsSince(ctx context.Context, since time.Time) (map[domain.Category]int, error)
}

// Indexer pushes labeled batches to the search index.
type Indexer interface {
	IndexBatch(ctx context.Context, labeled []domain.LabeledRecord) (int, error)
}

// Handler handles HTTP requests for the classifier API. rules, auditLog
// and indexer may be nil when the corresponding backend is not configured.
type Handler struct {
	classifier *classifier.Classifier
	batch      *processor.BatchProcessor
	rules      RuleStore
	auditLog   AuditLog
	indexer    Indexer
	telemetry  *telemetry.Provider
	logger     logging.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	cls *classifier.Classifier,
	batch *processor.BatchProcessor,
	rules RuleStore,
	auditLog AuditLog,
	indexer Indexer,
	tel *telemetry.Provider,
	logger logging.Logger,
) *Handler {
	return &Handler{
		classifier: cls,
		batch:      batch,
		rules:      rules,
		auditLog:   auditLog,
		indexer:    indexer,
		telemetry:  tel,
		logger:     logger,
	}
}

// Classify handles POST /api/v1/classify.
func (h *Handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var category domain.Category
	switch {
	case req.Record != nil:
		category = h.classifier.ClassifyRecord(req.Record)
	case req.Text != "":
		category = h.classifier.ClassifyText(req.Text)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "record or text is required"})
		return
	}

	c.JSON(http.StatusOK, ClassifyResponse{Category: category})
}

// Explain handles POST /api/v1/classify/explain.
func (h *Handler) Explain(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var result domain.Result
	switch {
	case req.Record != nil:
		result = h.classifier.ExplainRecord(req.Record)
	case req.Text != "":
		result = h.classifier.ExplainText(req.Text)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "record or text is required"})
		return
	}

	c.JSON(http.StatusOK, ExplainResponse{Category: result.Category, Scores: result.Scores})
}

// ClassifyBatch handles POST /api/v1/classify/batch: independent per-record
// classification, no overflow rebalancing.
func (h *Handler) ClassifyBatch(c *gin.Context) {
	h.handleBatch(c, false)
}

// ClassifyBatchBalanced handles POST /api/v1/classify/batch/balanced:
// classification plus overflow-bucket capping.
func (h *Handler) ClassifyBatchBalanced(c *gin.Context) {
	h.handleBatch(c, true)
}

func (h *Handler) handleBatch(c *gin.Context, balanced bool) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var (
		labeled []domain.LabeledRecord
		stats   classifier.BatchStats
	)
	if balanced {
		maxOverflow := -1
		if req.MaxOverflow != nil {
			maxOverflow = *req.MaxOverflow
		}
		labeled, stats = h.batch.Process(c.Request.Context(), req.Records, maxOverflow)
	} else {
		labeled, stats = h.classifier.ClassifyBatch(req.Records)
	}

	resp := BatchResponse{
		Results:      labeled,
		Counts:       classifier.CountsByCategory(labeled),
		Total:        len(labeled),
		Dropped:      stats.Dropped,
		Deduplicated: stats.Deduplicated,
	}

	if h.auditLog != nil {
		if err := h.auditLog.RecordBatch(c.Request.Context(), labeled); err != nil {
			h.logger.Warn("audit log write failed", logging.Error(err))
		}
	}
	if h.indexer != nil {
		indexed, err := h.indexer.IndexBatch(c.Request.Context(), labeled)
		if err != nil {
			h.logger.Warn("search indexing failed", logging.Error(err))
		}
		resp.Indexed = indexed
	}

	c.JSON(http.StatusOK, resp)
}

// CategoryStats handles GET /api/v1/stats/categories. The optional `days`
// query bounds the audit window; default 30.
func (h *Handler) CategoryStats(c *gin.Context) {
	if h.auditLog == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "audit log not configured"})
		return
	}

	days := 30
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "days must be a positive integer"})
			return
		}
		days = n
	}

	since := time.Now().AddDate(0, 0, -days)
	counts, err := h.auditLog.CountsSince(c.Request.Context(), since)
	if err != nil {
		h.logger.Error("stats query failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "stats query failed"})
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	c.JSON(http.StatusOK, StatsResponse{Counts: countsInOrder(counts), Total: total})
}

// ListRules handles GET /api/v1/rules with optional tier and enabled filters.
func (h *Handler) ListRules(c *gin.Context) {
	if h.rules == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "rule store not configured"})
		return
	}

	tier := domain.Tier(c.Query("tier"))
	if tier != "" && !domain.ValidTier(tier) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown tier"})
		return
	}

	var enabled *bool
	if v := c.Query("enabled"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "enabled must be a boolean"})
			return
		}
		enabled = &b
	}

	rules, err := h.rules.List(c.Request.Context(), tier, enabled)
	if err != nil {
		h.logger.Error("list rules failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "list rules failed"})
		return
	}

	c.JSON(http.StatusOK, RulesListResponse{Rules: rules, Total: len(rules)})
}

// CreateRule handles POST /api/v1/rules. The rule is validated by compiling
// it before it is stored, so a broken pattern never reaches the table.
func (h *Handler) CreateRule(c *gin.Context) {
	if h.rules == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "rule store not configured"})
		return
	}

	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	rule := domain.PatternRule{
		Pattern:  req.Pattern,
		Category: req.Category,
		Tier:     req.Tier,
		Enabled:  true,
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}

	if err := validateRule(rule); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.rules.Create(c.Request.Context(), &rule); err != nil {
		h.logger.Error("create rule failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "create rule failed"})
		return
	}

	h.reloadRules(c.Request.Context())
	c.JSON(http.StatusCreated, rule)
}

// UpdateRule handles PUT /api/v1/rules/:id.
func (h *Handler) UpdateRule(c *gin.Context) {
	if h.rules == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "rule store not configured"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid rule id"})
		return
	}

	var req UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	rule, err := h.rules.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "rule not found"})
			return
		}
		h.logger.Error("get rule failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "get rule failed"})
		return
	}

	if req.Pattern != "" {
		rule.Pattern = req.Pattern
	}
	if req.Category != "" {
		rule.Category = req.Category
	}
	if req.Tier != "" {
		rule.Tier = req.Tier
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}

	if err := validateRule(*rule); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.rules.Update(c.Request.Context(), rule); err != nil {
		if errors.Is(err, database.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "rule not found"})
			return
		}
		h.logger.Error("update rule failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "update rule failed"})
		return
	}

	h.reloadRules(c.Request.Context())
	c.JSON(http.StatusOK, rule)
}

// DeleteRule handles DELETE /api/v1/rules/:id.
func (h *Handler) DeleteRule(c *gin.Context) {
	if h.rules == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "rule store not configured"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid rule id"})
		return
	}

	if err := h.rules.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "rule not found"})
			return
		}
		h.logger.Error("delete rule failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "delete rule failed"})
		return
	}

	h.reloadRules(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReadyCheck handles GET /ready: ready once a rule table is loaded.
func (h *Handler) ReadyCheck(c *gin.Context) {
	if len(h.classifier.Rules()) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "no rules loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// validateRule compiles a single-rule table to reuse the engine's own
// validation: category, tier, pattern syntax.
func validateRule(rule domain.PatternRule) error {
	candidate := rule
	candidate.Enabled = true
	_, err := classifier.NewRuleSet([]domain.PatternRule{candidate}, domain.DefaultWeights())
	return err
}

// reloadRules hot-swaps the classifier's rule table from the store after a
// CRUD mutation. Failures keep the previous table serving.
func (h *Handler) reloadRules(ctx context.Context) {
	if h.rules == nil {
		return
	}
	enabled := true
	rules, err := h.rules.List(ctx, "", &enabled)
	if err != nil {
		h.logger.Error("rule reload failed, keeping previous table", logging.Error(err))
		return
	}
	if err := h.classifier.UpdateRules(rules); err != nil {
		h.logger.Error("rule reload rejected, keeping previous table", logging.Error(err))
		return
	}
	h.telemetry.SetRulesLoaded(len(rules))
}
