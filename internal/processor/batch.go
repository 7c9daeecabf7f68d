// Package processor runs the batch pipeline: a worker pool performs the
// rate-limited external title-repair lookups in parallel, a barrier waits
// for every worker, and only then does the pure classification and
// rebalancing pass run over the full batch. The barrier matters: the
// rebalancer's overflow arithmetic needs the whole batch labeled before it
// can decide what to move.
package processor

import (
	"context"
	"sync"
	"time"

	"github.com/pubdash/classifier/internal/classifier"
	"github.com/pubdash/classifier/internal/domain"
	"github.com/pubdash/classifier/internal/logging"
	"github.com/pubdash/classifier/internal/lookup"
)

const defaultConcurrency = 8

// BatchProcessor coordinates lookup repair and batch classification.
type BatchProcessor struct {
	classifier  *classifier.Classifier
	resolver    lookup.Resolver
	limiter     *RateLimiter
	concurrency int
	logger      logging.Logger
}

// NewBatchProcessor creates a batch processor. resolver may be a
// lookup.NopResolver when no external metadata service is configured.
func NewBatchProcessor(
	cls *classifier.Classifier,
	resolver lookup.Resolver,
	limiter *RateLimiter,
	concurrency int,
	logger logging.Logger,
) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &BatchProcessor{
		classifier:  cls,
		resolver:    resolver,
		limiter:     limiter,
		concurrency: concurrency,
		logger:      logger,
	}
}

// repairJob carries one record through the lookup phase, keyed by its input
// position so output order is independent of worker scheduling.
type repairJob struct {
	index  int
	record *domain.RawRecord
}

// Process runs the full pipeline over a batch and returns the labeled
// records in input order. maxOverflow caps the overflow bucket; a negative
// value uses the classifier's configured default. Lookup failures degrade
// to the unrepaired record and are never fatal.
func (b *BatchProcessor) Process(ctx context.Context, records []*domain.RawRecord, maxOverflow int) ([]domain.LabeledRecord, classifier.BatchStats) {
	if len(records) == 0 {
		return []domain.LabeledRecord{}, classifier.BatchStats{}
	}

	start := time.Now()
	b.logger.Info("starting batch",
		logging.Int("records", len(records)),
		logging.Int("concurrency", b.concurrency),
	)

	repaired := make([]*domain.RawRecord, len(records))
	jobs := make(chan repairJob, len(records))

	var wg sync.WaitGroup
	for i := 0; i < b.concurrency; i++ {
		wg.Add(1)
		go b.repairWorker(ctx, jobs, repaired, &wg)
	}
	for i, rec := range records {
		jobs <- repairJob{index: i, record: rec}
	}
	close(jobs)

	// Barrier: every record must be through the repair phase before the
	// batch-wide classification and rebalancing pass starts.
	wg.Wait()

	labeled, stats := b.classifier.ClassifyBatchBalanced(repaired, maxOverflow)

	b.logger.Info("batch complete",
		logging.Int("records", len(records)),
		logging.Int("labeled", len(labeled)),
		logging.Int("dropped", stats.Dropped),
		logging.Int("deduplicated", stats.Deduplicated),
		logging.Duration("duration", time.Since(start)),
	)
	return labeled, stats
}

// repairWorker pulls jobs and attempts an external repair for records that
// still lack a usable title after local disambiguation.
func (b *BatchProcessor) repairWorker(ctx context.Context, jobs <-chan repairJob, out []*domain.RawRecord, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		out[job.index] = job.record
		if job.record == nil || !needsRepair(job.record) {
			continue
		}
		if ctx.Err() != nil {
			continue
		}

		if b.limiter != nil {
			if err := b.limiter.Wait(ctx); err != nil {
				continue
			}
		}

		resolved, err := b.resolver.Resolve(ctx, job.record)
		if err != nil {
			b.logger.Warn("title-repair lookup failed",
				logging.String("record_id", job.record.ID),
				logging.Error(err),
			)
			continue
		}
		if resolved != nil {
			out[job.index] = resolved
		}
	}
}

// needsRepair reports whether a record is worth an external lookup: its
// title field holds what looks like an author list and the venue field has
// no displaced prose to promote locally.
func needsRepair(rec *domain.RawRecord) bool {
	if len(rec.Authors) > 0 {
		return false
	}
	title, _, _ := classifier.Disambiguate(rec.Title, rec.Venue, rec.Authors)
	return title == rec.Title && classifier.LooksLikeAuthorList(rec.Title)
}
