// Package telemetry provides Prometheus metrics and an OpenTelemetry tracer
// for the bib-classifier service.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "bib-classifier"

// Metrics holds all classifier Prometheus metrics.
type Metrics struct {
	RecordsClassified  *prometheus.CounterVec
	RecordsDropped     prometheus.Counter
	OverflowReassigned prometheus.Counter
	ClassifyDuration   prometheus.Histogram
	BatchSize          prometheus.Histogram
	RulesLoaded        prometheus.Gauge
	LookupCacheHits    prometheus.Counter
	LookupCacheMisses  prometheus.Counter
}

// Provider wraps the tracer and metric handles.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics registered on
// the default registry.
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

// RecordClassification counts one classified record and observes latency.
func (p *Provider) RecordClassification(category string, duration time.Duration) {
	if p == nil || p.Metrics == nil {
		return
	}
	p.Metrics.RecordsClassified.WithLabelValues(category).Inc()
	p.Metrics.ClassifyDuration.Observe(duration.Seconds())
}

// RecordBatch observes the size of a processed batch.
func (p *Provider) RecordBatch(size int) {
	if p == nil || p.Metrics == nil {
		return
	}
	p.Metrics.BatchSize.Observe(float64(size))
}

// RecordReassignments counts overflow records moved by the rebalancer.
func (p *Provider) RecordReassignments(n int) {
	if p == nil || p.Metrics == nil {
		return
	}
	p.Metrics.OverflowReassigned.Add(float64(n))
}

// RecordDropped counts records excluded from a batch for having no
// classifiable title.
func (p *Provider) RecordDropped(n int) {
	if p == nil || p.Metrics == nil {
		return
	}
	p.Metrics.RecordsDropped.Add(float64(n))
}

// RecordLookupHit counts a title-repair cache hit.
func (p *Provider) RecordLookupHit() {
	if p == nil || p.Metrics == nil {
		return
	}
	p.Metrics.LookupCacheHits.Inc()
}

// RecordLookupMiss counts a title-repair cache miss.
func (p *Provider) RecordLookupMiss() {
	if p == nil || p.Metrics == nil {
		return
	}
	p.Metrics.LookupCacheMisses.Inc()
}

// SetRulesLoaded records the size of the active rule table.
func (p *Provider) SetRulesLoaded(n int) {
	if p == nil || p.Metrics == nil {
		return
	}
	p.Metrics.RulesLoaded.Set(float64(n))
}

func initMetrics() *Metrics {
	return &Metrics{
		RecordsClassified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bibclassifier",
			Name:      "records_classified_total",
			Help:      "Records classified, by resolved category.",
		}, []string{"category"}),
		RecordsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "bibclassifier",
			Name:      "records_dropped_total",
			Help:      "Records dropped for having no resolvable title.",
		}),
		OverflowReassigned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "bibclassifier",
			Name:      "overflow_reassigned_total",
			Help:      "Overflow records reassigned by the batch rebalancer.",
		}),
		ClassifyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bibclassifier",
			Name:      "classify_duration_seconds",
			Help:      "Single-record classification latency.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bibclassifier",
			Name:      "batch_size",
			Help:      "Records per classified batch after deduplication.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		RulesLoaded: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "bibclassifier",
			Name:      "rules_loaded",
			Help:      "Enabled pattern rules in the active rule table.",
		}),
		LookupCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "bibclassifier",
			Name:      "lookup_cache_hits_total",
			Help:      "Title-repair lookup cache hits.",
		}),
		LookupCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "bibclassifier",
			Name:      "lookup_cache_misses_total",
			Help:      "Title-repair lookup cache misses.",
		}),
	}
}
