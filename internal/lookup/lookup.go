// Package lookup defines the external title-repair collaborator at its
// interface. When a record's title field held a serialized author list and
// no real title could be recovered locally, an external metadata service
// may be able to supply one; this package specifies that seam and provides
// a concurrent cache so repeated repairs of the same record are free.
package lookup

import (
	"context"
	"sync"

	"github.com/pubdash/classifier/internal/domain"
	"github.com/pubdash/classifier/internal/telemetry"
)

// Resolver fetches repaired metadata for a record from an external source.
// A nil result with a nil error means the source had nothing better; the
// caller keeps the record as-is.
type Resolver interface {
	Resolve(ctx context.Context, rec *domain.RawRecord) (*domain.RawRecord, error)
}

// NopResolver never repairs anything. The default when no external metadata
// service is configured.
type NopResolver struct{}

// Resolve returns no repair.
func (NopResolver) Resolve(ctx context.Context, rec *domain.RawRecord) (*domain.RawRecord, error) {
	return nil, nil
}

// Cache is a concurrent first-write-wins cache in front of a Resolver.
// Upserts are idempotent: once a key holds a value, later writes for the
// same key are ignored, so concurrent resolutions of the same record
// converge on one answer regardless of arrival order.
type Cache struct {
	inner     Resolver
	telemetry *telemetry.Provider

	mu      sync.RWMutex
	entries map[string]*domain.RawRecord
}

// NewCache wraps a resolver with an in-memory cache. telemetry may be nil.
func NewCache(inner Resolver, tel *telemetry.Provider) *Cache {
	return &Cache{
		inner:     inner,
		telemetry: tel,
		entries:   make(map[string]*domain.RawRecord),
	}
}

// Resolve serves from the cache when possible, otherwise consults the inner
// resolver and caches its answer. Negative answers (nil, nil) are cached
// too, so a source with no data is asked once per key.
func (c *Cache) Resolve(ctx context.Context, rec *domain.RawRecord) (*domain.RawRecord, error) {
	key := cacheKey(rec)
	if key == "" {
		return c.inner.Resolve(ctx, rec)
	}

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.telemetry.RecordLookupHit()
		return cached, nil
	}
	c.telemetry.RecordLookupMiss()

	resolved, err := c.inner.Resolve(ctx, rec)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if existing, ok := c.entries[key]; ok {
		// A concurrent resolution won the race; keep its answer.
		resolved = existing
	} else {
		c.entries[key] = resolved
	}
	c.mu.Unlock()

	return resolved, nil
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cacheKey picks the strongest available identifier: record id, then URL,
// then the raw title text.
func cacheKey(rec *domain.RawRecord) string {
	if rec == nil {
		return ""
	}
	if rec.ID != "" {
		return "id:" + rec.ID
	}
	if rec.URL != "" {
		return "url:" + rec.URL
	}
	if rec.Title != "" {
		return "title:" + rec.Title
	}
	return ""
}
