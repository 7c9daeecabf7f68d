package lookup_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pubdash/classifier/internal/domain"
	"github.com/pubdash/classifier/internal/lookup"
)

// countingResolver returns a fixed repair and counts how often it is asked.
type countingResolver struct {
	calls  atomic.Int64
	result *domain.RawRecord
}

func (r *countingResolver) Resolve(ctx context.Context, rec *domain.RawRecord) (*domain.RawRecord, error) {
	r.calls.Add(1)
	return r.result, nil
}

func TestCache_ServesRepeatLookupsFromCache(t *testing.T) {
	inner := &countingResolver{result: &domain.RawRecord{ID: "r1", Title: "Recovered title"}}
	cache := lookup.NewCache(inner, nil)
	rec := &domain.RawRecord{ID: "r1", Title: "Smith J, Lee K"}

	for i := 0; i < 5; i++ {
		got, err := cache.Resolve(context.Background(), rec)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got == nil || got.Title != "Recovered title" {
			t.Fatalf("Resolve = %+v, want recovered record", got)
		}
	}

	if n := inner.calls.Load(); n != 1 {
		t.Errorf("inner resolver called %d times, want 1", n)
	}
	if cache.Len() != 1 {
		t.Errorf("cache size = %d, want 1", cache.Len())
	}
}

func TestCache_CachesNegativeAnswers(t *testing.T) {
	inner := &countingResolver{result: nil}
	cache := lookup.NewCache(inner, nil)
	rec := &domain.RawRecord{URL: "https://doi.org/10.1000/x"}

	for i := 0; i < 3; i++ {
		got, err := cache.Resolve(context.Background(), rec)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got != nil {
			t.Fatalf("Resolve = %+v, want nil", got)
		}
	}

	if n := inner.calls.Load(); n != 1 {
		t.Errorf("inner resolver called %d times, want 1", n)
	}
}

// Concurrent resolutions of the same key must converge on a single cached
// answer: first write wins, later writers observe it.
func TestCache_ConcurrentUpsertsConverge(t *testing.T) {
	inner := &countingResolver{result: &domain.RawRecord{ID: "r1", Title: "Recovered title"}}
	cache := lookup.NewCache(inner, nil)
	rec := &domain.RawRecord{ID: "r1"}

	const workers = 16
	results := make([]*domain.RawRecord, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := cache.Resolve(context.Background(), rec)
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			results[i] = got
		}(i)
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Fatalf("cache size = %d, want 1", cache.Len())
	}
	first := results[0]
	for i, got := range results {
		if got != first {
			t.Errorf("worker %d saw %p, want the single cached record %p", i, got, first)
		}
	}
}

func TestCache_UnkeyedRecordBypassesCache(t *testing.T) {
	inner := &countingResolver{}
	cache := lookup.NewCache(inner, nil)

	for i := 0; i < 2; i++ {
		if _, err := cache.Resolve(context.Background(), &domain.RawRecord{}); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	if n := inner.calls.Load(); n != 2 {
		t.Errorf("inner resolver called %d times, want 2 (no cache key)", n)
	}
	if cache.Len() != 0 {
		t.Errorf("cache size = %d, want 0", cache.Len())
	}
}
