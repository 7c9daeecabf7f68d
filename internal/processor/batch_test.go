package processor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pubdash/classifier/internal/classifier"
	"github.com/pubdash/classifier/internal/domain"
	"github.com/pubdash/classifier/internal/logging"
	"github.com/pubdash/classifier/internal/lookup"
	"github.com/pubdash/classifier/internal/processor"
)

func newBatchClassifier(t *testing.T) *classifier.Classifier {
	t.Helper()
	c, err := classifier.New(logging.NewNop(), classifier.DefaultRules(), classifier.Config{MaxOverflow: 100})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// titleResolver repairs any record to a fixed title.
type titleResolver struct {
	title string
}

func (r titleResolver) Resolve(ctx context.Context, rec *domain.RawRecord) (*domain.RawRecord, error) {
	repaired := *rec
	repaired.Title = r.title
	return &repaired, nil
}

// failingResolver always errors.
type failingResolver struct{}

func (failingResolver) Resolve(ctx context.Context, rec *domain.RawRecord) (*domain.RawRecord, error) {
	return nil, errors.New("metadata service unavailable")
}

func TestBatchProcessor_PreservesInputOrder(t *testing.T) {
	p := processor.NewBatchProcessor(newBatchClassifier(t), lookup.NopResolver{}, nil, 4, logging.NewNop())

	records := []*domain.RawRecord{
		{ID: "1", Title: "Atrial fibrillation outcomes", Venue: "Circulation"},
		{ID: "2", Title: "Glycemic control in type 2 diabetes"},
		{ID: "3", Title: "Tumor microenvironment and chemotherapy response"},
		{ID: "4", Title: "Frailty in older adults"},
	}

	labeled, _ := p.Process(context.Background(), records, -1)
	if len(labeled) != len(records) {
		t.Fatalf("len = %d, want %d", len(labeled), len(records))
	}
	for i, l := range labeled {
		if l.Record.ID != records[i].ID {
			t.Errorf("position %d: got record %q, want %q", i, l.Record.ID, records[i].ID)
		}
	}
}

func TestBatchProcessor_RebalancesAfterBarrier(t *testing.T) {
	p := processor.NewBatchProcessor(newBatchClassifier(t), lookup.NopResolver{}, nil, 2, logging.NewNop())

	records := []*domain.RawRecord{
		{Title: "Ablation outcomes", URL: "https://doi.org/10.1161/CIRC.1"},
		{Title: "Quarterly planning meeting minutes"},
	}

	labeled, _ := p.Process(context.Background(), records, 1)

	counts := classifier.CountsByCategory(labeled)
	if counts[domain.CategoryCardiology] != 1 {
		t.Errorf("cardiology = %d, want 1 reassigned from overflow", counts[domain.CategoryCardiology])
	}
	if counts[domain.CategoryOther] != 1 {
		t.Errorf("other = %d, want the zero-signal record", counts[domain.CategoryOther])
	}
}

func TestBatchProcessor_ExternalRepairFeedsClassification(t *testing.T) {
	resolver := titleResolver{title: "Myocardial infarction registry analysis"}
	p := processor.NewBatchProcessor(newBatchClassifier(t), resolver, nil, 2, logging.NewNop())

	// Author-list title with nothing promotable locally: only the external
	// lookup can produce a classifiable title.
	records := []*domain.RawRecord{
		{ID: "r1", Title: "Smith J, Lee K, Gupta R"},
	}

	labeled, _ := p.Process(context.Background(), records, -1)
	if len(labeled) != 1 {
		t.Fatalf("len = %d, want 1", len(labeled))
	}
	if labeled[0].Category != domain.CategoryCardiology {
		t.Errorf("Category = %q, want %q via repaired title", labeled[0].Category, domain.CategoryCardiology)
	}
}

func TestBatchProcessor_LookupFailureDegradesGracefully(t *testing.T) {
	p := processor.NewBatchProcessor(newBatchClassifier(t), failingResolver{}, nil, 2, logging.NewNop())

	records := []*domain.RawRecord{
		{ID: "r1", Title: "Smith J, Lee K, Gupta R"},
		{ID: "r2", Title: "Dialysis access in chronic kidney disease"},
	}

	labeled, _ := p.Process(context.Background(), records, -1)

	// The unrepaired author-list record still flows through; the healthy
	// record classifies normally.
	if len(labeled) != 2 {
		t.Fatalf("len = %d, want 2", len(labeled))
	}
	if labeled[1].Category != domain.CategoryNephrology {
		t.Errorf("healthy record = %q, want %q", labeled[1].Category, domain.CategoryNephrology)
	}
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	p := processor.NewBatchProcessor(newBatchClassifier(t), lookup.NopResolver{}, nil, 2, logging.NewNop())

	if labeled, _ := p.Process(context.Background(), nil, -1); len(labeled) != 0 {
		t.Errorf("len = %d, want 0", len(labeled))
	}
}
