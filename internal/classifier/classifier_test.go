package classifier_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pubdash/classifier/internal/classifier"
	"github.com/pubdash/classifier/internal/domain"
	"github.com/pubdash/classifier/internal/logging"
	"github.com/pubdash/classifier/internal/telemetry"
)

func newTestClassifier(t *testing.T) *classifier.Classifier {
	t.Helper()
	c, err := classifier.New(logging.NewNop(), classifier.DefaultRules(), classifier.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestClassifier_New_RejectsBadRules(t *testing.T) {
	rules := []domain.PatternRule{
		{ID: 1, Pattern: "anything", Category: "not-a-category", Tier: domain.TierVenue, Enabled: true},
	}
	if _, err := classifier.New(logging.NewNop(), rules, classifier.Config{}); err == nil {
		t.Error("expected error for rule with unknown category")
	}
}

func TestClassifier_ClassifyText(t *testing.T) {
	c := newTestClassifier(t)

	testCases := []struct {
		name     string
		input    string
		expected domain.Category
	}{
		{
			name:     "empty input short-circuits to overflow",
			input:    "   ",
			expected: domain.CategoryOther,
		},
		{
			name:     "unmatched text goes to overflow",
			input:    "minutes of the librarians quarterly planning meeting",
			expected: domain.CategoryOther,
		},
		{
			name:     "bare DOI alone stays under the confidence floor",
			input:    "10.1002/abc123",
			expected: domain.CategoryOther,
		},
		{
			name:     "keyword evidence clears the floor",
			input:    "Glycemic control and insulin resistance in type 2 diabetes",
			expected: domain.CategoryEndocrinology,
		},
		{
			name:     "venue fragment in a proxied URL",
			input:    "https://login.ezproxy.library.edu/login?qurl=https://bmjopen.bmj.com/content/11/2/e044",
			expected: domain.CategoryPublicHealth,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.ClassifyText(tc.input)
			if got != tc.expected {
				t.Errorf("ClassifyText(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestClassifier_ExplainText_BareDOIBreakdown(t *testing.T) {
	c := newTestClassifier(t)

	result := c.ExplainText("10.1002/abc123")
	if result.Category != domain.CategoryOther {
		t.Errorf("Category = %q, want %q", result.Category, domain.CategoryOther)
	}

	tally := result.Scores[domain.CategoryOncology]
	if tally == nil {
		t.Fatal("expected a DOI-tier tally below the floor")
	}
	if tally.Score != 1 {
		t.Errorf("Score = %d, want 1", tally.Score)
	}
	if len(tally.Reasons) != 1 || !strings.HasPrefix(tally.Reasons[0], "doi:") {
		t.Errorf("Reasons = %v, want a single doi-tier reason", tally.Reasons)
	}
}

func TestClassifier_ExplainRecord_VenueAndKeywordStack(t *testing.T) {
	c := newTestClassifier(t)

	result := c.ExplainRecord(&domain.RawRecord{
		Title: "COVID-19 outbreak response in long-term care facilities",
		Venue: "BMJ Open",
	})

	if result.Category != domain.CategoryPublicHealth {
		t.Fatalf("Category = %q, want %q", result.Category, domain.CategoryPublicHealth)
	}

	tally := result.Scores[domain.CategoryPublicHealth]
	if tally == nil {
		t.Fatal("expected public_health tally")
	}
	var hasVenue, hasKeyword bool
	for _, r := range tally.Reasons {
		if strings.HasPrefix(r, "venue:") {
			hasVenue = true
		}
		if strings.HasPrefix(r, "keyword:") {
			hasKeyword = true
		}
	}
	if !hasVenue || !hasKeyword {
		t.Errorf("Reasons = %v, want both venue and keyword provenance", tally.Reasons)
	}
	// venue "bmj open" (3) + keyword "covid" (2)
	if tally.Score < 5 {
		t.Errorf("Score = %d, want at least 5", tally.Score)
	}
}

func TestClassifier_ExplainRecord_RepairsAuthorListTitle(t *testing.T) {
	c := newTestClassifier(t)

	result := c.ExplainRecord(&domain.RawRecord{
		Title: "Smith J, Lee K, Gupta R",
		Venue: "Diabetes mellitus and glycemic control outcomes",
	})

	if result.Category != domain.CategoryEndocrinology {
		t.Errorf("Category = %q, want %q", result.Category, domain.CategoryEndocrinology)
	}
}

func TestClassifier_ExplainRecord_Nil(t *testing.T) {
	c := newTestClassifier(t)

	result := c.ExplainRecord(nil)
	if result.Category != domain.CategoryOther {
		t.Errorf("Category = %q, want overflow for nil record", result.Category)
	}
	if len(result.Scores) != 0 {
		t.Errorf("Scores = %v, want empty", result.Scores)
	}
}

func TestClassifier_ClassifyBatch_DedupeFirstWins(t *testing.T) {
	c := newTestClassifier(t)

	records := []*domain.RawRecord{
		{ID: "a", Title: "Tumor immunology in melanoma", Year: 2023},
		{ID: "b", Title: "  TUMOR Immunology   in Melanoma ", Year: 2023}, // duplicate after normalization
		{ID: "c", Title: "Tumor immunology in melanoma", Year: 2024},      // different year survives
		nil,
		{ID: "d", Venue: "Diabetes Care"}, // no resolvable title, dropped
	}

	labeled, stats := c.ClassifyBatch(records)
	if len(labeled) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(labeled), labeled)
	}
	if labeled[0].Record.ID != "a" || labeled[1].Record.ID != "c" {
		t.Errorf("kept IDs %q, %q; want first occurrence per key", labeled[0].Record.ID, labeled[1].Record.ID)
	}
	if stats.Dropped != 2 {
		t.Errorf("Dropped = %d, want the nil and titleless records", stats.Dropped)
	}
	if stats.Deduplicated != 1 {
		t.Errorf("Deduplicated = %d, want the repeated title", stats.Deduplicated)
	}
}

func TestClassifier_ClassifyBatch_CountsDroppedInMetrics(t *testing.T) {
	tel := telemetry.NewProvider()
	c, err := classifier.New(logging.NewNop(), classifier.DefaultRules(), classifier.Config{Telemetry: tel})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, stats := c.ClassifyBatch([]*domain.RawRecord{
		nil,
		{Venue: "Diabetes Care"},
		{Title: "Tumor immunology in melanoma"},
	})
	if stats.Dropped != 2 {
		t.Fatalf("Dropped = %d, want 2", stats.Dropped)
	}
	if got := testutil.ToFloat64(tel.Metrics.RecordsDropped); got != 2 {
		t.Errorf("records_dropped_total = %v, want 2", got)
	}
}

func TestClassifier_ClassifyBatch_KeepsScoresForRebalancing(t *testing.T) {
	c := newTestClassifier(t)

	labeled, _ := c.ClassifyBatch([]*domain.RawRecord{
		{Title: "Chemotherapy response in metastatic carcinoma"},
	})
	if len(labeled) != 1 {
		t.Fatalf("len = %d, want 1", len(labeled))
	}
	if len(labeled[0].Scores) == 0 {
		t.Error("expected score map retained on labeled record")
	}
	if labeled[0].Record.Topic != labeled[0].Category {
		t.Errorf("Topic %q != Category %q", labeled[0].Record.Topic, labeled[0].Category)
	}
}

func TestClassifier_ClassifyBatchBalanced(t *testing.T) {
	c := newTestClassifier(t)

	records := []*domain.RawRecord{
		{Title: "Atrial fibrillation ablation outcomes", Venue: "Circulation"},
		// DOI-only records: weight 1, below the floor, but reassignable.
		{Title: "Untitled registry report one", URL: "https://doi.org/10.1161/CIRC.1"},
		{Title: "Untitled registry report two", URL: "https://doi.org/10.1200/JCO.2"},
		// No signal at all: must stay in overflow regardless of the cap.
		{Title: "Quarterly planning meeting minutes"},
	}

	labeled, _ := c.ClassifyBatchBalanced(records, 0)
	if len(labeled) != 4 {
		t.Fatalf("len = %d, want 4", len(labeled))
	}

	counts := classifier.CountsByCategory(labeled)
	if counts[domain.CategoryCardiology] != 2 {
		t.Errorf("cardiology = %d, want 2 (direct + reassigned)", counts[domain.CategoryCardiology])
	}
	if counts[domain.CategoryOncology] != 1 {
		t.Errorf("oncology = %d, want 1 reassigned", counts[domain.CategoryOncology])
	}
	if counts[domain.CategoryOther] != 1 {
		t.Errorf("other = %d, want the zero-signal record", counts[domain.CategoryOther])
	}
}

func TestClassifier_ClassifyBatch_Deterministic(t *testing.T) {
	c := newTestClassifier(t)

	records := []*domain.RawRecord{
		{Title: "Cytokine storms and T cell exhaustion"},
		{Title: "Genome-wide association of retinal disease"},
		{Title: "Dialysis access in chronic kidney disease"},
	}

	first, _ := c.ClassifyBatch(records)
	for i := 0; i < 20; i++ {
		again, _ := c.ClassifyBatch(records)
		for j := range first {
			if again[j].Category != first[j].Category {
				t.Fatalf("run %d record %d: %q != %q", i, j, again[j].Category, first[j].Category)
			}
		}
	}
}

func TestClassifier_UpdateRules(t *testing.T) {
	c := newTestClassifier(t)

	input := "Proceedings of the annual budget committee"
	if got := c.ClassifyText(input); got != domain.CategoryOther {
		t.Fatalf("precondition failed: %q classified as %q", input, got)
	}

	err := c.UpdateRules([]domain.PatternRule{
		{ID: 1, Pattern: "budget committee", Category: domain.CategoryHealthPolicy, Tier: domain.TierVenue, Enabled: true},
	})
	if err != nil {
		t.Fatalf("UpdateRules: %v", err)
	}

	if got := c.ClassifyText(input); got != domain.CategoryHealthPolicy {
		t.Errorf("after reload: %q, want %q", got, domain.CategoryHealthPolicy)
	}

	// A bad table must be rejected and the previous table kept serving.
	err = c.UpdateRules([]domain.PatternRule{
		{ID: 1, Pattern: "x", Category: "bogus", Tier: domain.TierVenue, Enabled: true},
	})
	if err == nil {
		t.Fatal("expected error for invalid replacement table")
	}
	if got := c.ClassifyText(input); got != domain.CategoryHealthPolicy {
		t.Errorf("after failed reload: %q, want previous table intact", got)
	}
}

func TestCountsByCategory_ZeroInitialized(t *testing.T) {
	counts := classifier.CountsByCategory(nil)

	if len(counts) != len(domain.Categories()) {
		t.Fatalf("len = %d, want %d", len(counts), len(domain.Categories()))
	}
	for cat, n := range counts {
		if n != 0 {
			t.Errorf("%q = %d, want 0", cat, n)
		}
	}
}

func BenchmarkClassifyRecord(b *testing.B) {
	c, err := classifier.New(logging.NewNop(), classifier.DefaultRules(), classifier.Config{})
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	rec := &domain.RawRecord{
		Title:   "Glycemic control and cardiovascular outcomes in type 2 diabetes",
		Venue:   "Diabetes Care",
		Authors: domain.FlexStrings{"Holman RR", "Zinman B"},
		URL:     "https://doi.org/10.2337/dc21-0123",
		Year:    2023,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.ClassifyRecord(rec)
	}
}
