package classifier_test

import (
	"testing"

	"github.com/pubdash/classifier/internal/classifier"
	"github.com/pubdash/classifier/internal/domain"
)

func overflowRecord(title string, alt domain.Category, altScore int) domain.LabeledRecord {
	scores := domain.ScoreMap{}
	if altScore > 0 {
		for i := 0; i < altScore; i++ {
			scores.Add(alt, 1, "doi:10.0000")
		}
	}
	return domain.LabeledRecord{
		Category: domain.CategoryOther,
		Record:   &domain.Publication{Title: title, Topic: domain.CategoryOther},
		Scores:   scores,
	}
}

func assignedRecord(title string, cat domain.Category) domain.LabeledRecord {
	scores := domain.ScoreMap{}
	scores.Add(cat, 3, "venue:test")
	return domain.LabeledRecord{
		Category: cat,
		Record:   &domain.Publication{Title: title, Topic: cat},
		Scores:   scores,
	}
}

func TestRebalance_CapsOverflow(t *testing.T) {
	labeled := []domain.LabeledRecord{
		assignedRecord("a", domain.CategoryOncology),
		overflowRecord("b", domain.CategoryCardiology, 1),
		overflowRecord("c", domain.CategoryNeurology, 1),
		overflowRecord("d", domain.CategoryImaging, 1),
	}

	moved := classifier.Rebalance(labeled, 1)
	if moved != 2 {
		t.Fatalf("moved = %d, want 2", moved)
	}

	overflow := 0
	for _, l := range labeled {
		if l.Category.IsOverflow() {
			overflow++
		}
		if l.Record.Topic != l.Category {
			t.Errorf("record %q: Topic %q out of sync with Category %q", l.Record.Title, l.Record.Topic, l.Category)
		}
	}
	if overflow != 1 {
		t.Errorf("overflow count = %d, want 1", overflow)
	}
}

func TestRebalance_NeverFabricatesSignal(t *testing.T) {
	labeled := []domain.LabeledRecord{
		overflowRecord("no signal 1", "", 0),
		overflowRecord("no signal 2", "", 0),
		overflowRecord("weak signal", domain.CategoryGastro, 1),
	}

	moved := classifier.Rebalance(labeled, 0)
	if moved != 1 {
		t.Fatalf("moved = %d, want 1", moved)
	}

	if labeled[0].Category != domain.CategoryOther || labeled[1].Category != domain.CategoryOther {
		t.Error("zero-signal records must stay in overflow")
	}
	if labeled[2].Category != domain.CategoryGastro {
		t.Errorf("weak-signal record = %q, want %q", labeled[2].Category, domain.CategoryGastro)
	}
}

func TestRebalance_NonOverflowUntouched(t *testing.T) {
	labeled := []domain.LabeledRecord{
		assignedRecord("a", domain.CategoryOncology),
		assignedRecord("b", domain.CategoryCardiology),
		overflowRecord("c", domain.CategoryNeurology, 1),
	}

	classifier.Rebalance(labeled, 0)

	if labeled[0].Category != domain.CategoryOncology || labeled[1].Category != domain.CategoryCardiology {
		t.Error("rebalance must never reassign non-overflow records")
	}
}

func TestRebalance_UnderCapIsNoop(t *testing.T) {
	labeled := []domain.LabeledRecord{
		overflowRecord("a", domain.CategoryNeurology, 2),
		overflowRecord("b", domain.CategoryImaging, 2),
	}

	if moved := classifier.Rebalance(labeled, 2); moved != 0 {
		t.Errorf("moved = %d, want 0 when overflow is within the cap", moved)
	}
	for _, l := range labeled {
		if !l.Category.IsOverflow() {
			t.Errorf("record %q reassigned despite cap headroom", l.Record.Title)
		}
	}
}

func TestRebalance_StrongestAlternativesMoveFirst(t *testing.T) {
	labeled := []domain.LabeledRecord{
		overflowRecord("weak", domain.CategoryNursing, 1),
		overflowRecord("strong", domain.CategoryCardiology, 2),
	}

	moved := classifier.Rebalance(labeled, 1)
	if moved != 1 {
		t.Fatalf("moved = %d, want 1", moved)
	}
	if labeled[1].Category != domain.CategoryCardiology {
		t.Errorf("strong candidate = %q, want %q", labeled[1].Category, domain.CategoryCardiology)
	}
	if !labeled[0].Category.IsOverflow() {
		t.Error("weak candidate should remain in overflow")
	}
}

// Example from the batch balancing contract: 15 of 20 records land in
// overflow, 10 of those have some reassignable signal, and a cap of 5 moves
// exactly those 10. The 5 zero-signal records stay put even though the cap
// arithmetic asked for them too.
func TestRebalance_SignalBoundsReassignment(t *testing.T) {
	labeled := make([]domain.LabeledRecord, 0, 20)
	for i := 0; i < 5; i++ {
		labeled = append(labeled, assignedRecord("assigned", domain.CategoryOncology))
	}
	for i := 0; i < 10; i++ {
		labeled = append(labeled, overflowRecord("weak", domain.CategoryEpidemiology, 1))
	}
	for i := 0; i < 5; i++ {
		labeled = append(labeled, overflowRecord("silent", "", 0))
	}

	moved := classifier.Rebalance(labeled, 5)
	if moved != 10 {
		t.Fatalf("moved = %d, want 10", moved)
	}

	overflow := 0
	for _, l := range labeled {
		if l.Category.IsOverflow() {
			overflow++
		}
	}
	if overflow != 5 {
		t.Errorf("overflow = %d, want the 5 zero-signal records", overflow)
	}
}
