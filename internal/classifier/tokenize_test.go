package classifier_test

import (
	"strings"
	"testing"

	"github.com/pubdash/classifier/internal/classifier"
	"github.com/pubdash/classifier/internal/domain"
)

func TestTokenizeText_BareDOI(t *testing.T) {
	bundle := classifier.TokenizeText("10.1002/abc123")

	if bundle.Empty() {
		t.Fatal("expected non-empty bundle for bare DOI")
	}
	if bundle.DOIPrefix != "10.1002" {
		t.Errorf("DOIPrefix = %q, want %q", bundle.DOIPrefix, "10.1002")
	}
	if bundle.Authors != "" {
		t.Errorf("Authors = %q, want empty", bundle.Authors)
	}
}

func TestTokenizeText_ResolverURL(t *testing.T) {
	bundle := classifier.TokenizeText("https://doi.org/10.2337/dc21-0123")

	if bundle.DOIPrefix != "10.2337" {
		t.Errorf("DOIPrefix = %q, want %q", bundle.DOIPrefix, "10.2337")
	}
	if !strings.Contains(bundle.Haystack, "10.2337/dc21-0123") {
		t.Errorf("haystack %q missing DOI path", bundle.Haystack)
	}
}

func TestTokenizeText_AuthorListRoutesToAuthors(t *testing.T) {
	bundle := classifier.TokenizeText("Smith J, Lee K, Gupta R")

	if bundle.Authors == "" {
		t.Fatal("expected author-list input routed to Authors")
	}
	if bundle.Authors != "smith j, lee k, gupta r" {
		t.Errorf("Authors = %q", bundle.Authors)
	}
}

func TestTokenizeText_CitationSentenceStaysInHaystack(t *testing.T) {
	input := "Glycemic control in type 2 diabetes. A randomized trial, with follow-up"
	bundle := classifier.TokenizeText(input)

	if bundle.Authors != "" {
		t.Errorf("prose citation routed to Authors: %q", bundle.Authors)
	}
	if !strings.Contains(bundle.Haystack, "glycemic control") {
		t.Errorf("haystack %q missing title text", bundle.Haystack)
	}
}

func TestTokenizeText_MixedURLAndTitle(t *testing.T) {
	input := "Outcomes after stroke https://doi.org/10.1212/WNL.0000000000012345"
	bundle := classifier.TokenizeText(input)

	if bundle.DOIPrefix != "10.1212" {
		t.Errorf("DOIPrefix = %q, want %q", bundle.DOIPrefix, "10.1212")
	}
	if !strings.Contains(bundle.Haystack, "outcomes after stroke") {
		t.Errorf("haystack %q missing free text", bundle.Haystack)
	}
}

func TestTokenizeText_Empty(t *testing.T) {
	if !classifier.TokenizeText("   ").Empty() {
		t.Error("expected empty bundle for whitespace input")
	}
}

func TestTokenizeRecord(t *testing.T) {
	rec := &domain.RawRecord{
		Title:   "Frailty screening in older adults",
		Venue:   "Age and Ageing",
		Authors: domain.FlexStrings{"Clegg A", "Young J"},
		URL:     "https://doi.org/10.1093/ageing/afab100",
	}
	bundle := classifier.TokenizeRecord(rec)

	if !strings.Contains(bundle.Haystack, "frailty screening in older adults") {
		t.Errorf("haystack %q missing title", bundle.Haystack)
	}
	if !strings.Contains(bundle.Haystack, "age and ageing") {
		t.Errorf("haystack %q missing venue", bundle.Haystack)
	}
	if bundle.Authors != "clegg a, young j" {
		t.Errorf("Authors = %q", bundle.Authors)
	}
	if bundle.DOIPrefix != "10.1093" {
		t.Errorf("DOIPrefix = %q, want %q", bundle.DOIPrefix, "10.1093")
	}
}

func TestTokenizeRecord_EmptyRecord(t *testing.T) {
	if !classifier.TokenizeRecord(&domain.RawRecord{}).Empty() {
		t.Error("expected empty bundle for empty record")
	}
}
