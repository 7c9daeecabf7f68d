package classifier_test

import (
	"reflect"
	"testing"

	"github.com/pubdash/classifier/internal/classifier"
)

func TestDisambiguate_RepairsSwappedFields(t *testing.T) {
	title, venue, authors := classifier.Disambiguate(
		"Smith J, Lee K, Gupta R",
		"Diabetes mellitus and glycemic control outcomes",
		nil,
	)

	if title != "Diabetes mellitus and glycemic control outcomes" {
		t.Errorf("title = %q, want the displaced venue text", title)
	}
	if venue != "" {
		t.Errorf("venue = %q, want empty after promotion", venue)
	}
	want := []string{"Smith J", "Lee K", "Gupta R"}
	if !reflect.DeepEqual(authors, want) {
		t.Errorf("authors = %v, want %v", authors, want)
	}
}

func TestDisambiguate_NoopCases(t *testing.T) {
	testCases := []struct {
		name    string
		title   string
		venue   string
		authors []string
	}{
		{
			name:    "authors already present",
			title:   "Smith J, Lee K, Gupta R",
			venue:   "Diabetes mellitus and glycemic control outcomes",
			authors: []string{"Existing A"},
		},
		{
			name:  "prose title",
			title: "Glycemic control, insulin timing, and outcomes in type 2 diabetes",
			venue: "Diabetes Care",
		},
		{
			name:  "single name is not a list",
			title: "Smith J",
			venue: "Some long prose text that could be a displaced title",
		},
		{
			name:  "empty title",
			title: "",
			venue: "Diabetes Care",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			title, venue, authors := classifier.Disambiguate(tc.title, tc.venue, tc.authors)
			if title != tc.title || venue != tc.venue {
				t.Errorf("fields changed: title %q venue %q", title, venue)
			}
			if len(authors) != len(tc.authors) {
				t.Errorf("authors changed: %v", authors)
			}
		})
	}
}

func TestDisambiguate_ShortVenueNotPromoted(t *testing.T) {
	title, venue, authors := classifier.Disambiguate("Smith J, Lee K, Gupta R", "BMJ Open", nil)

	// The author list is still recovered, but "BMJ Open" is too short and
	// acronym-like to be displaced title prose, so the fields stay put.
	if len(authors) != 3 {
		t.Fatalf("authors = %v, want 3 recovered names", authors)
	}
	if title != "Smith J, Lee K, Gupta R" {
		t.Errorf("title = %q, want original", title)
	}
	if venue != "BMJ Open" {
		t.Errorf("venue = %q, want original", venue)
	}
}

func TestDisambiguate_ParticleSurnames(t *testing.T) {
	_, _, authors := classifier.Disambiguate("van der Berg A, de Souza M, O'Brien K", "A study of postoperative outcomes after elective surgery", nil)

	want := []string{"van der Berg A", "de Souza M", "O'Brien K"}
	if !reflect.DeepEqual(authors, want) {
		t.Errorf("authors = %v, want %v", authors, want)
	}
}

// Applying the repair to its own output must change nothing.
func TestDisambiguate_Idempotent(t *testing.T) {
	title, venue, authors := classifier.Disambiguate(
		"Smith J, Lee K, Gupta R",
		"Diabetes mellitus and glycemic control outcomes",
		nil,
	)

	title2, venue2, authors2 := classifier.Disambiguate(title, venue, authors)
	if title2 != title || venue2 != venue || !reflect.DeepEqual(authors2, authors) {
		t.Errorf("second pass changed output: title %q venue %q authors %v", title2, venue2, authors2)
	}
}

func TestLooksLikeAuthorList(t *testing.T) {
	testCases := []struct {
		input    string
		expected bool
	}{
		{"Smith J, Lee K, Gupta R", true},
		{"Smith J.K., Lee K., van der Berg A", true},
		{"Glycemic control, insulin timing, and outcomes", false},
		{"Smith J", false},
		{"", false},
		{"COVID-19 response, long-term care, policy review", false},
	}

	for _, tc := range testCases {
		if got := classifier.LooksLikeAuthorList(tc.input); got != tc.expected {
			t.Errorf("LooksLikeAuthorList(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestSplitAuthors_Separators(t *testing.T) {
	got := classifier.SplitAuthors("Smith J; Lee K and Gupta R & Chen L")
	want := []string{"Smith J", "Lee K", "Gupta R", "Chen L"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitAuthors = %v, want %v", got, want)
	}
}
