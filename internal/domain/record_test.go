package domain_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/pubdash/classifier/internal/domain"
)

func TestFlexStrings_DecodesAllShapes(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want domain.FlexStrings
	}{
		{
			name: "single string",
			in:   `"Smith J"`,
			want: domain.FlexStrings{"Smith J"},
		},
		{
			name: "string list",
			in:   `["Smith J", "Lee K"]`,
			want: domain.FlexStrings{"Smith J", "Lee K"},
		},
		{
			name: "object list with name key",
			in:   `[{"name": "Smith J"}, {"name": "Lee K"}]`,
			want: domain.FlexStrings{"Smith J", "Lee K"},
		},
		{
			name: "subject objects with term key",
			in:   `[{"term": "oncology"}, {"term": "genetics"}]`,
			want: domain.FlexStrings{"oncology", "genetics"},
		},
		{
			name: "mixed strings and objects",
			in:   `["Smith J", {"name": "Lee K"}]`,
			want: domain.FlexStrings{"Smith J", "Lee K"},
		},
		{
			name: "blank entries dropped",
			in:   `["", "  ", "Smith J"]`,
			want: domain.FlexStrings{"Smith J"},
		},
		{
			name: "unexpected shape coerces to empty",
			in:   `42`,
			want: nil,
		},
		{
			name: "objects without known keys skipped",
			in:   `[{"orcid": "0000-0001"}]`,
			want: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got domain.FlexStrings
			if err := json.Unmarshal([]byte(tc.in), &got); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tc.in, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Unmarshal(%s) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestRawRecord_Empty(t *testing.T) {
	var nilRecord *domain.RawRecord
	if !nilRecord.Empty() {
		t.Error("nil record should be empty")
	}
	if !(&domain.RawRecord{Year: 2024}).Empty() {
		t.Error("record with only a year should be empty")
	}
	if (&domain.RawRecord{URL: "https://doi.org/10.1000/x"}).Empty() {
		t.Error("record with a URL is not empty")
	}
}

func TestNewPublication(t *testing.T) {
	pub := domain.NewPublication(&domain.RawRecord{
		ID:       "rec-1",
		Title:    "  Heart failure outcomes  ",
		Venue:    "Circulation",
		Authors:  domain.FlexStrings{"Smith J", "smith j", "", "Lee K"},
		Subjects: domain.FlexStrings{"Cardiology", "cardiology"},
		Year:     2024,
		Month:    13,
	})

	if pub.Title != "Heart failure outcomes" {
		t.Errorf("Title = %q", pub.Title)
	}
	if !reflect.DeepEqual(pub.Authors, []string{"Smith J", "Lee K"}) {
		t.Errorf("Authors = %v, want case-insensitive dedupe", pub.Authors)
	}
	if !reflect.DeepEqual(pub.Subjects, []string{"Cardiology"}) {
		t.Errorf("Subjects = %v", pub.Subjects)
	}
	if pub.Year != 2024 {
		t.Errorf("Year = %d", pub.Year)
	}
	if pub.Month != 0 {
		t.Errorf("Month = %d, want out-of-range month dropped", pub.Month)
	}
	if pub.Topic != "" {
		t.Errorf("Topic = %q, want unset", pub.Topic)
	}
}

func TestNewPublication_YearBounds(t *testing.T) {
	pub := domain.NewPublication(&domain.RawRecord{Title: "x", Year: 1507})
	if pub.Year != 0 {
		t.Errorf("Year = %d, want out-of-range year dropped", pub.Year)
	}
}
