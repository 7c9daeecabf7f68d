package domain

import (
	"encoding/json"
	"strings"
)

// RawRecord is the schema-optional publication record shape consumed from
// external collaborators. Upstream imports are inconsistent: authors and
// subjects arrive as a single string, a list of strings, or a list of
// structured sub-objects, and any field may be absent. All variant handling
// happens in FlexStrings; nothing here ever fails on a malformed field.
type RawRecord struct {
	ID       string      `json:"id,omitempty"`
	Title    string      `json:"title,omitempty"`
	Venue    string      `json:"venue,omitempty"`
	Authors  FlexStrings `json:"authors,omitempty"`
	Subjects FlexStrings `json:"subjects,omitempty"`
	URL      string      `json:"url,omitempty"`
	Year     int         `json:"year,omitempty"`
	Month    int         `json:"month,omitempty"`
}

// FlexStrings decodes a JSON value that may be a single string, a list of
// strings, or a list of objects carrying the value under a well-known key.
// Unexpected shapes decode to an empty list rather than failing the record.
type FlexStrings []string

// objectValueKeys are the keys tried, in order, when a list element is a
// structured sub-object ({"name": "..."} for authors, {"subject": "..."} or
// {"term": "..."} for tag lists).
var objectValueKeys = []string{"name", "full_name", "title", "subject", "keyword", "tag", "term", "value"}

// UnmarshalJSON implements the tolerant decoding described above.
func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	*f = nil

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) != "" {
			*f = FlexStrings{single}
		}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		// Wrong type entirely (number, object, bool): coerce to empty.
		return nil
	}

	out := make(FlexStrings, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		for _, key := range objectValueKeys {
			if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
				out = append(out, v)
				break
			}
		}
	}
	if len(out) > 0 {
		*f = out
	}
	return nil
}

// Join returns the list joined with the given separator.
func (f FlexStrings) Join(sep string) string {
	return strings.Join(f, sep)
}

// Empty reports whether the record carries no usable text at all.
func (r *RawRecord) Empty() bool {
	if r == nil {
		return true
	}
	return strings.TrimSpace(r.Title) == "" &&
		strings.TrimSpace(r.Venue) == "" &&
		strings.TrimSpace(r.URL) == "" &&
		len(r.Authors) == 0
}

// Publication bounds for year/month sanity checks.
const (
	MinYear  = 1800
	MaxYear  = 2100
	MinMonth = 1
	MaxMonth = 12
)

// Publication is the post-disambiguation record the dashboard consumes.
// Constructed once per raw record at load time; Topic may be recomputed
// later if title/venue are repaired by an external lookup, in which case the
// repaired fields are the ones classified.
type Publication struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title"`
	Venue    string   `json:"venue,omitempty"`
	Authors  []string `json:"authors,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
	URL      string   `json:"url,omitempty"`
	Year     int      `json:"year,omitempty"`
	Month    int      `json:"month,omitempty"`
	Topic    Category `json:"topic"`
}

// NewPublication builds a Publication from a raw record, deduplicating
// authors and subjects case-insensitively (first occurrence wins) and
// dropping out-of-range year/month values. The Topic field is left unset.
func NewPublication(raw *RawRecord) *Publication {
	pub := &Publication{
		ID:       raw.ID,
		Title:    strings.TrimSpace(raw.Title),
		Venue:    strings.TrimSpace(raw.Venue),
		Authors:  DistinctFold(raw.Authors),
		Subjects: DistinctFold(raw.Subjects),
		URL:      strings.TrimSpace(raw.URL),
	}
	if raw.Year >= MinYear && raw.Year <= MaxYear {
		pub.Year = raw.Year
	}
	if raw.Month >= MinMonth && raw.Month <= MaxMonth {
		pub.Month = raw.Month
	}
	return pub
}

// DistinctFold returns the input with blanks removed and duplicates dropped
// by case-insensitive key, preserving first-occurrence order.
func DistinctFold(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
