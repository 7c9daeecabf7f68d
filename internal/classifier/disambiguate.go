package classifier

import (
	"regexp"
	"strings"

	"github.com/pubdash/classifier/internal/domain"
)

// Upstream imports sometimes serialize the citation's author list into the
// title field, leaving the real title stranded in the venue field and the
// author list empty. Disambiguate detects that shape and repairs the
// assignment. It is best-effort: malformed input never panics, and absence
// of a clean resolution leaves the fields untouched.

const (
	// authorPartRatio is the fraction of comma-separated parts that must look
	// like personal names before the title is treated as an author list.
	authorPartRatio = 0.6
	// minAuthorParts is the absolute minimum of name-shaped parts.
	minAuthorParts = 2
	// minProseTitleLen guards venue promotion: anything shorter is more
	// likely an abbreviation or venue name than displaced title prose.
	minProseTitleLen = 20
)

var (
	// personNameRe matches "Surname" optionally followed by one to three
	// capitalized initials, with or without periods: "Smith", "Smith J",
	// "Smith J.K.", "van der Berg A B".
	personNameRe = regexp.MustCompile(`^\p{Lu}[\p{L}'\-]+(?:\s+\p{Lu}\.?){0,3}\.?$`)

	// nameParticleRe strips lower-case particles before the shape test so
	// "van der Berg" and "de Souza" still register as names.
	nameParticleRe = regexp.MustCompile(`^(?:(?:van|von|der|den|de|del|della|di|da|le|la|el|al)\s+)+`)

	// authorSeparatorRe splits a serialized author blob on the separators
	// observed in the wild: semicolons, commas, pipes, slashes, "and", "&",
	// en/em dashes, colons, and runs of two or more spaces.
	authorSeparatorRe = regexp.MustCompile(`\s*(?:;|,|\||/|\band\b|&|\x{2013}|\x{2014}|:|\s{2,})\s*`)

	// lowercaseRunRe detects prose: real titles contain lowercase word runs,
	// author lists and acronym venue names rarely do.
	lowercaseRunRe = regexp.MustCompile(`\p{Ll}{3,}`)
)

// Disambiguate repairs a record whose title field holds a serialized author
// list. When authors are already present, or the title does not have the
// author-list shape, everything passes through unchanged. The repair is a
// fixed point: applying it to its own output changes nothing.
func Disambiguate(rawTitle, rawVenue string, authors []string) (title, venue string, outAuthors []string) {
	title, venue, outAuthors = rawTitle, rawVenue, authors

	if len(authors) > 0 {
		return title, venue, outAuthors
	}
	cleanTitle := strings.TrimSpace(rawTitle)
	if cleanTitle == "" || !LooksLikeAuthorList(cleanTitle) {
		return title, venue, outAuthors
	}

	recovered := SplitAuthors(cleanTitle)
	if len(recovered) < minAuthorParts {
		return title, venue, outAuthors
	}
	outAuthors = recovered

	if promotable(rawVenue) {
		title = strings.TrimSpace(rawVenue)
		venue = ""
	}
	return title, venue, outAuthors
}

// LooksLikeAuthorList reports whether s splits on commas into two or more
// parts of which at least 60% (and at least two) have a personal-name shape.
func LooksLikeAuthorList(s string) bool {
	parts := strings.Split(s, ",")
	if len(parts) < minAuthorParts {
		return false
	}

	nameShaped := 0
	total := 0
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		total++
		if isPersonName(p) {
			nameShaped++
		}
	}
	if total < minAuthorParts || nameShaped < minAuthorParts {
		return false
	}
	return float64(nameShaped) >= authorPartRatio*float64(total)
}

// SplitAuthors re-splits a serialized author blob on conjunction and
// separator punctuation, returning distinct trimmed names in order.
func SplitAuthors(s string) []string {
	parts := authorSeparatorRe.Split(s, -1)
	return domain.DistinctFold(parts)
}

// promotable reports whether displaced venue text looks like real title
// prose: long enough, and containing lowercase alphabetic runs.
func promotable(venue string) bool {
	v := strings.TrimSpace(venue)
	return len(v) > minProseTitleLen && lowercaseRunRe.MatchString(v)
}

func isPersonName(part string) bool {
	part = nameParticleRe.ReplaceAllString(part, "")
	return personNameRe.MatchString(part)
}
