package classifier

import (
	"regexp"
	"strings"

	"github.com/pubdash/classifier/internal/domain"
)

var (
	// doiRe matches a DOI-shaped substring: registrant prefix "10." plus 4-9
	// digits, then a slash and the publisher-assigned suffix.
	doiRe = regexp.MustCompile(`10\.\d{4,9}/[^\s"<>]+`)

	// urlRe matches explicit URLs and bare DOI-resolver references embedded
	// in free-text citations.
	urlRe = regexp.MustCompile(`(?i)(?:https?://\S+|www\.\S+|(?:dx\.)?doi\.org/\S+)`)

	// sentencePeriodRe detects a sentence-ending period: a period followed by
	// whitespace and more text. Author lists use "Smith J." style initials,
	// which never put a full stop before the first comma.
	sentencePeriodRe = regexp.MustCompile(`\.\s+\S`)

	// authorListShapeRe is the coarse "Name, Name, ..." shape used to route
	// free-text input to the author component of the haystack.
	authorListShapeRe = regexp.MustCompile(`^[\p{Lu}][\p{L}'\-. ]+,(?:\s*[\p{Lu}][\p{L}'\-. ]+,?)+$`)
)

// TokenizeText derives a token bundle from a free-text string: a raw
// citation, a bare DOI, a URL, or an author-list blob. URL/DOI portions and
// the remaining text are routed independently; either or both may be absent.
func TokenizeText(input string) domain.TokenBundle {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return domain.TokenBundle{}
	}

	var urlParts []string
	rest := trimmed

	if matches := urlRe.FindAllString(rest, -1); len(matches) > 0 {
		urlParts = append(urlParts, matches...)
		rest = strings.TrimSpace(urlRe.ReplaceAllString(rest, " "))
	}
	if matches := doiRe.FindAllString(rest, -1); len(matches) > 0 {
		urlParts = append(urlParts, matches...)
		rest = strings.TrimSpace(doiRe.ReplaceAllString(rest, " "))
	}

	var authorsText, extraText string
	if looksLikeAuthorListText(rest) {
		authorsText = rest
	} else {
		extraText = rest
	}

	return buildBundle(strings.Join(urlParts, " "), extraText, authorsText)
}

// TokenizeRecord derives a token bundle from a structured record: the URL,
// the joined title and venue, and the author list are the three components.
func TokenizeRecord(rec *domain.RawRecord) domain.TokenBundle {
	if rec.Empty() {
		return domain.TokenBundle{}
	}

	extra := strings.TrimSpace(strings.TrimSpace(rec.Title) + " " + strings.TrimSpace(rec.Venue))
	return buildBundle(rec.URL, extra, rec.Authors.Join(", "))
}

// buildBundle assembles the normalized haystack from the cleaned URL remnant,
// extra text, and author text, then extracts the DOI registrant prefix.
func buildBundle(urlPart, extraPart, authorsPart string) domain.TokenBundle {
	cleanURL := Normalize(urlPart)
	cleanExtra := Normalize(extraPart)
	cleanAuthors := Normalize(authorsPart)

	parts := make([]string, 0, 3)
	for _, p := range []string{cleanURL, cleanExtra, cleanAuthors} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	bundle := domain.TokenBundle{
		Haystack: strings.Join(parts, " "),
		Authors:  cleanAuthors,
	}

	if m := doiRe.FindString(bundle.Haystack); m != "" {
		if idx := strings.IndexByte(m, '/'); idx > 0 {
			bundle.DOIPrefix = strings.ToLower(m[:idx])
		}
	}

	return bundle
}

// looksLikeAuthorListText reports whether free text has the comma-delimited
// "Name, Name, ..." shape with no sentence-ending period before the first
// comma. Prose titles fail the shape match; citation sentences fail the
// period check.
func looksLikeAuthorListText(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	firstComma := strings.IndexByte(s, ',')
	if firstComma < 0 {
		return false
	}
	if sentencePeriodRe.MatchString(s[:firstComma]) {
		return false
	}
	return authorListShapeRe.MatchString(s)
}
