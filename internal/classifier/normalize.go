package classifier

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentStripper removes combining diacritical marks after NFD decomposition,
// so "Médecine" and "Medecine" normalize to the same haystack text.
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	// Proxy-login wrappers and DOI-resolver hosts carry no classification
	// signal; the remnant path often does (journal slugs, DOI suffixes).
	proxyPrefixRe = regexp.MustCompile(`(?:https?://)?(?:login\.|ezproxy\.|proxy\.)[^/\s]*/login\?(?:qurl|url)=`)
	doiResolverRe = regexp.MustCompile(`(?:https?://)?(?:dx\.)?doi\.org/`)
	schemeRe      = regexp.MustCompile(`^https?://`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// characterReplacer folds Unicode dash and quote variants and the HTML
// entities common in scraped metadata down to their ASCII forms.
var characterReplacer = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"&quot;", `"`,
	"&#39;", "'",
)

// maxEntityPasses bounds the &amp; unescape loop; imports occasionally
// double-encode ampersands and a single pass would not reach a fixed point.
const maxEntityPasses = 4

// Normalize canonicalizes a raw metadata string into matchable haystack text:
// lower-cased, accents stripped, dash/quote/entity variants folded, proxy and
// DOI-resolver URL prefixes removed, whitespace collapsed. It is idempotent.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	for i := 0; i < maxEntityPasses && strings.Contains(s, "&amp;"); i++ {
		s = strings.ReplaceAll(s, "&amp;", "&")
	}
	s = characterReplacer.Replace(s)

	if stripped, _, err := transform.String(accentStripper, s); err == nil {
		s = stripped
	}

	s = proxyPrefixRe.ReplaceAllString(s, "")
	s = doiResolverRe.ReplaceAllString(s, "")
	s = schemeRe.ReplaceAllString(s, "")

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
