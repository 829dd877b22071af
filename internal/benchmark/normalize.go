package benchmark

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Dotted versions, v-prefixed versions and four-digit years.
	versionPattern = regexp.MustCompile(`\b(v\d+(\.\d+)*|\d+(\.\d+)+|(19|20)\d{2})\b`)
	nonAlnum       = regexp.MustCompile(`[^a-z0-9]+`)
)

// Trailing words that name the legal entity or release, not the product.
var nameSuffixes = map[string]bool{
	"inc": true, "incorporated": true, "llc": true, "ltd": true, "limited": true,
	"corp": true, "corporation": true, "co": true, "company": true, "plc": true,
	"gmbh": true, "ag": true, "sa": true, "technologies": true, "technology": true,
	"software": true, "systems": true, "solutions": true, "group": true,
	"holdings": true, "international": true, "edition": true, "version": true,
	"release": true,
}

var stopwords = map[string]bool{
	"the": true, "and": true, "of": true, "for": true, "a": true, "an": true,
	"by": true, "with": true, "to": true, "in": true, "on": true,
}

// foldDiacritics strips combining marks ("Señor Café" -> "Senor Cafe").
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeName lowercases a system or vendor name, drops version numbers
// and years, collapses punctuation and whitespace, and strips trailing
// corporate suffixes. A name is never reduced to nothing by suffix removal.
func NormalizeName(s string) string {
	n := strings.ToLower(foldDiacritics(s))
	n = versionPattern.ReplaceAllString(n, " ")
	n = nonAlnum.ReplaceAllString(n, " ")
	tokens := strings.Fields(n)
	for len(tokens) > 1 && nameSuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// NormalizeText lowercases, folds diacritics and collapses punctuation to
// single spaces. Unlike NormalizeName it keeps every word, so it suits
// free-text search over facts and descriptions.
func NormalizeText(s string) string {
	n := nonAlnum.ReplaceAllString(strings.ToLower(foldDiacritics(s)), " ")
	return strings.Join(strings.Fields(n), " ")
}

// tokenSet returns the distinct non-stopword tokens of a normalized name.
func tokenSet(normalized string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(normalized) {
		if !stopwords[tok] {
			set[tok] = true
		}
	}
	return set
}

// overlapRatio is the share of target tokens present in candidate.
func overlapRatio(candidate, target map[string]bool) float64 {
	if len(target) == 0 {
		return 0
	}
	hits := 0
	for tok := range target {
		if candidate[tok] {
			hits++
		}
	}
	return float64(hits) / float64(len(target))
}

// containsPhrase reports whether phrase appears in s on token boundaries.
// Both must already be normalized.
func containsPhrase(s, phrase string) bool {
	if s == "" || phrase == "" {
		return false
	}
	return strings.Contains(" "+s+" ", " "+phrase+" ")
}

// canonicalName turns a category key into its matchable name.
func canonicalName(category string) string {
	return NormalizeName(strings.ReplaceAll(category, "_", " "))
}

// normalizeCategory maps free-form category labels onto key form.
func normalizeCategory(s string) string {
	return strings.ReplaceAll(NormalizeName(s), " ", "_")
}
