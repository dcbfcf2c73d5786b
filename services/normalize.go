package services

import (
	"regexp"
	"strings"
)

var (
	// stopWordRegexp matches articles and domain filler words that carry
	// no matching signal in listing titles.
	stopWordRegexp = regexp.MustCompile(`\b(the|a|an|series|edition|limited|secret)\b`)
	// dashRegexp matches separators sellers use interchangeably with spaces
	dashRegexp = regexp.MustCompile(`[-_]`)
	// nonWordRegexp matches everything except letters, digits and spaces
	nonWordRegexp = regexp.MustCompile(`[^a-z0-9\s]`)
	// spaceRegexp collapses runs of whitespace
	spaceRegexp = regexp.MustCompile(`\s+`)
)

// Normalize produces the canonical comparison form of a title or item
// name: lower-cased, stop words stripped, hyphens/underscores treated as
// spaces, all other punctuation removed, whitespace collapsed.
// It is total and idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = stopWordRegexp.ReplaceAllString(s, "")
	s = dashRegexp.ReplaceAllString(s, " ")
	s = nonWordRegexp.ReplaceAllString(s, "")
	s = spaceRegexp.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// significantTokens splits a normalized string into its matching tokens,
// dropping short words that would cause false positives.
func significantTokens(normalized string, minLen int) []string {
	var tokens []string
	for _, w := range strings.Fields(normalized) {
		if len(w) > minLen {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// tokenSet builds a membership set over the whole tokens of a normalized
// string. Matching against it is token-boundary exact: "cat" is present
// in "sonny angel cat" but not in "sonny angel category".
func tokenSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		set[w] = struct{}{}
	}
	return set
}
