// Package normalize turns provider-specific player names and team codes into
// a canonical form that can be compared across data sources.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// generational suffixes removed when they are the trailing token.
var suffixes = map[string]struct{}{
	"jr":  {},
	"sr":  {},
	"ii":  {},
	"iii": {},
	"iv":  {},
	"v":   {},
}

// punctuation dropped from names before tokenising.
var namePunctuation = strings.NewReplacer(
	".", "",
	"'", "",
	"’", "",
	"‘", "",
	"`", "",
	"-", "",
	",", "",
)

// Name returns the canonical comparable form of a player name.
//
// The result is lower-case, free of diacritics and name punctuation, single
// spaced, and has no trailing generational suffix. Name is idempotent.
func Name(raw string) string {
	s := stripMarks(strings.ToLower(raw))
	s = namePunctuation.Replace(s)

	tokens := strings.Fields(s)
	for len(tokens) > 1 {
		if _, ok := suffixes[tokens[len(tokens)-1]]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// stripMarks removes combining marks after canonical decomposition.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
