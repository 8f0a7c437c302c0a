// Package text normalizes and tokenizes Portuguese-oriented free text so
// queries and category names compare on equal footing.
package text

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// stripMarks removes combining marks after canonical decomposition, so
// "Combustível" and "combustivel" normalize to the same string.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, strips diacritics, replaces non-word characters
// with spaces and collapses whitespace. Total on any input.
func Normalize(s string) string {
	s = strings.ToLower(s)

	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}

	s = nonWord.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
