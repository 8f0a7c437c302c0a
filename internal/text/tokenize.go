package text

import "strings"

// singularDenyList holds stems that naive plural stripping would mangle.
// "mas" must not become "ma", "pais" must not become "pai", and so on.
var singularDenyList = map[string]struct{}{
	"pai":   {},
	"mai":   {},
	"apo":   {},
	"atra":  {},
	"gra":   {},
	"onibu": {},
}

// Tokenize normalizes text and splits it into comparable tokens. Tokens of
// length two or less are dropped; a trailing "s" is stripped as a simple
// singularization unless the result lands in the deny list.
func Tokenize(s string) []string {
	fields := strings.Fields(Normalize(s))

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 2 {
			continue
		}
		tokens = append(tokens, singularize(f))
	}

	return tokens
}

func singularize(token string) string {
	if !strings.HasSuffix(token, "s") {
		return token
	}

	stem := strings.TrimSuffix(token, "s")
	if len(stem) < 3 {
		return token
	}
	if _, deny := singularDenyList[stem]; deny {
		return token
	}

	return stem
}
