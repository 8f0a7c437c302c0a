package learning

import "github.com/gastobot/gastobot/internal/text"

// genericLabels are catch-all category names that carry no real signal.
// Learning a synonym against one of these would pollute the store.
var genericLabels = map[string]struct{}{
	"outro":    {},
	"outros":   {},
	"outra":    {},
	"outras":   {},
	"geral":    {},
	"gerais":   {},
	"diverso":  {},
	"diversos": {},
	"other":    {},
	"others":   {},
	"general":  {},
}

// IsGenericLabel reports whether a category or subcategory name is a
// generic catch-all like "Outros" or "Geral".
func IsGenericLabel(name string) bool {
	_, ok := genericLabels[text.Normalize(name)]
	return ok
}
