package learning

import (
	"strconv"
	"strings"

	"github.com/gastobot/gastobot/internal/model"
	"github.com/gastobot/gastobot/internal/text"
)

const (
	// containmentScore is assigned when one name contains the other.
	containmentScore = 0.9
	// fuzzyThreshold is the minimum Levenshtein similarity for a match.
	fuzzyThreshold = 0.65
	// maxCorrectionMatches caps how many candidates a user is asked to
	// choose between.
	maxCorrectionMatches = 5
)

// parseSelection interprets a reply as a 1-based numeric selection.
func parseSelection(reply string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil {
		return 0, false
	}
	return n, true
}

// fuzzyScore compares two names: exact normalized equality scores 1.0,
// containment either way scores 0.9, anything else falls back to
// 1 − editDistance/maxLen.
func fuzzyScore(input, candidate string) float64 {
	a := text.Normalize(input)
	b := text.Normalize(candidate)

	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}
	if strings.Contains(b, a) || strings.Contains(a, b) {
		return containmentScore
	}
	return similarity(a, b)
}

// FindCategoryMatches resolves free-text correction input against the
// user's category list. Input may name a category, a subcategory, or use
// the "Category > Subcategory" form. Results are capped at five candidates,
// best first.
func FindCategoryMatches(input string, categories []model.UserCategory) model.Matches {
	catPart := input
	subPart := ""

	if idx := strings.Index(input, ">"); idx >= 0 {
		catPart = strings.TrimSpace(input[:idx])
		subPart = strings.TrimSpace(input[idx+1:])
	}

	var matches model.Matches
	for i := range categories {
		cat := &categories[i]

		score := scoreCandidate(catPart, subPart, cat)
		if score < fuzzyThreshold {
			continue
		}

		match := model.CategoryMatch{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Score:        score,
		}
		if cat.SubCategory != nil {
			match.SubCategoryID = cat.SubCategory.ID
			match.SubCategoryName = cat.SubCategory.Name
		}
		matches = append(matches, match)
	}

	matches.Sort()
	if len(matches) > maxCorrectionMatches {
		matches = matches[:maxCorrectionMatches]
	}

	return matches
}

// scoreCandidate scores one indexed entry against the parsed correction.
// With an explicit "Category > Subcategory" both halves must agree; plain
// input matches the better of name and subcategory name.
func scoreCandidate(catPart, subPart string, cat *model.UserCategory) float64 {
	if subPart != "" {
		if cat.SubCategory == nil {
			return 0
		}
		catScore := fuzzyScore(catPart, cat.Name)
		subScore := fuzzyScore(subPart, cat.SubCategory.Name)
		if catScore < fuzzyThreshold || subScore < fuzzyThreshold {
			return 0
		}
		return (catScore + subScore) / 2
	}

	score := fuzzyScore(catPart, cat.Name)
	if cat.SubCategory != nil {
		if subScore := fuzzyScore(catPart, cat.SubCategory.Name); subScore > score {
			score = subScore
		}
	}
	return score
}
