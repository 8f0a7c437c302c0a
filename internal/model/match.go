package model

import "sort"

// CategoryMatch represents how strongly a query matched one indexed category.
// Score is a cumulative additive signal and is deliberately not normalized to
// [0,1]; long, evidence-rich matches can and should exceed 1.
type CategoryMatch struct {
	CategoryID      string   `json:"categoryId"`
	CategoryName    string   `json:"categoryName"`
	SubCategoryID   string   `json:"subCategoryId,omitempty"`
	SubCategoryName string   `json:"subCategoryName,omitempty"`
	MatchedTerms    []string `json:"matchedTerms,omitempty"`
	Score           float64  `json:"score"`
}

// Matches is a slice of CategoryMatch with ranking helpers.
type Matches []CategoryMatch

// Sort orders matches by score descending. Equal scores keep their original
// order, so the first-indexed category wins ties.
func (m Matches) Sort() {
	sort.SliceStable(m, func(i, j int) bool {
		return m[i].Score > m[j].Score
	})
}

// Top returns the highest-scoring match, or nil if empty.
func (m Matches) Top() *CategoryMatch {
	if len(m) == 0 {
		return nil
	}
	m.Sort()
	return &m[0]
}

// TopN returns the N highest-scoring matches.
func (m Matches) TopN(n int) Matches {
	if n <= 0 {
		return Matches{}
	}

	m.Sort()

	if n > len(m) {
		n = len(m)
	}

	result := make(Matches, n)
	copy(result, m[:n])
	return result
}

// AboveThreshold returns all matches with scores at or above the threshold.
func (m Matches) AboveThreshold(threshold float64) Matches {
	m.Sort()

	var result Matches
	for _, match := range m {
		if match.Score >= threshold {
			result = append(result, match)
		}
	}
	return result
}
