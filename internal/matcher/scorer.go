package matcher

// Simplified BM25 parameters. IDF is pinned at 1.0 because each user's
// corpus is tens of category entries, not a document collection; real IDF
// at that scale is noise. The average document length is assumed rather
// than measured for the same reason.
const (
	bm25K1       = 1.2
	bm25B        = 0.75
	avgDocLength = 3.0
	fixedIDF     = 1.0
)

// bm25Score computes the term-overlap score between query tokens and
// document tokens. The sum is intentionally not divided by query length:
// longer, richer queries accumulate more evidence instead of being diluted,
// so scores are unbounded and can exceed 1.
func bm25Score(queryTokens, docTokens []string) (float64, []string) {
	if len(queryTokens) == 0 || len(docTokens) == 0 {
		return 0, nil
	}

	freqs := make(map[string]int, len(docTokens))
	for _, t := range docTokens {
		freqs[t]++
	}

	docLen := float64(len(docTokens))
	score := 0.0
	var matched []string

	seen := make(map[string]struct{}, len(queryTokens))
	for _, qt := range queryTokens {
		if _, dup := seen[qt]; dup {
			continue
		}
		seen[qt] = struct{}{}

		tf := float64(freqs[qt])
		if tf == 0 {
			continue
		}

		tfNorm := (tf * (bm25K1 + 1)) / (tf + bm25K1*(1-bm25B+bm25B*docLen/avgDocLength))
		score += fixedIDF * tfNorm
		matched = append(matched, qt)
	}

	return score, matched
}
