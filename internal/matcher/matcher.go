// Package matcher ranks a user's indexed categories against a free-text
// query by combining a simplified BM25 lexical score, the static synonym
// graph and personalized learned synonyms.
package matcher

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gastobot/gastobot/internal/index"
	"github.com/gastobot/gastobot/internal/model"
	"github.com/gastobot/gastobot/internal/service"
	"github.com/gastobot/gastobot/internal/synonyms"
	"github.com/gastobot/gastobot/internal/text"
)

// Boost weights for the synonym graph. Each directed association counts,
// so a mutual pair contributes twice the weight. Subcategory evidence is
// weighted higher because it disambiguates more specifically.
const (
	graphCategoryWeight    = 0.5
	graphSubCategoryWeight = 2.0
	personalSynonymWeight  = 3.0
)

// Options control a single match call.
type Options struct {
	// TransactionType filters candidates before scoring when set.
	TransactionType model.CategoryType
	MinScore        float64
	MaxResults      int
	ExactBoost      float64
	PrefixBoost     float64
}

// DefaultOptions returns the standard matching options.
func DefaultOptions() Options {
	return Options{
		MinScore:    0.25,
		MaxResults:  3,
		ExactBoost:  2.0,
		PrefixBoost: 1.5,
	}
}

func (o Options) normalized() Options {
	if o.MinScore <= 0 {
		o.MinScore = 0.25
	}
	if o.MaxResults <= 0 {
		o.MaxResults = 3
	}
	if o.ExactBoost <= 0 {
		o.ExactBoost = 2.0
	}
	if o.PrefixBoost <= 0 {
		o.PrefixBoost = 1.5
	}
	return o
}

// Matcher scores queries against a user's category index.
type Matcher struct {
	index *index.Index
	graph *synonyms.Graph
	store SynonymStore
}

// New creates a Matcher. The store may be nil, in which case personalized
// boosts are skipped entirely.
func New(idx *index.Index, graph *synonyms.Graph, store SynonymStore) *Matcher {
	return &Matcher{
		index: idx,
		graph: graph,
		store: store,
	}
}

// Match returns the ranked candidate categories for a query. An empty or
// missing category index yields an empty result, never an error. Every
// personalized synonym consulted has its usage stats refreshed as a side
// effect.
func (m *Matcher) Match(ctx context.Context, query, userID string, opts Options) (model.Matches, error) {
	opts = opts.normalized()

	normQuery := text.Normalize(query)
	queryTokens := text.Tokenize(query)
	if normQuery == "" {
		return model.Matches{}, nil
	}

	categories, err := m.index.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		slog.Warn("no categories indexed for user", "user_id", userID, "query", query)
		return model.Matches{}, nil
	}

	syns := m.loadSynonyms(ctx, userID, queryTokens)

	var matches model.Matches
	consulted := make(map[string]struct{})

	for i := range categories {
		cat := &categories[i]

		if opts.TransactionType != "" && cat.Type != "" && cat.Type != opts.TransactionType {
			continue
		}

		score, matched := m.scoreCategory(normQuery, queryTokens, cat, opts, syns, consulted)
		if score <= 0 {
			continue
		}

		match := model.CategoryMatch{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Score:        score,
			MatchedTerms: matched,
		}
		if cat.SubCategory != nil {
			match.SubCategoryID = cat.SubCategory.ID
			match.SubCategoryName = cat.SubCategory.Name
		}
		matches = append(matches, match)
	}

	matches = matches.AboveThreshold(opts.MinScore).TopN(opts.MaxResults)

	m.touchConsulted(ctx, consulted)

	return matches, nil
}

// scoreCategory runs the full boost pipeline for one candidate. The result
// is a raw additive score: BM25 with exact/prefix multipliers, plus graph
// associations, plus personalized synonym boosts.
func (m *Matcher) scoreCategory(
	normQuery string,
	queryTokens []string,
	cat *model.UserCategory,
	opts Options,
	syns []model.Synonym,
	consulted map[string]struct{},
) (float64, []string) {
	docText := text.Normalize(cat.SearchText())
	nameTokens := text.Tokenize(cat.Name)

	var subTokens []string
	if cat.SubCategory != nil {
		subTokens = text.Tokenize(cat.SubCategory.Name)
	}

	docTokens := make([]string, 0, len(nameTokens)+len(subTokens))
	docTokens = append(docTokens, nameTokens...)
	docTokens = append(docTokens, subTokens...)

	score, matched := bm25Score(queryTokens, docTokens)

	switch {
	case normQuery == docText:
		score *= opts.ExactBoost
	case strings.HasPrefix(docText, normQuery):
		score *= opts.PrefixBoost
	}

	matchedSet := make(map[string]struct{}, len(matched))
	for _, t := range matched {
		matchedSet[t] = struct{}{}
	}

	score += m.graphScore(queryTokens, nameTokens, graphCategoryWeight, matchedSet)
	score += m.graphScore(queryTokens, subTokens, graphSubCategoryWeight, matchedSet)

	for i := range syns {
		syn := &syns[i]
		if !synonymAppliesTo(syn, cat) || !sharesQueryToken(syn, queryTokens) {
			continue
		}
		score += personalSynonymWeight * syn.Confidence
		consulted[syn.ID] = struct{}{}
		matchedSet[text.Normalize(syn.Keyword)] = struct{}{}
	}

	terms := make([]string, 0, len(matchedSet))
	for t := range matchedSet {
		terms = append(terms, t)
	}

	return score, terms
}

// graphScore counts directed synonym-graph associations between query
// tokens and category tokens, each weighted by weight.
func (m *Matcher) graphScore(queryTokens, catTokens []string, weight float64, matchedSet map[string]struct{}) float64 {
	if m.graph == nil {
		return 0
	}

	score := 0.0
	for _, qt := range queryTokens {
		for _, ct := range catTokens {
			if m.graph.Related(qt, ct) {
				score += weight
				matchedSet[qt] = struct{}{}
			}
			if m.graph.Related(ct, qt) {
				score += weight
			}
		}
	}
	return score
}

// loadSynonyms fetches personal and global synonyms touching the query
// tokens. A storage failure degrades to no boost; matching must not fail
// because the synonym store is unreachable.
func (m *Matcher) loadSynonyms(ctx context.Context, userID string, queryTokens []string) []model.Synonym {
	if m.store == nil || len(queryTokens) == 0 {
		return nil
	}

	syns, err := m.store.GetSynonymsForTokens(ctx, service.SynonymFilter{
		UserID: userID,
		Tokens: queryTokens,
	})
	if err != nil {
		slog.Warn("personalized synonym lookup failed, skipping boost",
			"user_id", userID, "error", err)
		return nil
	}

	return syns
}

// touchConsulted refreshes usage stats for every synonym that contributed
// to this search. Failures are logged and swallowed.
func (m *Matcher) touchConsulted(ctx context.Context, consulted map[string]struct{}) {
	if m.store == nil || len(consulted) == 0 {
		return
	}

	ids := make([]string, 0, len(consulted))
	for id := range consulted {
		ids = append(ids, id)
	}

	if err := m.store.TouchSynonyms(ctx, ids); err != nil {
		slog.Warn("failed to update synonym usage stats", "error", err)
	}
}

// synonymAppliesTo reports whether a stored synonym targets the candidate
// category. Global synonyms match by category name because category ids
// differ per user; personal synonyms prefer the id when they carry one.
func synonymAppliesTo(syn *model.Synonym, cat *model.UserCategory) bool {
	if syn.IsGlobal() || syn.CategoryID == "" {
		if text.Normalize(syn.CategoryName) != text.Normalize(cat.Name) {
			return false
		}
	} else if syn.CategoryID != cat.ID {
		return false
	}

	if syn.SubCategoryID == "" && syn.SubCategoryName == "" {
		return true
	}
	if cat.SubCategory == nil {
		return false
	}
	if syn.SubCategoryID != "" {
		return syn.SubCategoryID == cat.SubCategory.ID
	}
	return text.Normalize(syn.SubCategoryName) == text.Normalize(cat.SubCategory.Name)
}

// sharesQueryToken reports whether the synonym keyword overlaps the query.
func sharesQueryToken(syn *model.Synonym, queryTokens []string) bool {
	keyword := text.Normalize(syn.Keyword)
	keywordTokens := text.Tokenize(syn.Keyword)

	for _, qt := range queryTokens {
		if strings.Contains(keyword, qt) {
			return true
		}
		for _, kt := range keywordTokens {
			if kt == qt {
				return true
			}
		}
	}
	return false
}
