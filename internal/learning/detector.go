package learning

import (
	"context"
	"errors"
	"strings"

	"github.com/gastobot/gastobot/internal/common"
	"github.com/gastobot/gastobot/internal/matcher"
	"github.com/gastobot/gastobot/internal/model"
	"github.com/gastobot/gastobot/internal/text"
)

// CategoryMatcher is the slice of the matcher the detector consumes.
type CategoryMatcher interface {
	Match(ctx context.Context, query, userID string, opts matcher.Options) (model.Matches, error)
}

// SynonymReader looks up whether a term is already covered by a learned
// synonym.
type SynonymReader interface {
	GetSynonym(ctx context.Context, userID *string, keyword string) (*model.Synonym, error)
}

// DefaultOperatingThreshold is the score below which a best match is not
// trusted without human confirmation.
const DefaultOperatingThreshold = 0.6

// detectionFloor is the deliberately low threshold of the detector's
// defensive match, so near-misses still surface as suggestions.
const detectionFloor = 0.05

// Detection reasons.
const (
	ReasonLowScore  = "low_score"
	ReasonGenericAI = "generic_ai_category"
)

// stopTerms are tokens that never carry the main meaning of a transaction
// description: verbs of spending, temporal words, currency words. Entries
// are stored in tokenizer output form (normalized, singularized).
var stopTerms = map[string]struct{}{
	"paguei": {}, "pagar": {}, "pagando": {}, "pagamento": {},
	"gastei": {}, "gastar": {}, "gasto": {},
	"comprei": {}, "comprar": {}, "compra": {},
	"recebi": {}, "receber": {},
	"transferi": {}, "enviei": {}, "mandei": {},
	"hoje": {}, "ontem": {}, "amanha": {}, "agora": {},
	"semana": {}, "mes": {}, "mese": {}, "ano": {}, "dia": {},
	"real": {}, "reai": {}, "dinheiro": {}, "grana": {},
	"conta": {}, "valor": {}, "total": {},
	"com": {}, "para": {}, "uma": {}, "uns": {}, "umas": {},
}

// Detector decides whether a query needs human confirmation before its
// category assignment can be trusted.
type Detector struct {
	matcher   CategoryMatcher
	synonyms  SynonymReader
	threshold float64
}

// NewDetector creates a detector. A non-positive threshold falls back to
// DefaultOperatingThreshold.
func NewDetector(m CategoryMatcher, synonyms SynonymReader, threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultOperatingThreshold
	}
	return &Detector{
		matcher:   m,
		synonyms:  synonyms,
		threshold: threshold,
	}
}

// Detect runs a defensive low-threshold match and reports whether the text
// contains an unknown term that needs confirmation. It returns nil when the
// engine already trusts the match, when the term is already covered by a
// learned synonym, or when no meaningful term can be extracted.
func (d *Detector) Detect(ctx context.Context, txt, userID string, aiHint *model.AIHint) (*model.Detection, error) {
	matches, err := d.matcher.Match(ctx, txt, userID, matcher.Options{
		MinScore:   detectionFloor,
		MaxResults: 5,
	})
	if err != nil {
		return nil, err
	}

	var best *model.CategoryMatch
	if len(matches) > 0 {
		best = &matches[0]
	}

	reason := ""
	switch {
	case aiHintIsGeneric(aiHint):
		reason = ReasonGenericAI
	case best == nil || best.Score < d.threshold:
		reason = ReasonLowScore
	default:
		// Best match clears the operating threshold; nothing to ask.
		return nil, nil
	}

	term := ExtractMainTerm(txt)
	if term == "" {
		return nil, nil
	}

	if d.known(ctx, userID, term) {
		return nil, nil
	}

	// A single trusted subcategory match is unambiguous even when the AI
	// hint was generic; no confirmation needed.
	if reason == ReasonGenericAI && len(matches) == 1 &&
		best.SubCategoryName != "" && best.Score >= d.threshold {
		return nil, nil
	}

	det := &model.Detection{
		DetectedTerm: term,
		Reason:       reason,
	}

	if best != nil {
		det.SuggestedCategoryID = best.CategoryID
		det.SuggestedCategory = best.CategoryName
		det.SuggestedSubID = best.SubCategoryID
		det.SuggestedSubCategory = best.SubCategoryName
		det.Confidence = best.Score
	} else if aiHint != nil && !IsGenericLabel(aiHint.CategoryName) {
		det.SuggestedCategory = aiHint.CategoryName
		det.SuggestedSubCategory = aiHint.SubCategoryName
		det.Confidence = aiHint.Confidence
	}

	return det, nil
}

// known reports whether a personal or global synonym already covers the
// term. Lookup failures degrade to "unknown" so a storage blip at worst
// causes one extra confirmation question.
func (d *Detector) known(ctx context.Context, userID, term string) bool {
	if d.synonyms == nil {
		return false
	}

	syn, err := d.synonyms.GetSynonym(ctx, &userID, term)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return false
	}
	return syn != nil
}

func aiHintIsGeneric(hint *model.AIHint) bool {
	if hint == nil {
		return false
	}
	return IsGenericLabel(hint.CategoryName) || IsGenericLabel(hint.SubCategoryName)
}

// ExtractMainTerm picks the most meaningful token from a description:
// tokenize, drop stop terms and anything numeric, take the first survivor.
func ExtractMainTerm(txt string) string {
	for _, token := range text.Tokenize(txt) {
		if _, stop := stopTerms[token]; stop {
			continue
		}
		if containsDigit(token) {
			continue
		}
		return token
	}
	return ""
}

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
