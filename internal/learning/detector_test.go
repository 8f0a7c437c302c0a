package learning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastobot/gastobot/internal/common"
	"github.com/gastobot/gastobot/internal/matcher"
	"github.com/gastobot/gastobot/internal/model"
)

type fakeMatcher struct {
	matches model.Matches
	err     error
}

func (f *fakeMatcher) Match(_ context.Context, _, _ string, _ matcher.Options) (model.Matches, error) {
	return f.matches, f.err
}

type fakeSynonymReader struct {
	syn *model.Synonym
	err error
}

func (f *fakeSynonymReader) GetSynonym(_ context.Context, _ *string, _ string) (*model.Synonym, error) {
	if f.syn == nil && f.err == nil {
		return nil, common.ErrNotFound
	}
	return f.syn, f.err
}

func TestDetectTrustedMatchNeedsNoConfirmation(t *testing.T) {
	d := NewDetector(&fakeMatcher{matches: model.Matches{
		{CategoryID: "c1", CategoryName: "Mercado", Score: 1.2},
	}}, &fakeSynonymReader{}, 0)

	det, err := d.Detect(context.Background(), "50 no mercado", "user-1", nil)
	require.NoError(t, err)
	assert.Nil(t, det)
}

func TestDetectLowScoreEngagesWithSuggestion(t *testing.T) {
	d := NewDetector(&fakeMatcher{matches: model.Matches{
		{CategoryID: "c1", CategoryName: "Mercado", Score: 0.3},
	}}, &fakeSynonymReader{}, 0)

	det, err := d.Detect(context.Background(), "paguei 50 no mercadinho", "user-1", nil)
	require.NoError(t, err)
	require.NotNil(t, det)

	assert.Equal(t, ReasonLowScore, det.Reason)
	assert.Equal(t, "mercadinho", det.DetectedTerm)
	assert.Equal(t, "Mercado", det.SuggestedCategory)
	assert.InDelta(t, 0.3, det.Confidence, 1e-9)
}

func TestDetectNoMatchesStillEngages(t *testing.T) {
	d := NewDetector(&fakeMatcher{}, &fakeSynonymReader{}, 0)

	det, err := d.Detect(context.Background(), "gastei na padoca", "user-1", nil)
	require.NoError(t, err)
	require.NotNil(t, det)

	assert.Equal(t, ReasonLowScore, det.Reason)
	assert.Equal(t, "padoca", det.DetectedTerm)
	assert.Empty(t, det.SuggestedCategory)
}

func TestDetectKnownTermSkipsConfirmation(t *testing.T) {
	userID := "user-1"
	d := NewDetector(&fakeMatcher{}, &fakeSynonymReader{
		syn: &model.Synonym{
			UserID:       &userID,
			Keyword:      "padoca",
			CategoryName: "Alimentação",
			Confidence:   1.0,
			Source:       model.SourceUserConfirmed,
		},
	}, 0)

	det, err := d.Detect(context.Background(), "gastei na padoca", "user-1", nil)
	require.NoError(t, err)
	assert.Nil(t, det)
}

func TestDetectNoMeaningfulTerm(t *testing.T) {
	d := NewDetector(&fakeMatcher{}, &fakeSynonymReader{}, 0)

	// Only stop terms and numbers survive tokenization here.
	det, err := d.Detect(context.Background(), "paguei 50 reais hoje", "user-1", nil)
	require.NoError(t, err)
	assert.Nil(t, det)
}

func TestDetectGenericAIHint(t *testing.T) {
	d := NewDetector(&fakeMatcher{matches: model.Matches{
		{CategoryID: "c1", CategoryName: "Mercado", Score: 1.5},
		{CategoryID: "c2", CategoryName: "Alimentação", Score: 0.8},
	}}, &fakeSynonymReader{}, 0)

	hint := &model.AIHint{CategoryName: "Outros", Confidence: 0.9}

	det, err := d.Detect(context.Background(), "paguei a padoca", "user-1", hint)
	require.NoError(t, err)
	require.NotNil(t, det)

	// Even a high lexical score cannot be trusted when the AI classifier
	// fell back to a catch-all label.
	assert.Equal(t, ReasonGenericAI, det.Reason)
	assert.Equal(t, "Mercado", det.SuggestedCategory)
}

func TestDetectGenericAIHintWithSingleTrustedSubcategory(t *testing.T) {
	d := NewDetector(&fakeMatcher{matches: model.Matches{
		{
			CategoryID:      "c1",
			CategoryName:    "Alimentação",
			SubCategoryName: "Delivery",
			Score:           1.2,
		},
	}}, &fakeSynonymReader{}, 0)

	hint := &model.AIHint{CategoryName: "Outros", Confidence: 0.9}

	det, err := d.Detect(context.Background(), "pedi no ifoodz", "user-1", hint)
	require.NoError(t, err)
	assert.Nil(t, det)
}

func TestDetectAIHintSuggestionWhenNoMatches(t *testing.T) {
	d := NewDetector(&fakeMatcher{}, &fakeSynonymReader{}, 0)

	hint := &model.AIHint{
		CategoryName:    "Alimentação",
		SubCategoryName: "Delivery",
		Confidence:      0.7,
	}

	det, err := d.Detect(context.Background(), "pedi na padoca", "user-1", hint)
	require.NoError(t, err)
	require.NotNil(t, det)

	assert.Equal(t, "Alimentação", det.SuggestedCategory)
	assert.Equal(t, "Delivery", det.SuggestedSubCategory)
	assert.InDelta(t, 0.7, det.Confidence, 1e-9)
}

func TestExtractMainTerm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "skips spend verbs and numbers", input: "paguei 50 no mercadinho", want: "mercadinho"},
		{name: "skips currency words", input: "gastei 30 reais com lanchonete", want: "lanchonete"},
		{name: "first meaningful token wins", input: "uber para casa", want: "uber"},
		{name: "nothing meaningful", input: "paguei 50 reais hoje", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMainTerm(tt.input))
		})
	}
}
