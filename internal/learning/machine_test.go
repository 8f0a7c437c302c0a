package learning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastobot/gastobot/internal/model"
)

type fakeSynonymWriter struct {
	saved []model.Synonym
	err   error
}

func (f *fakeSynonymWriter) UpsertSynonym(_ context.Context, syn *model.Synonym) (*model.Synonym, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, *syn)
	return syn, nil
}

func newTestMachine(t *testing.T) (*Machine, *ContextStore, *fakeSynonymWriter) {
	t.Helper()
	contexts := newTestContextStore(t)
	writer := &fakeSynonymWriter{}
	return NewMachine(contexts, writer), contexts, writer
}

func sampleDetection() *model.Detection {
	return &model.Detection{
		DetectedTerm:        "mercadinho",
		SuggestedCategoryID: "c1",
		SuggestedCategory:   "Mercado",
		Reason:              ReasonLowScore,
		Confidence:          0.3,
	}
}

func begin(t *testing.T, m *Machine, hasOutros bool) {
	t.Helper()
	_, _, err := m.Begin(context.Background(), "p1", sampleDetection(), "50 no mercadinho", hasOutros)
	require.NoError(t, err)
}

func TestBeginStoresContextAndPrompts(t *testing.T) {
	m, contexts, _ := newTestMachine(t)
	ctx := context.Background()

	lc, prompt, err := m.Begin(ctx, "p1", sampleDetection(), "50 no mercadinho", true)
	require.NoError(t, err)

	assert.Equal(t, model.StateAwaitingConfirmation, lc.State)
	assert.Contains(t, prompt, "mercadinho")
	assert.Contains(t, prompt, "Mercado")

	stored, err := contexts.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "50 no mercadinho", stored.OriginalText)
}

func TestHandleReplyConfirmWritesSynonym(t *testing.T) {
	m, contexts, writer := newTestMachine(t)
	ctx := context.Background()
	begin(t, m, true)

	res, err := m.HandleReply(ctx, "p1", "sim", "user-1")
	require.NoError(t, err)

	assert.True(t, res.Processed)
	assert.Equal(t, ActionConfirmed, res.Action)
	assert.True(t, res.ShouldContinue)
	assert.Equal(t, "50 no mercadinho", res.OriginalText)

	require.Len(t, writer.saved, 1)
	syn := writer.saved[0]
	assert.Equal(t, "mercadinho", syn.Keyword)
	assert.Equal(t, "Mercado", syn.CategoryName)
	assert.Equal(t, 1.0, syn.Confidence)
	assert.Equal(t, model.SourceUserConfirmed, syn.Source)
	require.NotNil(t, syn.UserID)
	assert.Equal(t, "user-1", *syn.UserID)

	stored, err := contexts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, stored, "terminal transitions delete the context")
}

func TestHandleReplyNumericMapping(t *testing.T) {
	t.Run("with outros option 1 confirms", func(t *testing.T) {
		m, _, writer := newTestMachine(t)
		begin(t, m, true)

		res, err := m.HandleReply(context.Background(), "p1", "1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, ActionConfirmed, res.Action)
		assert.Len(t, writer.saved, 1)
	})

	t.Run("without outros option 1 rejects", func(t *testing.T) {
		m, contexts, writer := newTestMachine(t)
		begin(t, m, false)

		res, err := m.HandleReply(context.Background(), "p1", "1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, ActionCorrectionRequested, res.Action)
		assert.Empty(t, writer.saved)

		stored, err := contexts.Get(context.Background(), "p1")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, model.StateAwaitingCorrection, stored.State)
	})

	t.Run("without outros option 2 cancels", func(t *testing.T) {
		m, contexts, _ := newTestMachine(t)
		begin(t, m, false)

		res, err := m.HandleReply(context.Background(), "p1", "2", "user-1")
		require.NoError(t, err)
		assert.Equal(t, ActionCancelled, res.Action)

		stored, err := contexts.Get(context.Background(), "p1")
		require.NoError(t, err)
		assert.Nil(t, stored)
	})
}

func TestHandleReplyRejectMovesToCorrection(t *testing.T) {
	m, contexts, _ := newTestMachine(t)
	ctx := context.Background()
	begin(t, m, true)

	res, err := m.HandleReply(ctx, "p1", "não", "user-1")
	require.NoError(t, err)

	assert.True(t, res.Processed)
	assert.Equal(t, ActionCorrectionRequested, res.Action)
	assert.Contains(t, res.Message, "mercadinho")

	stored, err := contexts.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.StateAwaitingCorrection, stored.State)
}

func TestHandleReplyCancel(t *testing.T) {
	m, contexts, writer := newTestMachine(t)
	ctx := context.Background()
	begin(t, m, true)

	res, err := m.HandleReply(ctx, "p1", "cancelar", "user-1")
	require.NoError(t, err)

	assert.True(t, res.Processed)
	assert.Equal(t, ActionCancelled, res.Action)
	assert.Empty(t, writer.saved)

	stored, err := contexts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestHandleReplyUnrecognized(t *testing.T) {
	m, contexts, _ := newTestMachine(t)
	ctx := context.Background()
	begin(t, m, true)

	res, err := m.HandleReply(ctx, "p1", "talvez amanhã", "user-1")
	require.NoError(t, err)

	assert.False(t, res.Processed)
	assert.Equal(t, ActionNone, res.Action)

	stored, err := contexts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.NotNil(t, stored, "unrecognized replies leave the dialogue pending")
}

func TestHandleReplyConfirmWithoutSuggestion(t *testing.T) {
	m, contexts, writer := newTestMachine(t)
	ctx := context.Background()

	det := sampleDetection()
	det.SuggestedCategoryID = ""
	det.SuggestedCategory = ""
	_, _, err := m.Begin(ctx, "p1", det, "50 no mercadinho", true)
	require.NoError(t, err)

	res, err := m.HandleReply(ctx, "p1", "sim", "user-1")
	require.NoError(t, err)

	assert.False(t, res.Processed, "a yes with nothing suggested confirms nothing")
	assert.Equal(t, ActionNone, res.Action)
	assert.Empty(t, writer.saved)

	stored, err := contexts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.NotNil(t, stored, "the dialogue keeps waiting for the category")
}

func TestHandleReplyWithoutContext(t *testing.T) {
	m, _, _ := newTestMachine(t)

	res, err := m.HandleReply(context.Background(), "nobody", "sim", "user-1")
	require.NoError(t, err)
	assert.False(t, res.Processed)
}

func TestHandleReplyGenericSuggestionNotLearned(t *testing.T) {
	m, _, writer := newTestMachine(t)
	ctx := context.Background()

	det := sampleDetection()
	det.SuggestedCategory = "Outros"
	_, _, err := m.Begin(ctx, "p1", det, "50 no mercadinho", true)
	require.NoError(t, err)

	res, err := m.HandleReply(ctx, "p1", "sim", "user-1")
	require.NoError(t, err)

	assert.Equal(t, ActionConfirmed, res.Action)
	assert.Empty(t, writer.saved, "catch-all categories are never learned")
}

func TestHandleCorrectionSingleMatch(t *testing.T) {
	m, contexts, writer := newTestMachine(t)
	ctx := context.Background()
	begin(t, m, true)

	_, err := m.HandleReply(ctx, "p1", "não", "user-1")
	require.NoError(t, err)

	res, err := m.HandleCorrection(ctx, "p1", "Alimentação > Delivery", "user-1", correctionCategories())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.True(t, res.ShouldContinue)
	assert.Equal(t, "50 no mercadinho", res.OriginalText)
	assert.Contains(t, res.Message, "Alimentação > Delivery")

	require.Len(t, writer.saved, 1)
	syn := writer.saved[0]
	assert.Equal(t, "mercadinho", syn.Keyword)
	assert.Equal(t, "Alimentação", syn.CategoryName)
	assert.Equal(t, "Delivery", syn.SubCategoryName)

	stored, err := contexts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestHandleCorrectionAmbiguousThenSelection(t *testing.T) {
	m, contexts, writer := newTestMachine(t)
	ctx := context.Background()
	begin(t, m, true)

	_, err := m.HandleReply(ctx, "p1", "não", "user-1")
	require.NoError(t, err)

	res, err := m.HandleCorrection(ctx, "p1", "eletro", "user-1", correctionCategories())
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.True(t, res.NeedsSelection)
	assert.Contains(t, res.Message, "1. Eletrônicos")
	assert.Contains(t, res.Message, "2. Eletrodomésticos")
	assert.Empty(t, writer.saved)

	stored, err := contexts.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.StateAwaitingSelection, stored.State)
	assert.Len(t, stored.PendingMatches, 2)

	res, err = m.HandleCorrection(ctx, "p1", "2", "user-1", correctionCategories())
	require.NoError(t, err)

	assert.True(t, res.Success)
	require.Len(t, writer.saved, 1)
	assert.Equal(t, "Eletrodomésticos", writer.saved[0].CategoryName)
}

func TestHandleCorrectionSelectionNeedsCorrectionState(t *testing.T) {
	m, _, writer := newTestMachine(t)
	ctx := context.Background()
	begin(t, m, true)

	// Still awaiting yes/no; an ambiguous correction cannot jump straight
	// into candidate selection.
	_, err := m.HandleCorrection(ctx, "p1", "eletro", "user-1", correctionCategories())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AWAITING_CONFIRMATION")
	assert.Empty(t, writer.saved)
}

func TestHandleCorrectionSelectionOutOfRange(t *testing.T) {
	m, _, writer := newTestMachine(t)
	ctx := context.Background()
	begin(t, m, true)

	_, err := m.HandleReply(ctx, "p1", "não", "user-1")
	require.NoError(t, err)

	_, err = m.HandleCorrection(ctx, "p1", "eletro", "user-1", correctionCategories())
	require.NoError(t, err)

	res, err := m.HandleCorrection(ctx, "p1", "9", "user-1", correctionCategories())
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.True(t, res.NeedsSelection)
	assert.Contains(t, res.Message, "entre 1 e 2")
	assert.Empty(t, writer.saved)
}

func TestHandleCorrectionNoMatchListsCategories(t *testing.T) {
	m, _, _ := newTestMachine(t)
	ctx := context.Background()
	begin(t, m, true)

	_, err := m.HandleReply(ctx, "p1", "não", "user-1")
	require.NoError(t, err)

	res, err := m.HandleCorrection(ctx, "p1", "zzzzz", "user-1", correctionCategories())
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Alimentação > Delivery")
	assert.Contains(t, res.Message, "Transporte")
}

func TestHandleCorrectionCancel(t *testing.T) {
	m, contexts, _ := newTestMachine(t)
	ctx := context.Background()
	begin(t, m, true)

	_, err := m.HandleReply(ctx, "p1", "não", "user-1")
	require.NoError(t, err)

	res, err := m.HandleCorrection(ctx, "p1", "esquece", "user-1", correctionCategories())
	require.NoError(t, err)

	assert.False(t, res.Success)

	stored, err := contexts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestHandleCorrectionWithoutContext(t *testing.T) {
	m, _, _ := newTestMachine(t)

	res, err := m.HandleCorrection(context.Background(), "nobody", "Transporte", "user-1", correctionCategories())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)
}

func TestHandleCorrectionGenericTargetNotLearned(t *testing.T) {
	m, _, writer := newTestMachine(t)
	ctx := context.Background()
	begin(t, m, true)

	_, err := m.HandleReply(ctx, "p1", "não", "user-1")
	require.NoError(t, err)

	categories := []model.UserCategory{{ID: "c9", Name: "Outros"}}
	res, err := m.HandleCorrection(ctx, "p1", "Outros", "user-1", categories)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Empty(t, writer.saved)
}
