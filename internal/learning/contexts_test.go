package learning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastobot/gastobot/internal/cache"
	"github.com/gastobot/gastobot/internal/model"
)

func newTestContextStore(t *testing.T) *ContextStore {
	t.Helper()
	client := cache.NewMemoryClient(100)
	t.Cleanup(func() { client.Close() })
	return NewContextStore(client)
}

func TestContextStoreRoundTrip(t *testing.T) {
	store := newTestContextStore(t)
	ctx := context.Background()

	lc := &model.LearningContext{
		State:             model.StateAwaitingConfirmation,
		DetectedTerm:      "mercadinho",
		SuggestedCategory: "Mercado",
		OriginalText:      "50 no mercadinho",
		HasOutrosCategory: true,
	}

	require.NoError(t, store.Save(ctx, "5511999990000", lc))

	got, err := store.Get(ctx, "5511999990000")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.StateAwaitingConfirmation, got.State)
	assert.Equal(t, "mercadinho", got.DetectedTerm)
	assert.Equal(t, "50 no mercadinho", got.OriginalText)
	assert.True(t, got.HasOutrosCategory)
}

func TestContextStoreGetMissing(t *testing.T) {
	store := newTestContextStore(t)

	got, err := store.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestContextStoreSaveRequiresPhoneID(t *testing.T) {
	store := newTestContextStore(t)

	err := store.Save(context.Background(), "", &model.LearningContext{})
	assert.Error(t, err)
}

func TestContextStoreDelete(t *testing.T) {
	store := newTestContextStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "p1", &model.LearningContext{State: model.StateAwaitingConfirmation}))
	require.NoError(t, store.Delete(ctx, "p1"))

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestContextStoreReplace(t *testing.T) {
	store := newTestContextStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "p1", &model.LearningContext{DetectedTerm: "primeiro"}))
	require.NoError(t, store.Save(ctx, "p1", &model.LearningContext{DetectedTerm: "segundo"}))

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "segundo", got.DetectedTerm)
}
