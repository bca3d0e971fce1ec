package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnavailableStore(t *testing.T) {
	store := NewUnavailableStore()
	ctx := context.Background()

	assert.Equal(t, StateUnavailable, store.State())
	assert.Equal(t, "unavailable", store.State().String())

	_, err := store.Products().Find(ctx, ProductFilter{})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = store.Products().GetByID(ctx, "x")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = store.Products().DistinctCategories(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = store.Carts().GetBySession(ctx, "S")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = store.Carts().ReplaceItems(ctx, "S", nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	assert.ErrorIs(t, store.Ping(ctx), ErrStoreUnavailable)
	assert.ErrorIs(t, store.EnsureIndexes(ctx), ErrStoreUnavailable)
	assert.NoError(t, store.Close(ctx))
}

func TestUnavailableStore_Diagnose(t *testing.T) {
	d, err := NewUnavailableStore().Diagnose(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateUnavailable, d.State)
	assert.Empty(t, d.DatabaseName)
	assert.Empty(t, d.Collections)
}
