package service

import (
	"context"
	"testing"

	"trendhive/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistToggleParity(t *testing.T) {
	f := newFixture(t)
	shirt, _, _ := seedCatalog(t, f)
	ctx := context.Background()

	list, member, err := f.wishlist.Toggle(ctx, "user-1", shirt.ID)
	require.NoError(t, err)
	assert.True(t, member)
	assert.Equal(t, []string{shirt.ID}, list.ProductIDs)

	list, member, err = f.wishlist.Toggle(ctx, "user-1", shirt.ID)
	require.NoError(t, err)
	assert.False(t, member)
	assert.Empty(t, list.ProductIDs)

	_, member, err = f.wishlist.Toggle(ctx, "user-1", shirt.ID)
	require.NoError(t, err)
	assert.True(t, member)
}

func TestWishlistToggleUnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.wishlist.Toggle(context.Background(), "user-1", missingID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestWishlistSetDeduplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list, err := f.wishlist.Set(ctx, "user-1", []string{"a", "b", "a", "c", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, list.ProductIDs)

	stored, err := f.wishlist.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, stored.ProductIDs)
}

func TestWishlistGetImplicit(t *testing.T) {
	f := newFixture(t)

	list, err := f.wishlist.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, list.ID)
	assert.Empty(t, list.ProductIDs)
}
