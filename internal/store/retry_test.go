package store

import (
	"context"
	"errors"
	"testing"

	"trendhive/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRetriesTransientErrors(t *testing.T) {
	calls := 0
	v, err := Read(context.Background(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("connection reset")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, calls)
}

func TestReadStopsOnNotFound(t *testing.T) {
	calls := 0
	_, err := Read(context.Background(), func() (*model.Product, error) {
		calls++
		return nil, model.ErrNotFound
	})

	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestReadGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	_, err := Read(context.Background(), func() (int, error) {
		calls++
		return 0, errors.New("connection refused")
	})

	assert.Error(t, err)
	assert.Equal(t, MaxReadRetries+1, calls)
}

func TestProductFilterMatch(t *testing.T) {
	p := model.Product{
		Title:       "Linen Blazer",
		Description: "Lightweight linen blazer, perfect for summer evenings.",
		Category:    "women",
		SubCategory: "blazers",
		OnSale:      true,
	}

	assert.True(t, ProductFilter{}.Match(p))
	assert.True(t, ProductFilter{Category: "WOMEN"}.Match(p))
	assert.True(t, ProductFilter{Category: "women", SubCategory: "Blazers"}.Match(p))
	assert.False(t, ProductFilter{Category: "wom"}.Match(p))
	assert.True(t, ProductFilter{Query: "SUMMER"}.Match(p))
	assert.True(t, ProductFilter{Query: "linen bl"}.Match(p))
	assert.False(t, ProductFilter{Query: "denim"}.Match(p))
	assert.True(t, ProductFilter{OnSale: true}.Match(p))
	assert.False(t, ProductFilter{Featured: true}.Match(p))
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID(NewID()))
	assert.False(t, ValidID("42"))
	assert.False(t, ValidID(""))
}
