package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddItemMergesSameLine(t *testing.T) {
	now := time.Now()
	cart := NewCart("u1")
	item := CartItem{ProductID: "p1", Quantity: 1, Size: "M", Color: "Beige"}

	require.NoError(t, cart.AddItem(item, now))
	require.NoError(t, cart.AddItem(item, now))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestCartAddItemDistinctLines(t *testing.T) {
	now := time.Now()
	cart := NewCart("u1")

	require.NoError(t, cart.AddItem(CartItem{ProductID: "p1", Quantity: 1, Size: "M"}, now))
	require.NoError(t, cart.AddItem(CartItem{ProductID: "p1", Quantity: 1, Size: "L"}, now))
	require.NoError(t, cart.AddItem(CartItem{ProductID: "p1", Quantity: 3, Size: "L", Color: "Blue"}, now))

	assert.Len(t, cart.Items, 3)
	assert.Equal(t, 5, cart.Quantity())
}

func TestCartRejectsInvalidItems(t *testing.T) {
	cart := NewCart("u1")

	err := cart.AddItem(CartItem{ProductID: "p1", Quantity: 0}, time.Now())
	assert.True(t, IsValidation(err))

	err = cart.SetItems([]CartItem{{Quantity: 1}}, time.Now())
	assert.True(t, IsValidation(err))
	assert.True(t, cart.IsEmpty())
}

func TestCartSetItemsReplacesAndMerges(t *testing.T) {
	now := time.Now()
	cart := NewCart("u1")
	require.NoError(t, cart.AddItem(CartItem{ProductID: "old", Quantity: 4}, now))

	err := cart.SetItems([]CartItem{
		{ProductID: "p1", Quantity: 1, Size: "S"},
		{ProductID: "p2", Quantity: 2},
		{ProductID: "p1", Quantity: 2, Size: "S"},
	}, now)
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, "p1", cart.Items[0].ProductID)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, "p2", cart.Items[1].ProductID)
}

func TestWishlistToggleIsItsOwnInverse(t *testing.T) {
	now := time.Now()
	w := NewWishlist("u1")
	w.Set([]string{"a", "b"}, now)

	assert.True(t, w.Toggle("c", now))
	assert.False(t, w.Toggle("c", now))
	assert.Equal(t, []string{"a", "b"}, w.ProductIDs)

	assert.False(t, w.Toggle("a", now))
	assert.True(t, w.Toggle("a", now))
	assert.ElementsMatch(t, []string{"a", "b"}, w.ProductIDs)
}

func TestWishlistSetDeduplicates(t *testing.T) {
	w := NewWishlist("u1")
	w.Set([]string{"a", "b", "a", "", "c", "b"}, time.Now())
	assert.Equal(t, []string{"a", "b", "c"}, w.ProductIDs)
}

func TestShippingPolicyBoundary(t *testing.T) {
	policy := DefaultShippingPolicy

	tests := []struct {
		subtotal int64
		fee      int64
		total    int64
	}{
		{subtotal: 9999, fee: 599, total: 10598},
		{subtotal: 10000, fee: 0, total: 10000},
		{subtotal: 0, fee: 599, total: 599},
		{subtotal: 25000, fee: 0, total: 25000},
	}
	for _, tt := range tests {
		fee := policy.FeeFor(tt.subtotal)
		assert.Equal(t, tt.fee, fee, "subtotal %d", tt.subtotal)
		assert.Equal(t, tt.total, tt.subtotal+fee, "subtotal %d", tt.subtotal)
	}
}

func TestSubtotal(t *testing.T) {
	items := []OrderItem{
		{Price: 12900, Quantity: 2},
		{Price: 599, Quantity: 1},
	}
	assert.Equal(t, int64(26399), Subtotal(items))
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderPending.CanTransition(OrderProcessing))
	assert.True(t, OrderPending.CanTransition(OrderCancelled))
	assert.True(t, OrderProcessing.CanTransition(OrderShipped))
	assert.True(t, OrderProcessing.CanTransition(OrderCancelled))
	assert.True(t, OrderShipped.CanTransition(OrderDelivered))

	assert.False(t, OrderShipped.CanTransition(OrderCancelled))
	assert.False(t, OrderDelivered.CanTransition(OrderPending))
	assert.False(t, OrderCancelled.CanTransition(OrderProcessing))
	assert.False(t, OrderPending.CanTransition(OrderDelivered))

	assert.True(t, OrderShipped.Valid())
	assert.False(t, OrderStatus("lost").Valid())
}

func TestDiscountPercent(t *testing.T) {
	assert.Equal(t, 13, DiscountPercent(12900, 14900))
	assert.Equal(t, 32, DiscountPercent(12900, 18900))
	assert.Equal(t, 0, DiscountPercent(5000, 5000))
	assert.Equal(t, 0, DiscountPercent(5000, 0))
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "$129.00", FormatMinor(12900))
	assert.Equal(t, "$5.99", FormatMinor(599))
	assert.Equal(t, "$0.00", FormatMinor(0))
}

func TestRoundedRatingHalfUp(t *testing.T) {
	assert.Equal(t, 4, Product{Rating: 3.5}.RoundedRating())
	assert.Equal(t, 3, Product{Rating: 3.49}.RoundedRating())
	assert.Equal(t, 5, Product{Rating: 4.5}.RoundedRating())
	assert.Equal(t, 0, Product{}.RoundedRating())
}

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, AverageRating(nil))
	assert.InDelta(t, 3.5, AverageRating([]Review{{Rating: 3}, {Rating: 4}}), 1e-9)
}

func TestProductJSONIncludesDisplayFields(t *testing.T) {
	original := int64(14900)
	p := Product{ID: "p1", Title: "Linen Blazer", Price: 12900, OriginalPrice: &original, Rating: 4.5}

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Linen Blazer", decoded["title"])
	assert.Equal(t, float64(5), decoded["ratingRounded"])
	assert.Equal(t, float64(13), decoded["discountPercent"])
}

func TestProductValidate(t *testing.T) {
	assert.NoError(t, Product{Title: "Tee", Price: 0}.Validate())
	assert.True(t, IsValidation(Product{Title: "Tee", Price: -1}.Validate()))
	assert.True(t, IsValidation(Product{Price: 100}.Validate()))
	assert.True(t, IsValidation(Product{Title: "Tee", Rating: 6}.Validate()))
}
