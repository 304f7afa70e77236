// Package storetest is a conformance suite run against every Store backend.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"trendhive/internal/model"
	"trendhive/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises newStore against the repository contracts
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("ProductFilters", func(t *testing.T) { testProductFilters(t, newStore(t)) })
	t.Run("ProductCRUD", func(t *testing.T) { testProductCRUD(t, newStore(t)) })
	t.Run("CartLifecycle", func(t *testing.T) { testCartLifecycle(t, newStore(t)) })
	t.Run("Wishlist", func(t *testing.T) { testWishlist(t, newStore(t)) })
	t.Run("OrdersNewestFirst", func(t *testing.T) { testOrders(t, newStore(t)) })
	t.Run("ReviewsNewestFirst", func(t *testing.T) { testReviews(t, newStore(t)) })
	t.Run("UsersUniqueEmail", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("TxRollback", func(t *testing.T) { testTxRollback(t, newStore(t)) })
	t.Run("TxCommit", func(t *testing.T) { testTxCommit(t, newStore(t)) })
}

func int64Ptr(v int64) *int64 { return &v }

// SeedProducts inserts a small catalog and returns it in insertion order
func SeedProducts(t *testing.T, s store.Store) []model.Product {
	t.Helper()
	ctx := context.Background()
	base := time.Now().Add(-time.Hour).UTC().Truncate(time.Millisecond)
	products := []model.Product{
		{
			Title: "Linen Blazer", Description: "Lightweight linen blazer, perfect for summer evenings.",
			Price: 12900, OriginalPrice: int64Ptr(14900), Category: "women", SubCategory: "blazers",
			Images: []string{"blazer.jpg"}, Sizes: []string{"S", "M"},
			Colors:    []model.Color{{Name: "Beige", Code: "#F5F5DC"}},
			Inventory: 20, OnSale: true,
		},
		{
			Title: "Slim Fit Jeans", Description: "Medium wash denim with slight stretch.",
			Price: 6900, Category: "men", SubCategory: "jeans",
			Images: []string{"jeans.jpg"}, Sizes: []string{"32"},
			Colors:    []model.Color{{Name: "Blue", Code: "#4A75BA"}},
			Inventory: 35, Featured: true,
		},
		{
			Title: "Summer Dress", Description: "Floral print summer dress with a relaxed fit.",
			Price: 7900, Category: "Women", SubCategory: "dresses",
			Colors:    []model.Color{{Name: "Floral", Code: "#FFB6C1"}, {Name: "Blue", Code: "#BFD7ED"}},
			Inventory: 30, Featured: true, NewArrival: true,
		},
	}
	for idx := range products {
		products[idx].CreatedAt = base.Add(time.Duration(idx) * time.Minute)
		products[idx].UpdatedAt = products[idx].CreatedAt
		require.NoError(t, s.Products().Create(ctx, &products[idx]))
		require.NotEmpty(t, products[idx].ID)
	}
	return products
}

func titles(products []model.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Title)
	}
	return out
}

func testProductFilters(t *testing.T, s store.Store) {
	ctx := context.Background()
	SeedProducts(t, s)
	repo := s.Products()

	all, err := repo.List(ctx, store.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Linen Blazer", "Slim Fit Jeans", "Summer Dress"}, titles(all))

	women, err := repo.List(ctx, store.ProductFilter{Category: "WOMEN"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Linen Blazer", "Summer Dress"}, titles(women))

	dresses, err := repo.List(ctx, store.ProductFilter{Category: "women", SubCategory: "Dresses"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Summer Dress"}, titles(dresses))

	search, err := repo.List(ctx, store.ProductFilter{Query: "SUMMER"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Linen Blazer", "Summer Dress"}, titles(search))

	percent, err := repo.List(ctx, store.ProductFilter{Query: "100%"})
	require.NoError(t, err)
	assert.Empty(t, percent)

	featured, err := repo.List(ctx, store.ProductFilter{Featured: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Slim Fit Jeans", "Summer Dress"}, titles(featured))

	fresh, err := repo.List(ctx, store.ProductFilter{NewArrival: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Summer Dress"}, titles(fresh))

	sale, err := repo.List(ctx, store.ProductFilter{OnSale: true})
	require.NoError(t, err)
	require.Len(t, sale, 1)
	assert.Equal(t, "Linen Blazer", sale[0].Title)
	require.NotNil(t, sale[0].OriginalPrice)
	assert.Equal(t, int64(14900), *sale[0].OriginalPrice)
	assert.Equal(t, []model.Color{{Name: "Beige", Code: "#F5F5DC"}}, sale[0].Colors)
}

func testProductCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()
	products := SeedProducts(t, s)
	repo := s.Products()

	got, err := repo.Get(ctx, products[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Slim Fit Jeans", got.Title)
	assert.Nil(t, got.OriginalPrice)

	_, err = repo.Get(ctx, store.NewID())
	assert.ErrorIs(t, err, model.ErrNotFound)

	got.Rating = 4.5
	got.ReviewCount = 2
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.Get(ctx, got.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, again.Rating, 1e-9)
	assert.Equal(t, 2, again.ReviewCount)

	missing := model.Product{ID: store.NewID(), Title: "Ghost"}
	assert.ErrorIs(t, repo.Update(ctx, &missing), model.ErrNotFound)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, repo.Delete(ctx, got.ID))
	assert.ErrorIs(t, repo.Delete(ctx, got.ID), model.ErrNotFound)
	_, err = repo.Get(ctx, got.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func testCartLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	userID := store.NewID()
	repo := s.Carts()

	cart, err := repo.GetByUser(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, cart)

	c := model.NewCart(userID)
	now := time.Now().UTC()
	c.CreatedAt = now
	require.NoError(t, c.AddItem(model.CartItem{ProductID: "p1", Quantity: 2, Size: "M", Color: "Blue"}, now))
	require.NoError(t, repo.Save(ctx, c))
	require.NotEmpty(t, c.ID)

	stored, err := repo.GetByUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, c.ID, stored.ID)
	assert.Equal(t, c.Items, stored.Items)

	require.NoError(t, stored.AddItem(model.CartItem{ProductID: "p2", Quantity: 1}, now))
	require.NoError(t, repo.Save(ctx, stored))
	again, err := repo.GetByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, again.Items, 2)
	assert.Equal(t, c.ID, again.ID)

	require.NoError(t, repo.DeleteByUser(ctx, userID))
	gone, err := repo.GetByUser(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func testWishlist(t *testing.T, s store.Store) {
	ctx := context.Background()
	userID := store.NewID()
	repo := s.Wishlists()

	w, err := repo.GetByUser(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, w)

	w = model.NewWishlist(userID)
	w.Toggle("p1", time.Now())
	w.Toggle("p2", time.Now())
	require.NoError(t, repo.Save(ctx, w))

	w.Toggle("p1", time.Now())
	require.NoError(t, repo.Save(ctx, w))

	stored, err := repo.GetByUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, []string{"p2"}, stored.ProductIDs)
}

func testOrders(t *testing.T, s store.Store) {
	ctx := context.Background()
	userID := store.NewID()
	repo := s.Orders()
	base := time.Now().UTC().Truncate(time.Millisecond)

	var ids []string
	for idx := 0; idx < 3; idx++ {
		o := &model.Order{
			UserID:          userID,
			Items:           []model.OrderItem{{ProductID: "p1", Quantity: idx + 1, Price: 1000, Title: "Tee"}},
			Subtotal:        int64(1000 * (idx + 1)),
			ShippingFee:     599,
			TotalAmount:     int64(1000*(idx+1)) + 599,
			ShippingAddress: model.Address{FullName: "Ada", StreetAddress: "1 Main", City: "X", State: "Y", ZipCode: "1", Country: "Z"},
			Status:          model.OrderProcessing,
			CreatedAt:       base.Add(time.Duration(idx) * time.Second),
			UpdatedAt:       base.Add(time.Duration(idx) * time.Second),
		}
		require.NoError(t, repo.Create(ctx, o))
		ids = append(ids, o.ID)
	}
	other := &model.Order{UserID: store.NewID(), Status: model.OrderPending, CreatedAt: base}
	require.NoError(t, repo.Create(ctx, other))

	orders, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{orders[0].ID, orders[1].ID, orders[2].ID})
	assert.Equal(t, "Ada", orders[0].ShippingAddress.FullName)
	assert.Equal(t, 3, orders[0].Items[0].Quantity)

	require.NoError(t, repo.UpdateStatus(ctx, ids[0], model.OrderShipped))
	got, err := repo.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, model.OrderShipped, got.Status)

	_, err = repo.Get(ctx, store.NewID())
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, store.NewID(), model.OrderShipped), model.ErrNotFound)
}

func testReviews(t *testing.T, s store.Store) {
	ctx := context.Background()
	productID := store.NewID()
	repo := s.Reviews()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for idx, rating := range []int{3, 5} {
		r := &model.Review{
			UserID:    store.NewID(),
			ProductID: productID,
			Rating:    rating,
			Comment:   "ok",
			CreatedAt: base.Add(time.Duration(idx) * time.Second),
		}
		require.NoError(t, repo.Create(ctx, r))
	}
	require.NoError(t, repo.Create(ctx, &model.Review{UserID: store.NewID(), ProductID: store.NewID(), Rating: 1, CreatedAt: base}))

	reviews, err := repo.ListByProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.Equal(t, 3, reviews[1].Rating)
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.Users()

	u := &model.User{Email: "Ada@Example.com", Name: "Ada", Role: model.RoleUser, PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	dup := &model.User{Email: "ada@example.com", Name: "Other", Role: model.RoleUser, PasswordHash: "hash"}
	assert.ErrorIs(t, repo.Create(ctx, dup), model.ErrEmailTaken)

	byEmail, err := repo.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := repo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func testTxRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	userID := store.NewID()
	c := model.NewCart(userID)
	require.NoError(t, c.AddItem(model.CartItem{ProductID: "p1", Quantity: 1}, time.Now()))
	require.NoError(t, s.Carts().Save(ctx, c))

	boom := errors.New("boom")
	err := s.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Orders().Create(ctx, &model.Order{UserID: userID, Status: model.OrderProcessing, CreatedAt: time.Now()}); err != nil {
			return err
		}
		if err := tx.Carts().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	orders, err := s.Orders().ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	cart, err := s.Carts().GetByUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Len(t, cart.Items, 1)
}

func testTxCommit(t *testing.T, s store.Store) {
	ctx := context.Background()
	userID := store.NewID()
	c := model.NewCart(userID)
	require.NoError(t, c.AddItem(model.CartItem{ProductID: "p1", Quantity: 1}, time.Now()))
	require.NoError(t, s.Carts().Save(ctx, c))

	err := s.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Orders().Create(ctx, &model.Order{UserID: userID, Status: model.OrderProcessing, CreatedAt: time.Now()}); err != nil {
			return err
		}
		return tx.Carts().DeleteByUser(ctx, userID)
	})
	require.NoError(t, err)

	orders, err := s.Orders().ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	cart, err := s.Carts().GetByUser(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, cart)
}
