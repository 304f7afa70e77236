package service

import (
	"context"
	"testing"
	"time"

	"trendhive/internal/model"
	"trendhive/internal/store"
	"trendhive/internal/store/memory"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memory.Store
	locks    *UserLocks
	catalog  *CatalogService
	carts    *CartService
	wishlist *WishlistService
	orders   *OrderService
	reviews  *ReviewService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.New()
	locks := NewUserLocks()
	catalog := NewCatalogService(s)
	return &fixture{
		store:    s,
		locks:    locks,
		catalog:  catalog,
		carts:    NewCartService(s, catalog, locks, model.DefaultShippingPolicy),
		wishlist: NewWishlistService(s, catalog, locks),
		orders:   NewOrderService(s, locks, model.DefaultShippingPolicy),
		reviews:  NewReviewService(s, locks),
	}
}

func int64Ptr(v int64) *int64 { return &v }

// addProduct stores a product created one minute after the previous one
func (f *fixture) addProduct(t *testing.T, p model.Product) model.Product {
	t.Helper()
	count, err := f.store.Products().Count(context.Background())
	require.NoError(t, err)
	p.CreatedAt = time.Date(2024, 1, 1, 0, int(count), 0, 0, time.UTC)
	require.NoError(t, f.store.Products().Create(context.Background(), &p))
	return p
}

func testAddress() model.Address {
	return model.Address{
		FullName:      "Ada Lovelace",
		StreetAddress: "12 Analytical Way",
		City:          "London",
		State:         "LDN",
		ZipCode:       "N1 1AA",
		Country:       "UK",
	}
}

var missingID = store.NewID()
