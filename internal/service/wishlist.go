package service

import (
	"context"
	"fmt"
	"time"

	"trendhive/internal/model"
	"trendhive/internal/store"
	metrics "trendhive/prometheus"
)

// WishlistService manages saved products per user
type WishlistService struct {
	store   store.Store
	catalog *CatalogService
	locks   *UserLocks
	now     func() time.Time
}

// NewWishlistService creates a WishlistService
func NewWishlistService(s store.Store, catalog *CatalogService, locks *UserLocks) *WishlistService {
	return &WishlistService{store: s, catalog: catalog, locks: locks, now: utcNow}
}

// Get returns the stored wishlist or an implicit empty one
func (w *WishlistService) Get(ctx context.Context, userID string) (*model.Wishlist, error) {
	list, err := store.Read(ctx, func() (*model.Wishlist, error) {
		return w.store.Wishlists().GetByUser(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	if list == nil {
		return model.NewWishlist(userID), nil
	}
	return list, nil
}

// Set replaces the wishlist with productIDs, dropping duplicates
func (w *WishlistService) Set(ctx context.Context, userID string, productIDs []string) (*model.Wishlist, error) {
	defer w.locks.Lock(wishlistKey(userID))()

	list, err := w.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	list.Set(productIDs, w.now())
	if err := w.save(ctx, list); err != nil {
		return nil, err
	}
	metrics.RecordCartOperation("wishlist_set")
	return list, nil
}

// Toggle adds productID when absent and removes it when present. It reports
// whether the product is in the wishlist afterwards. Only existing products
// can be added.
func (w *WishlistService) Toggle(ctx context.Context, userID, productID string) (*model.Wishlist, bool, error) {
	defer w.locks.Lock(wishlistKey(userID))()

	list, err := w.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if !list.Contains(productID) {
		if _, err := w.catalog.GetByID(ctx, productID); err != nil {
			return nil, false, err
		}
	}
	member := list.Toggle(productID, w.now())
	if err := w.save(ctx, list); err != nil {
		return nil, false, err
	}
	metrics.RecordCartOperation("wishlist_toggle")
	return list, member, nil
}

func (w *WishlistService) save(ctx context.Context, list *model.Wishlist) error {
	if list.CreatedAt.IsZero() {
		list.CreatedAt = list.UpdatedAt
	}
	if err := w.store.Wishlists().Save(ctx, list); err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	return nil
}

func wishlistKey(userID string) string {
	return "wishlist:" + userID
}
