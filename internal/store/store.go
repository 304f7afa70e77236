// Package store defines the persistence ports of the storefront and the
// helpers shared by its backends.
package store

import (
	"context"
	"strings"

	"trendhive/internal/model"

	"github.com/google/uuid"
)

// ProductFilter narrows a catalog listing. Zero values match everything.
// Category and SubCategory match case-insensitively and exactly, Query is a
// case-insensitive substring of title or description.
type ProductFilter struct {
	Category    string
	SubCategory string
	Query       string
	Featured    bool
	NewArrival  bool
	OnSale      bool
}

// Match reports whether p satisfies the filter
func (f ProductFilter) Match(p model.Product) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.SubCategory != "" && !strings.EqualFold(p.SubCategory, f.SubCategory) {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if f.Featured && !p.Featured {
		return false
	}
	if f.NewArrival && !p.NewArrival {
		return false
	}
	if f.OnSale && !p.OnSale {
		return false
	}
	return true
}

// ProductRepository persists the catalog. Listings are ordered by creation time.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	Get(ctx context.Context, id string) (*model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// CartRepository persists carts keyed by owner.
// GetByUser returns (nil, nil) when the user has no stored cart.
type CartRepository interface {
	GetByUser(ctx context.Context, userID string) (*model.Cart, error)
	Save(ctx context.Context, c *model.Cart) error
	DeleteByUser(ctx context.Context, userID string) error
}

// WishlistRepository persists wishlists keyed by owner.
// GetByUser returns (nil, nil) when the user has no stored wishlist.
type WishlistRepository interface {
	GetByUser(ctx context.Context, userID string) (*model.Wishlist, error)
	Save(ctx context.Context, w *model.Wishlist) error
}

// OrderRepository persists orders. ListByUser returns newest first.
type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	Get(ctx context.Context, id string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error
}

// ReviewRepository persists reviews. ListByProduct returns newest first.
type ReviewRepository interface {
	Create(ctx context.Context, r *model.Review) error
	ListByProduct(ctx context.Context, productID string) ([]model.Review, error)
}

// UserRepository persists accounts. Create fails with model.ErrEmailTaken
// for a duplicate email.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	Get(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// Store groups the repositories of one backend
type Store interface {
	Products() ProductRepository
	Carts() CartRepository
	Wishlists() WishlistRepository
	Orders() OrderRepository
	Reviews() ReviewRepository
	Users() UserRepository

	// Tx runs fn atomically. Repositories reached through the Store passed to
	// fn must be called with the context passed to fn.
	Tx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
	Migrate(ctx context.Context) error
	Close() error
}

// NewID returns a fresh entity identifier
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id is a well-formed entity identifier. Lookups of
// malformed ids report model.ErrNotFound.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// NormalizeEmail lower-cases and trims an email for lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
