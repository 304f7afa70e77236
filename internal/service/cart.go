package service

import (
	"context"
	"fmt"
	"time"

	"trendhive/internal/model"
	"trendhive/internal/store"
	metrics "trendhive/prometheus"
)

// CartService manages the per-user cart. Mutations for one user are serialized.
type CartService struct {
	store    store.Store
	catalog  *CatalogService
	locks    *UserLocks
	shipping model.ShippingPolicy
	now      func() time.Time
}

// NewCartService creates a CartService. locks is shared with the other
// services that mutate a user's cart.
func NewCartService(s store.Store, catalog *CatalogService, locks *UserLocks, shipping model.ShippingPolicy) *CartService {
	return &CartService{store: s, catalog: catalog, locks: locks, shipping: shipping, now: utcNow}
}

func (c *CartService) load(ctx context.Context, userID string) (*model.Cart, error) {
	cart, err := store.Read(ctx, func() (*model.Cart, error) {
		return c.store.Carts().GetByUser(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		return model.NewCart(userID), nil
	}
	return cart, nil
}

// GetCart returns the stored cart or an implicit empty one, which is not persisted
func (c *CartService) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	return c.load(ctx, userID)
}

// SetItems replaces the cart wholesale; the last write wins
func (c *CartService) SetItems(ctx context.Context, userID string, items []model.CartItem) (*model.Cart, error) {
	defer c.locks.Lock(userID)()

	cart, err := c.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := c.now()
	if err := cart.SetItems(items, now); err != nil {
		return nil, err
	}
	if err := c.save(ctx, cart, now); err != nil {
		return nil, err
	}
	metrics.RecordCartOperation("set")
	return cart, nil
}

// AddItem merges item into the line with the same product, size and color
func (c *CartService) AddItem(ctx context.Context, userID string, item model.CartItem) (*model.Cart, error) {
	if item.Quantity < 1 {
		return nil, model.NewValidationError("quantity", "quantity must be at least 1")
	}
	if _, err := c.catalog.GetByID(ctx, item.ProductID); err != nil {
		return nil, err
	}

	defer c.locks.Lock(userID)()

	cart, err := c.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := c.now()
	if err := cart.AddItem(item, now); err != nil {
		return nil, err
	}
	if err := c.save(ctx, cart, now); err != nil {
		return nil, err
	}
	metrics.RecordCartOperation("add")
	return cart, nil
}

// Clear empties the cart
func (c *CartService) Clear(ctx context.Context, userID string) (*model.Cart, error) {
	defer c.locks.Lock(userID)()

	cart, err := c.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.ID == "" {
		return cart, nil
	}
	now := c.now()
	cart.Clear(now)
	if err := c.save(ctx, cart, now); err != nil {
		return nil, err
	}
	metrics.RecordCartOperation("clear")
	return cart, nil
}

func (c *CartService) save(ctx context.Context, cart *model.Cart, now time.Time) error {
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	if err := c.store.Carts().Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// CartLine is a cart item resolved against the catalog
type CartLine struct {
	model.CartItem
	Title     string `json:"title"`
	Image     string `json:"image"`
	Price     int64  `json:"price"`
	LineTotal int64  `json:"lineTotal"`
}

// CartSummary prices the cart at current catalog prices
type CartSummary struct {
	Lines       []CartLine `json:"lines"`
	Unavailable []string   `json:"unavailable"`
	ItemCount   int        `json:"itemCount"`
	Subtotal    int64      `json:"subtotal"`
	ShippingFee int64      `json:"shippingFee"`
	Total       int64      `json:"total"`
}

// Summary resolves the cart lines and computes totals. Lines whose product
// no longer exists are listed in Unavailable and excluded from the totals.
func (c *CartService) Summary(ctx context.Context, userID string) (*CartSummary, error) {
	cart, err := c.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &CartSummary{Lines: []CartLine{}, Unavailable: []string{}}
	for _, item := range cart.Items {
		p, err := c.catalog.GetByID(ctx, item.ProductID)
		if err != nil {
			if isNotFound(err) {
				summary.Unavailable = append(summary.Unavailable, item.ProductID)
				continue
			}
			return nil, err
		}
		line := CartLine{
			CartItem:  item,
			Title:     p.Title,
			Image:     p.FirstImage(),
			Price:     p.Price,
			LineTotal: p.Price * int64(item.Quantity),
		}
		summary.Lines = append(summary.Lines, line)
		summary.ItemCount += item.Quantity
		summary.Subtotal += line.LineTotal
	}
	if summary.ItemCount > 0 {
		summary.ShippingFee = c.shipping.FeeFor(summary.Subtotal)
	}
	summary.Total = summary.Subtotal + summary.ShippingFee
	return summary, nil
}
