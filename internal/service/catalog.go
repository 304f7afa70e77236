// Package service holds the storefront use cases over a store.Store.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trendhive/internal/model"
	"trendhive/internal/store"
	"trendhive/pkg/logger"

	"go.uber.org/zap"
)

// CatalogService answers product queries and admin catalog edits
type CatalogService struct {
	store store.Store
	now   func() time.Time
}

// NewCatalogService creates a CatalogService
func NewCatalogService(s store.Store) *CatalogService {
	return &CatalogService{store: s, now: utcNow}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func (c *CatalogService) list(ctx context.Context, filter store.ProductFilter) ([]model.Product, error) {
	return store.Read(ctx, func() ([]model.Product, error) {
		return c.store.Products().List(ctx, filter)
	})
}

// List filters by category and subCategory, case-insensitively. Empty values match all.
func (c *CatalogService) List(ctx context.Context, category, subCategory string) ([]model.Product, error) {
	return c.list(ctx, store.ProductFilter{Category: category, SubCategory: subCategory})
}

// Search matches query against title and description
func (c *CatalogService) Search(ctx context.Context, query string) ([]model.Product, error) {
	return c.list(ctx, store.ProductFilter{Query: query})
}

// All returns the whole catalog
func (c *CatalogService) All(ctx context.Context) ([]model.Product, error) {
	return c.list(ctx, store.ProductFilter{})
}

func (c *CatalogService) ListFeatured(ctx context.Context) ([]model.Product, error) {
	return c.list(ctx, store.ProductFilter{Featured: true})
}

func (c *CatalogService) ListNewArrivals(ctx context.Context) ([]model.Product, error) {
	return c.list(ctx, store.ProductFilter{NewArrival: true})
}

func (c *CatalogService) ListOnSale(ctx context.Context) ([]model.Product, error) {
	return c.list(ctx, store.ProductFilter{OnSale: true})
}

// GetByID returns model.ErrProductNotFound for unknown or malformed ids
func (c *CatalogService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if !store.ValidID(id) {
		return nil, model.ErrProductNotFound
	}
	p, err := store.Read(ctx, func() (*model.Product, error) {
		return c.store.Products().Get(ctx, id)
	})
	if err != nil {
		return nil, productErr(err)
	}
	return p, nil
}

// Create adds a product. Ratings start empty.
func (c *CatalogService) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	p.ID = ""
	p.Rating = 0
	p.ReviewCount = 0
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now := c.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := c.store.Products().Create(ctx, &p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	logger.FromContext(ctx).Info("Product created", zap.String("product_id", p.ID))
	return &p, nil
}

// Update replaces the editable fields of a product. Rating, review count and
// creation time are owned by the store and kept.
func (c *CatalogService) Update(ctx context.Context, id string, p model.Product) (*model.Product, error) {
	existing, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ID = existing.ID
	p.Rating = existing.Rating
	p.ReviewCount = existing.ReviewCount
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = c.now()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := c.store.Products().Update(ctx, &p); err != nil {
		return nil, productErr(err)
	}
	return &p, nil
}

// Delete removes a product
func (c *CatalogService) Delete(ctx context.Context, id string) error {
	if !store.ValidID(id) {
		return model.ErrProductNotFound
	}
	if err := c.store.Products().Delete(ctx, id); err != nil {
		return productErr(err)
	}
	return nil
}

func productErr(err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrProductNotFound
	}
	return err
}
