// Package seed loads the starter catalog and the admin account.
package seed

import (
	"context"
	"fmt"
	"time"

	"trendhive/internal/model"
	"trendhive/internal/store"
	"trendhive/pkg/logger"

	"go.uber.org/zap"
)

func price(v int64) *int64 { return &v }

func unsplash(id string) []string {
	return []string{"https://images.unsplash.com/" + id + "?auto=format&fit=crop&w=500&h=650&q=80"}
}

// Products returns the starter catalog in listing order
func Products() []model.Product {
	return []model.Product{
		{
			Title:         "Oversized Cotton Shirt",
			Description:   "Relaxed silhouette with dropped shoulders. Made from 100% organic cotton.",
			Price:         5900,
			OriginalPrice: price(7500),
			Category:      "women",
			SubCategory:   "shirts",
			Images:        unsplash("photo-1591047139829-d91aecb6caea"),
			Sizes:         []string{"S", "M", "L", "XL"},
			Colors:        []model.Color{{Name: "White", Code: "#FFFFFF"}, {Name: "Blue", Code: "#BFD7ED"}},
			Inventory:     40,
			OnSale:        true,
		},
		{
			Title:       "Slim Fit Jeans",
			Description: "Medium wash denim with slight stretch for comfort. Classic five-pocket design.",
			Price:       6900,
			Category:    "men",
			SubCategory: "jeans",
			Images:      unsplash("photo-1542272604-787c3835535d"),
			Sizes:       []string{"30", "32", "34", "36"},
			Colors:      []model.Color{{Name: "Medium Blue", Code: "#4A75BA"}, {Name: "Dark Blue", Code: "#162955"}},
			Inventory:   35,
			Featured:    true,
		},
		{
			Title:         "Linen Blazer",
			Description:   "Lightweight linen blazer, perfect for summer evenings.",
			Price:         12900,
			OriginalPrice: price(14900),
			Category:      "women",
			SubCategory:   "blazers",
			Images:        unsplash("photo-1512436991641-6745cdb1723f"),
			Sizes:         []string{"S", "M", "L"},
			Colors:        []model.Color{{Name: "Beige", Code: "#F5F5DC"}},
			Inventory:     20,
			Featured:      true,
			NewArrival:    true,
			OnSale:        true,
		},
		{
			Title:         "Classic Handbag",
			Description:   "Elegant and spacious, made from vegan leather.",
			Price:         8500,
			OriginalPrice: price(9500),
			Category:      "women",
			SubCategory:   "bags",
			Images:        unsplash("photo-1517841905240-472988babdf9"),
			Sizes:         []string{},
			Colors:        []model.Color{{Name: "Black", Code: "#000000"}, {Name: "Tan", Code: "#D2B48C"}},
			Inventory:     15,
			NewArrival:    true,
			OnSale:        true,
		},
		{
			Title:         "Cotton Trousers",
			Description:   "Comfortable cotton trousers for everyday wear.",
			Price:         4900,
			OriginalPrice: price(5900),
			Category:      "men",
			SubCategory:   "trousers",
			Images:        unsplash("photo-1503342217505-b0a15ec3261c"),
			Sizes:         []string{"30", "32", "34", "36"},
			Colors:        []model.Color{{Name: "Khaki", Code: "#C3B091"}},
			Inventory:     25,
			OnSale:        true,
		},
		{
			Title:         "Summer Dress",
			Description:   "Floral print summer dress with a relaxed fit.",
			Price:         7900,
			OriginalPrice: price(9900),
			Category:      "women",
			SubCategory:   "dresses",
			Images:        unsplash("photo-1469398715555-76331a6c7c9b"),
			Sizes:         []string{"S", "M", "L"},
			Colors:        []model.Color{{Name: "Floral", Code: "#FFB6C1"}},
			Inventory:     30,
			Featured:      true,
			NewArrival:    true,
			OnSale:        true,
		},
	}
}

// Catalog stores the starter products when the catalog is empty and reports
// how many were added. Creation times are a second apart so listings keep
// the seed order.
func Catalog(ctx context.Context, s store.Store, now time.Time) (int, error) {
	log := logger.FromContext(ctx)

	count, err := s.Products().Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		log.Info("Catalog already populated, skipping seed", zap.Int64("products", count))
		return 0, nil
	}

	products := Products()
	err = s.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		for i := range products {
			p := products[i]
			p.CreatedAt = now.Add(time.Duration(i) * time.Second)
			p.UpdatedAt = p.CreatedAt
			if err := tx.Products().Create(ctx, &p); err != nil {
				return fmt.Errorf("seed %q: %w", p.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info("Catalog seeded", zap.Int("products", len(products)))
	return len(products), nil
}

// AdminCreator is satisfied by service.AuthService
type AdminCreator interface {
	EnsureAdmin(ctx context.Context, email, name, password string) (*model.User, bool, error)
}

// Admin makes sure the configured admin account exists
func Admin(ctx context.Context, auth AdminCreator, email, name, password string) error {
	log := logger.FromContext(ctx)
	if email == "" || password == "" {
		log.Debug("No admin account configured")
		return nil
	}
	user, created, err := auth.EnsureAdmin(ctx, email, name, password)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if created {
		log.Info("Admin account created", zap.String("user_id", user.ID))
	} else if !user.IsAdmin() {
		log.Warn("Admin email belongs to a regular account", zap.String("user_id", user.ID))
	}
	return nil
}
