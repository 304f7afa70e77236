package model

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Color is a named swatch offered for a product
type Color struct {
	Name string `json:"name" bson:"name" validate:"required"`
	Code string `json:"code" bson:"code"`
}

// Product represents a catalog entry. Prices are in minor currency units.
type Product struct {
	ID            string    `json:"id" gorm:"type:varchar(36);primaryKey" bson:"_id"`
	Title         string    `json:"title" gorm:"type:varchar(255);not null" bson:"title"`
	Description   string    `json:"description" gorm:"type:text" bson:"description"`
	Price         int64     `json:"price" gorm:"not null" bson:"price"`
	OriginalPrice *int64    `json:"originalPrice,omitempty" bson:"originalPrice,omitempty"`
	Category      string    `json:"category" gorm:"type:varchar(100);index" bson:"category"`
	SubCategory   string    `json:"subCategory" gorm:"type:varchar(100);index" bson:"subCategory"`
	Images        []string  `json:"images" gorm:"type:text;serializer:json" bson:"images"`
	Sizes         []string  `json:"sizes" gorm:"type:text;serializer:json" bson:"sizes"`
	Colors        []Color   `json:"colors" gorm:"type:text;serializer:json" bson:"colors"`
	Inventory     int       `json:"inventory" gorm:"default:0" bson:"inventory"`
	Featured      bool      `json:"featured" gorm:"index" bson:"featured"`
	NewArrival    bool      `json:"newArrival" gorm:"index" bson:"newArrival"`
	OnSale        bool      `json:"onSale" gorm:"index" bson:"onSale"`
	Rating        float64   `json:"rating" gorm:"default:0" bson:"rating"`
	ReviewCount   int       `json:"reviewCount" gorm:"default:0" bson:"reviewCount"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// RoundedRating is the mean rating rounded to the nearest star, halves up
func (p Product) RoundedRating() int {
	return int(math.Floor(p.Rating + 0.5))
}

// DiscountPercent is the advertised markdown against OriginalPrice, 0 without one
func (p Product) DiscountPercent() int {
	if p.OriginalPrice == nil {
		return 0
	}
	return DiscountPercent(p.Price, *p.OriginalPrice)
}

// FirstImage returns the main product image or an empty string
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ColorNames lists the color names in catalog order
func (p Product) ColorNames() []string {
	names := make([]string, 0, len(p.Colors))
	for _, c := range p.Colors {
		names = append(names, c.Name)
	}
	return names
}

// Validate checks the catalog invariants
func (p Product) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return NewValidationError("title", "title is required")
	}
	if p.Price < 0 {
		return NewValidationError("price", "price must not be negative")
	}
	if p.OriginalPrice != nil && *p.OriginalPrice < 0 {
		return NewValidationError("originalPrice", "originalPrice must not be negative")
	}
	if p.Inventory < 0 {
		return NewValidationError("inventory", "inventory must not be negative")
	}
	if p.Rating < 0 || p.Rating > 5 {
		return NewValidationError("rating", "rating must be between 0 and 5")
	}
	if p.ReviewCount < 0 {
		return NewValidationError("reviewCount", "reviewCount must not be negative")
	}
	return nil
}

// Clone returns a deep copy
func (p Product) Clone() Product {
	out := p
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		out.OriginalPrice = &v
	}
	out.Images = append([]string(nil), p.Images...)
	out.Sizes = append([]string(nil), p.Sizes...)
	out.Colors = append([]Color(nil), p.Colors...)
	return out
}

// MarshalJSON adds the derived display fields
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		RatingRounded   int `json:"ratingRounded"`
		DiscountPercent int `json:"discountPercent,omitempty"`
	}{
		product:         product(p),
		RatingRounded:   p.RoundedRating(),
		DiscountPercent: p.DiscountPercent(),
	})
}
