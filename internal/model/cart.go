package model

import (
	"strings"
	"time"
)

// CartItem is one line of a cart. Lines are identified by (ProductID, Size, Color).
type CartItem struct {
	ProductID string `json:"productId" bson:"productId" validate:"required"`
	Quantity  int    `json:"quantity" bson:"quantity" validate:"min=1"`
	Size      string `json:"size" bson:"size"`
	Color     string `json:"color" bson:"color"`
}

func (i CartItem) sameLine(o CartItem) bool {
	return i.ProductID == o.ProductID && i.Size == o.Size && i.Color == o.Color
}

func (i CartItem) validate() error {
	if strings.TrimSpace(i.ProductID) == "" {
		return NewValidationError("productId", "productId is required")
	}
	if i.Quantity < 1 {
		return NewValidationError("quantity", "quantity must be at least 1")
	}
	return nil
}

// Cart is owned 1:1 by a user and materialized on first mutation.
// An ID of "" marks a cart that has never been stored.
type Cart struct {
	ID        string     `json:"id" gorm:"type:varchar(36);primaryKey" bson:"_id"`
	UserID    string     `json:"userId" gorm:"type:varchar(36);uniqueIndex;not null" bson:"userId"`
	Items     []CartItem `json:"items" gorm:"type:text;serializer:json" bson:"items"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// NewCart returns the implicit empty cart of a user
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

// AddItem merges item into the line with the same identity or appends it
func (c *Cart) AddItem(item CartItem, now time.Time) error {
	if err := item.validate(); err != nil {
		return err
	}
	for idx := range c.Items {
		if c.Items[idx].sameLine(item) {
			c.Items[idx].Quantity += item.Quantity
			c.UpdatedAt = now
			return nil
		}
	}
	c.Items = append(c.Items, item)
	c.UpdatedAt = now
	return nil
}

// SetItems replaces every line. Repeated identities in items are merged.
func (c *Cart) SetItems(items []CartItem, now time.Time) error {
	merged := make([]CartItem, 0, len(items))
	for _, item := range items {
		if err := item.validate(); err != nil {
			return err
		}
		found := false
		for idx := range merged {
			if merged[idx].sameLine(item) {
				merged[idx].Quantity += item.Quantity
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, item)
		}
	}
	c.Items = merged
	c.UpdatedAt = now
	return nil
}

// Clear drops every line
func (c *Cart) Clear(now time.Time) {
	c.Items = []CartItem{}
	c.UpdatedAt = now
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Quantity is the total number of units across lines
func (c *Cart) Quantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Clone returns a deep copy
func (c Cart) Clone() Cart {
	out := c
	out.Items = append([]CartItem{}, c.Items...)
	return out
}
