package model

import "time"

// Wishlist is a user's set of saved products
type Wishlist struct {
	ID         string    `json:"id" gorm:"type:varchar(36);primaryKey" bson:"_id"`
	UserID     string    `json:"userId" gorm:"type:varchar(36);uniqueIndex;not null" bson:"userId"`
	ProductIDs []string  `json:"productIds" gorm:"type:text;serializer:json" bson:"productIds"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NewWishlist returns the implicit empty wishlist of a user
func NewWishlist(userID string) *Wishlist {
	return &Wishlist{UserID: userID, ProductIDs: []string{}}
}

// Contains reports membership of productID
func (w *Wishlist) Contains(productID string) bool {
	for _, id := range w.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// Toggle adds productID when absent and removes it when present. It reports
// whether the product is a member afterwards.
func (w *Wishlist) Toggle(productID string, now time.Time) bool {
	w.UpdatedAt = now
	for idx, id := range w.ProductIDs {
		if id == productID {
			w.ProductIDs = append(w.ProductIDs[:idx:idx], w.ProductIDs[idx+1:]...)
			return false
		}
	}
	w.ProductIDs = append(w.ProductIDs, productID)
	return true
}

// Set replaces the members, keeping first occurrences only
func (w *Wishlist) Set(productIDs []string, now time.Time) {
	seen := make(map[string]struct{}, len(productIDs))
	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	w.ProductIDs = ids
	w.UpdatedAt = now
}

// Clone returns a deep copy
func (w Wishlist) Clone() Wishlist {
	out := w
	out.ProductIDs = append([]string{}, w.ProductIDs...)
	return out
}
