package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trendhive/internal/model"
	"trendhive/internal/store"
	metrics "trendhive/prometheus"
)

// ReviewService records reviews and keeps product ratings consistent with them
type ReviewService struct {
	store store.Store
	locks *UserLocks
	now   func() time.Time
}

// NewReviewService creates a ReviewService
func NewReviewService(s store.Store, locks *UserLocks) *ReviewService {
	return &ReviewService{store: s, locks: locks, now: utcNow}
}

// Add stores a review and recomputes the product's mean rating and review
// count from all of its reviews
func (r *ReviewService) Add(ctx context.Context, userID, productID string, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, model.NewValidationError("rating", "rating must be between 1 and 5")
	}
	if !store.ValidID(productID) {
		return nil, model.ErrProductNotFound
	}

	// concurrent reviews of one product must not recount from stale reads
	defer r.locks.Lock("product:" + productID)()

	review := &model.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: r.now(),
	}
	err := r.store.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		product, err := tx.Products().Get(ctx, productID)
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrProductNotFound
		}
		if err != nil {
			return err
		}
		if err := tx.Reviews().Create(ctx, review); err != nil {
			return fmt.Errorf("create review: %w", err)
		}

		reviews, err := tx.Reviews().ListByProduct(ctx, productID)
		if err != nil {
			return err
		}
		product.Rating = model.AverageRating(reviews)
		product.ReviewCount = len(reviews)
		product.UpdatedAt = r.now()
		return tx.Products().Update(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordReview()
	return review, nil
}

// ListForProduct returns the product's reviews, newest first
func (r *ReviewService) ListForProduct(ctx context.Context, productID string) ([]model.Review, error) {
	if !store.ValidID(productID) {
		return []model.Review{}, nil
	}
	return store.Read(ctx, func() ([]model.Review, error) {
		return r.store.Reviews().ListByProduct(ctx, productID)
	})
}
