package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trendhive/internal/model"
	"trendhive/internal/store"
	"trendhive/pkg/logger"
	metrics "trendhive/prometheus"

	"go.uber.org/zap"
)

// OrderService turns carts into orders and moves orders through their
// status machine
type OrderService struct {
	store    store.Store
	locks    *UserLocks
	shipping model.ShippingPolicy
	now      func() time.Time
}

// NewOrderService creates an OrderService. locks must be the table the
// CartService uses so checkout cannot interleave with cart edits.
func NewOrderService(s store.Store, locks *UserLocks, shipping model.ShippingPolicy) *OrderService {
	return &OrderService{store: s, locks: locks, shipping: shipping, now: utcNow}
}

// Place checks out the user's cart. Prices, titles and images are frozen
// from the catalog; the order is created and the cart cleared atomically.
func (o *OrderService) Place(ctx context.Context, userID string, address model.Address) (*model.Order, error) {
	if err := validateStruct(address); err != nil {
		return nil, err
	}

	defer o.locks.Lock(userID)()

	var order *model.Order
	err := o.store.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		cart, err := tx.Carts().GetByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if cart.IsEmpty() {
			return model.ErrEmptyCart
		}

		items := make([]model.OrderItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			p, err := tx.Products().Get(ctx, line.ProductID)
			if errors.Is(err, model.ErrNotFound) {
				return fmt.Errorf("%w: %s", model.ErrProductNotFound, line.ProductID)
			}
			if err != nil {
				return err
			}
			items = append(items, model.OrderItem{
				ProductID: p.ID,
				Quantity:  line.Quantity,
				Size:      line.Size,
				Color:     line.Color,
				Price:     p.Price,
				Title:     p.Title,
				Image:     p.FirstImage(),
			})
		}

		subtotal := model.Subtotal(items)
		fee := o.shipping.FeeFor(subtotal)
		now := o.now()
		order = &model.Order{
			UserID:          userID,
			Items:           items,
			Subtotal:        subtotal,
			ShippingFee:     fee,
			TotalAmount:     subtotal + fee,
			ShippingAddress: address,
			Status:          model.OrderProcessing,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return tx.Carts().DeleteByUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordOrderPlaced(order.TotalAmount)
	logger.FromContext(ctx).Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.Int64("total_amount", order.TotalAmount),
		zap.String("total", model.FormatMinor(order.TotalAmount)))
	return order, nil
}

// ListForUser returns the user's orders, newest first
func (o *OrderService) ListForUser(ctx context.Context, userID string) ([]model.Order, error) {
	return store.Read(ctx, func() ([]model.Order, error) {
		return o.store.Orders().ListByUser(ctx, userID)
	})
}

// GetByID returns model.ErrNotFound for unknown or malformed ids
func (o *OrderService) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if !store.ValidID(id) {
		return nil, model.ErrNotFound
	}
	return store.Read(ctx, func() (*model.Order, error) {
		return o.store.Orders().Get(ctx, id)
	})
}

// GetForUser returns the order when userID owns it or admin is set
func (o *OrderService) GetForUser(ctx context.Context, userID, id string, admin bool) (*model.Order, error) {
	order, err := o.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && order.UserID != userID {
		return nil, model.ErrForbidden
	}
	return order, nil
}

// Cancel cancels the user's own order while it is pending or processing
func (o *OrderService) Cancel(ctx context.Context, userID, id string) (*model.Order, error) {
	return o.transition(ctx, id, model.OrderCancelled, func(order *model.Order) error {
		if order.UserID != userID {
			return model.ErrForbidden
		}
		return nil
	})
}

// UpdateStatus moves an order to status if the status machine allows it
func (o *OrderService) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	return o.transition(ctx, id, status, nil)
}

func (o *OrderService) transition(ctx context.Context, id string, next model.OrderStatus, check func(*model.Order) error) (*model.Order, error) {
	if !store.ValidID(id) {
		return nil, model.ErrNotFound
	}

	var order *model.Order
	err := o.store.Tx(ctx, func(ctx context.Context, tx store.Store) error {
		current, err := tx.Orders().Get(ctx, id)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(current); err != nil {
				return err
			}
		}
		if !current.Status.CanTransition(next) {
			return fmt.Errorf("%w: %s to %s", model.ErrInvalidTransition, current.Status, next)
		}
		if err := tx.Orders().UpdateStatus(ctx, id, next); err != nil {
			return err
		}
		current.Status = next
		current.UpdatedAt = o.now()
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordOrderOperation(string(next))
	logger.FromContext(ctx).Info("Order status changed",
		zap.String("order_id", id),
		zap.String("status", string(next)))
	return order, nil
}
