package handler

import (
	"net/http"

	"trendhive/internal/model"

	"github.com/labstack/echo/v4"
)

type placeOrderRequest struct {
	ShippingAddress model.Address `json:"shippingAddress"`
}

type statusRequest struct {
	Status model.OrderStatus `json:"status" validate:"required"`
}

// ListOrders returns the current user's orders, newest first
func (h *Handler) ListOrders(c echo.Context) error {
	orders, err := h.orders.ListForUser(c.Request().Context(), identity(c).UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder returns an order owned by the caller; admins may read any order
func (h *Handler) GetOrder(c echo.Context) error {
	caller := identity(c)
	order, err := h.orders.GetForUser(c.Request().Context(), caller.UserID, c.Param("id"), caller.IsAdmin())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// PlaceOrder checks out the caller's cart. Prices come from the catalog,
// never from the request.
func (h *Handler) PlaceOrder(c echo.Context) error {
	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, model.NewValidationError("", "invalid request body"))
	}
	order, err := h.orders.Place(c.Request().Context(), identity(c).UserID, req.ShippingAddress)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// CancelOrder cancels the caller's order while it is pending or processing
func (h *Handler) CancelOrder(c echo.Context) error {
	order, err := h.orders.Cancel(c.Request().Context(), identity(c).UserID, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus moves an order along the fulfillment states (admin)
func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	order, err := h.orders.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, order)
}
