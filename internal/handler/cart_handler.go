package handler

import (
	"net/http"

	"trendhive/internal/model"
	"trendhive/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type setCartRequest struct {
	Items []model.CartItem `json:"items"`
}

// GetCart returns the current user's cart, empty when none was saved
func (h *Handler) GetCart(c echo.Context) error {
	cart, err := h.carts.GetCart(c.Request().Context(), identity(c).UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

// SetCart replaces the cart contents
func (h *Handler) SetCart(c echo.Context) error {
	var req setCartRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, model.NewValidationError("", "invalid request body"))
	}
	cart, err := h.carts.SetItems(c.Request().Context(), identity(c).UserID, req.Items)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

// AddToCart merges one item into the cart
func (h *Handler) AddToCart(c echo.Context) error {
	var item model.CartItem
	if err := bind(c, &item); err != nil {
		return fail(c, err)
	}
	cart, err := h.carts.AddItem(c.Request().Context(), identity(c).UserID, item)
	if err != nil {
		return fail(c, err)
	}

	logger.FromEcho(c).Info("Item added to cart",
		zap.String("product_id", item.ProductID),
		zap.Int("quantity", item.Quantity))
	return c.JSON(http.StatusOK, cart)
}

// ClearCart empties the cart
func (h *Handler) ClearCart(c echo.Context) error {
	if _, err := h.carts.Clear(c.Request().Context(), identity(c).UserID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Cart cleared"})
}

// CartSummary prices the cart against the current catalog
func (h *Handler) CartSummary(c echo.Context) error {
	summary, err := h.carts.Summary(c.Request().Context(), identity(c).UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

type wishlistRequest struct {
	ProductIDs []string `json:"productIds"`
}

type toggleRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

func (h *Handler) GetWishlist(c echo.Context) error {
	list, err := h.wishlist.Get(c.Request().Context(), identity(c).UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) SetWishlist(c echo.Context) error {
	var req wishlistRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, model.NewValidationError("", "invalid request body"))
	}
	list, err := h.wishlist.Set(c.Request().Context(), identity(c).UserID, req.ProductIDs)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ToggleWishlist adds the product when absent and removes it when present
func (h *Handler) ToggleWishlist(c echo.Context) error {
	var req toggleRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	list, added, err := h.wishlist.Toggle(c.Request().Context(), identity(c).UserID, req.ProductID)
	if err != nil {
		return fail(c, err)
	}

	logger.FromEcho(c).Info("Wishlist toggled",
		zap.String("product_id", req.ProductID),
		zap.Bool("added", added))
	return c.JSON(http.StatusOK, list)
}
