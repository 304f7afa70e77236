package handler

import (
	"net/http"
	"strings"

	"trendhive/internal/model"
	"trendhive/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type tryOnRequest struct {
	ProductID   string `json:"productId"`
	ImageBase64 string `json:"imageBase64"`
}

type tryOnProduct struct {
	Title    string `json:"title"`
	Image    string `json:"image"`
	Category string `json:"category"`
}

type tryOnResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	ProductID string       `json:"productId"`
	ImageURL  string       `json:"imageUrl"`
	TryOnID   string       `json:"tryOnId"`
	Product   tryOnProduct `json:"product"`
}

// VirtualTryOn is a placeholder: it echoes the uploaded image with the
// product's details until an image pipeline exists
func (h *Handler) VirtualTryOn(c echo.Context) error {
	var req tryOnRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, model.NewValidationError("", "invalid request body"))
	}
	if strings.TrimSpace(req.ProductID) == "" {
		return fail(c, model.NewValidationError("productId", "Product ID is required"))
	}
	product, err := h.catalog.GetByID(c.Request().Context(), req.ProductID)
	if err != nil {
		return fail(c, err)
	}
	if req.ImageBase64 == "" {
		return fail(c, model.NewValidationError("imageBase64", "Image data is required for virtual try-on"))
	}

	res := tryOnResponse{
		Success:   true,
		Message:   "Virtual try-on processed successfully",
		ProductID: product.ID,
		ImageURL:  req.ImageBase64,
		TryOnID:   uuid.New().String(),
		Product: tryOnProduct{
			Title:    product.Title,
			Image:    product.FirstImage(),
			Category: product.Category,
		},
	}
	logger.FromEcho(c).Info("Virtual try-on processed",
		zap.String("product_id", product.ID),
		zap.String("try_on_id", res.TryOnID))
	return c.JSON(http.StatusOK, res)
}
