package handler

import (
	"net/http"
	"strings"

	"trendhive/internal/model"
	"trendhive/pkg/logger"
	metrics "trendhive/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListProducts searches when ?search= is given, otherwise filters by
// category and subCategory
func (h *Handler) ListProducts(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	var (
		products []model.Product
		err      error
	)
	if search := strings.TrimSpace(c.QueryParam("search")); search != "" {
		log.Debug("Searching products", zap.String("search", search))
		products, err = h.catalog.Search(ctx, search)
	} else {
		category, subCategory := c.QueryParam("category"), c.QueryParam("subCategory")
		log.Debug("Listing products",
			zap.String("category", category),
			zap.String("sub_category", subCategory))
		products, err = h.catalog.List(ctx, category, subCategory)
	}
	if err != nil {
		return fail(c, err)
	}

	log.Info("Products retrieved", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, products)
}

func (h *Handler) ListFeatured(c echo.Context) error {
	products, err := h.catalog.ListFeatured(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *Handler) ListNewArrivals(c echo.Context) error {
	products, err := h.catalog.ListNewArrivals(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *Handler) ListOnSale(c echo.Context) error {
	products, err := h.catalog.ListOnSale(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct returns one product and counts the view
func (h *Handler) GetProduct(c echo.Context) error {
	id := c.Param("id")
	product, err := h.catalog.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}

	metrics.RecordProductView(product.ID, product.Category)
	return c.JSON(http.StatusOK, product)
}

// CreateProduct adds a catalog entry (admin)
func (h *Handler) CreateProduct(c echo.Context) error {
	var req model.Product
	if err := c.Bind(&req); err != nil {
		return fail(c, model.NewValidationError("", "invalid request body"))
	}
	product, err := h.catalog.Create(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct replaces a catalog entry (admin)
func (h *Handler) UpdateProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req model.Product
	if err := c.Bind(&req); err != nil {
		return fail(c, model.NewValidationError("", "invalid request body"))
	}
	product, err := h.catalog.Update(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err)
	}

	log.Info("Product updated", zap.String("product_id", id))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a catalog entry (admin)
func (h *Handler) DeleteProduct(c echo.Context) error {
	id := c.Param("id")
	if err := h.catalog.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}

	logger.FromEcho(c).Info("Product deleted", zap.String("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted"})
}

// ListProductReviews returns a product's reviews, newest first
func (h *Handler) ListProductReviews(c echo.Context) error {
	reviews, err := h.reviews.ListForProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reviews)
}

type reviewRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// CreateReview rates a product for the current user
func (h *Handler) CreateReview(c echo.Context) error {
	var req reviewRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	review, err := h.reviews.Add(c.Request().Context(), identity(c).UserID, req.ProductID, req.Rating, req.Comment)
	if err != nil {
		return fail(c, err)
	}

	logger.FromEcho(c).Info("Review created",
		zap.String("product_id", review.ProductID),
		zap.Int("rating", review.Rating))
	return c.JSON(http.StatusCreated, review)
}
