// Package handler exposes the storefront services over HTTP.
package handler

import (
	"errors"
	"net/http"

	"trendhive/internal/middleware"
	"trendhive/internal/model"
	"trendhive/internal/service"
	"trendhive/pkg/config"
	"trendhive/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Services are the use cases served over HTTP
type Services struct {
	Catalog  *service.CatalogService
	Carts    *service.CartService
	Wishlist *service.WishlistService
	Orders   *service.OrderService
	Reviews  *service.ReviewService
	Auth     *service.AuthService
	Insights *service.InsightService
}

// Handler holds the services behind the HTTP routes
type Handler struct {
	catalog  *service.CatalogService
	carts    *service.CartService
	wishlist *service.WishlistService
	orders   *service.OrderService
	reviews  *service.ReviewService
	auth     *service.AuthService
	insights *service.InsightService
	session  config.SessionConfig
}

// New creates a Handler
func New(svc Services, session config.SessionConfig) *Handler {
	return &Handler{
		catalog:  svc.Catalog,
		carts:    svc.Carts,
		wishlist: svc.Wishlist,
		orders:   svc.Orders,
		reviews:  svc.Reviews,
		auth:     svc.Auth,
		insights: svc.Insights,
		session:  session,
	}
}

// bind decodes the request body into req and runs its validate tags
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return model.NewValidationError("", "invalid request body")
	}
	return c.Validate(req)
}

// status maps service errors to an HTTP status and a client-safe message
func status(err error) (int, string) {
	var validation *model.ValidationError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message
	case errors.Is(err, model.ErrEmptyCart):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, model.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, model.ErrEmailTaken), errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.As(err, &httpErr):
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// fail writes err as {"error": message}. Server errors are logged with
// their details, which never reach the client.
func fail(c echo.Context, err error) error {
	code, msg := status(err)
	log := logger.FromEcho(c)
	if code >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
	} else {
		log.Info("Request rejected", zap.Int("status", code), zap.String("reason", msg))
	}
	return c.JSON(code, echo.Map{"error": msg})
}

// ErrorHandler renders errors that escape handlers, such as unknown routes
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if err := fail(c, err); err != nil {
		logger.FromEcho(c).Error("Failed to write error response", zap.Error(err))
	}
}

func identity(c echo.Context) *service.Identity {
	if id, ok := middleware.IdentityFrom(c); ok {
		return id
	}
	return &service.Identity{}
}

// Health reports liveness
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
