// Package server assembles the echo application and its routes.
package server

import (
	"trendhive/internal/handler"
	mid "trendhive/internal/middleware"
	"trendhive/internal/service"
	"trendhive/pkg/config"
	"trendhive/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New builds the echo application. auth resolves session tokens for the
// protected routes.
func New(cfg *config.Config, h *handler.Handler, auth mid.Authenticator) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = service.Validator{}
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware())
	e.Use(mid.MetricsMiddleware())
	e.Use(logger.Middleware())
	// try-on uploads carry a base64 image
	e.Use(middleware.BodyLimit("10M"))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", handler.Health)

	requireUser := mid.AuthMiddleware(auth, cfg.Session.CookieName)
	api := e.Group("/api")

	// Accounts
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout, requireUser)
	api.GET("/user", h.CurrentUser, requireUser)

	// Catalog
	products := api.Group("/products")
	products.GET("", h.ListProducts)
	products.GET("/featured", h.ListFeatured)
	products.GET("/new", h.ListNewArrivals)
	products.GET("/sale", h.ListOnSale)
	products.GET("/:id", h.GetProduct)
	products.GET("/:id/reviews", h.ListProductReviews)
	products.POST("", h.CreateProduct, requireUser, mid.RequireAdmin)
	products.PUT("/:id", h.UpdateProduct, requireUser, mid.RequireAdmin)
	products.DELETE("/:id", h.DeleteProduct, requireUser, mid.RequireAdmin)

	// Cart and wishlist
	cart := api.Group("/cart", requireUser)
	cart.GET("", h.GetCart)
	cart.POST("", h.SetCart)
	cart.DELETE("", h.ClearCart)
	cart.POST("/add", h.AddToCart)
	cart.GET("/summary", h.CartSummary)

	wishlist := api.Group("/wishlist", requireUser)
	wishlist.GET("", h.GetWishlist)
	wishlist.POST("", h.SetWishlist)
	wishlist.POST("/toggle", h.ToggleWishlist)

	// Orders and reviews
	orders := api.Group("/orders", requireUser)
	orders.GET("", h.ListOrders)
	orders.POST("", h.PlaceOrder)
	orders.GET("/:id", h.GetOrder)
	orders.POST("/:id/cancel", h.CancelOrder)
	orders.PUT("/:id/status", h.UpdateOrderStatus, mid.RequireAdmin)

	api.POST("/reviews", h.CreateReview, requireUser)

	// Insights
	api.GET("/trends", h.Trends)
	api.GET("/recommendations/personalized", h.PersonalizedRecommendations, requireUser)
	api.POST("/virtual-try-on", h.VirtualTryOn)

	return e
}
