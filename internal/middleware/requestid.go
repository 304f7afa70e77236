package middleware

import (
	"trendhive/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HeaderRequestID carries the request id in both directions
const HeaderRequestID = "X-Request-ID"

// RequestIDMiddleware reuses the caller's request ID or generates one, and
// attaches a logger carrying it to both the echo and the request context
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
				c.Request().Header.Set(HeaderRequestID, requestID)
			}
			c.Response().Header().Set(HeaderRequestID, requestID)
			c.Set("request_id", requestID)

			log := logger.GetLogger().With(zap.String("request_id", requestID))
			c.Set("logger", log)
			c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context(), log)))

			return next(c)
		}
	}
}
