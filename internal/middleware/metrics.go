package middleware

import (
	"strconv"
	"time"

	metrics "trendhive/prometheus"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records request counts and durations by route pattern.
// Handler errors must already be rendered, so it runs outside the logger.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			metrics.RecordHTTPRequest(c.Request().Method, path,
				strconv.Itoa(c.Response().Status), time.Since(start))

			return err
		}
	}
}
