package middleware

import (
	"context"
	"net/http"
	"strings"

	"trendhive/internal/service"
	"trendhive/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const identityKey = "identity"

// Authenticator resolves a bearer token to the caller's identity
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Identity, error)
}

// TokenFromRequest returns the session cookie value or, failing that, the
// Bearer token of the Authorization header
func TokenFromRequest(c echo.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	parts := strings.SplitN(c.Request().Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthMiddleware rejects requests without a live session with 401 and stores
// the caller's identity on the context
func AuthMiddleware(auth Authenticator, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			token := TokenFromRequest(c, cookieName)
			if token == "" {
				log.Warn("Missing session token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			identity, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				log.Warn("Rejected session token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired session"})
			}

			c.Set(identityKey, identity)
			log = log.With(zap.String("user_id", identity.UserID))
			c.Set("logger", log)
			c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context(), log)))

			return next(c)
		}
	}
}

// RequireAdmin answers 403 unless AuthMiddleware stored an admin identity
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, ok := IdentityFrom(c)
		if !ok || !identity.IsAdmin() {
			logger.FromEcho(c).Warn("Admin route refused")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
		}
		return next(c)
	}
}

// IdentityFrom returns the identity stored by AuthMiddleware
func IdentityFrom(c echo.Context) (*service.Identity, bool) {
	identity, ok := c.Get(identityKey).(*service.Identity)
	return identity, ok
}

// UserID returns the authenticated user's id, or "" outside AuthMiddleware
func UserID(c echo.Context) string {
	if identity, ok := IdentityFrom(c); ok {
		return identity.UserID
	}
	return ""
}
