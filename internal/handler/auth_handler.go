package handler

import (
	"net/http"
	"time"

	"trendhive/internal/model"
	"trendhive/internal/service"
	"trendhive/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func (h *Handler) setSessionCookie(c echo.Context, value string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     h.session.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.session.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	c.SetCookie(cookie)
}

func (h *Handler) loggedIn(c echo.Context, code int, login *service.Login) error {
	h.setSessionCookie(c, login.Token, login.ExpiresAt)
	return c.JSON(code, loginResponse{User: login.User, Token: login.Token, ExpiresAt: login.ExpiresAt})
}

// Register creates an account and starts its first session
func (h *Handler) Register(c echo.Context) error {
	var req service.Registration
	if err := c.Bind(&req); err != nil {
		return fail(c, model.NewValidationError("", "invalid request body"))
	}
	login, err := h.auth.Register(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return h.loggedIn(c, http.StatusCreated, login)
}

// Login starts a session for valid credentials
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	login, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	logger.FromEcho(c).Info("User logged in", zap.String("user_id", login.User.ID))
	return h.loggedIn(c, http.StatusOK, login)
}

// Logout ends the caller's session; its token stops working immediately
func (h *Handler) Logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), identity(c).SessionID); err != nil {
		return fail(c, err)
	}
	h.setSessionCookie(c, "", time.Unix(0, 0))
	return c.NoContent(http.StatusOK)
}

// CurrentUser returns the caller's account
func (h *Handler) CurrentUser(c echo.Context) error {
	user, err := h.auth.CurrentUser(c.Request().Context(), identity(c).UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
