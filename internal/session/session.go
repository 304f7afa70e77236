// Package session keeps server-side login sessions so a token can be revoked.
package session

import (
	"context"
	"errors"
	"time"

	"trendhive/internal/model"
)

// ErrNotFound is returned for unknown or expired sessions
var ErrNotFound = errors.New("session not found")

// Session binds a session id to the logged-in user
type Session struct {
	ID        string
	UserID    string
	Role      model.Role
	ExpiresAt time.Time
}

// Store persists sessions
type Store interface {
	Create(ctx context.Context, userID string, role model.Role, ttl time.Duration) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
