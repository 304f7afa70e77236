package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trendhive/internal/model"
	"trendhive/internal/session"
	"trendhive/internal/store"
	"trendhive/pkg/jwtutil"
	"trendhive/pkg/logger"
	metrics "trendhive/prometheus"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Identity is the authenticated caller of a request
type Identity struct {
	UserID    string
	Email     string
	Role      model.Role
	SessionID string
}

// IsAdmin reports whether the caller has the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// Login is an issued session with its signed token
type Login struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// Registration is the input of Register
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthService registers accounts and manages login sessions
type AuthService struct {
	store      store.Store
	sessions   session.Store
	jwt        *jwtutil.JWTUtil
	bcryptCost int
	now        func() time.Time
}

// NewAuthService creates an AuthService
func NewAuthService(s store.Store, sessions session.Store, jwt *jwtutil.JWTUtil) *AuthService {
	return &AuthService{
		store:      s,
		sessions:   sessions,
		jwt:        jwt,
		bcryptCost: bcrypt.DefaultCost,
		now:        utcNow,
	}
}

// Register creates a user account and logs it in
func (a *AuthService) Register(ctx context.Context, reg Registration) (*Login, error) {
	reg.Email = store.NormalizeEmail(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)
	if err := validateStruct(reg); err != nil {
		metrics.RecordAuthAttempt("register", "invalid")
		return nil, err
	}

	user, err := a.createUser(ctx, reg.Email, reg.Name, reg.Password, model.RoleUser)
	if err != nil {
		metrics.RecordAuthAttempt("register", "failed")
		return nil, err
	}
	metrics.RecordAuthAttempt("register", "success")
	logger.FromContext(ctx).Info("User registered", zap.String("user_id", user.ID))
	return a.issue(ctx, user)
}

func (a *AuthService) createUser(ctx context.Context, email, name, password string, role model.Role) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := a.now()
	user := &model.User{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
		Addresses:    []model.Address{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and starts a session
func (a *AuthService) Login(ctx context.Context, email, password string) (*Login, error) {
	user, err := a.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		metrics.RecordAuthAttempt("login", "failed")
		return nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.RecordAuthAttempt("login", "failed")
		return nil, model.ErrInvalidCredentials
	}
	metrics.RecordAuthAttempt("login", "success")
	return a.issue(ctx, user)
}

func (a *AuthService) issue(ctx context.Context, user *model.User) (*Login, error) {
	sess, err := a.sessions.Create(ctx, user.ID, user.Role, a.jwt.TTL())
	if err != nil {
		return nil, err
	}
	token, err := a.jwt.GenerateToken(user.ID, user.Email, string(user.Role), sess.ID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Login{User: user, Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

// Authenticate resolves a token to its caller. The token's session must
// still exist, so logged-out tokens are rejected.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := a.jwt.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrUnauthenticated, err)
	}
	sess, err := a.sessions.Get(ctx, claims.SessionID())
	if errors.Is(err, session.ErrNotFound) {
		return nil, fmt.Errorf("%w: session ended", model.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	if sess.UserID != claims.UserID {
		return nil, fmt.Errorf("%w: session mismatch", model.ErrUnauthenticated)
	}
	return &Identity{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      sess.Role,
		SessionID: sess.ID,
	}, nil
}

// Logout ends the session
func (a *AuthService) Logout(ctx context.Context, sessionID string) error {
	return a.sessions.Delete(ctx, sessionID)
}

// CurrentUser loads the account of an authenticated caller
func (a *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	return store.Read(ctx, func() (*model.User, error) {
		return a.store.Users().Get(ctx, userID)
	})
}

// EnsureAdmin creates an admin account unless the email is already registered
func (a *AuthService) EnsureAdmin(ctx context.Context, email, name, password string) (*model.User, bool, error) {
	email = store.NormalizeEmail(email)
	if existing, err := a.store.Users().GetByEmail(ctx, email); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, false, err
	}
	if err := validateStruct(Registration{Email: email, Name: name, Password: password}); err != nil {
		return nil, false, err
	}
	user, err := a.createUser(ctx, email, name, password, model.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}
