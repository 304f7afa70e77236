package jwtutil

import (
	"testing"
	"time"

	"trendhive/pkg/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUtil() *JWTUtil {
	return NewJWTUtil(&config.JWTConfig{SigningKey: "test-secret", ExpirationHours: 1})
}

func TestGenerateAndValidate(t *testing.T) {
	j := newUtil()

	token, err := j.GenerateToken("user-1", "ada@example.com", "admin", "sess-1")
	require.NoError(t, err)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "sess-1", claims.SessionID())
}

func TestValidateRejectsOtherKey(t *testing.T) {
	token, err := newUtil().GenerateToken("user-1", "a@b.c", "user", "sess-1")
	require.NoError(t, err)

	other := NewJWTUtil(&config.JWTConfig{SigningKey: "other", ExpirationHours: 1})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	j := newUtil()
	j.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := j.GenerateToken("user-1", "a@b.c", "user", "sess-1")
	require.NoError(t, err)

	_, err = newUtil().ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	claims := UserClaims{UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{ID: "sess-1"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newUtil().ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRequiresSession(t *testing.T) {
	j := newUtil()
	token, err := j.GenerateToken("user-1", "a@b.c", "user", "")
	require.NoError(t, err)

	_, err = j.ValidateToken(token)
	assert.Error(t, err)
}
