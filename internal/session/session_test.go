package session

import (
	"context"
	"testing"
	"time"

	"trendhive/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLifecycle(t *testing.T, s Store) {
	ctx := context.Background()

	sess, err := s.Create(ctx, "user-1", model.RoleAdmin, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, model.RoleAdmin, got.Role)
	assert.WithinDuration(t, sess.ExpiresAt, got.ExpiresAt, time.Second)

	require.NoError(t, s.Delete(ctx, sess.ID))
	_, err = s.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	testLifecycle(t, NewMemoryStore())
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	sess, err := s.Create(context.Background(), "user-1", model.RoleUser, time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s, err := NewRedisStore(rdb)
	require.NoError(t, err)
	return s, mr
}

func TestRedisStore(t *testing.T) {
	s, _ := newRedisStore(t)
	testLifecycle(t, s)
}

func TestRedisStoreExpiry(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	sess, err := s.Create(ctx, "user-1", model.RoleUser, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+sess.ID))

	mr.FastForward(2 * time.Minute)
	_, err = s.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedisStoreRequiresClient(t *testing.T) {
	_, err := NewRedisStore(nil)
	assert.Error(t, err)
}
