package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trendhive/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore keeps each session in a hash that expires with the session
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore returns a Store backed by rdb
func NewRedisStore(rdb *redis.Client) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("conn must be non-nil")
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Create(ctx context.Context, userID string, role model.Role, ttl time.Duration) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		ExpiresAt: time.Now().Add(ttl).UTC(),
	}
	key := keyPrefix + sess.ID

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"userId", sess.UserID,
			"role", string(sess.Role),
			"expiresAt", sess.ExpiresAt.Unix(),
		)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	var stored struct {
		UserID    string `redis:"userId"`
		Role      string `redis:"role"`
		ExpiresAt int64  `redis:"expiresAt"`
	}
	res := s.rdb.HGetAll(ctx, keyPrefix+id)
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(res.Val()) == 0 {
		return nil, ErrNotFound
	}
	if err := res.Scan(&stored); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &Session{
		ID:        id,
		UserID:    stored.UserID,
		Role:      model.Role(stored.Role),
		ExpiresAt: time.Unix(stored.ExpiresAt, 0).UTC(),
	}, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
