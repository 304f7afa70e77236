package session

import (
	"context"
	"sync"
	"time"

	"trendhive/internal/model"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in process. Expired entries are dropped on access.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]Session{}, now: time.Now}
}

func (s *MemoryStore) Create(ctx context.Context, userID string, role model.Role, ttl time.Duration) (*Session, error) {
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		ExpiresAt: s.now().Add(ttl).UTC(),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return &sess, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}
