package service

import "sync"

// UserLocks serializes work per key, usually a user id. Entries are
// dropped once unused.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// NewUserLocks returns an empty lock table
func NewUserLocks() *UserLocks {
	return &UserLocks{locks: map[string]*refMutex{}}
}

// Lock blocks until key is free and returns its unlock func
func (k *UserLocks) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
