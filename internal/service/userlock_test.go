package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserLocksSerializeAndRelease(t *testing.T) {
	locks := NewUserLocks()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("user-1")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Empty(t, locks.locks)
}
