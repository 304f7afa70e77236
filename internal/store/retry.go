package store

import (
	"context"
	"errors"
	"time"

	"trendhive/internal/model"

	"github.com/cenkalti/backoff/v4"
)

// MaxReadRetries bounds the retries of a failed read
const MaxReadRetries = 3

func readBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 2 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(b, MaxReadRetries), ctx)
}

// permanent reports errors a retry cannot fix
func permanent(err error) bool {
	return errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		model.IsValidation(err)
}

// Read runs an idempotent read, retrying transient storage errors with
// exponential backoff
func Read[T any](ctx context.Context, op func() (T, error)) (T, error) {
	return backoff.RetryWithData(func() (T, error) {
		v, err := op()
		if err != nil && permanent(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, readBackOff(ctx))
}
