// Package retry wraps bounded exponential backoff for adapter calls.
// Only errors classified transient are retried; everything else is
// returned immediately as permanent.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	pkgerrors "planner-backend/pkg/errors"
)

// Policy bounds a retried operation
type Policy struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy matches the pipeline's contract for safe-to-repeat adapter
// calls: three attempts total with exponential spacing.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// Do runs op, retrying transient failures per the policy. Quota, auth and
// validation errors fail fast. The context bounds the whole sequence.
func Do(ctx context.Context, policy Policy, op func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = policy.InitialInterval
	eb.MaxInterval = policy.MaxInterval

	attempts := policy.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if pkgerrors.IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	return backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(eb, attempts-1), ctx))
}
