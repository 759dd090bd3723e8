package retry

import (
	"context"
	"testing"
	"time"

	pkgerrors "planner-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func fastPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), func() error {
		calls++
		if calls < 3 {
			return pkgerrors.NewTransientError("flaky upstream")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), func() error {
		calls++
		return pkgerrors.NewTransientError("upstream down")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, pkgerrors.IsTransient(err))
}

func TestDo_PermanentErrorsFailFast(t *testing.T) {
	for name, err := range map[string]error{
		"quota":      pkgerrors.NewQuotaError("upstream"),
		"auth":       pkgerrors.NewAuthExpiredError("upstream"),
		"validation": pkgerrors.NewValidationError("bad input"),
	} {
		calls := 0
		got := Do(context.Background(), fastPolicy(), func() error {
			calls++
			return err
		})

		assert.Error(t, got, name)
		assert.Equal(t, 1, calls, name)
	}
}

func TestDo_ContextCancellationStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, Policy{MaxAttempts: 10, InitialInterval: 50 * time.Millisecond, MaxInterval: 50 * time.Millisecond}, func() error {
		calls++
		cancel()
		return pkgerrors.NewTransientError("upstream down")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{}, func() error {
		calls++
		return pkgerrors.NewTransientError("upstream down")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
