package errors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedDelayPolicyDefaults(t *testing.T) {
	policy := NewFixedDelayPolicy(0, 0)
	assert.Equal(t, DefaultRetryDelay, policy.Delay)
	assert.Equal(t, DefaultMaxAttempts, policy.Attempts)
}

func TestFixedDelayPolicyShouldRetry(t *testing.T) {
	policy := NewFixedDelayPolicy(time.Millisecond, 3)

	t.Run("Retryable error below budget", func(t *testing.T) {
		assert.True(t, policy.ShouldRetry(New(ErrServiceUnavailable, "down"), 1))
		assert.True(t, policy.ShouldRetry(New(ErrRateLimited, "throttled"), 2))
	})

	t.Run("Budget exhausted", func(t *testing.T) {
		assert.False(t, policy.ShouldRetry(New(ErrServiceUnavailable, "down"), 3))
	})

	t.Run("Non-retryable error", func(t *testing.T) {
		assert.False(t, policy.ShouldRetry(New(ErrUnauthorized, "bad token"), 1))
		assert.False(t, policy.ShouldRetry(New(ErrValidationFailed, "bad payload"), 1))
	})
}

func TestExecutorSucceedsAfterRetries(t *testing.T) {
	executor := NewExecutor(NewFixedDelayPolicy(time.Millisecond, 3), nil)

	calls := 0
	err := executor.Execute(context.Background(), func() error {
		calls++
		if calls < 3 {
			return New(ErrServiceUnavailable, "not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecutorNonRetryableFailsAfterOneAttempt(t *testing.T) {
	executor := NewExecutor(NewFixedDelayPolicy(time.Millisecond, 3), nil)

	calls := 0
	err := executor.Execute(context.Background(), func() error {
		calls++
		return New(ErrForbidden, "no permission")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	pErr := AsProvisionError(err)
	assert.Equal(t, ErrForbidden, pErr.Code)
	assert.Equal(t, 1, pErr.AttemptCount)
}

func TestExecutorExhaustsAttemptBudget(t *testing.T) {
	executor := NewExecutor(NewFixedDelayPolicy(time.Millisecond, 4), nil)

	calls := 0
	err := executor.Execute(context.Background(), func() error {
		calls++
		return New(ErrNetworkFailure, "unreachable")
	})

	require.Error(t, err)
	assert.Equal(t, 4, calls)

	pErr := AsProvisionError(err)
	assert.Equal(t, ErrNetworkFailure, pErr.Code)
	assert.Equal(t, 4, pErr.AttemptCount)
}

func TestExecutorRespectsContextCancellation(t *testing.T) {
	executor := NewExecutor(NewFixedDelayPolicy(time.Hour, 3), nil)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := executor.Execute(ctx, func() error {
		calls++
		return New(ErrServiceUnavailable, "down")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, ErrNetworkFailure, GetCode(err))
}
