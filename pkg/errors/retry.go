// Package errors provides retry policies for transient provisioning failures.
package errors

import (
	"context"
	"time"

	"github.com/onboardhub/onboardhub/pkg/logger"
)

// Retry defaults applied when a platform config supplies no tuning.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = time.Second
)

// RetryPolicy defines how operations should be retried.
type RetryPolicy interface {
	// ShouldRetry determines if an error should be retried after the given attempt.
	ShouldRetry(err error, attempt int) bool

	// RetryDelay calculates the delay before the next attempt.
	RetryDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum number of attempts.
	MaxAttempts() int
}

// FixedDelayPolicy retries transient failures a bounded number of times
// with a constant inter-attempt delay.
type FixedDelayPolicy struct {
	Delay    time.Duration
	Attempts int
}

// NewFixedDelayPolicy creates a fixed delay policy.
func NewFixedDelayPolicy(delay time.Duration, attempts int) *FixedDelayPolicy {
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	return &FixedDelayPolicy{Delay: delay, Attempts: attempts}
}

// ShouldRetry retries only transient error classes: rate limiting, 5xx
// responses and network-level failures. Auth, validation, not-found and
// permission errors surface immediately.
func (p *FixedDelayPolicy) ShouldRetry(err error, attempt int) bool {
	if attempt >= p.Attempts {
		return false
	}
	return IsRetryableError(err)
}

// RetryDelay returns the constant delay.
func (p *FixedDelayPolicy) RetryDelay(int) time.Duration {
	return p.Delay
}

// MaxAttempts returns the maximum number of attempts.
func (p *FixedDelayPolicy) MaxAttempts() int {
	return p.Attempts
}

// Executor runs operations under a retry policy.
//
// Retried operations are NOT deduplicated: a create call that times out
// after the remote side already created the resource can produce a
// duplicate remote account when retried. Callers that create remote
// resources must treat this as a known risk.
type Executor struct {
	policy RetryPolicy
	logger logger.Logger
}

// NewExecutor creates a retry executor.
func NewExecutor(policy RetryPolicy, log logger.Logger) *Executor {
	if log == nil {
		log = logger.Discard
	}
	return &Executor{policy: policy, logger: log}
}

// Execute runs the operation until it succeeds, exhausts the attempt
// budget, or fails with a non-retryable error. The error returned on
// failure carries the number of attempts made.
func (r *Executor) Execute(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts(); attempt++ {
		err := operation()
		if err == nil {
			if attempt > 1 {
				r.logger.Info("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		lastErr = err

		if !r.policy.ShouldRetry(err, attempt) {
			if pErr, ok := err.(*ProvisionError); ok {
				pErr.WithAttemptCount(attempt)
			}
			return lastErr
		}

		delay := r.policy.RetryDelay(attempt)
		r.logger.Debug("operation failed, retrying",
			"error", err.Error(),
			"attempt", attempt,
			"delay", delay)

		select {
		case <-ctx.Done():
			return Wrap(ctx.Err(), ErrNetworkFailure, "retry aborted by context").
				WithAttemptCount(attempt)
		case <-time.After(delay):
		}
	}

	if pErr, ok := lastErr.(*ProvisionError); ok {
		pErr.WithAttemptCount(r.policy.MaxAttempts())
	}
	return lastErr
}
