package services

import (
	"context"
	"errors"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/util/retry"

	"submission-review-service/internal/core/domain"
)

// RetryPolicy bounds a retried store call. Every attempt runs under
// Timeout; transient failures are retried up to MaxAttempts with
// exponential backoff starting at InitialBackoff.
type RetryPolicy struct {
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
}

// Do runs fn until it succeeds, returns a non-retriable error, or the
// attempts run out. It reports how many attempts ran.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) (int, error) {
	steps := p.MaxAttempts
	if steps <= 0 {
		steps = 1
	}
	backoff := wait.Backoff{
		Duration: p.InitialBackoff,
		Factor:   2,
		Jitter:   0.1,
		Steps:    steps,
	}

	attempts := 0
	err := retry.OnError(backoff, retriable, func() error {
		attempts++
		if err := ctx.Err(); err != nil {
			return permanent(err)
		}
		attemptCtx, cancel := bounded(ctx, p.Timeout)
		defer cancel()
		return fn(attemptCtx)
	})
	return attempts, unwrapPermanent(err)
}

// permanentError stops the retry loop.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return permanentError{err: err} }

func unwrapPermanent(err error) error {
	var p permanentError
	if errors.As(err, &p) {
		return p.err
	}
	return err
}

func retriable(err error) bool {
	var p permanentError
	switch {
	case errors.As(err, &p),
		errors.Is(err, domain.ErrSubmissionNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, context.Canceled),
		domain.IsValidation(err):
		return false
	}
	return true
}
