package pipeline

import (
	"time"

	"stocktag/internal/provider"
)

// RetryPolicy decides whether and when a failed generation attempt is
// retried. Authentication and unsupported-media failures are never retried;
// the remaining kinds are retried until the attempt cap.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt. An item
	// whose every attempt fails ends up failed after MaxRetries+1 attempts.
	MaxRetries int
	// BaseDelay is the backoff before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns the baseline backoff shape. The retry cap is
// replaced with the run config's cap when the scheduler starts a run.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   8 * time.Second,
	}
}

// ShouldRetry reports whether another attempt is allowed after the given
// attempt number (1-based) failed with the given kind.
func (p RetryPolicy) ShouldRetry(attempt int, kind provider.ErrorKind) bool {
	if !kind.Retryable() {
		return false
	}
	return attempt <= p.MaxRetries
}

// BackoffDelay returns the delay before retrying after the given attempt
// number (1-based): exponential with a ceiling.
func (p RetryPolicy) BackoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}
