package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a failed provider call. The retry policy keys off the
// kind: authentication and unsupported-media failures are final, the rest
// are retried within policy.
type ErrorKind string

const (
	KindAuthentication    ErrorKind = "authentication"
	KindRateLimit         ErrorKind = "rate_limit"
	KindTransientNetwork  ErrorKind = "transient_network"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindUnsupportedMedia  ErrorKind = "unsupported_media"
)

// Retryable reports whether the kind may be retried at all.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindAuthentication, KindUnsupportedMedia:
		return false
	}
	return true
}

// Error wraps a provider failure with its classification.
type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind from an error chain. Unclassified errors
// are treated as transient so they stay retryable.
func KindOf(err error) ErrorKind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindTransientNetwork
}

// classifyStatus maps an HTTP status code from a provider API to a kind.
func classifyStatus(provider string, status int, err error) *Error {
	var kind ErrorKind
	switch {
	case status == 401 || status == 403:
		kind = KindAuthentication
	case status == 429:
		kind = KindRateLimit
	case status == 400 || status == 413 || status == 415 || status == 422:
		kind = KindUnsupportedMedia
	default:
		kind = KindTransientNetwork
	}
	return &Error{Kind: kind, Provider: provider, Err: err}
}

// classifyTransport maps non-HTTP failures (timeouts, connection errors) to
// a kind. A request-level timeout counts as a transient network error and is
// subject to retry.
func classifyTransport(provider string, err error) *Error {
	return &Error{Kind: KindTransientNetwork, Provider: provider, Err: err}
}

// isTimeout reports whether the error is a deadline or network timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
