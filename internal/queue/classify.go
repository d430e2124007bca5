package queue

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// RequestError describes one failed dispatch attempt. Status is zero when
// no HTTP response was received (a transport-level failure).
type RequestError struct {
	Status int
	Err    error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed: %v", e.Err)
}

// Unwrap returns the underlying transport error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// NetworkFailure reports whether no HTTP response was received at all.
func (e *RequestError) NetworkFailure() bool {
	return e.Status == 0
}

// Transient HTTP statuses worth retrying. Everything else, validation
// errors included, is permanent.
var retryableStatuses = map[int]bool{
	429: true,
	502: true,
	503: true,
	504: true,
}

// IsNetworkError reports whether err is a transport-level connection
// failure: reset, timeout, refused, or a generic network error with no
// response received.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if !reqErr.NetworkFailure() {
			return false
		}
		err = reqErr.Err
		if err == nil {
			return true
		}
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// IsRetryable reports whether a failed dispatch is worth retrying: either
// a transport connection failure or a transient server status.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Status != 0 {
		return retryableStatuses[reqErr.Status]
	}

	return IsNetworkError(err)
}
