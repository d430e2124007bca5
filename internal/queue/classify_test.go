package queue

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
)

func TestRetryableStatuses(t *testing.T) {
	for _, status := range []int{429, 502, 503, 504} {
		if !IsRetryable(&RequestError{Status: status}) {
			t.Errorf("Expected status %d to be retryable", status)
		}
	}

	for _, status := range []int{400, 401, 403, 404, 409, 422, 500} {
		if IsRetryable(&RequestError{Status: status}) {
			t.Errorf("Expected status %d to be permanent", status)
		}
	}
}

func TestTransportErrorsAreRetryable(t *testing.T) {
	cases := []error{
		syscall.ECONNRESET,
		syscall.ECONNREFUSED,
		syscall.ETIMEDOUT,
		context.DeadlineExceeded,
		&net.OpError{Op: "dial", Err: errors.New("network is unreachable")},
	}

	for _, err := range cases {
		wrapped := &RequestError{Status: 0, Err: err}
		if !IsNetworkError(wrapped) {
			t.Errorf("Expected %v to classify as a network error", err)
		}
		if !IsRetryable(wrapped) {
			t.Errorf("Expected %v to be retryable", err)
		}
	}
}

func TestHTTPStatusIsNotNetworkError(t *testing.T) {
	err := &RequestError{Status: 503}
	if IsNetworkError(err) {
		t.Error("A received HTTP response is not a network failure")
	}
}

func TestPlainErrorIsNotRetryable(t *testing.T) {
	if IsRetryable(fmt.Errorf("validation failed")) {
		t.Error("Expected an unclassified error to be permanent")
	}
	if IsRetryable(nil) {
		t.Error("nil must not be retryable")
	}
}

func TestRequestErrorUnwrap(t *testing.T) {
	cause := syscall.ECONNREFUSED
	err := &RequestError{Status: 0, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("Expected RequestError to unwrap to its cause")
	}
}
