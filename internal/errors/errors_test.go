package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestAppErrorFormat(t *testing.T) {
	err := New(ErrQueuedForLater, "request saved for later delivery")

	if !strings.Contains(err.Error(), string(ErrQueuedForLater)) {
		t.Errorf("Expected error string to contain code, got %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrQueueStorage, "failed to persist queue", cause)

	if !stderrors.Is(err, cause) {
		t.Error("Expected wrapped error to match cause via errors.Is")
	}

	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Expected error string to contain cause, got %q", err.Error())
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := New(ErrNetworkUnreachable, "no route to host")

	if !Is(err, ErrNetworkUnreachable) {
		t.Error("Expected Is to match the error code")
	}

	if Is(err, ErrQueuedForLater) {
		t.Error("Expected Is to reject a different code")
	}

	if Is(stderrors.New("plain"), ErrNetworkUnreachable) {
		t.Error("Expected Is to reject a non-AppError")
	}
}
