// Package errors provides error code definitions shared across the offline
// sync layer and its API surface.
package errors

import "fmt"

// ErrorCode represents a unique error code that can be surfaced to UI layers.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrInvalid    ErrorCode = "INVALID_INPUT"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrValidation ErrorCode = "VALIDATION_ERROR"

	// Queue errors
	ErrQueuedForLater ErrorCode = "QUEUED_FOR_LATER"
	ErrQueueStorage   ErrorCode = "QUEUE_STORAGE_ERROR"
	ErrQueueCorrupted ErrorCode = "QUEUE_CORRUPTED"

	// Transport errors
	ErrNetworkUnreachable ErrorCode = "NETWORK_UNREACHABLE"
	ErrRequestFailed      ErrorCode = "REQUEST_FAILED"
	ErrRequestTimeout     ErrorCode = "REQUEST_TIMEOUT"

	// Configuration errors
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"
	ErrConfigMissing ErrorCode = "CONFIG_MISSING"

	// Crypto errors
	ErrCryptoFailed ErrorCode = "CRYPTO_FAILED"
)

// AppError represents an application error with code and message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is checks if an error is of a specific code.
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}
