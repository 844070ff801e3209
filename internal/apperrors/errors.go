package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
// Callers performing idempotent writes treat this as a benign skip, not a failure.
var ErrDuplicate = errors.New("resource already exists")

// ErrTransient indicates a temporary failure (network, timeout, connection reset)
// that is safe to retry. The retry helper only retries errors matching this sentinel.
var ErrTransient = errors.New("transient failure")

// ErrLockHeld indicates that a distributed lock is currently held by another process.
var ErrLockHeld = errors.New("lock already held")

// AppError carries a status code alongside a message and an optional cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err belongs to the retryable class.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
