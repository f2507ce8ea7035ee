// ABOUTME: Error types and handling for the deckcache library
// ABOUTME: Provides structured errors with context for library operations

package deckcache

import (
	"context"
	"errors"
	"fmt"

	coreerrors "deckthumb-cache/core/errors"
	"deckthumb-cache/core/workers"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeValidation indicates invalid input
	ErrorTypeValidation ErrorType = "validation"

	// ErrorTypeNotFound indicates a deck or record was not found
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeUpstream indicates the deck source or render service failed
	ErrorTypeUpstream ErrorType = "upstream"

	// ErrorTypePersistence indicates the storage substrate failed
	ErrorTypePersistence ErrorType = "persistence"

	// ErrorTypeCancelled indicates the caller's context ended the operation
	ErrorTypeCancelled ErrorType = "cancelled"

	// ErrorTypeUnavailable indicates the background worker cannot take the request
	ErrorTypeUnavailable ErrorType = "unavailable"

	// ErrorTypeInternal indicates an internal error
	ErrorTypeInternal ErrorType = "internal"

	// ErrorTypeConfiguration indicates a configuration error
	ErrorTypeConfiguration ErrorType = "configuration"
)

// Error represents a structured error from the library
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error with the given type and message
func NewError(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// WithCause adds a cause to the error
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Common errors
var (
	// ErrClientClosed is returned when operations are attempted on a closed client
	ErrClientClosed = NewError(ErrorTypeUnavailable, "client is closed")

	// ErrNoFetcher is returned when no deck fetcher was configured
	ErrNoFetcher = NewError(ErrorTypeConfiguration, "no deck fetcher configured")

	// ErrNoGenerator is returned when no thumbnail generator was configured
	ErrNoGenerator = NewError(ErrorTypeConfiguration, "no thumbnail generator configured")

	// ErrBackgroundDisabled is returned by RefreshAsync when background processing is off
	ErrBackgroundDisabled = NewError(ErrorTypeConfiguration, "background processing is disabled")
)

// wrapError converts engine errors into library errors
func wrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	var libErr *Error
	if errors.As(err, &libErr) {
		return err
	}

	errType := ErrorTypeInternal
	var workerErr *workers.WorkerError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		errType = ErrorTypeCancelled
	case errors.As(err, &workerErr):
		errType = ErrorTypeUnavailable
	case coreerrors.IsNotFound(err):
		errType = ErrorTypeNotFound
	case coreerrors.IsPersistence(err):
		errType = ErrorTypePersistence
	case coreerrors.IsFetch(err), coreerrors.IsGeneration(err), coreerrors.IsExternalAPI(err):
		errType = ErrorTypeUpstream
	}
	return &Error{Type: errType, Message: message, Cause: err}
}

func isType(err error, errType ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == errType
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsUpstreamError checks if an error came from the deck source or render service
func IsUpstreamError(err error) bool {
	return isType(err, ErrorTypeUpstream)
}

// IsCancelledError checks if an error is a cancellation
func IsCancelledError(err error) bool {
	return isType(err, ErrorTypeCancelled)
}

// IsUnavailableError checks if the client or worker could not take the request
func IsUnavailableError(err error) bool {
	return isType(err, ErrorTypeUnavailable)
}
