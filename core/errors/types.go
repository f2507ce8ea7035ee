// ABOUTME: Custom error types for the deck cache engine
// ABOUTME: Classifies persistence, fetch and generation failures so callers can degrade per deck

package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents a missing key or resource
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// PersistenceError represents a failure reading or writing a persisted cache record
type PersistenceError struct {
	Key   string
	Op    string
	Cause error
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s of %s: %v", e.Op, e.Key, e.Cause)
}

// Unwrap returns the underlying cause
func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// FetchError represents a failure of the upstream fetch collaborator for one deck
type FetchError struct {
	DeckID int
	Cause  error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch of deck %d failed: %v", e.DeckID, e.Cause)
}

// Unwrap returns the underlying cause
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// GenerationError represents a failure of the thumbnail generator for one deck
type GenerationError struct {
	DeckID int
	Cause  error
}

// Error implements the error interface
func (e *GenerationError) Error() string {
	return fmt.Sprintf("thumbnail generation for deck %d failed: %v", e.DeckID, e.Cause)
}

// Unwrap returns the underlying cause
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// ExternalAPIError represents a non-success response from an upstream API
type ExternalAPIError struct {
	StatusCode int
	Message    string
	API        string
}

// Error implements the error interface
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("external API error from %s: %d - %s", e.API, e.StatusCode, e.Message)
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsPersistence checks if an error is a PersistenceError
func IsPersistence(err error) bool {
	var persistErr *PersistenceError
	return errors.As(err, &persistErr)
}

// IsFetch checks if an error is a FetchError
func IsFetch(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}

// IsGeneration checks if an error is a GenerationError
func IsGeneration(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// IsExternalAPI checks if an error is an ExternalAPIError
func IsExternalAPI(err error) bool {
	var apiErr *ExternalAPIError
	return errors.As(err, &apiErr)
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
