// ABOUTME: Error handling utilities for admin API handlers
// ABOUTME: Converts library and domain errors to HTTP status codes and JSON bodies

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	coreerrors "deckthumb-cache/core/errors"
	"deckthumb-cache/deckcache"
)

// errorBody is the JSON shape of every error response
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// statusFor maps an error to the HTTP status reported to the caller
func statusFor(err error) int {
	var libErr *deckcache.Error
	if errors.As(err, &libErr) {
		switch libErr.Type {
		case deckcache.ErrorTypeValidation:
			return http.StatusBadRequest
		case deckcache.ErrorTypeNotFound:
			return http.StatusNotFound
		case deckcache.ErrorTypeUpstream:
			return http.StatusBadGateway
		case deckcache.ErrorTypeUnavailable, deckcache.ErrorTypeCancelled:
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}

	if coreerrors.IsNotFound(err) {
		return http.StatusNotFound
	}

	var apiErr *coreerrors.ExternalAPIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return http.StatusTooManyRequests
		}
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	writeJSON(w, status, errorBody{Error: http.StatusText(status), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
