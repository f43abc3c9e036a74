package errors

import (
	"errors"
	"net/http"
)

// APIError carries an HTTP status alongside a user-facing message.
// The wrapped internal error is logged, never rendered.
type APIError struct {
	Status   int    `json:"-"`
	Message  string `json:"error"`
	Internal error  `json:"-"`
}

// Error returns the error message
func (e *APIError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *APIError) Unwrap() error {
	return e.Internal
}

func newAPIError(status int, message string, err error) *APIError {
	return &APIError{Status: status, Message: message, Internal: err}
}

// Validation marks rejected input (empty required field, unparseable payload).
func Validation(message string, err error) *APIError {
	return newAPIError(http.StatusUnprocessableEntity, message, err)
}

// Unauthorized marks a missing or malformed credential.
func Unauthorized(message string, err error) *APIError {
	return newAPIError(http.StatusUnauthorized, message, err)
}

// NotFound marks a reference to an absent id.
func NotFound(message string, err error) *APIError {
	return newAPIError(http.StatusNotFound, message, err)
}

// Forbidden marks a disallowed operation.
func Forbidden(message string, err error) *APIError {
	return newAPIError(http.StatusForbidden, message, err)
}

// Storage marks an unreachable or corrupt backing store.
func Storage(message string, err error) *APIError {
	return newAPIError(http.StatusInternalServerError, message, err)
}

// Internal wraps an unexpected error.
func Internal(err error) *APIError {
	return newAPIError(http.StatusInternalServerError, "Internal server error", err)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}
	return false
}

func IsValidation(err error) bool {
	return hasStatus(err, http.StatusUnprocessableEntity)
}

func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

func IsStorage(err error) bool {
	return hasStatus(err, http.StatusInternalServerError)
}
