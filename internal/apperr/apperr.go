// Package apperr carries HTTP-shaped domain errors across internal
// boundaries. The university work queue hands these back to the producing
// handler unchanged, so a CONFLICT raised by the repository surfaces as a
// 409 without any serialization round-trip.
package apperr

import (
	"errors"
	"net/http"
)

type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error     { return New(http.StatusConflict, message) }
func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Internal(message string) *Error     { return New(http.StatusInternalServerError, message) }

// StatusOf extracts the HTTP status carried by err. Errors that are not
// *Error degrade to 500 so unexpected failures never leak internals.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the caller-safe message for err. Non-domain errors map
// to the provided fallback.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return fallback
}

// IsDomain reports whether err carries an explicit status, i.e. it is safe
// to surface verbatim at the HTTP boundary.
func IsDomain(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
