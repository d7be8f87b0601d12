// Package response renders the JSON envelopes used by every handler.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/univdir/universities-api/internal/apperr"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error     errorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.ErrorContext(r.Context(), "response encoding failed", "error", err)
	}
}

func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	JSON(w, r, status, errorEnvelope{
		Error:     errorBody{Code: code, Message: message, Details: details},
		RequestID: chimiddleware.GetReqID(r.Context()),
	})
}

// DomainError renders err using the status it carries. Errors without a
// status collapse to a generic 500 so internals never leak.
func DomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusOf(err)
	if !apperr.IsDomain(err) {
		slog.ErrorContext(r.Context(), "unexpected handler error", "error", err)
	}
	Error(w, r, status, codeFor(status), apperr.MessageOf(err, "internal server error"), nil)
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}
