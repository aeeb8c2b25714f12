// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/visualink/studio/internal/apperr"
)

// Envelope is the standard API response envelope.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 response with data.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with data.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Success writes a 200 response carrying only {"success": true}.
func Success(w http.ResponseWriter) {
	JSON(w, http.StatusOK, Envelope{Success: true})
}

// Error writes an error response with the given status and message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Error: message})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// InternalError writes a 500 response with a generic message.
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "internal server error")
}

// UpstreamFailure writes a 500 response naming the failed operation so the
// operator knows what to re-submit.
func UpstreamFailure(w http.ResponseWriter, op string) {
	Error(w, http.StatusInternalServerError, op+" failed, please retry")
}

// FromError maps the apperr taxonomy to a response. Client misuse is not
// logged; anything else is logged at error level.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *apperr.ValidationError
		upstream   *apperr.UpstreamError
	)
	switch {
	case errors.As(err, &validation):
		BadRequest(w, validation.Error())
	case errors.Is(err, apperr.ErrUnauthorized):
		Unauthorized(w, "unauthorized")
	case errors.Is(err, apperr.ErrNotFound):
		NotFound(w, "not found")
	case errors.As(err, &upstream):
		slog.ErrorContext(r.Context(), "upstream failure",
			slog.String("op", upstream.Op),
			slog.String("path", r.URL.Path),
			slog.String("error", upstream.Err.Error()),
		)
		UpstreamFailure(w, upstream.Op)
	default:
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		InternalError(w)
	}
}
