// Package httpapi holds the JSON response envelope shared by all handlers
// and middleware.
package httpapi

import (
	"encoding/json"
	"net/http"
)

// Error codes used across the API surface.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeServerError  = "SERVER_ERROR"
	CodeRateLimited  = "RATE_LIMITED"
)

// StatusError is an API-visible failure carrying its HTTP status and
// envelope code. It never exposes internal detail to the client.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	return e.Code + ": " + e.Message
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// WriteJSON writes v as the JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes the uniform error envelope.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// WriteErrorDetails writes the envelope with an extra details payload.
func WriteErrorDetails(w http.ResponseWriter, status int, code, message string, details any) {
	WriteJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message, Details: details}})
}

// WriteStatusError renders a StatusError through the envelope.
func WriteStatusError(w http.ResponseWriter, err *StatusError) {
	WriteError(w, err.Status, err.Code, err.Message)
}
