package transport

import (
	"encoding/json"
	"net/http"
)

// Error types used in JSON error bodies.
const (
	ErrorTypeUnauthenticated = "unauthenticated"
	ErrorTypeForbidden       = "forbidden"
	ErrorTypeBadGateway      = "bad_gateway"
	ErrorTypeServer          = "server_error"
)

// Error is the payload of an error response.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	// LoginURL points unauthenticated callers at the login flow.
	LoginURL string `json:"login_url,omitempty"`
}

// ErrorResponse wraps Error as {"error": {...}}.
type ErrorResponse struct {
	Error *Error `json:"error"`
}

// WriteErrorResponse writes a JSON error response. It sets the
// Content-Type header and writes the HTTP status code.
func WriteErrorResponse(w http.ResponseWriter, e *Error, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: e})
}

// WriteError writes an error response built from its parts.
func WriteError(w http.ResponseWriter, statusCode int, errType, message string) {
	WriteErrorResponse(w, &Error{Type: errType, Message: message}, statusCode)
}
