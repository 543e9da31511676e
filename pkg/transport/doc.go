// Package transport provides the net/http middleware shared by the
// actiongate server.
//
// # Middleware
//
// Middleware wraps an http.Handler with cross-cutting behavior. The built-in
// middleware assigns request IDs (X-Request-ID), writes structured access
// logs via log/slog and converts handler panics into JSON 500 responses at
// the outermost layer of the server. The authorization gate itself lives in
// the transport/http subpackage and does not recover panics.
//
// # Errors
//
// Error responses share one JSON body shape, {"error": {"type", "message"}},
// written by WriteError.
package transport
