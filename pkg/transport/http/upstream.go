package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/rhuss/actiongate/pkg/auth"
	"github.com/rhuss/actiongate/pkg/auth/apikey"
	"github.com/rhuss/actiongate/pkg/transport"
)

// Identity headers set on requests forwarded upstream. Inbound values are
// always stripped so callers cannot forge them.
const (
	SubjectHeader = "X-Actiongate-Subject"
	KindHeader    = "X-Actiongate-Kind"
)

// NewUpstream returns a reverse proxy to target that forwards the caller's
// identity in SubjectHeader and KindHeader. The machine secret presented in
// credentialHeader (apikey.DefaultHeader when empty) never leaves the gate.
// Upstream failures are answered with a 502 JSON error.
func NewUpstream(target *url.URL, credentialHeader string, logger *slog.Logger) http.Handler {
	if credentialHeader == "" {
		credentialHeader = apikey.DefaultHeader
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Header.Del(SubjectHeader)
			pr.Out.Header.Del(KindHeader)
			pr.Out.Header.Del(credentialHeader)
			if id := auth.IdentityFromContext(pr.In.Context()); id != nil {
				pr.Out.Header.Set(SubjectHeader, id.Subject)
				pr.Out.Header.Set(KindHeader, string(id.Kind))
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.LogAttrs(r.Context(), slog.LevelError, "upstream request failed",
				slog.String("request_id", transport.RequestIDFromContext(r.Context())),
				slog.String("upstream", target.Host),
				slog.String("error", err.Error()),
			)
			transport.WriteError(w, http.StatusBadGateway, transport.ErrorTypeBadGateway, "upstream unavailable")
		},
	}
}

// EchoResponse is the body written by EchoHandler.
type EchoResponse struct {
	Method    string `json:"method"`
	Path      string `json:"path"`
	Subject   string `json:"subject,omitempty"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// EchoHandler is a stand-in action that reports who reached it. It is
// served when no upstream is configured.
func EchoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := EchoResponse{
			Method:    r.Method,
			Path:      r.URL.Path,
			RequestID: transport.RequestIDFromContext(r.Context()),
		}
		if id := auth.IdentityFromContext(r.Context()); id != nil {
			resp.Subject = id.Subject
			resp.Kind = string(id.Kind)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
}
