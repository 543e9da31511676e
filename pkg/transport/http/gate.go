// Package http binds the authorization gate to net/http and hosts the
// actiongate server.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rhuss/actiongate/pkg/auth"
	"github.com/rhuss/actiongate/pkg/debug"
	"github.com/rhuss/actiongate/pkg/gate"
	"github.com/rhuss/actiongate/pkg/observability"
	"github.com/rhuss/actiongate/pkg/session"
	"github.com/rhuss/actiongate/pkg/transport"
	"go.opentelemetry.io/otel/trace"
)

// Served is the outcome of a proceed stage that handed the request to the
// protected handler.
const Served gate.Outcome = "served"

// DefaultLoginURL is where unauthenticated browsers are sent.
const DefaultLoginURL = "/login"

// DefaultBypass lists the conventional health and metrics paths. The
// middleware skips nothing by default; handlers that mount these endpoints
// behind it opt in with WithBypass(DefaultBypass...).
var DefaultBypass = []string{"/healthz", "/readyz", "/metrics"}

// SessionResolver finds the caller's session for a request. A request
// without a session resolves to (nil, nil); errors report backend failures.
type SessionResolver interface {
	Resolve(ctx context.Context, r *http.Request) (session.Session, error)
}

// SessionResolverFunc adapts a function to the SessionResolver interface.
type SessionResolverFunc func(ctx context.Context, r *http.Request) (session.Session, error)

// Resolve calls f.
func (f SessionResolverFunc) Resolve(ctx context.Context, r *http.Request) (session.Session, error) {
	return f(ctx, r)
}

// Option configures the gate middleware.
type Option func(*guard)

// WithBypass sets the paths that skip the gate for every method. Matching is
// exact on the request path.
func WithBypass(paths ...string) Option {
	return func(g *guard) { g.bypass = paths }
}

// WithLoginURL sets the login flow URL. A relative URL's path is also
// exempt from the gate so the login page stays reachable.
func WithLoginURL(u string) Option {
	return func(g *guard) { g.loginURL = u }
}

// WithLogger sets the logger used for denials and lookup failures.
func WithLogger(l *slog.Logger) Option {
	return func(g *guard) { g.logger = l }
}

// WithTracing toggles the evaluation span.
func WithTracing(enabled bool) Option {
	return func(g *guard) { g.tracing = enabled }
}

type guard struct {
	gate     gate.Gate
	resolver SessionResolver
	bypass   []string
	loginURL string
	logger   *slog.Logger
	tracing  bool

	skip  map[string]bool
	login *url.URL
}

// Middleware returns HTTP middleware that runs g for every request except
// the login path and any WithBypass paths. The session comes from resolver (nil means no session
// support) and the machine credential from the request headers. Allowed
// requests reach next with the caller's auth.Identity in their context;
// Login diverts browsers to the login URL with a 303 and answers JSON
// clients with 401. Panics raised by next are not recovered here.
func Middleware(g gate.Gate, resolver SessionResolver, opts ...Option) func(http.Handler) http.Handler {
	gd := &guard{
		gate:     g,
		resolver: resolver,
		loginURL: DefaultLoginURL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(gd)
	}

	gd.skip = make(map[string]bool, len(gd.bypass)+1)
	for _, p := range gd.bypass {
		gd.skip[p] = true
	}
	if u, err := url.Parse(gd.loginURL); err == nil {
		gd.login = u
		if u.Host == "" && u.Path != "" {
			gd.skip[u.Path] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gd.skip[r.URL.Path] {
				debug.Trace("transport", "gate bypassed", "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}
			gd.serve(w, r, next)
		})
	}
}

func (gd *guard) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	ctx := r.Context()
	start := time.Now()

	var (
		proceeded bool
		label     string
		method    = observability.MethodNone
		evalErr   error
	)

	if gd.tracing {
		var span trace.Span
		ctx, span = observability.StartEvaluation(ctx, r.URL.Path)
		defer func() { observability.EndEvaluation(span, label, method, evalErr) }()
	}

	inv := gate.Invocation{
		Session: gd.resolve(ctx, r),
		Header:  r.Header,
	}

	outcome, err := gd.gate.Evaluate(ctx, inv, func(ctx context.Context) (gate.Outcome, error) {
		proceeded = true
		label = observability.OutcomeProceed
		if id := auth.IdentityFromContext(ctx); id != nil {
			method = string(id.Kind)
			debug.Log("gate", "access granted", "path", r.URL.Path, "subject", id.Subject, "kind", id.Kind)
		}
		observability.RecordDecision(label, method, time.Since(start).Seconds())
		next.ServeHTTP(w, r.WithContext(ctx))
		return Served, nil
	})
	evalErr = err
	if proceeded {
		return
	}

	label = observability.OutcomeDenied
	if outcome == gate.Login {
		label = observability.OutcomeLogin
	}
	observability.RecordDecision(label, method, time.Since(start).Seconds())

	attrs := []slog.Attr{
		slog.String("request_id", transport.RequestIDFromContext(ctx)),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("outcome", string(outcome)),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		gd.logger.LogAttrs(ctx, slog.LevelError, "gate evaluation failed", attrs...)
		transport.WriteError(w, http.StatusInternalServerError, transport.ErrorTypeServer, "internal server error")
		return
	}

	gd.logger.LogAttrs(ctx, slog.LevelInfo, "access denied", attrs...)
	if outcome == gate.Login {
		gd.divert(w, r)
		return
	}
	transport.WriteError(w, http.StatusForbidden, transport.ErrorTypeForbidden, "access denied")
}

// resolve returns the caller's session. Backend failures are logged and
// treated as no session, so the request can still pass on a machine key.
func (gd *guard) resolve(ctx context.Context, r *http.Request) session.Session {
	if gd.resolver == nil {
		return nil
	}
	s, err := gd.resolver.Resolve(ctx, r)
	switch {
	case err != nil:
		observability.SessionLookupsTotal.WithLabelValues(observability.LookupError).Inc()
		gd.logger.LogAttrs(ctx, slog.LevelWarn, "session lookup failed",
			slog.String("request_id", transport.RequestIDFromContext(ctx)),
			slog.String("error", err.Error()),
		)
		return nil
	case s == nil:
		observability.SessionLookupsTotal.WithLabelValues(observability.LookupAbsent).Inc()
	default:
		observability.SessionLookupsTotal.WithLabelValues(observability.LookupFound).Inc()
	}
	return s
}

// divert sends the caller to the login flow.
func (gd *guard) divert(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		transport.WriteErrorResponse(w, &transport.Error{
			Type:     transport.ErrorTypeUnauthenticated,
			Message:  "authentication required",
			LoginURL: gd.loginURL,
		}, http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, gd.loginTarget(r), http.StatusSeeOther)
}

// loginTarget returns the login URL with next set to the original request URI.
func (gd *guard) loginTarget(r *http.Request) string {
	if gd.login == nil {
		return gd.loginURL
	}
	u := *gd.login
	q := u.Query()
	q.Set("next", r.URL.RequestURI())
	u.RawQuery = q.Encode()
	return u.String()
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
