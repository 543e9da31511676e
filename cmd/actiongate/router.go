package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/actiongate/pkg/config"
	"github.com/rhuss/actiongate/pkg/gate"
	"github.com/rhuss/actiongate/pkg/observability"
	"github.com/rhuss/actiongate/pkg/session"
	transporthttp "github.com/rhuss/actiongate/pkg/transport/http"
)

// pinger is implemented by session backends that can report readiness.
type pinger interface {
	Ping(ctx context.Context) error
}

// newRouter mounts the health and metrics endpoints and puts every other
// path behind the gate.
func newRouter(cfg *config.Config, lookup session.Lookup) (http.Handler, error) {
	upstream := transporthttp.EchoHandler()
	if cfg.Gate.UpstreamURL != "" {
		target, err := url.Parse(cfg.Gate.UpstreamURL)
		if err != nil {
			return nil, fmt.Errorf("parsing gate.upstream_url: %w", err)
		}
		upstream = transporthttp.NewUpstream(target, cfg.Gate.Header, nil)
	}

	// The health and metrics routes are mounted outside the guard. Other
	// methods on those paths fall through to the catch-all and are gated.
	g := gate.New(newKeySource(cfg.Gate), gate.WithHeader(cfg.Gate.Header))
	guard := transporthttp.Middleware(g, newResolver(cfg.Session, lookup),
		transporthttp.WithBypass(cfg.Gate.Bypass...),
		transporthttp.WithLoginURL(cfg.Gate.LoginURL),
		transporthttp.WithTracing(cfg.Observability.Tracing.Enabled),
	)

	r := chi.NewRouter()
	r.Use(middleware.CleanPath)
	if cfg.Observability.Metrics.Enabled {
		r.Use(observability.MetricsMiddleware)
		r.Method(http.MethodGet, cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if p, ok := lookup.(pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				http.Error(w, "session store unavailable\n", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready\n"))
	})

	r.With(guard).Handle("/*", upstream)

	return r, nil
}
