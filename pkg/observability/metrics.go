// Package observability provides Prometheus metrics, OpenTelemetry tracing
// helpers and HTTP middleware for monitoring actiongate.
package observability

import "github.com/prometheus/client_golang/prometheus"

// GateBuckets defines histogram buckets for gate evaluation latency, which
// is dominated by session lookups (in-memory or a single indexed query).
var GateBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// Label values for DecisionsTotal.
const (
	OutcomeProceed = "proceed"
	OutcomeLogin   = "login"
	OutcomeDenied  = "denied"

	MethodStaff   = "staff"
	MethodMachine = "machine"
	MethodNone    = "none"
)

// Label values for SessionLookupsTotal.
const (
	LookupFound  = "found"
	LookupAbsent = "absent"
	LookupError  = "error"
)

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "actiongate_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "actiongate_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// InFlightRequests tracks requests currently being served.
	InFlightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "actiongate_requests_in_flight",
			Help: "Requests in flight",
		},
	)

	// DecisionsTotal counts gate decisions by outcome and by the check that
	// admitted the caller.
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "actiongate_decisions_total",
			Help: "Gate decisions",
		},
		[]string{"outcome", "method"},
	)

	// EvaluationDuration records the time spent deciding, excluding the
	// protected stage itself.
	EvaluationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "actiongate_evaluation_duration_seconds",
			Help:    "Gate evaluation duration",
			Buckets: GateBuckets,
		},
		[]string{"outcome"},
	)

	// SessionLookupsTotal counts session resolutions by result.
	SessionLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "actiongate_session_lookups_total",
			Help: "Session lookups",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		InFlightRequests,
		DecisionsTotal,
		EvaluationDuration,
		SessionLookupsTotal,
	)
}
