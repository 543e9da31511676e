package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used for actiongate spans.
const TracerName = "actiongate"

// SpanEvaluate is the span started around each gate evaluation.
const SpanEvaluate = "actiongate.evaluate"

// Tracer returns the actiongate tracer from the global provider. Without a
// configured provider it is a no-op.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartEvaluation starts the evaluation span.
func StartEvaluation(ctx context.Context, path string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, SpanEvaluate,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("http.route", path)),
	)
}

// EndEvaluation annotates and ends the evaluation span. A downstream error
// is recorded on the span without being altered.
func EndEvaluation(span trace.Span, outcome, method string, err error) {
	span.SetAttributes(
		attribute.String("actiongate.outcome", outcome),
		attribute.String("actiongate.method", method),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// RecordDecision updates the decision counter and evaluation histogram.
func RecordDecision(outcome, method string, seconds float64) {
	DecisionsTotal.WithLabelValues(outcome, method).Inc()
	EvaluationDuration.WithLabelValues(outcome).Observe(seconds)
}
