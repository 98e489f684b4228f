package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// RequestMeta describes one game-data API fetch for telemetry purposes.
type RequestMeta struct {
	Method    string // HTTP method (required)
	Host      string // API host (required)
	Path      string // URL path
	Namespace string // Data namespace (may be empty)
	Locale    string // Response locale (may be empty)
	Caller    string // Caller identity partitioning the rate budget
}

// SpanName returns the deterministic span name for this fetch.
// Format: armory.fetch.<host>
func (m RequestMeta) SpanName() string {
	return "armory.fetch." + m.Host
}

// Tracer wraps OpenTelemetry tracing with fetch-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an API fetch.
	StartSpan(ctx context.Context, meta RequestMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer over the given OpenTelemetry tracer.
// A nil tracer yields a no-op implementation.
func NewTracer(tracer trace.Tracer) Tracer {
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer("noop")
	}
	return &tracerImpl{tracer: tracer}
}

// StartSpan starts a span carrying the request facets as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta RequestMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", meta.Method),
		attribute.String("server.address", meta.Host),
		attribute.String("url.path", meta.Path),
	}
	if meta.Namespace != "" {
		attrs = append(attrs, attribute.String("armory.namespace", meta.Namespace))
	}
	if meta.Locale != "" {
		attrs = append(attrs, attribute.String("armory.locale", meta.Locale))
	}
	if meta.Caller != "" {
		attrs = append(attrs, attribute.String("armory.caller", meta.Caller))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan ends the span, marking its status from err.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Ensure tracerImpl implements Tracer
var _ Tracer = (*tracerImpl)(nil)
