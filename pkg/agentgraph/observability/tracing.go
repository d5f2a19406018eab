package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("agentgraph")

// SpanManager handles span lifecycle around collaborator calls.
// Use NewSpanManager for OpenTelemetry or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartGenerateSpan starts a span for one collaborator operation
	// ("workflow" or "sop").
	StartGenerateSpan(ctx context.Context, op, lang string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, recording err if non-nil.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the span in ctx.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

type otelSpanManager struct{}

// NewSpanManager returns a SpanManager backed by the global tracer provider.
//
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return otelSpanManager{}
}

func (otelSpanManager) StartGenerateSpan(ctx context.Context, op, lang string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "agentgraph.generate."+op,
		trace.WithAttributes(
			attribute.String("generate.op", op),
			attribute.String("generate.lang", lang),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

func (otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// EndSpanWithError completes span, setting an error status when err is non-nil.
func EndSpanWithError(span trace.Span, err error) {
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
