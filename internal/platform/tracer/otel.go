package tracer

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans emitted by the API client.
const InstrumentationName = "pawhub/internal/api"

// OTel starts client spans on an OpenTelemetry tracer.
type OTel struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// OTelOption configures OTel.
type OTelOption func(*OTel)

// WithTracerProvider takes spans from tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(o *OTel) { o.tracer = tp.Tracer(InstrumentationName) }
}

// WithPropagator overrides the global text map propagator.
func WithPropagator(p propagation.TextMapPropagator) OTelOption {
	return func(o *OTel) { o.propagator = p }
}

// NewOTel uses the global tracer provider and propagator unless overridden.
// The global propagator is a no-op until one is installed, so the server
// installs W3C trace context at startup.
func NewOTel(opts ...OTelOption) *OTel {
	o := &OTel{}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(InstrumentationName)
	}
	if o.propagator == nil {
		o.propagator = otel.GetTextMapPropagator()
	}
	return o
}

// Start opens a client span.
func (o *OTel) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := o.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx, otelSpan{span}
}

// Inject writes the span in ctx into h as trace headers.
func (o *OTel) Inject(ctx context.Context, h http.Header) {
	o.propagator.Inject(ctx, propagation.HeaderCarrier(h))
}

type otelSpan struct{ trace.Span }

func (s otelSpan) End(err error) {
	if err != nil {
		s.Span.RecordError(err)
		s.Span.SetStatus(codes.Error, err.Error())
	}
	s.Span.End()
}

func (s otelSpan) SetAttributes(attrs ...Attribute) {
	s.Span.SetAttributes(attrs...)
}
