// Package tracer wraps OpenTelemetry for the API client: one client span per
// outgoing call, and W3C trace headers so the API can join the trace. Tests
// use the no-op tracer; the server uses the OTel one.
package tracer

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
)

// Attribute is a span attribute.
type Attribute = attribute.KeyValue

// Attribute constructors.
var (
	String = attribute.String
	Bool   = attribute.Bool
	Int    = attribute.Int
)

// Span is an active span. End must be called once; a non-nil err marks the
// span failed.
type Span interface {
	End(err error)
	SetAttributes(attrs ...Attribute)
}

// Tracer starts spans and propagates them on outgoing requests. It must be
// safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
	Inject(ctx context.Context, h http.Header)
}

// Span names.
const (
	SpanAPIRequest = "api.request"
	SpanAPILogin   = "api.login"
)

// Attribute keys.
const (
	AttrMethod     = "http.request.method"
	AttrPath       = "url.path"
	AttrStatusCode = "http.response.status_code"
	AttrResource   = "pawhub.api.resource"
	AttrErrorCode  = "pawhub.api.error_code"
	AttrAuthorized = "pawhub.api.authorized"
	AttrKind       = "pawhub.session.kind"
)
