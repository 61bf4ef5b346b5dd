// Package requestcontext carries per-request values (request id, client metadata,
// visitor identity) through context.Context.
package requestcontext

import "context"

type contextKeyRequestID struct{}
type contextKeyClientIP struct{}
type contextKeyUserAgent struct{}
type contextKeyVisitorID struct{}
type contextKeyDevice struct{}

// WithRequestID stores the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID{}, requestID)
}

// RequestID returns the request id, or "" when absent.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyRequestID{}).(string)
	return v
}

// WithClientMetadata stores the client IP and User-Agent.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, contextKeyClientIP{}, clientIP)
	return context.WithValue(ctx, contextKeyUserAgent{}, userAgent)
}

// ClientIP returns the client IP, or "" when absent.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyClientIP{}).(string)
	return v
}

// UserAgent returns the raw User-Agent header value.
func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyUserAgent{}).(string)
	return v
}

// WithVisitorID stores the browser identity assigned by the visitor middleware.
func WithVisitorID(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, contextKeyVisitorID{}, visitorID)
}

// VisitorID returns the visitor id, or "" when absent.
func VisitorID(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyVisitorID{}).(string)
	return v
}

// WithDevice stores a display label such as "Firefox on Linux".
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, contextKeyDevice{}, device)
}

// Device returns the device label, or "" when absent.
func Device(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyDevice{}).(string)
	return v
}
