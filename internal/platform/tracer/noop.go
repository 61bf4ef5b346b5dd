package tracer

import (
	"context"
	"net/http"
)

// Noop records nothing and adds no headers.
type Noop struct{}

// NewNoop returns a Noop tracer.
func NewNoop() Noop { return Noop{} }

func (Noop) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

func (Noop) Inject(context.Context, http.Header) {}

type noopSpan struct{}

func (noopSpan) End(error)                  {}
func (noopSpan) SetAttributes(...Attribute) {}
