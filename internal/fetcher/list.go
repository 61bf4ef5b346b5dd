package fetcher

import (
	"context"
	"slices"
)

// ListFunc fetches an unparameterized collection.
type ListFunc[T any] func(ctx context.Context) ([]T, error)

// List keeps an unparameterized collection, such as every clinic for a
// select box.
type List[T any] struct {
	c     *cell[[]T]
	fetch ListFunc[T]
}

// NewList creates the fetcher and issues its request.
func NewList[T any](ctx context.Context, name string, fetch ListFunc[T], opts ...Option) *List[T] {
	l := &List[T]{
		c:     newCell(ctx, name, opts, func(v []T) []T { return slices.Clone(v) }),
		fetch: fetch,
	}
	l.Reload()
	return l
}

// Reload re-fetches the collection.
func (l *List[T]) Reload() bool {
	l.c.t.mu.Lock()
	defer l.c.t.mu.Unlock()
	if l.c.t.closed {
		return false
	}
	l.c.startLocked(l.fetch)
	return true
}

// Snapshot returns a copy of the current state.
func (l *List[T]) Snapshot() ValueState[[]T] { return l.c.snapshot() }

// Wait blocks until no request is in flight.
func (l *List[T]) Wait(ctx context.Context) error { return l.c.wait(ctx) }

// Changed returns a channel closed on the next state change.
func (l *List[T]) Changed() <-chan struct{} { return l.c.t.Changed() }

// Close aborts the in-flight request. Later resolutions are ignored.
func (l *List[T]) Close() { l.c.t.close() }
