package fetcher

import "context"

// ItemFunc fetches the resource identified by id.
type ItemFunc[T any] func(ctx context.Context, id string) (T, error)

// Item keeps a single resource in sync with an id. An empty id means there is
// nothing to fetch.
type Item[T any] struct {
	c     *cell[T]
	fetch ItemFunc[T]
	id    string
}

// NewItem creates the fetcher and, when id is not empty, issues its request.
func NewItem[T any](ctx context.Context, name string, fetch ItemFunc[T], id string, opts ...Option) *Item[T] {
	it := &Item[T]{c: newCell[T](ctx, name, opts, nil), fetch: fetch}
	it.SetID(id)
	return it
}

// SetID switches to another resource. Data for the previous id is dropped.
// It reports whether a request was issued.
func (it *Item[T]) SetID(id string) bool {
	it.c.t.mu.Lock()
	defer it.c.t.mu.Unlock()
	if it.c.t.closed {
		return false
	}
	if id == it.id && (it.c.state.Loading || it.c.state.HasData || it.c.state.Err != nil) {
		return false
	}
	it.id = id
	it.c.resetLocked()
	if id == "" {
		return false
	}
	it.startLocked()
	return true
}

// Reload re-fetches the current id, keeping the current data until it resolves.
func (it *Item[T]) Reload() bool {
	it.c.t.mu.Lock()
	defer it.c.t.mu.Unlock()
	if it.c.t.closed || it.id == "" {
		return false
	}
	it.startLocked()
	return true
}

func (it *Item[T]) startLocked() {
	id, fetch := it.id, it.fetch
	it.c.startLocked(func(ctx context.Context) (T, error) {
		return fetch(ctx, id)
	}, "id", id)
}

// ID returns the current id.
func (it *Item[T]) ID() string {
	it.c.t.mu.Lock()
	defer it.c.t.mu.Unlock()
	return it.id
}

// Snapshot returns a copy of the current state.
func (it *Item[T]) Snapshot() ValueState[T] { return it.c.snapshot() }

// Wait blocks until no request is in flight.
func (it *Item[T]) Wait(ctx context.Context) error { return it.c.wait(ctx) }

// Changed returns a channel closed on the next state change.
func (it *Item[T]) Changed() <-chan struct{} { return it.c.t.Changed() }

// Close aborts the in-flight request. Later resolutions are ignored.
func (it *Item[T]) Close() { it.c.t.close() }
