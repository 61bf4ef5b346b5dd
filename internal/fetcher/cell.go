package fetcher

import (
	"context"
	"time"

	dErrors "pawhub/pkg/domain-errors"
)

// ValueState is a point-in-time copy of an Item or List fetcher.
type ValueState[V any] struct {
	Data V
	// HasData is true once a request has succeeded for the current key.
	HasData bool
	Loading bool
	// NotFound is set when the last failure was a missing resource.
	NotFound bool
	Error    string
	Err      error
}

// cell is the shared machinery behind Item and List: one value, one
// in-flight request at most.
type cell[V any] struct {
	name  string
	opts  options
	t     *tracker
	state ValueState[V]
	clone func(V) V
}

func newCell[V any](ctx context.Context, name string, opts []Option, clone func(V) V) *cell[V] {
	return &cell[V]{
		name:  name,
		opts:  buildOptions(opts),
		t:     newTracker(ctx),
		clone: clone,
	}
}

func (c *cell[V]) startLocked(fetch func(context.Context) (V, error), attrs ...any) {
	ctx, cancel, seq := c.t.beginLocked()
	c.state.Loading = true
	c.t.notifyLocked()

	go c.run(ctx, cancel, seq, fetch, attrs)
}

// resetLocked drops the value and aborts whatever is in flight.
func (c *cell[V]) resetLocked() {
	c.t.abortLocked()
	c.state = ValueState[V]{}
	c.t.notifyLocked()
}

func (c *cell[V]) run(ctx context.Context, cancel context.CancelFunc, seq uint64, fetch func(context.Context) (V, error), attrs []any) {
	defer cancel()

	start := time.Now()
	v, err := fetch(ctx)
	elapsed := time.Since(start).Seconds()

	c.t.mu.Lock()
	if !c.t.finishLocked(seq) {
		c.t.mu.Unlock()
		c.opts.discarded(c.name)
		return
	}
	c.state.Loading = false
	if err != nil {
		c.state.Err = err
		c.state.Error = dErrors.Message(err, dErrors.DefaultMessage)
		c.state.NotFound = dErrors.HasCode(err, dErrors.CodeNotFound)
	} else {
		c.state.Data = v
		c.state.HasData = true
		c.state.NotFound = false
		c.state.Err = nil
		c.state.Error = ""
	}
	c.t.notifyLocked()
	c.t.mu.Unlock()

	if err != nil {
		c.opts.observe(c.name, "error", elapsed)
		args := append([]any{"fetcher", c.name, "code", string(dErrors.CodeOf(err)), "error", err}, attrs...)
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			c.opts.logger.InfoContext(ctx, "resource not found", args...)
			return
		}
		c.opts.logger.ErrorContext(ctx, "fetch failed", args...)
		return
	}
	c.opts.observe(c.name, "ok", elapsed)
}

func (c *cell[V]) snapshot() ValueState[V] {
	c.t.mu.Lock()
	defer c.t.mu.Unlock()
	s := c.state
	if c.clone != nil {
		s.Data = c.clone(s.Data)
	}
	return s
}

func (c *cell[V]) wait(ctx context.Context) error {
	return c.t.wait(ctx, func() bool { return !c.state.Loading })
}
