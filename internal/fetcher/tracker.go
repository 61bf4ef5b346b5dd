package fetcher

import (
	"context"
	"log/slog"
	"sync"
)

// Metrics receives fetch outcomes. internal/platform/metrics implements it.
type Metrics interface {
	ObserveFetch(fetcher, outcome string, seconds float64)
	IncStaleDiscarded(fetcher string)
}

// Option configures a fetcher.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics Metrics
}

// WithLogger overrides the logger used for fetch failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records fetch latency and stale discards.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o options) observe(name, outcome string, seconds float64) {
	if o.metrics != nil {
		o.metrics.ObserveFetch(name, outcome, seconds)
	}
}

func (o options) discarded(name string) {
	if o.metrics != nil {
		o.metrics.IncStaleDiscarded(name)
	}
}

// tracker holds the request sequence, the abort handle of the in-flight
// request and the change broadcast for one fetcher instance.
// All fields are guarded by mu.
type tracker struct {
	parent  context.Context
	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	changed chan struct{}
	closed  bool
}

func newTracker(parent context.Context) *tracker {
	if parent == nil {
		parent = context.Background()
	}
	return &tracker{parent: parent, changed: make(chan struct{})}
}

// beginLocked aborts the in-flight request and hands out the context and
// sequence number of the next one.
func (t *tracker) beginLocked() (context.Context, context.CancelFunc, uint64) {
	t.abortLocked()
	t.seq++
	ctx, cancel := context.WithCancel(t.parent)
	t.cancel = cancel
	return ctx, cancel, t.seq
}

// abortLocked cancels the in-flight request and bumps the sequence so its
// result is ignored.
func (t *tracker) abortLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
		t.seq++
	}
}

// finishLocked reports whether seq is still the latest live request.
func (t *tracker) finishLocked(seq uint64) bool {
	if t.closed || seq != t.seq {
		return false
	}
	t.cancel = nil
	return true
}

func (t *tracker) notifyLocked() {
	close(t.changed)
	t.changed = make(chan struct{})
}

// Changed returns a channel closed on the next state change.
func (t *tracker) Changed() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.changed
}

func (t *tracker) close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.notifyLocked()
}

func (t *tracker) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// wait blocks until settled reports true (evaluated under mu), the fetcher
// is closed, or ctx ends.
func (t *tracker) wait(ctx context.Context, settled func() bool) error {
	for {
		t.mu.Lock()
		if t.closed || settled() {
			t.mu.Unlock()
			return nil
		}
		ch := t.changed
		t.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
