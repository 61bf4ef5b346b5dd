package listing

import (
	"context"
	"sync"
	"time"
)

// DefaultIdleTTL is how long an untouched view is kept.
const DefaultIdleTTL = 15 * time.Minute

type closer interface {
	Close()
}

type viewKey struct {
	visitor string
	page    string
}

type entry struct {
	view     closer
	lastUsed time.Time
}

// Registry caches list views per visitor and page. Views fetch under the
// registry's context, so they outlive the request that created them.
type Registry struct {
	base    context.Context
	stop    context.CancelFunc
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[viewKey]*entry
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTTL overrides how long an untouched view is kept.
func WithIdleTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.idleTTL = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	base, stop := context.WithCancel(context.Background())
	r := &Registry{
		base:    base,
		stop:    stop,
		idleTTL: DefaultIdleTTL,
		now:     time.Now,
		entries: make(map[viewKey]*entry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Get returns the visitor's view for pageKey, building it on first use.
// build receives the context the view's requests must derive from.
func Get[T any](r *Registry, visitorID, pageKey string, build func(ctx context.Context) *View[T]) *View[T] {
	k := viewKey{visitor: visitorID, page: pageKey}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[k]; ok {
		if v, ok := e.view.(*View[T]); ok {
			e.lastUsed = r.now()
			return v
		}
		e.view.Close()
	}
	v := build(r.base)
	r.entries[k] = &entry{view: v, lastUsed: r.now()}
	return v
}

// Forget closes and drops every view of a visitor.
func (r *Registry) Forget(visitorID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k, e := range r.entries {
		if k.visitor == visitorID {
			e.view.Close()
			delete(r.entries, k)
			n++
		}
	}
	return n
}

// EvictIdle closes views untouched since now minus the idle TTL.
func (r *Registry) EvictIdle(_ context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			e.view.Close()
			delete(r.entries, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of cached views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close tears down every view and aborts their requests.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, e := range r.entries {
		e.view.Close()
		delete(r.entries, k)
	}
	r.stop()
}
