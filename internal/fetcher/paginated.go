package fetcher

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"pawhub/internal/models"
	dErrors "pawhub/pkg/domain-errors"
)

// PageFunc fetches one page for q. It must honor ctx cancellation.
type PageFunc[T any] func(ctx context.Context, q models.ListQuery) (models.PaginatedResult[T], error)

// PageState is a point-in-time copy of a paginated fetcher.
type PageState[T any] struct {
	Items       []T
	TotalPages  int
	CurrentPage int
	PageSize    int
	// Query is the query of the latest request. Once Loading is false, Items
	// answer it unless Err is set.
	Query   models.ListQuery
	Loading bool
	// Loaded is true once any request has succeeded.
	Loaded bool
	// Error is the visitor-facing message of the last failure, cleared on success.
	Error string
	Err   error
}

// Paginated keeps one page of a remote collection in sync with the current
// page, page size and filters.
type Paginated[T any] struct {
	name  string
	opts  options
	t     *tracker
	fetch PageFunc[T]
	query models.ListQuery
	state PageState[T]
}

// NewPaginated creates the fetcher and issues the request for page 1.
// Requests derive from ctx; cancelling it aborts whatever is in flight.
func NewPaginated[T any](ctx context.Context, name string, fetch PageFunc[T], pageSize int, opts ...Option) *Paginated[T] {
	p := &Paginated[T]{
		name:  name,
		opts:  buildOptions(opts),
		t:     newTracker(ctx),
		fetch: fetch,
	}
	p.t.mu.Lock()
	p.startLocked(models.NewListQuery(1, pageSize))
	p.t.mu.Unlock()
	return p
}

// SetPage moves to page n. It reports whether a request was issued.
func (p *Paginated[T]) SetPage(n int) bool {
	return p.update(func(q models.ListQuery) models.ListQuery { return q.WithPage(n) })
}

// SetPageSize changes the page size and keeps the current page.
func (p *Paginated[T]) SetPageSize(n int) bool {
	return p.update(func(q models.ListQuery) models.ListQuery {
		q.PageSize = n
		return q.WithPage(q.Page)
	})
}

// SetFilters replaces the filter set.
func (p *Paginated[T]) SetFilters(filters map[string]string) bool {
	return p.update(func(q models.ListQuery) models.ListQuery { return q.WithFilters(filters) })
}

// SetPageAndFilters moves to page n under filters in one request, if either
// differs from the current query.
func (p *Paginated[T]) SetPageAndFilters(n int, filters map[string]string) bool {
	return p.update(func(q models.ListQuery) models.ListQuery {
		q = q.WithFilters(filters)
		return q.WithPage(n)
	})
}

// SetFetch swaps the fetch operation. A new operation always re-fetches.
func (p *Paginated[T]) SetFetch(fetch PageFunc[T]) bool {
	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	if p.t.closed || fetch == nil {
		return false
	}
	p.fetch = fetch
	p.startLocked(p.query)
	return true
}

// Reload re-issues the current query, keeping the current items until it
// resolves. It does nothing while a request is already in flight.
func (p *Paginated[T]) Reload() bool {
	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	if p.t.closed || p.state.Loading {
		return false
	}
	p.startLocked(p.query)
	return true
}

// Query returns the query of the latest request.
func (p *Paginated[T]) Query() models.ListQuery {
	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	return p.query.WithPage(p.query.Page)
}

// Snapshot returns a copy of the current state.
func (p *Paginated[T]) Snapshot() PageState[T] {
	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	s := p.state
	s.Items = slices.Clone(p.state.Items)
	s.Query = p.state.Query.WithPage(p.state.Query.Page)
	return s
}

// Wait blocks until no request is in flight.
func (p *Paginated[T]) Wait(ctx context.Context) error {
	return p.t.wait(ctx, func() bool { return !p.state.Loading })
}

// Changed returns a channel closed on the next state change.
func (p *Paginated[T]) Changed() <-chan struct{} {
	return p.t.Changed()
}

// Close aborts the in-flight request. Later resolutions are ignored.
func (p *Paginated[T]) Close() {
	p.t.close()
}

// Closed reports whether Close was called.
func (p *Paginated[T]) Closed() bool {
	return p.t.isClosed()
}

func (p *Paginated[T]) update(next func(models.ListQuery) models.ListQuery) bool {
	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	if p.t.closed {
		return false
	}
	q := next(p.query)
	if q.Equal(p.query) {
		return false
	}
	p.startLocked(q)
	return true
}

func (p *Paginated[T]) startLocked(q models.ListQuery) {
	ctx, cancel, seq := p.t.beginLocked()
	p.query = q
	p.state.Loading = true
	p.state.CurrentPage = q.Page
	p.state.PageSize = q.PageSize
	p.state.Query = q
	p.t.notifyLocked()

	go p.run(ctx, cancel, seq, p.fetch, q)
}

func (p *Paginated[T]) run(ctx context.Context, cancel context.CancelFunc, seq uint64, fetch PageFunc[T], q models.ListQuery) {
	defer cancel()

	start := time.Now()
	res, err := fetch(ctx, q)
	elapsed := time.Since(start).Seconds()

	p.t.mu.Lock()
	if !p.t.finishLocked(seq) {
		p.t.mu.Unlock()
		p.opts.discarded(p.name)
		return
	}
	p.state.Loading = false
	if err != nil {
		p.state.Err = err
		p.state.Error = dErrors.Message(err, dErrors.DefaultMessage)
	} else {
		p.state.Items = res.Items
		p.state.TotalPages = res.TotalPages
		p.state.Loaded = true
		p.state.Err = nil
		p.state.Error = ""
	}
	p.t.notifyLocked()
	p.t.mu.Unlock()

	if err != nil {
		p.opts.observe(p.name, "error", elapsed)
		p.opts.logger.ErrorContext(ctx, "page fetch failed",
			"fetcher", p.name,
			"page", q.Page,
			"page_size", q.PageSize,
			"code", string(dErrors.CodeOf(err)),
			"error", err,
		)
		return
	}
	p.opts.observe(p.name, "ok", elapsed)
	p.opts.logger.DebugContext(ctx, "page fetched",
		slog.String("fetcher", p.name),
		slog.Int("page", q.Page),
		slog.Int("items", len(res.Items)),
	)
}
