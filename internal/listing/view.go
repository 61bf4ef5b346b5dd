// Package listing keeps the per-visitor state of list pages: one paginated
// fetcher plus the search term typed into that page.
package listing

import (
	"context"
	"sync"

	"pawhub/internal/fetcher"
	"pawhub/internal/search"
)

// View is one mounted list page. Searching narrows what the fetcher last
// returned and never issues a request.
type View[T any] struct {
	pager  *fetcher.Paginated[T]
	fields []search.Field[T]

	mu   sync.Mutex
	term string
}

// Snapshot is what a list page renders.
type Snapshot[T any] struct {
	fetcher.PageState[T]
	Term string
	// Visible is the fetched page narrowed by Term.
	Visible []T
	// Empty is true when nothing is in flight and nothing is visible.
	Empty bool
}

// NewView wraps pager; fields are the searchable fields of T.
func NewView[T any](pager *fetcher.Paginated[T], fields ...search.Field[T]) *View[T] {
	return &View[T]{pager: pager, fields: fields}
}

// SetSearch replaces the search term.
func (v *View[T]) SetSearch(term string) {
	v.mu.Lock()
	v.term = term
	v.mu.Unlock()
}

// Search returns the current search term.
func (v *View[T]) Search() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.term
}

// SetPage moves the underlying fetcher to page n.
func (v *View[T]) SetPage(n int) bool {
	return v.pager.SetPage(n)
}

// SetFilters replaces the remote filters of the underlying fetcher.
func (v *View[T]) SetFilters(filters map[string]string) bool {
	return v.pager.SetFilters(filters)
}

// Navigate applies a page and filter set together, issuing at most one request.
func (v *View[T]) Navigate(page int, filters map[string]string) bool {
	return v.pager.SetPageAndFilters(page, filters)
}

// Shows reports whether snap is the settled result of page under filters.
func Shows[T any](snap Snapshot[T], page int, filters map[string]string) bool {
	if snap.Loading {
		return false
	}
	want := snap.Query.WithFilters(filters).WithPage(page)
	return want.Equal(snap.Query)
}

// Reload re-issues the current query.
func (v *View[T]) Reload() bool {
	return v.pager.Reload()
}

// Pager exposes the underlying fetcher.
func (v *View[T]) Pager() *fetcher.Paginated[T] {
	return v.pager
}

// Snapshot returns the fetcher state narrowed by the view's search term.
func (v *View[T]) Snapshot() Snapshot[T] {
	return v.SnapshotFor(v.Search())
}

// SnapshotFor returns the fetcher state narrowed by term instead of the
// view's own term. Requests sharing a view use it to render their own search.
func (v *View[T]) SnapshotFor(term string) Snapshot[T] {
	state := v.pager.Snapshot()
	visible := search.Filter(state.Items, term, v.fields...)
	return Snapshot[T]{
		PageState: state,
		Term:      term,
		Visible:   visible,
		Empty:     !state.Loading && len(visible) == 0,
	}
}

// Wait blocks until the fetcher has settled.
func (v *View[T]) Wait(ctx context.Context) error {
	return v.pager.Wait(ctx)
}

// Close tears down the fetcher.
func (v *View[T]) Close() {
	v.pager.Close()
}
