package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pawhub/internal/api"
	"pawhub/internal/fetcher"
	"pawhub/internal/listing"
	"pawhub/internal/search"
	"pawhub/pkg/requestcontext"
)

// catalogList describes one paginated, searchable list page.
type catalogList[T any] struct {
	// key names the page in the listing registry.
	key     string
	title   string
	heading string
	path    string
	// noun is used in the empty-state message.
	noun   string
	fields []search.Field[T]
	// remote names the URL parameters forwarded to the API as filters.
	remote []string
	card   func(T) card
}

type hiddenField struct {
	Name  string
	Value string
}

type listData struct {
	Heading string
	Path    string
	Term    string
	Hidden  []hiddenField
	Cards   []card
	Pages   []pageLink
	Loading bool
	Error   string
	Empty   string
	// Admin list pages render rows instead of cards.
	Columns []string
	Rows    []adminRow
	NewHref string
}

func pageParam(q url.Values) int {
	n, err := strconv.Atoi(q.Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func remoteFilters(q url.Values, keys []string) map[string]string {
	var out map[string]string
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			if out == nil {
				out = make(map[string]string, len(keys))
			}
			out[k] = v
		}
	}
	return out
}

// listSource is what loadList fetches from.
type listSource[T any] struct {
	key    string
	fetch  fetcher.PageFunc[T]
	fields []search.Field[T]
	// remote names the URL parameters forwarded as filters; fixed filters
	// are always sent.
	remote []string
	fixed  map[string]string
}

// loadList mounts the visitor's view of src.key, or reuses the mounted one,
// then brings it in line with the URL: page and remote filters go to the
// fetcher, q only narrows what it already holds. Two tabs of one visitor share
// the view, so the page is only rendered when the view settled on this
// request's page and filters; otherwise it reports false and the snapshot
// carries no items.
func loadList[T any](s *Server, r *http.Request, src listSource[T]) (listing.Snapshot[T], bool) {
	ctx, cancel := context.WithTimeout(r.Context(), s.settle)
	defer cancel()
	q := r.URL.Query()
	key := src.key

	build := func(base context.Context) *listing.View[T] {
		pager := fetcher.NewPaginated(base, key, src.fetch, s.pageSize, s.fetchOpts...)
		return listing.NewView(pager, src.fields...)
	}
	var view *listing.View[T]
	if visitorID := requestcontext.VisitorID(ctx); visitorID != "" {
		view = listing.Get(s.views, visitorID, key, build)
		if s.metrics != nil {
			s.metrics.SetActiveViews(s.views.Len())
		}
	} else {
		view = build(r.Context())
		defer view.Close()
	}

	filters := remoteFilters(q, src.remote)
	for k, v := range src.fixed {
		if filters == nil {
			filters = make(map[string]string, len(src.fixed))
		}
		filters[k] = v
	}
	pageNo := pageParam(q)
	term := q.Get("q")
	view.SetSearch(term)

	for range navigateAttempts {
		if !view.Navigate(pageNo, filters) {
			if snap := view.Snapshot(); snap.Err != nil && !snap.Loading {
				view.Reload()
			}
		}
		if !s.settleAll(ctx, view) {
			break
		}
		if snap := view.SnapshotFor(term); listing.Shows(snap, pageNo, filters) {
			return snap, true
		}
	}
	return pending(view.SnapshotFor(term)), false
}

// navigateAttempts bounds how often one request re-navigates a view another
// request moved away in the meantime.
const navigateAttempts = 3

// pending strips a snapshot that belongs to another request's page.
func pending[T any](snap listing.Snapshot[T]) listing.Snapshot[T] {
	snap.Items = nil
	snap.Visible = []T{}
	snap.Loading = true
	snap.Empty = false
	return snap
}

func emptyMessage(noun string) string {
	return "No " + noun + " found. Please try a different search term."
}

// listHandler renders a public card grid.
func listHandler[T any](s *Server, def catalogList[T], res api.Resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, settled := loadList(s, r, listSource[T]{
			key: def.key, fetch: res.List, fields: def.fields, remote: def.remote,
		})

		data := listData{
			Heading: def.heading,
			Path:    def.path,
			Term:    snap.Term,
			Hidden:  hiddenFilters(r.URL.Query(), def.remote, snap.CurrentPage),
			Loading: !settled,
			Error:   snap.Error,
			Pages:   pageLinks(def.path, r.URL.Query(), snap.CurrentPage, snap.TotalPages),
		}
		for _, item := range snap.Visible {
			data.Cards = append(data.Cards, def.card(item))
		}
		if snap.Empty && snap.Error == "" {
			data.Empty = emptyMessage(def.noun)
		}
		s.render(w, r, http.StatusOK, "list", page{Title: def.title, Refresh: !settled, Data: data})
	}
}

// hiddenFilters carries the current page and remote filters through the
// search form, so submitting a term stays on the fetched page.
func hiddenFilters(q url.Values, keys []string, current int) []hiddenField {
	var out []hiddenField
	if current > 1 {
		out = append(out, hiddenField{Name: "page", Value: strconv.Itoa(current)})
	}
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			out = append(out, hiddenField{Name: k, Value: v})
		}
	}
	return out
}
