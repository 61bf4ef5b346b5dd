package models

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
)

// DefaultPageSize applies when a query carries no usable page size.
const DefaultPageSize = 6

// PaginatedResult is one page of entities plus the server's total page count.
// It is replaced wholesale whenever the page or query changes.
type PaginatedResult[T any] struct {
	Items      []T `json:"items"`
	TotalPages int `json:"totalPages"`
}

// ListQuery drives one list fetch.
type ListQuery struct {
	Page     int
	PageSize int
	Filters  map[string]string
}

// NewListQuery returns a normalized query for page and pageSize.
func NewListQuery(page, pageSize int) ListQuery {
	return ListQuery{Page: page, PageSize: pageSize}.Normalize()
}

// Normalize clamps page to at least 1, defaults a non-positive page size and
// drops empty filter values.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if len(q.Filters) > 0 {
		filters := make(map[string]string, len(q.Filters))
		for k, v := range q.Filters {
			if k != "" && v != "" {
				filters[k] = v
			}
		}
		q.Filters = filters
	}
	if len(q.Filters) == 0 {
		q.Filters = nil
	}
	return q
}

// WithPage returns a copy of q on page.
func (q ListQuery) WithPage(page int) ListQuery {
	q.Page = page
	q.Filters = maps.Clone(q.Filters)
	return q.Normalize()
}

// WithFilters returns a copy of q with filters replaced.
func (q ListQuery) WithFilters(filters map[string]string) ListQuery {
	q.Filters = maps.Clone(filters)
	return q.Normalize()
}

// Equal reports whether two queries would produce the same request.
func (q ListQuery) Equal(o ListQuery) bool {
	a, b := q.Normalize(), o.Normalize()
	return a.Page == b.Page && a.PageSize == b.PageSize && maps.Equal(a.Filters, b.Filters)
}

// Values encodes the query as URL parameters: page, pageSize and one
// parameter per filter, in a stable order.
func (q ListQuery) Values() url.Values {
	q = q.Normalize()
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	for _, k := range slices.Sorted(maps.Keys(q.Filters)) {
		if k == "page" || k == "pageSize" {
			continue
		}
		v.Set(k, q.Filters[k])
	}
	return v
}

// ParseListQuery reads a query back from URL parameters. Parameters other than
// page and pageSize become filters.
func ParseListQuery(v url.Values, defaultPageSize int) ListQuery {
	q := ListQuery{PageSize: defaultPageSize}
	if p, err := strconv.Atoi(v.Get("page")); err == nil {
		q.Page = p
	}
	if s, err := strconv.Atoi(v.Get("pageSize")); err == nil {
		q.PageSize = s
	}
	for k := range v {
		if k == "page" || k == "pageSize" {
			continue
		}
		if q.Filters == nil {
			q.Filters = make(map[string]string)
		}
		q.Filters[k] = v.Get(k)
	}
	return q.Normalize()
}

// TotalPagesFor returns the page count for total items at pageSize, at least 1.
func TotalPagesFor(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}
