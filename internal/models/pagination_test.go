package models

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{Page: 0, PageSize: -1, Filters: map[string]string{"clinicId": "", "": "x"}}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.PageSize)
	assert.Nil(t, q.Filters)
}

func TestListQueryEqual(t *testing.T) {
	a := ListQuery{Page: 2, PageSize: 6, Filters: map[string]string{"clinicId": "3"}}
	b := ListQuery{Page: 2, PageSize: 6, Filters: map[string]string{"clinicId": "3"}}
	assert.True(t, a.Equal(b))

	assert.False(t, a.Equal(a.WithPage(3)))
	assert.False(t, a.Equal(a.WithFilters(map[string]string{"clinicId": "4"})))
	assert.True(t, ListQuery{Page: 1, PageSize: 6}.Equal(ListQuery{Page: 1, PageSize: 6, Filters: map[string]string{}}))
}

func TestListQueryWithPageDoesNotAlias(t *testing.T) {
	a := ListQuery{Page: 1, PageSize: 6, Filters: map[string]string{"userId": "1"}}
	b := a.WithPage(2)
	b.Filters["userId"] = "2"
	assert.Equal(t, "1", a.Filters["userId"])
}

func TestListQueryValues(t *testing.T) {
	q := ListQuery{Page: 3, PageSize: 10, Filters: map[string]string{"clinicId": "7", "page": "99"}}
	v := q.Values()
	assert.Equal(t, "3", v.Get("page"))
	assert.Equal(t, "10", v.Get("pageSize"))
	assert.Equal(t, "7", v.Get("clinicId"))
	assert.Equal(t, "clinicId=7&page=3&pageSize=10", v.Encode())
}

func TestParseListQuery(t *testing.T) {
	q := ParseListQuery(url.Values{"page": {"2"}, "clinicId": {"5"}}, 8)
	assert.Equal(t, ListQuery{Page: 2, PageSize: 8, Filters: map[string]string{"clinicId": "5"}}, q)

	q = ParseListQuery(url.Values{"page": {"abc"}}, 0)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.PageSize)
}

func TestTotalPagesFor(t *testing.T) {
	assert.Equal(t, 1, TotalPagesFor(0, 6))
	assert.Equal(t, 1, TotalPagesFor(6, 6))
	assert.Equal(t, 2, TotalPagesFor(7, 6))
	assert.Equal(t, 2, TotalPagesFor(7, 0))
}
