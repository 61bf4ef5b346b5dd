package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawhub/internal/models"
	dErrors "pawhub/pkg/domain-errors"
)

func TestMoney(t *testing.T) {
	tests := map[string]struct {
		in   float64
		want string
	}{
		"zero":         {0, "0 ₫"},
		"hundreds":     {900, "900 ₫"},
		"thousands":    {450000, "450,000 ₫"},
		"millions":     {1250000, "1,250,000 ₫"},
		"negative":     {-1200, "-1,200 ₫"},
		"short minus":  {-120, "-120 ₫"},
		"rounds cents": {99.6, "100 ₫"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, money(tc.in))
		})
	}
}

func TestPageLinks(t *testing.T) {
	assert.Nil(t, pageLinks("/cafe/rooms", nil, 1, 1), "a single page needs no links")
	assert.Nil(t, pageLinks("/cafe/rooms", nil, 1, 0))

	q := url.Values{"q": {"cozy"}, "page": {"2"}}
	links := pageLinks("/cafe/rooms", q, 2, 3)
	require.Len(t, links, 3)
	assert.Equal(t, pageLink{N: 1, Href: "/cafe/rooms?page=1&q=cozy"}, links[0])
	assert.Equal(t, pageLink{N: 2, Href: "/cafe/rooms?page=2&q=cozy", Current: true}, links[1])
	assert.Equal(t, "2", q.Get("page"), "the request query is not modified")
}

func TestSafeNext(t *testing.T) {
	tests := map[string]struct {
		next string
		want string
	}{
		"empty":             {"", "/"},
		"path":              {"/account/bookings", "/account/bookings"},
		"path with query":   {"/cafe/rooms?page=2", "/cafe/rooms?page=2"},
		"absolute url":      {"https://evil.example.com/", "/"},
		"protocol relative": {"//evil.example.com", "/"},
		"backslash":         {"/\\evil.example.com", "/"},
		"relative":          {"account", "/"},
		"header injection":  {"/ok\r\nSet-Cookie: x=1", "/"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, safeNext(tc.next, "/"))
		})
	}
}

func TestImagePolicy(t *testing.T) {
	p := newImagePolicy([]string{" Images.Unsplash.com ", ""}, "")
	tests := map[string]struct {
		raw  string
		want string
	}{
		"empty":          {"", models.PlaceholderImage},
		"allowed host":   {"https://images.unsplash.com/photo-1", "https://images.unsplash.com/photo-1"},
		"host case":      {"https://IMAGES.unsplash.com/photo-1", "https://IMAGES.unsplash.com/photo-1"},
		"other host":     {"https://tracker.example.com/cat.png", models.PlaceholderImage},
		"plain http":     {"http://images.unsplash.com/photo-1", models.PlaceholderImage},
		"javascript":     {"javascript:alert(1)", models.PlaceholderImage},
		"local static":   {"/static/images/room.svg", "/static/images/room.svg"},
		"malformed":      {"https://%zz", models.PlaceholderImage},
		"surrounding ws": {"  https://images.unsplash.com/photo-2 ", "https://images.unsplash.com/photo-2"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.URL(tc.raw))
		})
	}

	custom := newImagePolicy(nil, "/static/images/none.svg")
	assert.Equal(t, "/static/images/none.svg", custom.URL("https://images.unsplash.com/photo-1"))
}

func TestHiddenFilters(t *testing.T) {
	q := url.Values{"species": {"Cat"}, "q": {"mo"}, "clinicId": {" "}}
	assert.Equal(t, []hiddenField{{Name: "page", Value: "3"}, {Name: "species", Value: "Cat"}},
		hiddenFilters(q, []string{"species", "clinicId"}, 3))
	assert.Nil(t, hiddenFilters(q, nil, 1))
}

func TestRemoteFilters(t *testing.T) {
	q := url.Values{"clinicId": {"2"}, "name": {"x"}, "species": {""}}
	assert.Equal(t, map[string]string{"clinicId": "2"}, remoteFilters(q, []string{"clinicId", "species"}))
	assert.Nil(t, remoteFilters(q, nil))
}

func TestPageParam(t *testing.T) {
	assert.Equal(t, 1, pageParam(url.Values{}))
	assert.Equal(t, 1, pageParam(url.Values{"page": {"-2"}}))
	assert.Equal(t, 1, pageParam(url.Values{"page": {"two"}}))
	assert.Equal(t, 4, pageParam(url.Values{"page": {"4"}}))
}

func postForm(body url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/account/profile", strings.NewReader(body.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestDecodeForm(t *testing.T) {
	t.Run("keeps allowed fields and skips keys the struct lacks", func(t *testing.T) {
		var f profileForm
		posted, err := decodeForm(postForm(url.Values{
			"name": {"  Mai  "}, "phone": {"0900"}, "csrf": {"abc"}, "role": {"admin"},
		}), &f, "name", "phone", "csrf")
		require.NoError(t, err)
		assert.Equal(t, profileForm{Name: "Mai", Phone: "0900"}, f)
		assert.Equal(t, "admin", posted.Get("role"), "the raw post is returned for re-rendering")
	})

	t.Run("bad number is a validation error", func(t *testing.T) {
		var f struct {
			Guests int `form:"guests"`
		}
		_, err := decodeForm(postForm(url.Values{"guests": {"two"}}), &f, "guests")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestRendererParsesEveryPage(t *testing.T) {
	rd, err := newRenderer(newImagePolicy(nil, ""))
	require.NoError(t, err)
	for _, name := range []string{
		"home", "list", "detail", "booking_confirm", "login", "register", "account_profile",
		"admin_dashboard", "admin_profile", "admin_list", "admin_form", "error",
	} {
		assert.Contains(t, rd.pages, name)
	}
}
