package visitor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawhub/pkg/requestcontext"
)

func TestMiddleware(t *testing.T) {
	var gotID, gotDevice string
	handler := Middleware(Config{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = requestcontext.VisitorID(r.Context())
		gotDevice = requestcontext.Device(r.Context())
	}))

	t.Run("mints an id and sets the cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(gotID)
		require.NoError(t, err)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, DefaultCookieName, cookies[0].Name)
		assert.Equal(t, gotID, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, "Unknown Device", gotDevice)
	})

	t.Run("reuses a valid cookie", func(t *testing.T) {
		existing := uuid.New().String()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: existing})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, existing, gotID)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("replaces a malformed cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "<script>"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.NotEqual(t, "<script>", gotID)
		assert.Len(t, w.Result().Cookies(), 1)
	})
}

func TestDeviceLabel(t *testing.T) {
	label := DeviceLabel("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.Equal(t, "Chrome on Linux x86_64", label)
	assert.Equal(t, "Unknown Device", DeviceLabel(""))
}
