package request

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawhub/pkg/requestcontext"
)

func TestRequestID(t *testing.T) {
	capture := func(id *string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*id = requestcontext.RequestID(r.Context())
		})
	}

	t.Run("generates UUID when no header provided", func(t *testing.T) {
		var got string
		req := httptest.NewRequest(http.MethodGet, "/clinics", nil)
		w := httptest.NewRecorder()
		RequestID(capture(&got)).ServeHTTP(w, req)

		assert.Len(t, got, 36)
		assert.Equal(t, got, w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps valid client-provided ID", func(t *testing.T) {
		var got string
		req := httptest.NewRequest(http.MethodGet, "/clinics", nil)
		req.Header.Set("X-Request-ID", "trace.span_1234")
		w := httptest.NewRecorder()
		RequestID(capture(&got)).ServeHTTP(w, req)

		assert.Equal(t, "trace.span_1234", got)
		assert.Equal(t, "trace.span_1234", w.Header().Get("X-Request-ID"))
	})

	t.Run("replaces unsafe IDs", func(t *testing.T) {
		for _, bad := range []string{
			strings.Repeat("a", MaxRequestIDLength+1),
			"valid\ninjected-log-line",
			"request id",
			`request"id`,
			"request\x00id",
		} {
			var got string
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", bad)
			RequestID(capture(&got)).ServeHTTP(httptest.NewRecorder(), req)
			assert.NotEqual(t, bad, got)
			assert.Len(t, got, 36)
		}
	})
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("template exploded")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cafe/rooms", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "template exploded")
}

func TestLogger(t *testing.T) {
	t.Run("logs request with anonymized address", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		req := httptest.NewRequest(http.MethodGet, "/pet-sitters", nil)
		req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), "192.168.1.47", "ua"))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		out := buf.String()
		assert.Contains(t, out, `"path":"/pet-sitters"`)
		assert.Contains(t, out, `"status":418`)
		assert.Contains(t, out, `"remote_addr_prefix":"192.168.1.0"`)
		assert.NotContains(t, out, "192.168.1.47")
	})

	t.Run("skips healthy probes and assets", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		for _, path := range []string{"/health", "/health/ready", "/static/css/site.css"} {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		}
		assert.Empty(t, buf.String())
	})

	t.Run("logs failing probes at error level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Contains(t, buf.String(), `"level":"ERROR"`)
	})

	t.Run("fingerprints the visitor and counts bytes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("hello"))
		}))

		req := httptest.NewRequest(http.MethodGet, "/cafe/rooms", nil)
		req = req.WithContext(requestcontext.WithVisitorID(req.Context(), "visitor-secret-id"))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		out := buf.String()
		assert.Contains(t, out, `"bytes":5`)
		assert.Contains(t, out, `"visitor":"`)
		assert.NotContains(t, out, "visitor-secret-id")
	})
}

func TestRequireJSON(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := map[string]struct {
		method      string
		contentType string
		want        int
	}{
		"form post":         {http.MethodPost, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		"json with charset": {http.MethodPost, "application/json; charset=utf-8", http.StatusNoContent},
		"no content type":   {http.MethodPatch, "", http.StatusNoContent},
		"malformed":         {http.MethodPut, "application/", http.StatusUnsupportedMediaType},
		"get is ignored":    {http.MethodGet, "text/plain", http.StatusNoContent},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/clinics", strings.NewReader("{}"))
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			w := httptest.NewRecorder()
			RequireJSON(ok).ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusUnsupportedMediaType {
				assert.Contains(t, w.Body.String(), `"error":"bad_request"`)
			}
		})
	}
}

func TestTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	w := httptest.NewRecorder()
	Timeout(10*time.Millisecond)(slow).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, Timeout(0)(h))
}

func TestLatencyUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	r := chi.NewRouter()
	r.Use(Latency(m))
	r.Get("/clinics/{id}", func(w http.ResponseWriter, r *http.Request) {})

	for _, path := range []string{"/clinics/1", "/clinics/2", "/nowhere", "/elsewhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Equal(t, 2, testutil.CollectAndCount(m.EndpointLatency), "one pattern plus the unmatched bucket")
	assert.InDelta(t, 2, testutil.ToFloat64(m.Responses.WithLabelValues("/clinics/{id}", "2xx")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Responses.WithLabelValues("unmatched", "4xx")), 0)
}

func TestLatencyWithoutMetrics(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) })
	w := httptest.NewRecorder()
	Latency(nil)(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}
