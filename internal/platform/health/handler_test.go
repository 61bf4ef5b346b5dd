package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h *Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h.Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLiveness(t *testing.T) {
	rec := serve(t, New("test"), "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}

func TestStatus(t *testing.T) {
	rec := serve(t, New("test"), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "test", body.Environment)
}

func TestReadiness(t *testing.T) {
	t.Run("all checks up", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("api", func(context.Context) error { return nil })

		rec := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready","checks":{"api":"up"}}`, rec.Body.String())
	})

	t.Run("one check down", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("api", func(context.Context) error { return nil })
		h.RegisterCheck("sessions", func(context.Context) error { return errors.New("connection refused") })

		rec := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body ReadinessResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "not_ready", body.Status)
		assert.Equal(t, "down: connection refused", body.Checks["sessions"])
		assert.Equal(t, "up", body.Checks["api"])
	})

	t.Run("checks get a deadline", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("api", func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				return errors.New("no deadline")
			}
			return nil
		})
		assert.Equal(t, http.StatusOK, serve(t, h, "/health/ready").Code)
	})

	t.Run("checks run concurrently", func(t *testing.T) {
		h := New("test")
		var started sync.WaitGroup
		started.Add(2)
		both := make(chan struct{})
		go func() {
			started.Wait()
			close(both)
		}()
		wait := func(ctx context.Context) error {
			started.Done()
			select {
			case <-both:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		h.RegisterCheck("api", wait)
		h.RegisterCheck("sessions", wait)
		assert.Equal(t, http.StatusOK, serve(t, h, "/health/ready").Code)
	})
}
