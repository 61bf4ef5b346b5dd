package httputil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "pawhub/pkg/domain-errors"
)

type roomRequest struct {
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"gte=1"`
}

func (r *roomRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecodeJSON(t *testing.T) {
	t.Run("decodes body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"Cozy Room","capacity":4}`))
		w := httptest.NewRecorder()

		got, ok := DecodeJSON[roomRequest](w, req, discardLogger())
		require.True(t, ok)
		assert.Equal(t, "Cozy Room", got.Name)
		assert.Equal(t, 4, got.Capacity)
	})

	t.Run("invalid JSON writes 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{nope`))
		w := httptest.NewRecorder()

		got, ok := DecodeJSON[roomRequest](w, req, discardLogger())
		assert.False(t, ok)
		assert.Nil(t, got)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body ErrorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "bad_request", body.Error)
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("normalizes before validating", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"  Sunny Room ","capacity":2}`))
		got, ok := DecodeAndPrepare[roomRequest](httptest.NewRecorder(), req, discardLogger())
		require.True(t, ok)
		assert.Equal(t, "Sunny Room", got.Name)
	})

	t.Run("blank name fails validation with 422", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"   ","capacity":2}`))
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[roomRequest](w, req, discardLogger())
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "name failed required")
	})
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{dErrors.New(dErrors.CodeNotFound, "room not found"), http.StatusNotFound},
		{dErrors.New(dErrors.CodeUnauthorized, "login required"), http.StatusUnauthorized},
		{dErrors.New(dErrors.CodeUnavailable, ""), http.StatusServiceUnavailable},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		WriteError(w, tt.err)
		assert.Equal(t, tt.status, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	}
}

func TestStatusCodeRoundTrip(t *testing.T) {
	for _, code := range []dErrors.Code{
		dErrors.CodeNotFound, dErrors.CodeValidation, dErrors.CodeConflict,
		dErrors.CodeUnauthorized, dErrors.CodeForbidden, dErrors.CodeTimeout, dErrors.CodeUnavailable,
	} {
		assert.Equal(t, code, HTTPStatusToDomainCode(DomainCodeToHTTPStatus(code)), code)
	}
	assert.Equal(t, dErrors.CodeBadRequest, HTTPStatusToDomainCode(http.StatusTeapot))
	assert.Equal(t, dErrors.CodeInternal, HTTPStatusToDomainCode(http.StatusFound))
}
