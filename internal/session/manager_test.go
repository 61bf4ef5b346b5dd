package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawhub/internal/models"
	"pawhub/pkg/requestcontext"
)

func awaitStatus(t *testing.T, st *Store) Status {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, status, err := st.Await(ctx)
	require.NoError(t, err)
	return status
}

func TestManagerRehydratesOnFirstAccess(t *testing.T) {
	p := NewMemoryPersister()
	ctx := context.Background()
	require.NoError(t, p.Save(ctx, Key("pawhub", models.SessionUser, "v1"), sampleSession()))

	m := NewManager(p, WithKeyPrefix("pawhub"))
	st := m.Store(models.SessionUser, "v1")
	assert.Equal(t, StatusAuthenticated, awaitStatus(t, st))
	assert.Same(t, st, m.Store(models.SessionUser, "v1"))

	admin := m.Store(models.SessionAdmin, "v1")
	assert.NotSame(t, st, admin)
	assert.Equal(t, StatusUnauthenticated, awaitStatus(t, admin), "kinds are persisted independently")
	assert.Equal(t, 2, m.Len())
}

func TestManagerEvictIdleKeepsPersistedState(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewMemoryPersister()
	m := NewManager(p, WithIdleTTL(time.Minute), WithClock(func() time.Time { return now }))

	st := m.Store(models.SessionUser, "v1")
	awaitStatus(t, st)
	require.NoError(t, st.Set(context.Background(), sampleSession()))

	n, err := m.EvictIdle(context.Background(), now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, m.Len())

	again := m.Store(models.SessionUser, "v1")
	assert.NotSame(t, st, again)
	assert.Equal(t, StatusAuthenticated, awaitStatus(t, again))
}

func TestManagerDoesNotEvictPendingStores(t *testing.T) {
	gate := make(chan struct{})
	p := &flakyPersister{Persister: NewMemoryPersister(), loadGate: gate}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(p, WithIdleTTL(time.Minute), WithClock(func() time.Time { return now }))

	m.Store(models.SessionAdmin, "v1")
	n, err := m.EvictIdle(context.Background(), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
	close(gate)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.False(t, TokenExpired(signedToken(t, now.Add(time.Hour)), now))
	assert.True(t, TokenExpired(signedToken(t, now.Add(-time.Second)), now))
	assert.False(t, TokenExpired("opaque-token", now))
}

func guarded(m *Manager, kind models.SessionKind, loginPath string) http.Handler {
	return RequireSession(m, kind, loginPath)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, "no session", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(sess.Profile.Name))
	}))
}

func requestAs(visitorID, target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if visitorID != "" {
		req = req.WithContext(requestcontext.WithVisitorID(req.Context(), visitorID))
	}
	return req
}

func TestRequireSession(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewMemoryPersister()
	m := NewManager(p, WithKeyPrefix("pawhub"), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	t.Run("signed out visitor is sent to the login route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		guarded(m, models.SessionUser, "/login").ServeHTTP(rec, requestAs("anon", "/account/bookings?page=2"))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/login", loc.Path)
		assert.Equal(t, "/account/bookings?page=2", loc.Query().Get("next"))
	})

	t.Run("no visitor cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		guarded(m, models.SessionAdmin, "/admin/login").ServeHTTP(rec, requestAs("", "/admin"))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})

	t.Run("signed in visitor passes with the session in context", func(t *testing.T) {
		sess := sampleSession()
		sess.AccessToken = signedToken(t, now.Add(time.Hour))
		require.NoError(t, p.Save(ctx, Key("pawhub", models.SessionUser, "member"), sess))

		rec := httptest.NewRecorder()
		guarded(m, models.SessionUser, "/login").ServeHTTP(rec, requestAs("member", "/account/profile"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Mina Park", rec.Body.String())
	})

	t.Run("user session does not open admin routes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		guarded(m, models.SessionAdmin, "/admin/login").ServeHTTP(rec, requestAs("member", "/admin"))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "/admin/login")
	})

	t.Run("expired token is cleared", func(t *testing.T) {
		sess := sampleSession()
		sess.AccessToken = signedToken(t, now.Add(-time.Minute))
		require.NoError(t, p.Save(ctx, Key("pawhub", models.SessionUser, "expired"), sess))

		rec := httptest.NewRecorder()
		guarded(m, models.SessionUser, "/login").ServeHTTP(rec, requestAs("expired", "/account/profile"))
		assert.Equal(t, http.StatusSeeOther, rec.Code)

		_, found, err := p.Load(ctx, Key("pawhub", models.SessionUser, "expired"))
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("pending store past the request deadline", func(t *testing.T) {
		gate := make(chan struct{})
		defer close(gate)
		slow := NewManager(&flakyPersister{Persister: NewMemoryPersister(), loadGate: gate})

		reqCtx, cancel := context.WithTimeout(requestcontext.WithVisitorID(ctx, "slow"), 10*time.Millisecond)
		defer cancel()
		rec := httptest.NewRecorder()
		guarded(slow, models.SessionUser, "/login").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/account/profile", nil).WithContext(reqCtx))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
