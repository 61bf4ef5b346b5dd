package e2e

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pawhub/internal/api"
	"pawhub/internal/booking"
	"pawhub/internal/listing"
	"pawhub/internal/mockapi"
	"pawhub/internal/platform/config"
	"pawhub/internal/session"
	"pawhub/internal/web"
)

// TestContext holds state between test steps. Each scenario runs against its
// own mock API and site, both in process.
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	logger    *slog.Logger
	apiSrv    *httptest.Server
	site      *httptest.Server
	handler   atomic.Pointer[http.Handler]
	views     *listing.Registry
	persister *session.MemoryPersister
	drafts    *booking.Drafts

	mu       sync.Mutex
	apiCalls map[string]int
}

// NewTestContext starts the mock API and the site.
func NewTestContext() (*TestContext, error) {
	tc := &TestContext{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		persister: session.NewMemoryPersister(),
		drafts:    booking.NewDrafts(),
		apiCalls:  make(map[string]int),
	}

	mock, err := mockapi.New(mockapi.NewTokenService("e2e-key", time.Hour),
		mockapi.WithLogger(tc.logger), mockapi.WithHashCost(bcrypt.MinCost))
	if err != nil {
		return nil, fmt.Errorf("start mock api: %w", err)
	}
	routes := mock.Routes()
	tc.apiSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			tc.mu.Lock()
			tc.apiCalls[r.URL.Path]++
			tc.mu.Unlock()
		}
		routes.ServeHTTP(w, r)
	}))

	if err := tc.startSite(); err != nil {
		tc.Close()
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		tc.Close()
		return nil, err
	}
	tc.HTTPClient = &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return tc, nil
}

// startSite builds a fresh site process over the shared session persister.
// In-memory session stores, list views and drafts start empty.
func (tc *TestContext) startSite() error {
	client, err := api.New(api.Config{BaseURL: tc.apiSrv.URL, Logger: tc.logger})
	if err != nil {
		return err
	}
	cfg := &config.Config{
		Env:     "test",
		Server:  config.Server{RequestTimeout: 5 * time.Second, MaxBodyBytes: 1 << 20},
		API:     config.API{BaseURL: tc.apiSrv.URL, Timeout: 5 * time.Second},
		Images:  config.Images{AllowedHosts: []string{"images.unsplash.com"}},
		Session: config.Session{VisitorCookie: "pawhub_vid", VisitorMaxAge: time.Hour},
		Listing: config.Listing{PageSize: 6},
	}
	tc.views = listing.NewRegistry()
	site, err := web.New(cfg, web.Deps{
		API:      client,
		Sessions: session.NewManager(tc.persister, session.WithLogger(tc.logger)),
		Views:    tc.views,
		Drafts:   tc.drafts,
		Logger:   tc.logger,
	})
	if err != nil {
		return err
	}
	routes := site.Routes()
	tc.handler.Store(&routes)
	if tc.site == nil {
		// The address outlives restarts so the browser's cookies still apply.
		tc.site = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			(*tc.handler.Load()).ServeHTTP(w, r)
		}))
		tc.BaseURL = tc.site.URL
	}
	return nil
}

// Restart swaps in a new site process, as after a deploy.
func (tc *TestContext) Restart() error {
	tc.views.Close()
	return tc.startSite()
}

// Close stops both servers.
func (tc *TestContext) Close() {
	if tc.site != nil {
		tc.site.Close()
	}
	if tc.views != nil {
		tc.views.Close()
	}
	if tc.apiSrv != nil {
		tc.apiSrv.Close()
	}
}

// APICalls reports how many GET requests reached path on the API.
func (tc *TestContext) APICalls(path string) int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.apiCalls[path]
}

// GET requests a site page and stores the response.
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return tc.do(req)
}

// POSTForm submits a form to the site and stores the response.
func (tc *TestContext) POSTForm(path string, form url.Values) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// ResponseContains checks if the response body contains text.
func (tc *TestContext) ResponseContains(text string) bool {
	return strings.Contains(string(tc.LastResponseBody), text)
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}

func (tc *TestContext) GetLastLocation() string {
	if tc.LastResponse == nil {
		return ""
	}
	return tc.LastResponse.Header.Get("Location")
}

// StoredSessions reports how many sessions the persister holds.
func (tc *TestContext) StoredSessions() int {
	return tc.persister.Len()
}
