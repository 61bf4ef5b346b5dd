// Package web renders the PawHub site: public catalog pages, the booking flow,
// customer accounts and the admin back office.
package web

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"pawhub/internal/api"
	"pawhub/internal/booking"
	"pawhub/internal/fetcher"
	"pawhub/internal/listing"
	"pawhub/internal/models"
	"pawhub/internal/platform/config"
	"pawhub/internal/platform/health"
	"pawhub/internal/platform/metrics"
	"pawhub/internal/session"
	"pawhub/pkg/platform/middleware/metadata"
	"pawhub/pkg/platform/middleware/request"
	"pawhub/pkg/platform/middleware/visitor"
	"pawhub/pkg/requestcontext"
)

// Login routes for each session kind.
const (
	userLoginPath  = "/login"
	adminLoginPath = "/admin/login"
)

// viewerTimeout bounds how long the layout waits for a visitor's sessions to
// rehydrate before rendering them as signed out.
const viewerTimeout = 500 * time.Millisecond

// Deps are the collaborators the web server is built from.
type Deps struct {
	API      *api.Client
	Sessions *session.Manager
	Views    *listing.Registry
	Drafts   *booking.Drafts
	Health   *health.Handler
	// Metrics and RequestMetrics are optional.
	Metrics        *metrics.Metrics
	RequestMetrics *request.Metrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// Server holds everything page handlers share.
type Server struct {
	cfg            *config.Config
	api            *api.Client
	sessions       *session.Manager
	views          *listing.Registry
	drafts         *booking.Drafts
	health         *health.Handler
	metrics        *metrics.Metrics
	requestMetrics *request.Metrics
	metricsHandler http.Handler
	logger         *slog.Logger

	tmpl      *renderer
	images    imagePolicy
	fetchOpts []fetcher.Option
	pageSize  int
	// settle bounds how long a page waits for its fetches before rendering
	// the loading state.
	settle time.Duration
	now    func() time.Time
}

// New builds the web server.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("web: config is required")
	}
	if deps.API == nil || deps.Sessions == nil || deps.Views == nil || deps.Drafts == nil {
		return nil, errors.New("web: api client, sessions, views and drafts are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hc := deps.Health
	if hc == nil {
		hc = health.New(cfg.Env)
	}

	images := newImagePolicy(cfg.Images.AllowedHosts, cfg.Images.Placeholder)
	tmpl, err := newRenderer(images)
	if err != nil {
		return nil, err
	}

	opts := []fetcher.Option{fetcher.WithLogger(logger)}
	if deps.Metrics != nil {
		opts = append(opts, fetcher.WithMetrics(deps.Metrics))
	}
	pageSize := cfg.Listing.PageSize
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	settle := cfg.API.Timeout
	if settle <= 0 {
		settle = 10 * time.Second
	}

	return &Server{
		cfg:            cfg,
		api:            deps.API,
		sessions:       deps.Sessions,
		views:          deps.Views,
		drafts:         deps.Drafts,
		health:         hc,
		metrics:        deps.Metrics,
		requestMetrics: deps.RequestMetrics,
		metricsHandler: deps.MetricsHandler,
		logger:         logger,
		tmpl:           tmpl,
		images:         images,
		fetchOpts:      opts,
		pageSize:       pageSize,
		settle:         settle,
		now:            time.Now,
	}, nil
}

// Routes returns the site router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(&metadata.Config{
		TrustedProxies: metadata.ParseTrustedProxies(s.cfg.Server.TrustedProxies),
	}).Handler)
	r.Use(visitor.Middleware(visitor.Config{
		CookieName: s.cfg.Session.VisitorCookie,
		MaxAge:     s.cfg.Session.VisitorMaxAge,
		Secure:     s.cfg.Server.SecureCookies,
	}))
	r.Use(request.Logger(s.logger))
	r.Use(request.Recovery(s.logger))
	r.Use(request.BodyLimit(s.cfg.Server.MaxBodyBytes))
	r.Use(request.Latency(s.requestMetrics))
	if s.cfg.Server.RequestTimeout > 0 {
		r.Use(request.Timeout(s.cfg.Server.RequestTimeout))
	}

	s.health.Register(r)
	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.NotFound(s.notFound)

	s.registerCatalog(r)
	s.registerAuth(r)

	r.Post("/cafe/rooms/{id}/draft", s.requireID(s.handleRoomDraft))
	r.Post("/care-services/{id}/draft", s.requireID(s.handleServiceDraft))

	r.Group(func(r chi.Router) {
		r.Use(session.RequireSession(s.sessions, models.SessionUser, userLoginPath))
		r.Get("/booking/confirm", s.handleBookingConfirm)
		r.Post("/booking/confirm", s.handleBookingSubmit)
		r.Get("/account/profile", s.handleAccountProfile)
		r.Post("/account/profile", s.handleAccountProfileSave)
		r.Get("/account/bookings", s.handleAccountBookings)
	})

	r.Group(func(r chi.Router) {
		r.Use(session.RequireSession(s.sessions, models.SessionAdmin, adminLoginPath))
		s.registerAdmin(r)
	})

	return r
}

// viewer reports who is signed in, waiting briefly for rehydration.
func (s *Server) viewer(r *http.Request) viewer {
	visitorID := requestcontext.VisitorID(r.Context())
	if visitorID == "" {
		return viewer{}
	}
	ctx, cancel := context.WithTimeout(r.Context(), viewerTimeout)
	defer cancel()

	var v viewer
	if sess, status, err := s.sessions.Store(models.SessionUser, visitorID).Await(ctx); err == nil && status == session.StatusAuthenticated {
		p := sess.Profile
		v.User = &p
	}
	if sess, status, err := s.sessions.Store(models.SessionAdmin, visitorID).Await(ctx); err == nil && status == session.StatusAuthenticated {
		p := sess.Profile
		v.Admin = &p
	}
	return v
}

// clientFor returns an API client that authenticates as the session placed
// in ctx by the route guard.
func (s *Server) clientFor(ctx context.Context) *api.Client {
	if sess, ok := session.FromContext(ctx); ok {
		return s.api.WithToken(api.StaticToken(sess.AccessToken))
	}
	return s.api
}

// waiter is any fetcher a page can wait on.
type waiter interface {
	Wait(context.Context) error
}

// settleAll waits for every fetcher to resolve, bounded by s.settle. It
// reports false when the deadline hit first.
func (s *Server) settleAll(ctx context.Context, waiters ...waiter) bool {
	ctx, cancel := context.WithTimeout(ctx, s.settle)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range waiters {
		g.Go(func() error { return w.Wait(gctx) })
	}
	return g.Wait() == nil
}

// forgetViews drops the visitor's cached list pages so the next visit
// fetches with the visitor's current identity and sees fresh data.
func (s *Server) forgetViews(ctx context.Context) {
	if id := requestcontext.VisitorID(ctx); id != "" {
		s.views.Forget(id)
		if s.metrics != nil {
			s.metrics.SetActiveViews(s.views.Len())
		}
	}
}
