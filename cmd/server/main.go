// Command server runs the PawHub web front end.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"pawhub/internal/api"
	"pawhub/internal/booking"
	"pawhub/internal/listing"
	"pawhub/internal/listing/workers/cleanup"
	"pawhub/internal/platform/config"
	"pawhub/internal/platform/health"
	"pawhub/internal/platform/logger"
	"pawhub/internal/platform/metrics"
	"pawhub/internal/platform/redis"
	"pawhub/internal/platform/tracer"
	"pawhub/internal/session"
	"pawhub/internal/web"
	"pawhub/pkg/platform/middleware/request"
)

// main wires the API client, session backend and per-visitor state into the
// web server, and keeps the server lifecycle small.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Log.Level)

	log.Info("initializing pawhub",
		"env", cfg.Env,
		"addr", cfg.Server.Addr,
		"api", cfg.API.BaseURL,
		"session_backend", cfg.Session.Backend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	requestMetrics := request.NewMetrics("pawhub", prometheus.DefaultRegisterer)

	otel.SetTextMapPropagator(propagation.TraceContext{})
	client, err := api.New(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Tracer:  tracer.NewOTel(),
		Logger:  log,
	})
	if err != nil {
		log.Error("failed to build api client", "error", err)
		os.Exit(1)
	}

	hc := health.New(cfg.Env)
	hc.RegisterCheck("api", client.Health)

	persister, closePersister, err := openPersister(ctx, cfg, log, hc)
	if err != nil {
		log.Error("failed to open session backend", "backend", cfg.Session.Backend, "error", err)
		os.Exit(1)
	}
	defer closePersister()

	sessions := session.NewManager(persister,
		session.WithKeyPrefix(cfg.Session.KeyPrefix),
		session.WithLogger(log),
		session.WithIdleTTL(cfg.Session.IdleTTL),
		session.WithRehydrateTimeout(cfg.Session.RehydrateTimeout),
	)
	views := listing.NewRegistry(listing.WithIdleTTL(cfg.Listing.IdleTTL))
	defer views.Close()
	drafts := booking.NewDrafts(booking.WithIdleTTL(cfg.Session.IdleTTL))

	cleaner, err := cleanup.New(views, sessions, drafts,
		cleanup.WithInterval(cfg.Listing.CleanupInterval),
		cleanup.WithLogger(log),
		cleanup.WithRecorder(m),
	)
	if err != nil {
		log.Error("failed to build cleanup worker", "error", err)
		os.Exit(1)
	}
	go func() {
		if err := cleaner.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("cleanup worker stopped", "error", err)
		}
	}()

	site, err := web.New(cfg, web.Deps{
		API:            client,
		Sessions:       sessions,
		Views:          views,
		Drafts:         drafts,
		Health:         hc,
		Metrics:        m,
		RequestMetrics: requestMetrics,
		MetricsHandler: promhttp.Handler(),
		Logger:         log,
	})
	if err != nil {
		log.Error("failed to build web server", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           site.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	log.Info("starting http server", "addr", cfg.Server.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		return
	}
	log.Info("server stopped")
}

// openPersister opens the configured session backend and registers its
// readiness check. The returned func releases it.
func openPersister(ctx context.Context, cfg *config.Config, log *slog.Logger, hc *health.Handler) (session.Persister, func(), error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rc, err := redis.New(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		hc.RegisterCheck("redis", rc.Health)
		prometheus.MustRegister(redis.NewPoolCollector("pawhub", rc))
		// A session cannot outlive the visitor cookie it is keyed by.
		p := session.NewRedisPersister(rc, cfg.Session.VisitorMaxAge)
		return p, func() {
			if err := rc.Close(); err != nil {
				log.Error("failed to close redis", "error", err)
			}
		}, nil
	case config.SessionBackendSQLite:
		p, err := session.OpenSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		hc.RegisterCheck("sqlite", p.Health)
		return p, func() {
			if err := p.Close(); err != nil {
				log.Error("failed to close sqlite", "error", err)
			}
		}, nil
	default:
		return session.NewMemoryPersister(), func() {}, nil
	}
}
