// Command mockapi serves an in-memory copy of the PawHub REST API for local
// development.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pawhub/internal/mockapi"
	"pawhub/internal/platform/config"
	"pawhub/internal/platform/logger"
)

func main() {
	cfg, err := config.LoadMockAPI()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.LogLevel)

	srv, err := mockapi.New(
		mockapi.NewTokenService(cfg.JWTSigningKey, cfg.TokenTTL),
		mockapi.WithLogger(log),
		mockapi.WithLatency(cfg.Latency),
	)
	if err != nil {
		log.Error("failed to seed mock api", "error", err)
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("starting mock api",
		"addr", cfg.Addr,
		"latency", cfg.Latency.String(),
		"admin", mockapi.SeedAdminEmail,
		"user", mockapi.SeedUserEmail,
	)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("mock api error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("mock api stopped")
}
