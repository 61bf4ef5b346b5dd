// Package cleanup evicts idle per-visitor state: list views, session stores
// and booking drafts.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// IdleEvicter drops entries untouched for longer than its own idle TTL.
type IdleEvicter interface {
	EvictIdle(ctx context.Context, now time.Time) (int, error)
}

// Recorder receives eviction counts. internal/platform/metrics implements it.
type Recorder interface {
	AddEvictions(kind string, n int)
}

// Result summarizes one cleanup run.
type Result struct {
	EvictedViews    int
	EvictedSessions int
	EvictedDrafts   int
}

// Service periodically evicts idle visitor state.
type Service struct {
	views    IdleEvicter
	sessions IdleEvicter
	drafts   IdleEvicter
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
	recorder Recorder
}

// Option configures Service.
type Option func(*Service)

// WithInterval overrides the cleanup interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithLogger overrides the logger used for cleanup errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder reports eviction counts after every run.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service. All three evicters are required.
func New(views, sessions, drafts IdleEvicter, opts ...Option) (*Service, error) {
	if views == nil || sessions == nil || drafts == nil {
		return nil, fmt.Errorf("views, sessions, and drafts are required")
	}
	svc := &Service{
		views:    views,
		sessions: sessions,
		drafts:   drafts,
		interval: time.Minute,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "visitor state cleanup failed", "error", err)
				continue
			}
			if res != (Result{}) {
				s.logger.DebugContext(ctx, "visitor state evicted",
					"views", res.EvictedViews,
					"sessions", res.EvictedSessions,
					"drafts", res.EvictedDrafts,
				)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single pass. Every evicter runs even when an earlier one
// fails; errors are joined.
func (s *Service) RunOnce(ctx context.Context) (Result, error) {
	now := s.now()
	var res Result
	var errs []error

	n, err := s.views.EvictIdle(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("evict idle views: %w", err))
	} else {
		res.EvictedViews = n
	}

	n, err = s.sessions.EvictIdle(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("evict idle session stores: %w", err))
	} else {
		res.EvictedSessions = n
	}

	n, err = s.drafts.EvictIdle(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("evict idle drafts: %w", err))
	} else {
		res.EvictedDrafts = n
	}

	if s.recorder != nil {
		s.recorder.AddEvictions("views", res.EvictedViews)
		s.recorder.AddEvictions("sessions", res.EvictedSessions)
		s.recorder.AddEvictions("drafts", res.EvictedDrafts)
	}

	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	return res, nil
}
