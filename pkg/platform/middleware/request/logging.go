package request

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pawhub/pkg/platform/privacy"
	"pawhub/pkg/requestcontext"
)

// Logger writes one access line per request. Health probes and static assets
// are only logged when they fail.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if quiet(r.URL.Path) && rec.status < http.StatusInternalServerError {
				return
			}

			ctx := r.Context()
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Int64("bytes", rec.bytes),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", requestcontext.RequestID(ctx)),
				slog.String("remote_addr_prefix", privacy.AnonymizeIP(requestcontext.ClientIP(ctx))),
			}
			if v := requestcontext.VisitorID(ctx); v != "" {
				attrs = append(attrs, slog.String("visitor", privacy.FingerprintID(v)))
			}
			if d := requestcontext.Device(ctx); d != "" {
				attrs = append(attrs, slog.String("device", d))
			}

			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(ctx, level, "http request", attrs...)
		})
	}
}

func quiet(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/") || strings.HasPrefix(path, "/static/")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
