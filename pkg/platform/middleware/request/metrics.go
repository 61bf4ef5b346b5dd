package request

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the per-route request instruments.
type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
	Responses       *prometheus.CounterVec
}

// NewMetrics registers the request instruments on reg. A nil reg uses the
// default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		EndpointLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time to serve a request, by method and route pattern.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		Responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "responses_total",
			Help:      "Responses sent, by route pattern and status class.",
		}, []string{"route", "class"}),
	}
	reg.MustRegister(m.EndpointLatency, m.Responses)
	return m
}

func (m *Metrics) observe(method, route string, status int, elapsed time.Duration) {
	m.EndpointLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
	m.Responses.WithLabelValues(route, strconv.Itoa(status/100)+"xx").Inc()
}

// Latency records request timing labeled by the chi route pattern, so
// /clinics/1 and /clinics/2 share one series. Unmatched paths are folded into
// a single "unmatched" route to keep label cardinality bounded.
func Latency(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			m.observe(r.Method, route, rec.status, time.Since(start))
		})
	}
}
