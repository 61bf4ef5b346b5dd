package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics of the web front end.
type Metrics struct {
	FetchLatency   *prometheus.HistogramVec
	FetchOutcomes  *prometheus.CounterVec
	StaleDiscarded *prometheus.CounterVec
	ActiveViews    prometheus.Gauge
	Logins         *prometheus.CounterVec
	LoginFailures  *prometheus.CounterVec
	Evictions      *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pawhub_fetch_latency_seconds",
			Help:    "Latency of remote API fetches issued by page fetchers",
			Buckets: prometheus.DefBuckets,
		}, []string{"fetcher"}),
		FetchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pawhub_fetch_total",
			Help: "Fetches that resolved, labeled by fetcher and outcome",
		}, []string{"fetcher", "outcome"}),
		// superseded or torn-down requests whose result was dropped
		StaleDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pawhub_fetch_stale_discarded_total",
			Help: "Fetch results discarded because a newer request was issued or the view was closed",
		}, []string{"fetcher"}),
		ActiveViews: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pawhub_listing_views",
			Help: "Current number of cached per-visitor list views",
		}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pawhub_logins_total",
			Help: "Successful logins, labeled by session kind",
		}, []string{"kind"}),
		LoginFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pawhub_login_failures_total",
			Help: "Failed logins, labeled by session kind",
		}, []string{"kind"}),
		Evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pawhub_idle_evictions_total",
			Help: "Idle visitor state evicted by the cleanup worker",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.FetchLatency,
			m.FetchOutcomes,
			m.StaleDiscarded,
			m.ActiveViews,
			m.Logins,
			m.LoginFailures,
			m.Evictions,
		)
	}
	return m
}

// ObserveFetch records one resolved fetch.
func (m *Metrics) ObserveFetch(fetcher, outcome string, seconds float64) {
	m.FetchLatency.WithLabelValues(fetcher).Observe(seconds)
	m.FetchOutcomes.WithLabelValues(fetcher, outcome).Inc()
}

// IncStaleDiscarded counts a dropped stale result.
func (m *Metrics) IncStaleDiscarded(fetcher string) {
	m.StaleDiscarded.WithLabelValues(fetcher).Inc()
}

// SetActiveViews reports the number of cached list views.
func (m *Metrics) SetActiveViews(n int) {
	m.ActiveViews.Set(float64(n))
}

func (m *Metrics) IncrementLogins(kind string) {
	m.Logins.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementLoginFailures(kind string) {
	m.LoginFailures.WithLabelValues(kind).Inc()
}

// AddEvictions records idle evictions of one kind of visitor state.
func (m *Metrics) AddEvictions(kind string, n int) {
	if n > 0 {
		m.Evictions.WithLabelValues(kind).Add(float64(n))
	}
}
