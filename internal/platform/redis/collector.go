package redis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// PoolCollector exports the connection pool statistics of a client. Values
// are read from the pool on every scrape.
type PoolCollector struct {
	stats func() *redis.PoolStats

	hits, misses, timeouts, stale *prometheus.Desc
	total, idle                   *prometheus.Desc
}

// NewPoolCollector returns a collector for c's pool. Register it once.
func NewPoolCollector(namespace string, c *Client) *PoolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "redis_pool", name), help, nil, nil)
	}
	return &PoolCollector{
		stats:    c.PoolStats,
		hits:     desc("hits_total", "Connections found free in the pool."),
		misses:   desc("misses_total", "Connections that had to be dialed."),
		timeouts: desc("timeouts_total", "Waits for a free connection that timed out."),
		stale:    desc("stale_conns_total", "Stale connections removed from the pool."),
		total:    desc("conns", "Connections currently in the pool."),
		idle:     desc("idle_conns", "Idle connections currently in the pool."),
	}
}

// Describe implements prometheus.Collector.
func (p *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{p.hits, p.misses, p.timeouts, p.stale, p.total, p.idle} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (p *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := p.stats()
	ch <- prometheus.MustNewConstMetric(p.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(p.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(p.timeouts, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(p.stale, prometheus.CounterValue, float64(s.StaleConns))
	ch <- prometheus.MustNewConstMetric(p.total, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(p.idle, prometheus.GaugeValue, float64(s.IdleConns))
}
