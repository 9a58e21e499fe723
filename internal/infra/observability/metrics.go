package observability

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the back-office BFF.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	upstreamErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	activeSessions  prometheus.GaugeFunc
	actions         *prometheus.CounterVec

	sessionCount atomic.Pointer[func() int]
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "verona_request_duration_seconds",
				Help:    "Duration of upstream calls by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "verona_upstream_errors_total",
				Help: "Total failed calls to upstream services by failure class.",
			},
			[]string{"service", "class"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "verona_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "verona_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		actions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "verona_actions_total",
				Help: "CRUD actions by entity, kind and final state.",
			},
			[]string{"entity", "action", "state"},
		),
	}
	m.activeSessions = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "verona_active_sessions",
			Help: "Browser sessions currently held in memory.",
		},
		func() float64 { return float64(m.activeSessionCount()) },
	)
	return m
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrUpstreamError counts one failed upstream call.
func (m *Metrics) IncrUpstreamError(service, class string) {
	m.upstreamErrors.WithLabelValues(service, class).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// TrackActiveSessions makes the active-sessions gauge read count on every
// scrape, so expired sessions drop out without anyone publishing.
func (m *Metrics) TrackActiveSessions(count func() int) {
	m.sessionCount.Store(&count)
}

func (m *Metrics) activeSessionCount() int {
	if f := m.sessionCount.Load(); f != nil {
		return (*f)()
	}
	return 0
}

// IncrAction counts one finished CRUD action.
func (m *Metrics) IncrAction(entity, action, state string) {
	m.actions.WithLabelValues(entity, action, state).Inc()
}

// Snapshot is a point-in-time read of a few metrics, served by /readyz.
type Snapshot struct {
	ActiveSessions float64 `json:"active_sessions"`
	CacheHits      float64 `json:"rates_cache_hits"`
	CacheMisses    float64 `json:"rates_cache_misses"`
}

// Snapshot reads the current values back out of the collectors.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		ActiveSessions: metricValue(m.activeSessions),
		CacheHits:      metricValue(m.cacheHits.WithLabelValues("rates")),
		CacheMisses:    metricValue(m.cacheMisses.WithLabelValues("rates")),
	}
}

// ActionCount returns how many actions finished with the given labels.
func (m *Metrics) ActionCount(entity, action, state string) float64 {
	return metricValue(m.actions.WithLabelValues(entity, action, state))
}

// UpstreamErrorCount returns the failures recorded for service and class.
func (m *Metrics) UpstreamErrorCount(service, class string) float64 {
	return metricValue(m.upstreamErrors.WithLabelValues(service, class))
}

// metricValue extracts the current value from a counter or gauge.
func metricValue(c prometheus.Metric) float64 {
	out := &dto.Metric{}
	if err := c.Write(out); err != nil {
		return 0
	}
	switch {
	case out.Counter != nil && out.Counter.Value != nil:
		return *out.Counter.Value
	case out.Gauge != nil && out.Gauge.Value != nil:
		return *out.Gauge.Value
	}
	return 0
}
