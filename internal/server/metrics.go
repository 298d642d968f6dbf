package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/polarcoaster/pkg/observability"
)

const namespace = "polarcoaster"

var durationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

// Metrics records pipeline, cache and HTTP activity as prometheus metrics.
// It implements every hook interface in [observability].
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	stageNodes    *prometheus.HistogramVec
	cacheEvents   *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	requests      *prometheus.CounterVec
	reqDuration   *prometheus.HistogramVec
	sessions      prometheus.Gauge
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.ServerHooks   = (*Metrics)(nil)
)

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage latency in seconds",
			Buckets:   durationBuckets,
		}, []string{"stage", "outcome"}),
		stageNodes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_nodes",
			Help:      "Trace size handled by a pipeline stage",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"stage"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache lookups and writes",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache",
		}, []string{"key_type"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		reqDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   durationBuckets,
		}, []string{"method", "route"}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of live animation sessions",
		}),
	}
}

// Install registers m as the global pipeline, cache and server hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetServerHooks(m)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ===== Pipeline =====

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, _ string, nodes int, d time.Duration, err error) {
	m.stageDuration.WithLabelValues("load", outcome(err)).Observe(d.Seconds())
	if err == nil {
		m.stageNodes.WithLabelValues("load").Observe(float64(nodes))
	}
}

func (m *Metrics) OnBuildStart(context.Context, int) {}

func (m *Metrics) OnBuildComplete(_ context.Context, nodes int, d time.Duration, err error) {
	m.stageDuration.WithLabelValues("build", outcome(err)).Observe(d.Seconds())
	m.stageNodes.WithLabelValues("build").Observe(float64(nodes))
}

func (m *Metrics) OnRenderStart(context.Context, string, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, vizType string, _ []string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues("render_"+vizType, outcome(err)).Observe(d.Seconds())
}

// ===== Cache =====

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// ===== Server =====

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.reqDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) OnSessions(_ context.Context, active int) {
	m.sessions.Set(float64(active))
}
