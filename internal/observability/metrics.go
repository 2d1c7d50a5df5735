package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/envutil"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	scoreBasis       *prometheus.CounterVec
	scoreBatchSize   prometheus.Histogram
	venueResolution  *prometheus.CounterVec
	embeddingRebuild *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// Current is nil until Init runs with metrics enabled. Every method is nil-safe.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics(prometheus.NewRegistry())
		if log != nil {
			log.Info("prometheus metrics initialized")
		}
	})
	return instance
}

// NewMetrics registers every collector on reg. Tests pass a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pachu_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pachu_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pachu_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		scoreBasis: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pachu_match_scores_total",
			Help: "Match scores produced, by the formula that produced them.",
		}, []string{"basis"}),
		scoreBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pachu_match_score_batch_size",
			Help:    "Restaurant ids per score request.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		}),
		venueResolution: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pachu_venue_resolutions_total",
			Help: "Venue identity resolutions by status and strategy.",
		}, []string{"status", "strategy"}),
		embeddingRebuild: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pachu_embedding_rebuilds_total",
			Help: "Per-source embedding rebuild outcomes.",
		}, []string{"source", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pachu_upstream_request_duration_seconds",
			Help:    "Outbound call latency by upstream and result.",
			Buckets: prometheus.DefBuckets,
		}, []string{"upstream", "result"}),
	}
	reg.MustRegister(
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.scoreBasis,
		m.scoreBatchSize,
		m.venueResolution,
		m.embeddingRebuild,
		m.upstreamLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RegisterDBStats exposes connection pool stats for the relational store.
func (m *Metrics) RegisterDBStats(db *sql.DB, name string) {
	if m == nil || db == nil {
		return
	}
	_ = m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) IncScoreBasis(basis string) {
	if m == nil {
		return
	}
	m.scoreBasis.WithLabelValues(basis).Inc()
}

func (m *Metrics) ObserveScoreBatch(n int) {
	if m == nil {
		return
	}
	m.scoreBatchSize.Observe(float64(n))
}

func (m *Metrics) IncVenueResolution(status, strategy string) {
	if m == nil {
		return
	}
	if strategy == "" {
		strategy = "none"
	}
	m.venueResolution.WithLabelValues(status, strategy).Inc()
}

func (m *Metrics) IncEmbeddingRebuild(source, outcome string) {
	if m == nil {
		return
	}
	m.embeddingRebuild.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) ObserveUpstream(upstream string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.upstreamLatency.WithLabelValues(upstream, result).Observe(dur.Seconds())
}
