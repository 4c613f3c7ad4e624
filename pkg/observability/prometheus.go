package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sugiyama"

// PrometheusHooks implements every hook interface on top of Prometheus
// collectors. Register it with all three Set functions to export layout,
// phase, cache, and HTTP metrics.
type PrometheusHooks struct {
	layouts        *prometheus.CounterVec
	layoutDuration prometheus.Histogram
	layoutNodes    prometheus.Histogram
	phaseDuration  *prometheus.HistogramVec
	phaseErrors    *prometheus.CounterVec
	inFlight       prometheus.Gauge

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)

// NewPrometheusHooks creates the collectors and registers them with reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "layouts_total",
			Help: "Layout runs by outcome.",
		}, []string{"status"}),
		layoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "layout_duration_seconds",
			Help:    "Duration of complete layout runs.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		layoutNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "layout_nodes",
			Help:    "Number of nodes per layout run.",
			Buckets: prometheus.ExponentialBuckets(4, 4, 7),
		}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "phase_duration_seconds",
			Help:    "Duration of individual layout phases.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"phase"}),
		phaseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "phase_errors_total",
			Help: "Layout phases that returned an error.",
		}, []string{"phase"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "layouts_in_flight",
			Help: "Layout runs currently executing.",
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_hits_total",
			Help: "Cache hits by key type.",
		}, []string{"type"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_misses_total",
			Help: "Cache misses by key type.",
		}, []string{"type"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_written_bytes_total",
			Help: "Bytes written to the cache by key type.",
		}, []string{"type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP responses by route and status code.",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_request_errors_total",
			Help: "HTTP requests that failed before a response was written.",
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		h.layouts, h.layoutDuration, h.layoutNodes, h.phaseDuration, h.phaseErrors, h.inFlight,
		h.cacheHits, h.cacheMisses, h.cacheBytes,
		h.requests, h.requestDuration, h.requestErrors,
	)
	return h
}

func (h *PrometheusHooks) OnLayoutStart(_ context.Context, _ string, nodeCount int) {
	h.inFlight.Inc()
	h.layoutNodes.Observe(float64(nodeCount))
}

func (h *PrometheusHooks) OnLayoutComplete(_ context.Context, _ string, d time.Duration, err error) {
	h.inFlight.Dec()
	h.layoutDuration.Observe(d.Seconds())
	h.layouts.WithLabelValues(status(err)).Inc()
}

func (h *PrometheusHooks) OnPhaseStart(context.Context, string) {}

func (h *PrometheusHooks) OnPhaseComplete(_ context.Context, phase string, d time.Duration, err error) {
	h.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
	if err != nil {
		h.phaseErrors.WithLabelValues(phase).Inc()
	}
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheHits.WithLabelValues(keyType).Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheMisses.WithLabelValues(keyType).Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, method, route string, _ error) {
	h.requestErrors.WithLabelValues(method, route).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
