// Package metrics provides Prometheus metrics export for the engine.
package metrics

import (
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

const (
	namespace = "shopdesk"
	subsystem = "engine"
)

// PrometheusExporter exports engine metrics in Prometheus format.
// All methods are safe for concurrent use.
type PrometheusExporter struct {
	registry *prometheus.Registry

	// Request metrics
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	requestErrors  *prometheus.CounterVec
	inFlight       prometheus.Gauge

	toolCalls       *prometheus.CounterVec
	policyDecisions *prometheus.CounterVec

	// Cache metrics
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
}

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
// Requests are pure CPU work, so buckets start in the microseconds.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter.
func NewPrometheusExporter(cfg Config) *PrometheusExporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &PrometheusExporter{registry: registry}

	e.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of handled utterances",
		},
		[]string{"intent", "status"},
	)

	e.requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_latency_seconds",
			Help:      "Utterance handling latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"intent"},
	)

	e.requestErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_errors_total",
			Help:      "Total number of failed utterances",
		},
		[]string{"stage"},
	)

	e.inFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_in_flight",
			Help:      "Number of utterances currently being handled",
		},
	)

	e.toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tool_calls_total",
			Help:      "Total number of tool calls",
		},
		[]string{"tool"},
	)

	e.policyDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "policy_decisions_total",
			Help:      "Total number of policy decisions by outcome",
		},
		[]string{"policy", "outcome"},
	)

	e.cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	e.cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	registry.MustRegister(
		e.requests,
		e.requestLatency,
		e.requestErrors,
		e.inFlight,
		e.toolCalls,
		e.policyDecisions,
		e.cacheHits,
		e.cacheMisses,
	)

	return e
}

// RecordRequest records one handled utterance.
func (e *PrometheusExporter) RecordRequest(intent string, latency time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	e.requests.WithLabelValues(intent, status).Inc()
	e.requestLatency.WithLabelValues(intent).Observe(latency.Seconds())
}

// RecordRequestError records a failed utterance by the stage that failed.
func (e *PrometheusExporter) RecordRequestError(stage string) {
	e.requestErrors.WithLabelValues(stage).Inc()
}

// AddInFlight moves the in-flight gauge by delta.
func (e *PrometheusExporter) AddInFlight(delta int) {
	e.inFlight.Add(float64(delta))
}

// RecordToolCall records a tool call metric.
func (e *PrometheusExporter) RecordToolCall(tool string) {
	e.toolCalls.WithLabelValues(tool).Inc()
}

// RecordPolicyDecision records a policy outcome, e.g. ("cancel", "allowed").
func (e *PrometheusExporter) RecordPolicyDecision(policy, outcome string) {
	e.policyDecisions.WithLabelValues(policy, outcome).Inc()
}

// RecordCacheHit records a cache hit.
func (e *PrometheusExporter) RecordCacheHit(cacheType string) {
	e.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss.
func (e *PrometheusExporter) RecordCacheMiss(cacheType string) {
	e.cacheMisses.WithLabelValues(cacheType).Inc()
}

// Handler returns an HTTP handler for the metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// ServeHTTP implements http.Handler for the metrics endpoint.
func (e *PrometheusExporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.Handler().ServeHTTP(w, r)
}

// GetRegistry returns the Prometheus registry.
func (e *PrometheusExporter) GetRegistry() *prometheus.Registry {
	return e.registry
}

// WriteText writes every metric family in the Prometheus text exposition format.
func (e *PrometheusExporter) WriteText(w io.Writer) error {
	families, err := e.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
