// Package metrics exposes Prometheus metrics for the dashboard.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InferenceLatencyBuckets are latency buckets for calls to the inference service
var InferenceLatencyBuckets = []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// InferenceTotal counts calls to the inference service by outcome
	InferenceTotal *prometheus.CounterVec

	// InferenceLatency tracks the full round trip to the inference service
	InferenceLatency *prometheus.HistogramVec

	// HistoryMutations counts append/remove/clear operations
	HistoryMutations *prometheus.CounterVec

	// HistorySize is the number of records per variant
	HistorySize *prometheus.GaugeVec

	registry *prometheus.Registry
}

// New creates the metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		InferenceTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_inference_requests_total",
				Help: "Total calls to the inference service",
			},
			[]string{"endpoint", "outcome"},
		),
		InferenceLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_inference_latency_seconds",
				Help:    "Inference call latency in seconds",
				Buckets: InferenceLatencyBuckets,
			},
			[]string{"endpoint"},
		),
		HistoryMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_history_mutations_total",
				Help: "Total history mutations",
			},
			[]string{"model", "op"},
		),
		HistorySize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dashboard_history_records",
				Help: "Number of records in history",
			},
			[]string{"model"},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.InferenceTotal,
		m.InferenceLatency,
		m.HistoryMutations,
		m.HistorySize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveCall records one inference call.
func (m *Metrics) ObserveCall(endpoint, outcome string, elapsed time.Duration) {
	m.InferenceTotal.WithLabelValues(endpoint, outcome).Inc()
	m.InferenceLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveHistory records one history mutation and the resulting size.
func (m *Metrics) ObserveHistory(variant, op string, size int) {
	m.HistoryMutations.WithLabelValues(variant, op).Inc()
	m.HistorySize.WithLabelValues(variant).Set(float64(size))
}

// Handler returns the /metrics handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
