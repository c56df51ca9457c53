package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder fulfills MetricsRecorder with Prometheus
// collectors, for deployments that scrape process metrics.
type PrometheusMetricsRecorder struct {
	operations *prometheus.CounterVec
	warnings   *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

var _ MetricsRecorder = (*PrometheusMetricsRecorder)(nil)

// NewPrometheusMetricsRecorder constructs a recorder and registers its
// collectors with the supplied registerer (prometheus.DefaultRegisterer when
// nil).
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	rec := &PrometheusMetricsRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neurocore",
			Name:      "normalizer_operations_total",
			Help:      "Completed append operations by outcome.",
		}, []string{"op", "status"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neurocore",
			Name:      "normalizer_warnings_total",
			Help:      "Soft conditions repaired during append operations.",
		}, []string{"op"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "neurocore",
			Name:      "normalizer_operation_seconds",
			Help:      "Append operation durations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	reg.MustRegister(rec.operations, rec.warnings, rec.durations)
	return rec
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	r.operations.WithLabelValues(op, status).Inc()
	r.durations.WithLabelValues(op).Observe(duration.Seconds())
}

// ObserveWarnings implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) ObserveWarnings(op string, count int) {
	if count <= 0 {
		return
	}
	r.warnings.WithLabelValues(op).Add(float64(count))
}
