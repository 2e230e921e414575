// Package metrics provides an optional operation-metrics collector. The VFS
// core never requires one: the Dispatcher and root package accept a
// Collector interface and call a no-op implementation when the caller
// doesn't wire in a real one.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records per-operation counts, durations, and sizes.
type Collector interface {
	RecordOperation(operation string, duration time.Duration, size int64, success bool)
}

// Noop discards everything; it is the default Collector when none is
// configured.
type Noop struct{}

func (Noop) RecordOperation(string, time.Duration, int64, bool) {}

// Config configures a PrometheusCollector.
type Config struct {
	Namespace string
	Subsystem string
}

// PrometheusCollector records operation metrics into its own registry,
// which the caller can expose however it likes (promhttp.Handler, a push
// gateway, etc.) — this package does not run an HTTP server itself.
type PrometheusCollector struct {
	registry          *prometheus.Registry
	operationCounter  *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationSize     *prometheus.HistogramVec
	errorCounter      *prometheus.CounterVec
}

// NewPrometheusCollector builds a PrometheusCollector with its own registry.
func NewPrometheusCollector(cfg Config) *PrometheusCollector {
	registry := prometheus.NewRegistry()

	c := &PrometheusCollector{
		registry: registry,
		operationCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "operations_total",
			Help:      "Total number of VFS operations.",
		}, []string{"operation", "status"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Duration of VFS operations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"operation"}),
		operationSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "operation_size_bytes",
			Help:      "Size in bytes of VFS read/write operations.",
			Buckets:   prometheus.ExponentialBuckets(1024, 2, 20),
		}, []string{"operation"}),
		errorCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "errors_total",
			Help:      "Total number of failed VFS operations.",
		}, []string{"operation"}),
	}

	registry.MustRegister(c.operationCounter, c.operationDuration, c.operationSize, c.errorCounter)
	return c
}

// Registry returns the Prometheus registry backing this collector, for the
// caller to expose via promhttp or any other Gatherer consumer.
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *PrometheusCollector) RecordOperation(operation string, duration time.Duration, size int64, success bool) {
	status := "success"
	if !success {
		status = "error"
		c.errorCounter.WithLabelValues(operation).Inc()
	}
	c.operationCounter.WithLabelValues(operation, status).Inc()
	c.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if size > 0 {
		c.operationSize.WithLabelValues(operation).Observe(float64(size))
	}
}
