package kv

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus store instrumentation.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "kvbind").
	Namespace string

	// Subsystem is the metrics subsystem (default: "store").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for operation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// SizeBuckets are the histogram buckets for payload sizes in bytes.
	// Default: 64B to 1MB, exponential.
	SizeBuckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus store instrumentation.
type MetricsOption func(*MetricsConfig)

// WithMetricsNamespace sets the metrics namespace.
func WithMetricsNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithMetricsSubsystem sets the metrics subsystem.
func WithMetricsSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithMetricsConstLabels sets constant labels for all metrics.
func WithMetricsConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithMetricsBuckets sets the duration histogram buckets.
func WithMetricsBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithMetricsRegistry sets the Prometheus registry.
func WithMetricsRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "kvbind",
		Subsystem:   "store",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		SizeBuckets: prometheus.ExponentialBuckets(64, 4, 8), // 64B to ~1MB
		Registry:    prometheus.DefaultRegisterer,
	}
}

// storeMetrics holds the Prometheus metrics for store operations.
type storeMetrics struct {
	opsTotal     *prometheus.CounterVec
	opDuration   *prometheus.HistogramVec
	payloadBytes *prometheus.HistogramVec
}

// globalStoreMetrics is the singleton metrics instance.
// Created on first call to WithMetrics.
var (
	globalStoreMetrics   *storeMetrics
	globalStoreMetricsMu sync.Mutex
)

// initStoreMetrics initializes the Prometheus metrics.
func initStoreMetrics(config MetricsConfig) *storeMetrics {
	factory := promauto.With(config.Registry)

	return &storeMetrics{
		opsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "ops_total",
			Help:        "Total number of store operations by operation and status",
			ConstLabels: config.ConstLabels,
		}, []string{"op", "status"}),

		opDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "op_duration_seconds",
			Help:        "Store operation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"op"}),

		payloadBytes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "payload_bytes",
			Help:        "Payload size in bytes for reads and writes",
			ConstLabels: config.ConstLabels,
			Buckets:     config.SizeBuckets,
		}, []string{"op"}),
	}
}

// WithMetrics wraps a store so that every operation is counted, timed, and
// sized in Prometheus.
//
// Metrics collected:
//   - kvbind_store_ops_total: Counter of operations by op and status
//     (status is "success", "miss" for absent reads, or "error")
//   - kvbind_store_op_duration_seconds: Histogram of operation duration
//   - kvbind_store_payload_bytes: Histogram of read/written payload sizes
//
// All wrapped stores share one metrics instance; the configuration of the
// first WithMetrics call wins.
//
// Example:
//
//	store := kv.WithMetrics(kv.NewMemoryStore())
//	http.Handle("/metrics", promhttp.Handler())
func WithMetrics(next Store, opts ...MetricsOption) Store {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Initialize metrics once
	globalStoreMetricsMu.Lock()
	if globalStoreMetrics == nil {
		globalStoreMetrics = initStoreMetrics(config)
	}
	m := globalStoreMetrics
	globalStoreMetricsMu.Unlock()

	return &instrumentedStore{next: next, metrics: m}
}

// instrumentedStore decorates a Store with Prometheus metrics.
type instrumentedStore struct {
	next    Store
	metrics *storeMetrics
}

func (s *instrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	value, err := s.next.Get(ctx, key)
	s.record("get", start, err)
	if err == nil {
		s.metrics.payloadBytes.WithLabelValues("get").Observe(float64(len(value)))
	}
	return value, err
}

func (s *instrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.record("set", start, err)
	if err == nil {
		s.metrics.payloadBytes.WithLabelValues("set").Observe(float64(len(value)))
	}
	return err
}

func (s *instrumentedStore) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Remove(ctx, key)
	s.record("remove", start, err)
	return err
}

// record observes duration and counts the operation outcome.
func (s *instrumentedStore) record(op string, start time.Time, err error) {
	s.metrics.opDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	s.metrics.opsTotal.WithLabelValues(op, statusFor(err)).Inc()
}

// statusFor maps an operation error to a low-cardinality status label.
func statusFor(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound):
		return "miss"
	default:
		return "error"
	}
}
