package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func resetGlobalStoreMetricsForTest() {
	globalStoreMetricsMu.Lock()
	globalStoreMetrics = nil
	globalStoreMetricsMu.Unlock()
}

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestWithMetrics_RecordsOperations(t *testing.T) {
	resetGlobalStoreMetricsForTest()
	reg := prometheus.NewRegistry()

	store := WithMetrics(NewMemoryStore(), WithMetricsRegistry(reg))
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("value")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := store.Get(ctx, "k"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := store.Get(ctx, "absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	m := globalStoreMetrics
	if m == nil {
		t.Fatal("expected global metrics to be initialized")
	}

	if got := metricCounterValue(t, m.opsTotal.WithLabelValues("set", "success")); got != 1 {
		t.Errorf("ops_total(set, success)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.opsTotal.WithLabelValues("get", "success")); got != 1 {
		t.Errorf("ops_total(get, success)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.opsTotal.WithLabelValues("get", "miss")); got != 1 {
		t.Errorf("ops_total(get, miss)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.opsTotal.WithLabelValues("remove", "success")); got != 1 {
		t.Errorf("ops_total(remove, success)=%v, want 1", got)
	}

	// Duration is observed for every operation, sizes only for successes
	if got := metricHistogramCount(t, m.opDuration.WithLabelValues("get")); got != 2 {
		t.Errorf("op_duration(get) samples=%v, want 2", got)
	}
	if got := metricHistogramCount(t, m.payloadBytes.WithLabelValues("set")); got != 1 {
		t.Errorf("payload_bytes(set) samples=%v, want 1", got)
	}
	if got := metricHistogramCount(t, m.payloadBytes.WithLabelValues("get")); got != 1 {
		t.Errorf("payload_bytes(get) samples=%v, want 1", got)
	}
}

func TestWithMetrics_RecordsErrors(t *testing.T) {
	resetGlobalStoreMetricsForTest()
	reg := prometheus.NewRegistry()

	backing := NewMemoryStore()
	backing.Close() // every operation now fails
	store := WithMetrics(backing, WithMetricsRegistry(reg))
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v")); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	m := globalStoreMetrics
	if got := metricCounterValue(t, m.opsTotal.WithLabelValues("set", "error")); got != 1 {
		t.Errorf("ops_total(set, error)=%v, want 1", got)
	}
	if got := metricHistogramCount(t, m.payloadBytes.WithLabelValues("set")); got != 0 {
		t.Errorf("payload_bytes(set) samples=%v, want 0 for failed writes", got)
	}
}

func TestWithMetrics_SharedInstance(t *testing.T) {
	resetGlobalStoreMetricsForTest()
	reg := prometheus.NewRegistry()

	a := WithMetrics(NewMemoryStore(), WithMetricsRegistry(reg))
	// Second wrap must reuse the instance instead of re-registering
	b := WithMetrics(NewMemoryStore(), WithMetricsRegistry(prometheus.NewRegistry()))
	ctx := context.Background()

	a.Set(ctx, "k", []byte("v"))
	b.Set(ctx, "k", []byte("v"))

	m := globalStoreMetrics
	if got := metricCounterValue(t, m.opsTotal.WithLabelValues("set", "success")); got != 2 {
		t.Errorf("ops_total(set, success)=%v, want 2 across both stores", got)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(nil); got != "success" {
		t.Errorf("statusFor(nil)=%q, want success", got)
	}
	if got := statusFor(ErrNotFound); got != "miss" {
		t.Errorf("statusFor(ErrNotFound)=%q, want miss", got)
	}
	if got := statusFor(errors.New("boom")); got != "error" {
		t.Errorf("statusFor(err)=%q, want error", got)
	}
}
