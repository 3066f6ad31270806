package kv

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for store instrumentation.
const defaultTracerName = "kvbind"

// TracingConfig configures the OpenTelemetry store instrumentation.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "kvbind").
	TracerName string

	// IncludeKeys includes the store key in span attributes.
	// Keys may embed user identifiers; disable if yours do.
	// Enabled by default.
	IncludeKeys bool

	// Filter determines which operations to trace.
	// Return true to trace the operation, false to skip.
	// If nil, all operations are traced.
	Filter func(op, key string) bool

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TracingOption configures the OpenTelemetry store instrumentation.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracingIncludeKeys enables/disables recording store keys on spans.
func WithTracingIncludeKeys(include bool) TracingOption {
	return func(c *TracingConfig) {
		c.IncludeKeys = include
	}
}

// WithTracingFilter sets a filter function for operations.
func WithTracingFilter(filter func(op, key string) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// defaultTracingConfig returns the default tracing configuration.
func defaultTracingConfig() TracingConfig {
	return TracingConfig{
		TracerName:  defaultTracerName,
		IncludeKeys: true,
		Filter:      nil,
	}
}

// WithTracing wraps a store so that every operation runs inside an
// OpenTelemetry span.
//
// The instrumentation:
//   - Creates a client span per operation ("kvbind.get", "kvbind.set",
//     "kvbind.remove") with the backend type and, optionally, the key
//   - Records errors and sets span status; an absent key on Get is a miss,
//     not an error, and is recorded as kvbind.found=false
//   - Records payload sizes for successful reads and writes
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it in
// your main() before wrapping stores:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//	store := kv.WithTracing(kv.OpenBolt("state.db"))
func WithTracing(next Store, opts ...TracingOption) Store {
	config := defaultTracingConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Resolve tracer from global provider
	config.tracer = otel.Tracer(config.TracerName)

	return &tracedStore{
		next:    next,
		config:  config,
		backend: fmt.Sprintf("%T", next),
	}
}

// tracedStore decorates a Store with OpenTelemetry spans.
type tracedStore struct {
	next    Store
	config  TracingConfig
	backend string
}

func (s *tracedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.config.Filter != nil && !s.config.Filter("get", key) {
		return s.next.Get(ctx, key)
	}

	ctx, span := s.startSpan(ctx, "kvbind.get", key)
	defer span.End()

	value, err := s.next.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		span.SetAttributes(attribute.Bool("kvbind.found", false))
		span.SetStatus(codes.Ok, "")
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	default:
		span.SetAttributes(
			attribute.Bool("kvbind.found", true),
			attribute.Int("kvbind.payload_bytes", len(value)),
		)
		span.SetStatus(codes.Ok, "")
	}
	return value, err
}

func (s *tracedStore) Set(ctx context.Context, key string, value []byte) error {
	if s.config.Filter != nil && !s.config.Filter("set", key) {
		return s.next.Set(ctx, key, value)
	}

	ctx, span := s.startSpan(ctx, "kvbind.set", key)
	defer span.End()

	span.SetAttributes(attribute.Int("kvbind.payload_bytes", len(value)))

	err := s.next.Set(ctx, key, value)
	s.endSpan(span, err)
	return err
}

func (s *tracedStore) Remove(ctx context.Context, key string) error {
	if s.config.Filter != nil && !s.config.Filter("remove", key) {
		return s.next.Remove(ctx, key)
	}

	ctx, span := s.startSpan(ctx, "kvbind.remove", key)
	defer span.End()

	err := s.next.Remove(ctx, key)
	s.endSpan(span, err)
	return err
}

// startSpan opens a client span for a store operation.
func (s *tracedStore) startSpan(ctx context.Context, name, key string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("kvbind.backend", s.backend),
	}
	if s.config.IncludeKeys {
		attrs = append(attrs, attribute.String("kvbind.key", key))
	}

	return s.config.tracer.Start(
		ctx,
		name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// endSpan records the operation result on the span.
func (s *tracedStore) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
