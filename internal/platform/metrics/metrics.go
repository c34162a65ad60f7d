// Package metrics provides the fire-and-forget counter sink used by the
// service layer. Recording a metric never fails the calling operation.
package metrics

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/metric"
)

// Sink records monotonically-increasing counters.
type Sink interface {
	// IncrementCounter adds one to the named counter. Fire-and-forget:
	// failures are logged, never returned.
	IncrementCounter(ctx context.Context, name string)
}

// OtelSink implements Sink on top of an OpenTelemetry meter. Counters are
// created lazily on first use and cached for the life of the sink.
type OtelSink struct {
	meter  metric.Meter
	logger *slog.Logger

	mu       sync.Mutex
	counters map[string]metric.Int64Counter
}

// NewOtelSink creates a Sink backed by the given meter.
func NewOtelSink(meter metric.Meter, logger *slog.Logger) *OtelSink {
	if logger == nil {
		logger = slog.Default()
	}

	return &OtelSink{
		meter:    meter,
		logger:   logger.With(slog.String("component", "metrics_sink")),
		counters: make(map[string]metric.Int64Counter),
	}
}

// IncrementCounter implements Sink.
func (s *OtelSink) IncrementCounter(ctx context.Context, name string) {
	s.mu.Lock()
	counter, ok := s.counters[name]
	if !ok {
		var err error
		counter, err = s.meter.Int64Counter(name)
		if err != nil {
			s.mu.Unlock()
			s.logger.Error("failed to create counter",
				slog.String("counter", name),
				slog.String("error", err.Error()))
			return
		}
		s.counters[name] = counter
	}
	s.mu.Unlock()

	counter.Add(ctx, 1)
}

// Noop is a Sink that records nothing. Useful as a default when metrics are
// not wired, so callers never need a nil check.
type Noop struct{}

// IncrementCounter implements Sink.
func (Noop) IncrementCounter(context.Context, string) {}
