package telemetry

import (
	"context"

	"go.trai.ch/aqtcache/internal/core/ports"
)

var (
	_ ports.Tracer = NoOpTracer{}
	_ ports.Span   = NoOpSpan{}
)

// NoOpTracer starts spans that record nothing. It replaces the OpenTelemetry
// tracer when log.trace is off.
type NoOpTracer struct{}

// NewNoOpTracer returns a tracer that discards every span.
func NewNoOpTracer() NoOpTracer {
	return NoOpTracer{}
}

// Start returns ctx unchanged with a discarding span.
func (NoOpTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, NoOpSpan{}
}

// NoOpSpan discards everything recorded on it.
type NoOpSpan struct{}

// End does nothing.
func (NoOpSpan) End() {}

// RecordError does nothing.
func (NoOpSpan) RecordError(error) {}

// SetAttribute does nothing.
func (NoOpSpan) SetAttribute(string, any) {}
