package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/aqtcache/internal/core/ports"
)

// InstrumentationName names the tracer of the cache controller.
const InstrumentationName = "aqtcache"

// Provider owns the SDK tracer provider.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// NewProvider installs a tracer provider that reports spans through the logger
// and through any extra processors.
func NewProvider(logger ports.Logger, processors ...sdktrace.SpanProcessor) *Provider {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSpanProcessor(NewLogBridge(logger)),
	}
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return &Provider{tp: tp}
}

// Tracer returns the controller's tracer.
func (p *Provider) Tracer() *OTelTracer {
	return NewOTelTracer(p.tp, InstrumentationName)
}

// Shutdown flushes and stops the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.tp.Shutdown(ctx)
}
