package worker

import (
	"context"

	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports"
)

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End()                     {}
func (noopSpan) RecordError(error)        {}
func (noopSpan) SetAttribute(string, any) {}

type noopMetrics struct{}

func (noopMetrics) ObserveServe(domain.Strategy, domain.Source) {}
func (noopMetrics) ObserveCacheWriteFailure(string)             {}
func (noopMetrics) ObservePartitionsDeleted(int)                {}
func (noopMetrics) ObserveTransition(string, domain.State)      {}

type noopLogger struct{}

func (noopLogger) Debug(string) {}
func (noopLogger) Info(string)  {}
func (noopLogger) Warn(string)  {}
func (noopLogger) Error(error)  {}
