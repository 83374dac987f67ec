package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/aqtcache/internal/adapters/telemetry"
	"go.trai.ch/aqtcache/internal/core/ports"
	"go.trai.ch/aqtcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func setupRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, tp
}

func TestOTelTracer_StartAppliesAttributes(t *testing.T) {
	sr, tp := setupRecorder(t)
	tracer := telemetry.NewOTelTracer(tp, "test")

	_, span := tracer.Start(context.Background(), "intercept",
		ports.WithAttribute("url", "https://app.test/"),
		ports.WithAttribute("attempt", 2),
	)
	span.SetAttribute("cached", true)
	span.SetAttribute("partitions", []string{"aqt-static-v1"})
	span.SetAttribute("ratio", 0.5)
	span.SetAttribute("size", int64(42))
	span.SetAttribute("state", struct{ N int }{1})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "intercept", spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "https://app.test/", attrs["url"].AsString())
	assert.Equal(t, int64(2), attrs["attempt"].AsInt64())
	assert.True(t, attrs["cached"].AsBool())
	assert.Equal(t, []string{"aqt-static-v1"}, attrs["partitions"].AsStringSlice())
	assert.InDelta(t, 0.5, attrs["ratio"].AsFloat64(), 0.0001)
	assert.Equal(t, int64(42), attrs["size"].AsInt64())
	assert.Equal(t, "{1}", attrs["state"].AsString())
}

func TestOTelSpan_RecordError(t *testing.T) {
	sr, tp := setupRecorder(t)
	tracer := telemetry.NewOTelTracer(tp, "test")

	_, span := tracer.Start(context.Background(), "install")
	span.RecordError(errors.New("manifest fetch failed"))
	span.RecordError(nil)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "manifest fetch failed", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestLogBridge_OnEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewLogBridge(log)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	tracer := telemetry.NewOTelTracer(tp, "test")

	log.EXPECT().Debug(gomock.Any()).DoAndReturn(func(msg string) {
		assert.Contains(t, msg, "activate")
		assert.Contains(t, msg, "version=v2")
	})
	_, span := tracer.Start(context.Background(), "activate", ports.WithAttribute("version", "v2"))
	span.End()

	log.EXPECT().Debug(gomock.Any())
	log.EXPECT().Warn("install: boom")
	_, span = tracer.Start(context.Background(), "install")
	span.RecordError(errors.New("boom"))
	span.End()
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	got, span := tracer.Start(ctx, "noop", ports.WithAttribute("k", "v"))
	assert.Equal(t, ctx, got)
	span.SetAttribute("k", 1)
	span.RecordError(errors.New("ignored"))
	span.End()
}
