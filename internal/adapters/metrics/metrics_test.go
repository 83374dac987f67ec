package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/aqtcache/internal/adapters/metrics"
	"go.trai.ch/aqtcache/internal/core/domain"
)

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.NewRecorder(reg)

	r.ObserveServe(domain.StrategyCacheFirst, domain.SourceCache)
	r.ObserveServe(domain.StrategyCacheFirst, domain.SourceCache)
	r.ObserveServe(domain.StrategyNetworkFirst, domain.SourceOffline)
	r.ObserveCacheWriteFailure("aqt-journal-v1")
	r.ObservePartitionsDeleted(2)
	r.ObservePartitionsDeleted(0)
	r.ObserveTransition("v1", domain.StateActivated)

	n, err := testutil.GatherAndCount(reg, "aqtcache_responses_served_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per strategy and source")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	assert.InDelta(t, 3, values["aqtcache_responses_served_total"], 0)
	assert.InDelta(t, 1, values["aqtcache_cache_write_failures_total"], 0)
	assert.InDelta(t, 2, values["aqtcache_partitions_deleted_total"], 0)
	assert.InDelta(t, 1, values["aqtcache_lifecycle_transitions_total"], 0)
	assert.InDelta(t, float64(domain.StateActivated), values["aqtcache_controller_state"], 0)
}

func TestRecorder_ReRegisterReuses(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := metrics.NewRecorder(reg)
	second := metrics.NewRecorder(reg)

	first.ObserveServe(domain.StrategyCacheFirst, domain.SourceNetwork)
	second.ObserveServe(domain.StrategyCacheFirst, domain.SourceNetwork)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "aqtcache_responses_served_total" {
			require.Len(t, mf.GetMetric(), 1)
			assert.InDelta(t, 2, mf.GetMetric()[0].GetCounter().GetValue(), 0)
		}
	}
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *metrics.Recorder
	r.ObserveServe(domain.StrategyCacheFirst, domain.SourceCache)
	r.ObserveCacheWriteFailure("x")
	r.ObservePartitionsDeleted(1)
	r.ObserveTransition("v1", domain.StateRedundant)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecorder_Handler(t *testing.T) {
	r := metrics.NewRecorder(prometheus.NewRegistry())
	r.ObserveServe(domain.StrategyStaleWhileRevalidate, domain.SourceCache)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(),
		`aqtcache_responses_served_total{source="cache",strategy="stale-while-revalidate"} 1`)
}
