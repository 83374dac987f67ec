// Package metrics records controller activity as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports"
)

const namespace = "aqtcache"

var _ ports.Metrics = (*Recorder)(nil)

// Recorder implements ports.Metrics. All methods are nil-safe.
type Recorder struct {
	gatherer prometheus.Gatherer

	// servedTotal counts responses by strategy and source.
	servedTotal *prometheus.CounterVec

	// cacheWriteFailuresTotal counts swallowed cache writes by partition.
	cacheWriteFailuresTotal *prometheus.CounterVec

	// partitionsDeletedTotal counts stale partitions removed on activation.
	partitionsDeletedTotal prometheus.Counter

	// transitionsTotal counts lifecycle transitions by target state.
	transitionsTotal *prometheus.CounterVec

	// controllerState reports the current state of each known version.
	controllerState *prometheus.GaugeVec
}

// NewRecorder creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	r := &Recorder{
		servedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_served_total",
			Help:      "Responses served by the controller, by strategy and source",
		}, []string{"strategy", "source"}),
		cacheWriteFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_write_failures_total",
			Help:      "Cache writes that failed and were ignored",
		}, []string{"partition"}),
		partitionsDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partitions_deleted_total",
			Help:      "Stale partitions deleted on activation",
		}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_transitions_total",
			Help:      "Controller lifecycle transitions, by target state",
		}, []string{"state"}),
		controllerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "controller_state",
			Help:      "Lifecycle state of each controller version (0 parsed to 5 redundant)",
		}, []string{"version"}),
	}

	if reg != nil {
		r.gatherer = reg
		r.servedTotal = registerOrReuse(reg, r.servedTotal).(*prometheus.CounterVec)
		r.cacheWriteFailuresTotal = registerOrReuse(reg, r.cacheWriteFailuresTotal).(*prometheus.CounterVec)
		r.partitionsDeletedTotal = registerOrReuse(reg, r.partitionsDeletedTotal).(prometheus.Counter)
		r.transitionsTotal = registerOrReuse(reg, r.transitionsTotal).(*prometheus.CounterVec)
		r.controllerState = registerOrReuse(reg, r.controllerState).(*prometheus.GaugeVec)
	}
	return r
}

// ObserveServe records a served response.
func (r *Recorder) ObserveServe(strategy domain.Strategy, source domain.Source) {
	if r == nil {
		return
	}
	r.servedTotal.WithLabelValues(string(strategy), string(source)).Inc()
}

// ObserveCacheWriteFailure records a failed cache write.
func (r *Recorder) ObserveCacheWriteFailure(partition string) {
	if r == nil {
		return
	}
	r.cacheWriteFailuresTotal.WithLabelValues(partition).Inc()
}

// ObservePartitionsDeleted records deleted stale partitions.
func (r *Recorder) ObservePartitionsDeleted(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.partitionsDeletedTotal.Add(float64(n))
}

// ObserveTransition records a lifecycle transition.
func (r *Recorder) ObserveTransition(version string, state domain.State) {
	if r == nil {
		return
	}
	r.transitionsTotal.WithLabelValues(state.String()).Inc()
	r.controllerState.WithLabelValues(version).Set(float64(state))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil || r.gatherer == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// registerOrReuse registers c, returning the already registered collector
// when an identical one exists. Panics on any other registration failure.
func registerOrReuse(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}
