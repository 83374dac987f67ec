package ports

import "go.trai.ch/aqtcache/internal/core/domain"

// Metrics records controller activity.
// Implementations must be safe for concurrent use.
//
//go:generate go run go.uber.org/mock/mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// ObserveServe records a response served with the given strategy and source.
	ObserveServe(strategy domain.Strategy, source domain.Source)

	// ObserveCacheWriteFailure records a swallowed cache write failure.
	ObserveCacheWriteFailure(partition string)

	// ObservePartitionsDeleted records stale partitions removed on activation.
	ObservePartitionsDeleted(n int)

	// ObserveTransition records a lifecycle transition of a controller version.
	ObserveTransition(version string, state domain.State)
}
