package domain

import "go.trai.ch/zerr"

// Strategy names how a request is resolved between network and cache.
type Strategy string

const (
	// StrategyBypass leaves the request to the host's default handling.
	StrategyBypass Strategy = "bypass"
	// StrategyNetworkFirst tries the network before falling back to the cache.
	StrategyNetworkFirst Strategy = "network-first"
	// StrategyCacheFirst consults the cache before the network.
	StrategyCacheFirst Strategy = "cache-first"
	// StrategyStaleWhileRevalidate serves the cached copy and refreshes it in the background.
	StrategyStaleWhileRevalidate Strategy = "stale-while-revalidate"
)

// String returns the strategy name.
func (s Strategy) String() string {
	return string(s)
}

// ParseStaticStrategy parses the strategy applied to non-API requests.
// An empty string selects cache-first.
func ParseStaticStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyCacheFirst:
		return StrategyCacheFirst, nil
	case StrategyStaleWhileRevalidate:
		return StrategyStaleWhileRevalidate, nil
	default:
		return "", zerr.With(ErrInvalidStrategy, "strategy", s)
	}
}

// Source records where a served response came from.
type Source string

const (
	// SourceNetwork means the response came from the network.
	SourceNetwork Source = "network"
	// SourceCache means the response came from a partition.
	SourceCache Source = "cache"
	// SourceOffline means the response was synthesized because nothing else was available.
	SourceOffline Source = "offline"
)
