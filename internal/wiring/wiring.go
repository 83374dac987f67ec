// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/aqtcache/internal/adapters/clients"
	_ "go.trai.ch/aqtcache/internal/adapters/config"
	_ "go.trai.ch/aqtcache/internal/adapters/logger"
	_ "go.trai.ch/aqtcache/internal/adapters/metrics"
	_ "go.trai.ch/aqtcache/internal/adapters/notify"
	_ "go.trai.ch/aqtcache/internal/adapters/storage"
	_ "go.trai.ch/aqtcache/internal/adapters/telemetry"
	_ "go.trai.ch/aqtcache/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/aqtcache/internal/app"
)
