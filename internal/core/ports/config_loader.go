package ports

import "go.trai.ch/aqtcache/internal/core/domain"

// ConfigLoader defines the interface for loading the controller configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the configuration starting at cwd and returns the resolved settings.
	Load(cwd string) (*domain.Settings, error)

	// LoadFile reads the configuration from an explicit path.
	LoadFile(path string) (*domain.Settings, error)
}
