package domain

import (
	"net/url"
	"time"
)

// StorageBackend names a cache storage implementation.
type StorageBackend string

const (
	// StorageMemory keeps partitions in process memory.
	StorageMemory StorageBackend = "memory"
	// StorageFS keeps one file per entry under a directory per partition.
	StorageFS StorageBackend = "fs"
	// StorageBadger keeps partitions in a badger database.
	StorageBadger StorageBackend = "badger"
)

// StorageSettings selects and locates the cache storage.
type StorageSettings struct {
	Backend StorageBackend
	Path    string
}

// Settings is the resolved configuration of the cache controller process.
type Settings struct {
	// Path is the file the settings were loaded from.
	Path string

	Version        string
	Origin         *url.URL
	Upstream       *url.URL
	Listen         string
	StaticPrefix   string
	RuntimePrefix  string
	Manifest       []string
	StaticStrategy Strategy
	SkipWaiting    bool
	FetchTimeout   time.Duration
	Storage        StorageSettings
	LogJSON        bool
	// LogTrace enables controller spans.
	LogTrace bool
}

// Generation returns the controller generation described by the settings.
func (s *Settings) Generation() Generation {
	return Generation{
		Version:        s.Version,
		Origin:         s.Origin,
		StaticPrefix:   s.StaticPrefix,
		RuntimePrefix:  s.RuntimePrefix,
		Manifest:       append([]string(nil), s.Manifest...),
		StaticStrategy: s.StaticStrategy,
		SkipWaiting:    s.SkipWaiting,
	}
}
