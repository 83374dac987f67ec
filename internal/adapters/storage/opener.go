// Package storage selects the cache storage backend.
package storage

import (
	"context"

	"go.trai.ch/aqtcache/internal/adapters/badgerstore"
	"go.trai.ch/aqtcache/internal/adapters/cas"
	"go.trai.ch/aqtcache/internal/adapters/memstore"
	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StorageOpener = (*Opener)(nil)

// Opener implements ports.StorageOpener.
type Opener struct{}

// NewOpener creates a new Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// OpenStorage opens the backend named by settings.
// An empty path selects the backend's default location under .aqtcache.
func (o *Opener) OpenStorage(ctx context.Context, settings domain.StorageSettings) (ports.CacheStorage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch settings.Backend {
	case domain.StorageMemory:
		return memstore.NewStore(), nil
	case domain.StorageFS:
		path := settings.Path
		if path == "" {
			path = domain.DefaultPartitionsPath()
		}
		return cas.NewStore(path)
	case domain.StorageBadger:
		path := settings.Path
		if path == "" {
			path = domain.DefaultBadgerPath()
		}
		return badgerstore.NewStore(path)
	default:
		return nil, zerr.With(domain.ErrInvalidStorageBackend, "backend", string(settings.Backend))
	}
}
