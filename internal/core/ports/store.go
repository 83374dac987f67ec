package ports

import (
	"context"

	"go.trai.ch/aqtcache/internal/core/domain"
)

// CacheStorage is the persistent set of named cache partitions.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStorage interface {
	// Open returns the named partition, creating it if it does not exist.
	Open(ctx context.Context, name string) (Partition, error)

	// Has reports whether the named partition exists.
	Has(ctx context.Context, name string) (bool, error)

	// Delete removes the named partition and all of its entries.
	// It reports whether the partition existed.
	Delete(ctx context.Context, name string) (bool, error)

	// Keys returns the names of all partitions in creation order.
	Keys(ctx context.Context) ([]string, error)

	// Match looks the key up in every partition in creation order.
	// Returns nil, nil if no partition holds the key.
	Match(ctx context.Context, key string) (*domain.Entry, error)

	// Close releases the storage.
	Close() error
}

// Partition is a single named key-value cache.
type Partition interface {
	// Name returns the partition name.
	Name() string

	// Match returns the entry stored under key.
	// Returns nil, nil if not found.
	Match(ctx context.Context, key string) (*domain.Entry, error)

	// Put stores the entry under entry.Key, replacing any previous value.
	Put(ctx context.Context, entry *domain.Entry) error

	// Delete removes the entry stored under key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Keys returns every key stored in the partition.
	Keys(ctx context.Context) ([]string, error)
}

// StorageOpener opens the cache storage selected by the settings.
type StorageOpener interface {
	// OpenStorage opens the cache storage described by settings.
	OpenStorage(ctx context.Context, settings domain.StorageSettings) (CacheStorage, error)
}
