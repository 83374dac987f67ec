package memstore_test

import (
	"testing"

	"go.trai.ch/aqtcache/internal/adapters/memstore"
	"go.trai.ch/aqtcache/internal/adapters/storagetest"
	"go.trai.ch/aqtcache/internal/core/ports"
)

func TestStore_Contract(t *testing.T) {
	storagetest.Run(t, func(_ *testing.T) ports.CacheStorage {
		return memstore.NewStore()
	})
}
