package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/aqtcache/internal/adapters/storage"
	"go.trai.ch/aqtcache/internal/core/domain"
)

func TestOpener_OpenStorage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		backend domain.StorageBackend
	}{
		{name: "memory", backend: domain.StorageMemory},
		{name: "fs", backend: domain.StorageFS},
		{name: "badger", backend: domain.StorageBadger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store, err := storage.NewOpener().OpenStorage(ctx, domain.StorageSettings{
				Backend: tt.backend,
				Path:    filepath.Join(t.TempDir(), "store"),
			})
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })

			_, err = store.Open(ctx, "aqt-static-v1")
			require.NoError(t, err)

			names, err := store.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"aqt-static-v1"}, names)
		})
	}
}

func TestOpener_InvalidBackend(t *testing.T) {
	t.Parallel()

	_, err := storage.NewOpener().OpenStorage(context.Background(), domain.StorageSettings{Backend: "redis"})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrInvalidStorageBackend.Error())
}
