package badgerstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/aqtcache/internal/adapters/badgerstore"
	"go.trai.ch/aqtcache/internal/adapters/storagetest"
	"go.trai.ch/aqtcache/internal/core/ports"
)

func TestStore_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) ports.CacheStorage {
		s, err := badgerstore.NewInMemoryStore()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestStore_Persistence(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "badger")

	s1, err := badgerstore.NewStore(dir)
	require.NoError(t, err)

	p, err := s1.Open(ctx, "aqt-journal-v1")
	require.NoError(t, err)
	require.NoError(t, p.Put(ctx, storagetest.Entry("https://journal.test/api/trades", "persisted")))
	require.NoError(t, s1.Close())

	s2, err := badgerstore.NewStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s2.Close() })

	names, err := s2.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"aqt-journal-v1"}, names)

	got, err := s2.Match(ctx, "https://journal.test/api/trades")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "persisted", string(got.Body))
}
