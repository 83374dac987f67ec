// Package storagetest holds the behaviour every cache storage backend must share.
package storagetest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports"
)

// Factory returns a fresh, empty storage. Cleanup is the factory's responsibility.
type Factory func(t *testing.T) ports.CacheStorage

// Entry builds a cacheable entry for key with the given body.
func Entry(key, body string) *domain.Entry {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
	}
	return domain.NewEntry(key, "", resp, []byte(body), time.Now().UTC().Truncate(time.Millisecond))
}

// Run exercises the storage contract against the backend built by newStore.
//
//nolint:funlen // contract table
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("open creates partition once", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		ok, err := s.Has(ctx, "aqt-static-v1")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = s.Open(ctx, "aqt-static-v1")
		require.NoError(t, err)
		_, err = s.Open(ctx, "aqt-static-v1")
		require.NoError(t, err)

		ok, err = s.Has(ctx, "aqt-static-v1")
		require.NoError(t, err)
		assert.True(t, ok)

		names, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"aqt-static-v1"}, names)
	})

	t.Run("keys in creation order", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		for _, name := range []string{"aqt-static-v2", "aqt-journal-v2", "aqt-a-v2"} {
			_, err := s.Open(ctx, name)
			require.NoError(t, err)
			// Creation timestamps must differ for file-backed stores.
			time.Sleep(2 * time.Millisecond)
		}

		names, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"aqt-static-v2", "aqt-journal-v2", "aqt-a-v2"}, names)
	})

	t.Run("put and match", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		p, err := s.Open(ctx, "aqt-journal-v1")
		require.NoError(t, err)
		assert.Equal(t, "aqt-journal-v1", p.Name())

		want := Entry("https://journal.test/api/trades", `[{"id":1}]`)
		require.NoError(t, p.Put(ctx, want))

		got, err := p.Match(ctx, want.Key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.Key, got.Key)
		assert.Equal(t, want.Body, got.Body)
		assert.Equal(t, http.StatusOK, got.Status)
		assert.Equal(t, "text/plain", got.Header.Get("Content-Type"))
		assert.Equal(t, "aqt-journal-v1", got.Partition)
		assert.Equal(t, want.Digest, got.Digest)
	})

	t.Run("match missing", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		p, err := s.Open(ctx, "aqt-journal-v1")
		require.NoError(t, err)

		got, err := p.Match(ctx, "https://journal.test/missing")
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = s.Match(ctx, "https://journal.test/missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("put replaces", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		p, err := s.Open(ctx, "aqt-journal-v1")
		require.NoError(t, err)

		key := "https://journal.test/api/trades"
		require.NoError(t, p.Put(ctx, Entry(key, "first")))
		require.NoError(t, p.Put(ctx, Entry(key, "second")))

		got, err := p.Match(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "second", string(got.Body))

		keys, err := p.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{key}, keys)
	})

	t.Run("keys are exact urls", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		p, err := s.Open(ctx, "aqt-journal-v1")
		require.NoError(t, err)

		require.NoError(t, p.Put(ctx, Entry("https://journal.test/api/trades?page=1", "one")))
		require.NoError(t, p.Put(ctx, Entry("https://journal.test/api/trades?page=2", "two")))

		got, err := p.Match(ctx, "https://journal.test/api/trades")
		require.NoError(t, err)
		assert.Nil(t, got)

		keys, err := p.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://journal.test/api/trades?page=1",
			"https://journal.test/api/trades?page=2",
		}, keys)
	})

	t.Run("stored entry is independent of caller", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		p, err := s.Open(ctx, "aqt-journal-v1")
		require.NoError(t, err)

		e := Entry("https://journal.test/", "original")
		require.NoError(t, p.Put(ctx, e))
		e.Body[0] = 'X'

		got, err := p.Match(ctx, e.Key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "original", string(got.Body))
	})

	t.Run("delete entry", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		p, err := s.Open(ctx, "aqt-journal-v1")
		require.NoError(t, err)

		key := "https://journal.test/api/trades"
		require.NoError(t, p.Put(ctx, Entry(key, "body")))

		ok, err := p.Delete(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = p.Delete(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := p.Match(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete partition removes entries", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		old, err := s.Open(ctx, "aqt-journal-v1")
		require.NoError(t, err)
		require.NoError(t, old.Put(ctx, Entry("https://journal.test/api/trades", "v1")))

		ok, err := s.Delete(ctx, "aqt-journal-v1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.Delete(ctx, "aqt-journal-v1")
		require.NoError(t, err)
		assert.False(t, ok)

		names, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Empty(t, names)

		got, err := s.Match(ctx, "https://journal.test/api/trades")
		require.NoError(t, err)
		assert.Nil(t, got)

		reopened, err := s.Open(ctx, "aqt-journal-v1")
		require.NoError(t, err)
		keys, err := reopened.Keys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("storage match searches every partition", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		static, err := s.Open(ctx, "aqt-static-v1")
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
		runtime, err := s.Open(ctx, "aqt-journal-v1")
		require.NoError(t, err)

		require.NoError(t, static.Put(ctx, Entry("https://journal.test/", "shell")))
		require.NoError(t, runtime.Put(ctx, Entry("https://journal.test/app.js", "js")))

		got, err := s.Match(ctx, "https://journal.test/app.js")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "aqt-journal-v1", got.Partition)

		got, err = s.Match(ctx, "https://journal.test/")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "aqt-static-v1", got.Partition)
	})

	t.Run("concurrent writers last one wins", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		p, err := s.Open(ctx, "aqt-journal-v1")
		require.NoError(t, err)

		key := "https://journal.test/api/trades"
		var wg sync.WaitGroup
		for i := range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, p.Put(ctx, Entry(key, fmt.Sprintf("body-%d", i))))
			}()
		}
		wg.Wait()

		got, err := p.Match(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Contains(t, string(got.Body), "body-")
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := newStore(t)

		_, err := s.Open(ctx, "aqt-static-v1")
		require.ErrorIs(t, err, context.Canceled)
	})
}
