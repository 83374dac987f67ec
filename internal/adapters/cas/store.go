// Package cas implements cache storage as one JSON file per entry.
package cas

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	metaFileName = "partition.json"
	entrySuffix  = ".json"
)

var _ ports.CacheStorage = (*Store)(nil)

// partitionMeta is written next to the entries of a partition.
type partitionMeta struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Store implements ports.CacheStorage using a directory per partition
// and a file per entry. File names are xxhash digests of the partition name
// and the request key.
type Store struct {
	root string
	// mu serializes partition creation and deletion; entry writes are
	// atomic renames and need no lock.
	mu sync.Mutex
}

// NewStore creates a cache storage rooted at the given directory.
func NewStore(root string) (*Store, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", root)
	}
	return &Store{root: root}, nil
}

// Open returns the named partition, creating its directory if needed.
func (s *Store) Open(ctx context.Context, name string) (ports.Partition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.partitionDir(name)
	metaPath := filepath.Join(dir, metaFileName)
	if _, err := os.Stat(metaPath); err == nil {
		return &Partition{name: name, dir: dir}, nil
	}

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "partition", name)
	}
	data, err := json.Marshal(partitionMeta{Name: name, CreatedAt: time.Now()})
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}
	if err := writeFileAtomic(metaPath, data); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "partition", name)
	}
	return &Partition{name: name, dir: dir}, nil
}

// Has reports whether the named partition exists.
func (s *Store) Has(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(filepath.Join(s.partitionDir(name), metaFileName))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
}

// Delete removes the partition directory and all of its entries.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	ok, err := s.Has(ctx, name)
	if err != nil || !ok {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.partitionDir(name)); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrStoreDeleteFailed.Error()), "partition", name)
	}
	return true, nil
}

// Keys returns partition names ordered by creation time.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirs, err := os.ReadDir(s.root)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreListFailed.Error())
	}

	metas := make([]partitionMeta, 0, len(dirs))
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		//nolint:gosec // Path is constructed from the store root and a directory entry
		data, err := os.ReadFile(filepath.Join(s.root, d.Name(), metaFileName))
		if err != nil {
			// Partition being created or deleted concurrently.
			continue
		}
		var meta partitionMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "dir", d.Name())
		}
		metas = append(metas, meta)
	}

	slices.SortStableFunc(metas, func(a, b partitionMeta) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	names := make([]string, len(metas))
	for i, m := range metas {
		names[i] = m.Name
	}
	return names, nil
}

// Match looks the key up in every partition in creation order.
func (s *Store) Match(ctx context.Context, key string) (*domain.Entry, error) {
	names, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		p := &Partition{name: name, dir: s.partitionDir(name)}
		entry, err := p.Match(ctx, key)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			return entry, nil
		}
	}
	return nil, nil
}

// Close is a no-op for file storage.
func (s *Store) Close() error {
	return nil
}

func (s *Store) partitionDir(name string) string {
	return filepath.Join(s.root, hashName(name))
}

// Partition is a directory of entry files.
type Partition struct {
	name string
	dir  string
}

// Name returns the partition name.
func (p *Partition) Name() string {
	return p.name
}

// Match reads the entry stored under key.
func (p *Partition) Match(ctx context.Context, key string) (*domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(p.filename(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	var entry domain.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "key", key)
	}
	// Distinct keys never share a file unless their digests collide.
	if entry.Key != key {
		return nil, nil
	}
	return &entry, nil
}

// Put writes the entry, replacing any previous value.
func (p *Partition) Put(ctx context.Context, entry *domain.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := *entry
	stored.Partition = p.name
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	if err := os.MkdirAll(p.dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	if err := writeFileAtomic(p.filename(entry.Key), data); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", entry.Key)
	}
	return nil
}

// Delete removes the entry file.
func (p *Partition) Delete(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	existing, err := p.Match(ctx, key)
	if err != nil || existing == nil {
		return false, err
	}
	if err := os.Remove(p.filename(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.Wrap(err, domain.ErrStoreDeleteFailed.Error())
	}
	return true, nil
}

// Keys returns the stored keys in lexical order.
func (p *Partition) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := os.ReadDir(p.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrStoreListFailed.Error())
	}

	var keys []string
	for _, f := range files {
		if f.IsDir() || f.Name() == metaFileName || !strings.HasSuffix(f.Name(), entrySuffix) {
			continue
		}
		//nolint:gosec // Path is constructed from trusted directory and a directory entry
		data, err := os.ReadFile(filepath.Join(p.dir, f.Name()))
		if err != nil {
			continue
		}
		var entry struct {
			Key string `json:"key"`
		}
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "file", f.Name())
		}
		keys = append(keys, entry.Key)
	}
	slices.Sort(keys)
	return keys, nil
}

func (p *Partition) filename(key string) string {
	return filepath.Join(p.dir, hashName(key)+entrySuffix)
}

func hashName(s string) string {
	return strconv.FormatUint(xxhash.Sum64String(s), 16)
}

// writeFileAtomic writes data to a temporary file and renames it into place,
// so concurrent readers see either the old or the new entry.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
