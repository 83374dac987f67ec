// Package badgerstore implements cache storage on a badger database.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// Key layout:
//
//	p\x00<partition>          partition metadata
//	e\x00<partition>\x00<key> entry
const (
	partitionPrefix = "p\x00"
	entryPrefix     = "e\x00"
	sep             = "\x00"
)

var _ ports.CacheStorage = (*Store)(nil)

type partitionMeta struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Store implements ports.CacheStorage on badger.
type Store struct {
	db *badgerdb.DB
}

// NewStore opens or creates a badger database at path.
func NewStore(path string) (*Store, error) {
	return open(badgerdb.DefaultOptions(path).WithLogger(nil))
}

// NewInMemoryStore opens a badger database that lives only in memory.
func NewInMemoryStore() (*Store, error) {
	return open(badgerdb.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func open(opts badgerdb.Options) (*Store, error) {
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", opts.Dir)
	}
	return &Store{db: db}, nil
}

// Open returns the named partition, recording it if it is new.
func (s *Store) Open(ctx context.Context, name string) (ports.Partition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(metaKey(name))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return err
		}
		data, err := json.Marshal(partitionMeta{Name: name, CreatedAt: time.Now()})
		if err != nil {
			return err
		}
		return txn.Set(metaKey(name), data)
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "partition", name)
	}
	return &Partition{name: name, db: s.db}, nil
}

// Has reports whether the named partition exists.
func (s *Store) Has(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var found bool
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(metaKey(name))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	return found, nil
}

// Delete removes the partition metadata and every entry of the partition.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	ok, err := s.Has(ctx, name)
	if err != nil || !ok {
		return false, err
	}

	if err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(metaKey(name))
	}); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrStoreDeleteFailed.Error()), "partition", name)
	}
	if err := s.db.DropPrefix(entryKeyPrefix(name)); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrStoreDeleteFailed.Error()), "partition", name)
	}
	return true, nil
}

// Keys returns partition names ordered by creation time.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var metas []partitionMeta
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(partitionPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var meta partitionMeta
				if err := json.Unmarshal(val, &meta); err != nil {
					return err
				}
				metas = append(metas, meta)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreListFailed.Error())
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
		entry, err := (&Partition{name: name, db: s.db}).Match(ctx, key)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			return entry, nil
		}
	}
	return nil, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Partition is a key range of the badger database.
type Partition struct {
	name string
	db   *badgerdb.DB
}

// Name returns the partition name.
func (p *Partition) Name() string {
	return p.name
}

// Match returns the entry stored under key.
func (p *Partition) Match(ctx context.Context, key string) (*domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry *domain.Entry
	err := p.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(entryKey(p.name, key))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var e domain.Entry
			if err := json.Unmarshal(val, &e); err != nil {
				return zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error())
			}
			entry = &e
			return nil
		})
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "key", key)
	}
	return entry, nil
}

// Put stores the entry, replacing any previous value.
func (p *Partition) Put(ctx context.Context, entry *domain.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := *entry
	stored.Partition = p.name
	data, err := json.Marshal(stored)
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	if err := p.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(entryKey(p.name, entry.Key), data)
	}); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", entry.Key)
	}
	return nil
}

// Delete removes the entry stored under key.
func (p *Partition) Delete(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var existed bool
	err := p.db.Update(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(entryKey(p.name, key))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		existed = true
		return txn.Delete(entryKey(p.name, key))
	})
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrStoreDeleteFailed.Error()), "key", key)
	}
	return existed, nil
}

// Keys returns the stored keys in lexical order.
func (p *Partition) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := entryKeyPrefix(p.name)
	var keys []string
	err := p.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreListFailed.Error())
	}
	return keys, nil
}

func metaKey(name string) []byte {
	return []byte(partitionPrefix + name)
}

func entryKeyPrefix(name string) []byte {
	return []byte(entryPrefix + name + sep)
}

func entryKey(name, key string) []byte {
	return []byte(entryPrefix + name + sep + key)
}
