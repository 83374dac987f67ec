// Package memstore implements cache storage held in process memory.
package memstore

import (
	"context"
	"slices"
	"sync"

	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports"
)

var _ ports.CacheStorage = (*Store)(nil)

// Store implements ports.CacheStorage with maps guarded by a mutex.
type Store struct {
	mu         sync.RWMutex
	order      []string
	partitions map[string]*Partition
}

// NewStore creates an empty in-memory cache storage.
func NewStore() *Store {
	return &Store{
		partitions: make(map[string]*Partition),
	}
}

// Open returns the named partition, creating it if needed.
func (s *Store) Open(ctx context.Context, name string) (ports.Partition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.partitions[name]; ok {
		return p, nil
	}
	p := &Partition{
		name:    name,
		entries: make(map[string]*domain.Entry),
	}
	s.partitions[name] = p
	s.order = append(s.order, name)
	return p, nil
}

// Has reports whether the named partition exists.
func (s *Store) Has(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.partitions[name]
	return ok, nil
}

// Delete removes the named partition.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.partitions[name]; !ok {
		return false, nil
	}
	delete(s.partitions, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	return true, nil
}

// Keys returns partition names in creation order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.order), nil
}

// Match looks the key up in every partition in creation order.
func (s *Store) Match(ctx context.Context, key string) (*domain.Entry, error) {
	names, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		s.mu.RLock()
		p, ok := s.partitions[name]
		s.mu.RUnlock()
		if !ok {
			continue
		}
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

// Close is a no-op for memory storage.
func (s *Store) Close() error {
	return nil
}

// Partition is an in-memory cache partition.
type Partition struct {
	name    string
	mu      sync.RWMutex
	entries map[string]*domain.Entry
}

// Name returns the partition name.
func (p *Partition) Name() string {
	return p.name
}

// Match returns a copy of the entry stored under key.
func (p *Partition) Match(ctx context.Context, key string) (*domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.entries[key]
	if !ok {
		return nil, nil
	}
	return cloneEntry(entry), nil
}

// Put stores a copy of the entry, replacing any previous value.
func (p *Partition) Put(ctx context.Context, entry *domain.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := cloneEntry(entry)
	stored.Partition = p.name

	p.mu.Lock()
	defer p.mu.Unlock()

	p.entries[entry.Key] = stored
	return nil
}

// Delete removes the entry stored under key.
func (p *Partition) Delete(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.entries[key]; !ok {
		return false, nil
	}
	delete(p.entries, key)
	return true, nil
}

// Keys returns the stored keys in lexical order.
func (p *Partition) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := make([]string, 0, len(p.entries))
	for k := range p.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func cloneEntry(e *domain.Entry) *domain.Entry {
	c := *e
	c.Header = e.Header.Clone()
	c.Body = slices.Clone(e.Body)
	return &c
}
