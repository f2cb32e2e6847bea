package cache

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is a storage layer for reference entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns ErrCacheMiss when the key is absent.
	Get(ctx context.Context, key CacheKey) (*Entry, error)
	Set(ctx context.Context, key CacheKey, entry *Entry) error
	// Count returns the number of entries stored for kind.
	Count(ctx context.Context, kind Kind) (int, error)
	// Layer names the store for metrics ("memory", "redis").
	Layer() string
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[Kind]map[string]Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[Kind]map[string]Entry)}
}

// Get retrieves an entry by key.
func (m *MemoryStore) Get(_ context.Context, key CacheKey) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.items[key.Kind][key.Field()]
	if !ok {
		return nil, ErrCacheMiss
	}
	return &entry, nil
}

// Set stores an entry, replacing any previous value.
func (m *MemoryStore) Set(_ context.Context, key CacheKey, entry *Entry) error {
	if entry == nil {
		return errors.New("cache entry cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.items[key.Kind]
	if !ok {
		bucket = make(map[string]Entry)
		m.items[key.Kind] = bucket
	}
	bucket[key.Field()] = *entry
	return nil
}

// Count returns the number of entries of kind.
func (m *MemoryStore) Count(_ context.Context, kind Kind) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items[kind]), nil
}

// Layer implements Store.
func (m *MemoryStore) Layer() string { return "memory" }
