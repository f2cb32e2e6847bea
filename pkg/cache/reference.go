package cache

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// ReferenceCache maps references of one kind to resolved display strings.
// It never returns store errors: failures are logged and read as misses.
type ReferenceCache struct {
	kind   Kind
	store  Store
	logger zerolog.Logger
}

// NewReferenceCache creates a cache for kind on top of store.
func NewReferenceCache(kind Kind, store Store, logger zerolog.Logger) *ReferenceCache {
	if store == nil {
		store = NewMemoryStore()
	}
	return &ReferenceCache{
		kind:   kind,
		store:  store,
		logger: logger.With().Str("cache_kind", string(kind)).Logger(),
	}
}

// Kind returns the reference kind held by the cache.
func (c *ReferenceCache) Kind() Kind { return c.kind }

// Get looks up ref.
func (c *ReferenceCache) Get(ctx context.Context, ref string) (string, bool) {
	entry, err := c.store.Get(ctx, CacheKey{Kind: c.kind, Key: ref})
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("ref", ref).Msg("Reference cache get error")
		}
		CacheMisses.WithLabelValues(string(c.kind)).Inc()
		return "", false
	}

	CacheHits.WithLabelValues(string(c.kind), c.store.Layer()).Inc()
	c.logger.Debug().Str("ref", ref).Msg("Reference cache hit")
	return entry.Value, true
}

// Set stores value for ref.
func (c *ReferenceCache) Set(ctx context.Context, ref, value string) {
	if err := c.store.Set(ctx, CacheKey{Kind: c.kind, Key: ref}, NewEntry(value)); err != nil {
		c.logger.Warn().Err(err).Str("ref", ref).Msg("Reference cache set error")
		return
	}
	CacheWrites.WithLabelValues(string(c.kind)).Inc()
}

// Len returns the number of cached references, 0 on store errors.
func (c *ReferenceCache) Len(ctx context.Context) int {
	n, err := c.store.Count(ctx, c.kind)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Reference cache count error")
		return 0
	}
	return n
}
