package cache

import (
	"strings"
)

// Kind identifies which reference a cache holds.
type Kind string

const (
	// KindFilm maps film URLs to titles.
	KindFilm Kind = "film"

	// KindSpecies maps species URLs to names.
	KindSpecies Kind = "species"
)

// keyPrefix namespaces every reference cache key.
const keyPrefix = "swapi:ref"

// CacheKey represents a unique identifier for a cached reference.
type CacheKey struct {
	// Kind is the reference kind.
	Kind Kind

	// Key is the stable reference, usually the upstream URL.
	Key string
}

// Namespace returns the per-kind container name (the Redis hash key).
//
// Example:
//
//	swapi:ref:film
func (k CacheKey) Namespace() string {
	return keyPrefix + ":" + string(k.Kind)
}

// Field returns the normalized member key inside the namespace.
// Trailing slashes are dropped so ".../films/1/" and ".../films/1" collide.
func (k CacheKey) Field() string {
	return strings.TrimRight(strings.TrimSpace(k.Key), "/")
}

// String generates a deterministic cache key string.
// Format: swapi:ref:kind:key
func (k CacheKey) String() string {
	return k.Namespace() + ":" + k.Field()
}
