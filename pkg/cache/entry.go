package cache

import (
	"time"
)

// Entry represents a cached reference value.
type Entry struct {
	// Value is the resolved display string.
	Value string `json:"value"`

	// CachedAt is when the value was stored.
	CachedAt time.Time `json:"cached_at"`
}

// NewEntry creates an entry stamped with the current time.
func NewEntry(value string) *Entry {
	return &Entry{Value: value, CachedAt: time.Now()}
}
