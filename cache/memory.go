package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemorySize is the default bound on the in-memory tier.
const DefaultMemorySize = 512

// MemoryCache is the bounded in-memory tier. It holds the N most recently
// touched keys (recency = last Get or Set) and evicts least-recently-used
// entries under pressure. It is cleared implicitly on process restart.
type MemoryCache struct {
	entries *lru.Cache[string, Entry]
}

// NewMemoryCache creates an in-memory cache bounded to size entries.
// A non-positive size falls back to DefaultMemorySize.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	entries, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("cache: failed to create memory tier: %w", err)
	}
	return &MemoryCache{entries: entries}, nil
}

// Get retrieves an entry. Returns (Entry{}, false) on miss or expiry.
// Expired entries are not removed here; they are either overwritten by the
// corresponding Set or pushed out by recency pressure.
func (c *MemoryCache) Get(_ context.Context, key string) (Entry, bool) {
	entry, ok := c.entries.Get(key)
	if !ok || entry.Expired(time.Now()) {
		return Entry{}, false
	}
	return entry, true
}

// Set stores an entry, evicting the least recently used key if the tier is
// at capacity.
func (c *MemoryCache) Set(_ context.Context, key string, entry Entry) error {
	c.entries.Add(key, entry)
	return nil
}

// Delete removes an entry. Idempotent - no error on miss.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

// Len returns the number of resident entries, expired included.
func (c *MemoryCache) Len() int {
	return c.entries.Len()
}

// Purge drops every resident entry.
func (c *MemoryCache) Purge() {
	c.entries.Purge()
}

// Ensure MemoryCache implements Cache
var _ Cache = (*MemoryCache)(nil)
