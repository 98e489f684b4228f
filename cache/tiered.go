package cache

import "context"

// TieredCache composes the memory and disk tiers into a single Cache. The
// memory tier is consulted first; disk hits are promoted into memory so the
// next read for the same key stays off the disk path. Writes always go to
// both tiers so the disk snapshot remains the source of truth.
type TieredCache struct {
	memory *MemoryCache
	disk   *DiskCache
}

// NewTieredCache composes the given tiers.
func NewTieredCache(memory *MemoryCache, disk *DiskCache) *TieredCache {
	return &TieredCache{memory: memory, disk: disk}
}

// Get checks memory first, then disk. A disk hit is promoted into memory.
func (c *TieredCache) Get(ctx context.Context, key string) (Entry, bool) {
	if entry, ok := c.memory.Get(ctx, key); ok {
		return entry, true
	}

	entry, ok := c.disk.Get(ctx, key)
	if !ok {
		return Entry{}, false
	}

	// Promote so repeat reads avoid the disk tier.
	_ = c.memory.Set(ctx, key, entry)
	return entry, true
}

// Set writes both tiers. The disk write rewrites the snapshot synchronously.
func (c *TieredCache) Set(ctx context.Context, key string, entry Entry) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := c.memory.Set(ctx, key, entry); err != nil {
		return err
	}
	return c.disk.Set(ctx, key, entry)
}

// Delete removes the key from both tiers.
func (c *TieredCache) Delete(ctx context.Context, key string) error {
	if err := c.memory.Delete(ctx, key); err != nil {
		return err
	}
	return c.disk.Delete(ctx, key)
}

// Purge drops both tiers, removing the snapshot file.
func (c *TieredCache) Purge() error {
	c.memory.Purge()
	return c.disk.Purge()
}

// Ensure TieredCache implements Cache
var _ Cache = (*TieredCache)(nil)
