package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultSnapshotFile is the snapshot filename used under the cache directory.
const DefaultSnapshotFile = "armory-cache.json"

// DiskCache is the unbounded disk tier. The whole mapping is persisted as a
// single JSON snapshot, loaded lazily once per process and rewritten in full
// after every mutation. Crash safety comes from writing a temp file and
// atomically renaming it over the snapshot; no partial-write recovery beyond
// that is attempted.
//
// A missing snapshot is an empty cache. A corrupt snapshot is discarded and
// the cache proceeds as empty; corruption is never surfaced to callers.
// Single-process use is assumed: there is no cross-process file locking.
type DiskCache struct {
	mu      sync.Mutex
	path    string
	loaded  bool
	entries map[string]Entry
	loadErr error // inspectable via LoadError; never returned from Get
}

// NewDiskCache creates a disk tier persisting to the given snapshot path.
func NewDiskCache(path string) *DiskCache {
	return &DiskCache{path: path}
}

// Get retrieves an unexpired entry. An expired entry found here is evicted
// and the snapshot rewritten, bounding file growth.
func (c *DiskCache) Get(_ context.Context, key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadLocked()

	entry, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	if entry.Expired(time.Now()) {
		delete(c.entries, key)
		_ = c.flushLocked()
		return Entry{}, false
	}
	return entry, true
}

// Set stores an entry and synchronously rewrites the snapshot.
func (c *DiskCache) Set(_ context.Context, key string, entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadLocked()
	c.entries[key] = entry
	return c.flushLocked()
}

// Delete removes an entry and rewrites the snapshot. Idempotent.
func (c *DiskCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadLocked()
	if _, ok := c.entries[key]; !ok {
		return nil
	}
	delete(c.entries, key)
	return c.flushLocked()
}

// Purge drops every entry and removes the snapshot file. Equivalent to the
// user deleting the file by hand.
func (c *DiskCache) Purge() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)
	c.loaded = true
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cache: failed to remove snapshot: %w", err)
	}
	return nil
}

// Len returns the number of persisted entries, expired included.
func (c *DiskCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked()
	return len(c.entries)
}

// loadLocked reads the snapshot once per process. Absence means empty;
// unreadable or corrupt snapshots are discarded, never propagated.
func (c *DiskCache) loadLocked() {
	if c.loaded {
		return
	}
	c.loaded = true
	c.entries = make(map[string]Entry)

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.loadErr = err
		}
		return
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		// Corrupt snapshot - start over empty.
		c.loadErr = err
		c.entries = make(map[string]Entry)
	}
}

// LoadError reports whether the last snapshot load discarded data, and why.
// The cache recovers from load failures by starting empty; this exists so
// health checks can surface that it happened.
func (c *DiskCache) LoadError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked()
	return c.loadErr
}

// flushLocked rewrites the snapshot in full via temp file + atomic rename.
func (c *DiskCache) flushLocked() error {
	data, err := json.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("cache: failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: failed to create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("cache: failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("cache: failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: failed to replace snapshot: %w", err)
	}
	return nil
}

// Ensure DiskCache implements Cache
var _ Cache = (*DiskCache)(nil)
