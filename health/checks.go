package health

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tidehollow/loremaster/cache"
)

// CacheDirChecker verifies the cache directory exists and is writable.
type CacheDirChecker struct {
	dir string
}

// NewCacheDirChecker creates a checker for the given cache directory.
func NewCacheDirChecker(dir string) *CacheDirChecker {
	return &CacheDirChecker{dir: dir}
}

// Name returns the name of this checker.
func (c *CacheDirChecker) Name() string { return "cache-dir" }

// Check probes writability by creating and removing a marker file.
func (c *CacheDirChecker) Check(_ context.Context) Result {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return Unhealthy("cache directory is not creatable", err)
	}
	probe := filepath.Join(c.dir, ".health-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return Unhealthy("cache directory is not writable", err)
	}
	_ = os.Remove(probe)
	return Healthy("cache directory writable")
}

// SnapshotChecker reports whether the disk snapshot loaded cleanly. A
// discarded snapshot is degraded, not unhealthy: the client recovers by
// starting with an empty cache.
type SnapshotChecker struct {
	disk *cache.DiskCache
}

// NewSnapshotChecker creates a checker over the given disk tier.
func NewSnapshotChecker(disk *cache.DiskCache) *SnapshotChecker {
	return &SnapshotChecker{disk: disk}
}

// Name returns the name of this checker.
func (c *SnapshotChecker) Name() string { return "cache-snapshot" }

// Check reports the snapshot load outcome and entry count.
func (c *SnapshotChecker) Check(_ context.Context) Result {
	if err := c.disk.LoadError(); err != nil {
		return Degraded(fmt.Sprintf("snapshot discarded, starting empty: %v", err))
	}
	return Healthy(fmt.Sprintf("%d entries", c.disk.Len()))
}

// UpstreamChecker verifies the game-data API host answers at all. The probe
// goes around the armory client on purpose: a liveness ping must not spend
// rate-limit tokens or pollute the cache.
type UpstreamChecker struct {
	client *http.Client
	url    string
}

// NewUpstreamChecker creates a checker that probes the given URL.
func NewUpstreamChecker(client *http.Client, url string) *UpstreamChecker {
	if client == nil {
		client = http.DefaultClient
	}
	return &UpstreamChecker{client: client, url: url}
}

// Name returns the name of this checker.
func (c *UpstreamChecker) Name() string { return "upstream-api" }

// Check issues a single GET. Any HTTP response counts as reachable; only
// transport failures are unhealthy.
func (c *UpstreamChecker) Check(ctx context.Context) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Unhealthy("invalid upstream URL", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return Unhealthy("upstream unreachable", err)
	}
	resp.Body.Close()
	return Healthy(fmt.Sprintf("upstream answered %d", resp.StatusCode))
}
