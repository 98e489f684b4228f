package armory

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"

	"github.com/tidehollow/loremaster/cache"
	"github.com/tidehollow/loremaster/observe"
	"github.com/tidehollow/loremaster/resilience"
)

// Default bucket shapes. The global bucket bounds the process against the
// API's request budget; the per-caller bucket keeps one user from draining
// the shared budget.
var (
	DefaultGlobalBucket = resilience.BucketConfig{Capacity: 50, Rate: 10}
	DefaultCallerBucket = resilience.BucketConfig{Capacity: 10, Rate: 2}
)

// Config configures a Client. The zero value is usable: it caches under the
// user cache directory, applies the default TTL policy and bucket shapes,
// and runs without telemetry.
type Config struct {
	// HTTPClient performs the actual requests. Default: http.DefaultClient.
	HTTPClient *http.Client

	// CacheDir is the directory holding the disk snapshot.
	// Default: <user cache dir>/loremaster.
	CacheDir string

	// MemorySize bounds the in-memory tier. Default: cache.DefaultMemorySize.
	MemorySize int

	// Policy resolves TTLs. Zero value: cache.DefaultPolicy().
	Policy cache.Policy

	// GlobalBucket shapes the process-wide rate limit. Zero value:
	// DefaultGlobalBucket.
	GlobalBucket resilience.BucketConfig

	// CallerBucket shapes each per-caller rate limit. Zero value:
	// DefaultCallerBucket.
	CallerBucket resilience.BucketConfig

	// Retry configures the retry executor. Zero values use the executor
	// defaults (4 attempts, 1s initial, 8s cap).
	Retry resilience.RetryConfig

	// DefaultNamespace is added to requests that carry no namespace.
	DefaultNamespace string

	// DefaultLocale is added to requests that carry no locale.
	DefaultLocale string

	// CoalesceRequests lets concurrent identical requests share a single
	// network call and token charge. Off by default: each caller pays its
	// own token and round trip.
	CoalesceRequests bool

	// Observer supplies telemetry. Default: observe.NewNoop().
	Observer observe.Observer
}

// Client mediates every outbound call to the game-data API. It owns the
// two-tier cache, the token-bucket registry, and the retry executor; all
// call sites share one Client per process rather than package globals.
type Client struct {
	store    *cache.TieredCache
	keyer    cache.Keyer
	policy   cache.Policy
	buckets  *resilience.Registry
	http     *http.Client
	retryCfg resilience.RetryConfig

	logger  observe.Logger
	metrics observe.Metrics
	tracer  observe.Tracer

	flight   singleflight.Group
	coalesce bool

	defaultNamespace string
	defaultLocale    string
	snapshotPath     string
	disk             *cache.DiskCache
}

// New constructs a Client from the config.
func New(cfg Config) (*Client, error) {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.CacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("armory: no cache dir available: %w", err)
		}
		cfg.CacheDir = filepath.Join(base, "loremaster")
	}
	if cfg.Policy == (cache.Policy{}) {
		cfg.Policy = cache.DefaultPolicy()
	}
	if cfg.GlobalBucket == (resilience.BucketConfig{}) {
		cfg.GlobalBucket = DefaultGlobalBucket
	}
	if cfg.CallerBucket == (resilience.BucketConfig{}) {
		cfg.CallerBucket = DefaultCallerBucket
	}
	if cfg.Observer == nil {
		cfg.Observer = observe.NewNoop()
	}

	memory, err := cache.NewMemoryCache(cfg.MemorySize)
	if err != nil {
		return nil, err
	}
	snapshotPath := filepath.Join(cfg.CacheDir, cache.DefaultSnapshotFile)
	disk := cache.NewDiskCache(snapshotPath)

	metrics, err := observe.NewMetrics(cfg.Observer.Meter())
	if err != nil {
		return nil, fmt.Errorf("armory: failed to create metrics: %w", err)
	}

	return &Client{
		store:            cache.NewTieredCache(memory, disk),
		keyer:            cache.NewDefaultKeyer(),
		policy:           cfg.Policy,
		buckets:          resilience.NewRegistry(cfg.GlobalBucket, cfg.CallerBucket),
		http:             cfg.HTTPClient,
		retryCfg:         cfg.Retry,
		logger:           cfg.Observer.Logger(),
		metrics:          metrics,
		tracer:           observe.NewTracer(cfg.Observer.Tracer()),
		coalesce:         cfg.CoalesceRequests,
		defaultNamespace: cfg.DefaultNamespace,
		defaultLocale:    cfg.DefaultLocale,
		snapshotPath:     snapshotPath,
		disk:             disk,
	}, nil
}

// Disk exposes the disk tier for health checks. Read-only use only; writes
// go through the cache composition.
func (c *Client) Disk() *cache.DiskCache {
	return c.disk
}

// SnapshotPath returns the disk snapshot location. Deleting the file is a
// full cache flush; absence on the next start is treated as an empty cache.
func (c *Client) SnapshotPath() string {
	return c.snapshotPath
}

// Invalidate drops the cached entry for the given request, if any.
func (c *Client) Invalidate(ctx context.Context, rawURL string, opts Options) error {
	req, err := c.prepare(rawURL, opts)
	if err != nil {
		return err
	}
	return c.store.Delete(ctx, req.key)
}

// Flush drops both cache tiers and removes the disk snapshot.
func (c *Client) Flush() error {
	return c.store.Purge()
}
