package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tidehollow/loremaster/cache"
)

func TestCacheDirChecker(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	checker := NewCacheDirChecker(dir)

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("writable dir = %v (%s), want healthy", result.Status, result.Message)
	}
	if _, err := os.Stat(filepath.Join(dir, ".health-probe")); !os.IsNotExist(err) {
		t.Error("probe file left behind")
	}
}

func TestCacheDirChecker_Unwritable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are meaningless as root")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	defer os.Chmod(dir, 0o755)

	checker := NewCacheDirChecker(filepath.Join(dir, "sub"))
	if result := checker.Check(context.Background()); result.Status != StatusUnhealthy {
		t.Errorf("unwritable dir = %v, want unhealthy", result.Status)
	}
}

func TestSnapshotChecker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	disk := cache.NewDiskCache(path)
	ctx := context.Background()

	if err := disk.Set(ctx, "req:a:0000000000000000", cache.NewEntry([]byte(`{}`), time.Hour)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	checker := NewSnapshotChecker(disk)
	result := checker.Check(ctx)
	if result.Status != StatusHealthy {
		t.Errorf("clean snapshot = %v (%s), want healthy", result.Status, result.Message)
	}
}

func TestSnapshotChecker_CorruptSnapshotIsDegraded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt snapshot: %v", err)
	}

	disk := cache.NewDiskCache(path)
	// Force the lazy load.
	disk.Get(context.Background(), "req:a:0000000000000000")

	checker := NewSnapshotChecker(disk)
	if result := checker.Check(context.Background()); result.Status != StatusDegraded {
		t.Errorf("corrupt snapshot = %v, want degraded", result.Status)
	}
}

func TestUpstreamChecker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	checker := NewUpstreamChecker(srv.Client(), srv.URL)
	result := checker.Check(context.Background())
	// Any HTTP answer means the host is reachable.
	if result.Status != StatusHealthy {
		t.Errorf("answering upstream = %v (%s), want healthy", result.Status, result.Message)
	}
}

func TestUpstreamChecker_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	client := srv.Client()
	srv.Close()

	checker := NewUpstreamChecker(client, url)
	if result := checker.Check(context.Background()); result.Status != StatusUnhealthy {
		t.Errorf("dead upstream = %v, want unhealthy", result.Status)
	}
}
