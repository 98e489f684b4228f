package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func snapshotPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), DefaultSnapshotFile)
}

func TestDiskCache_PersistsAcrossInstances(t *testing.T) {
	path := snapshotPath(t)
	ctx := context.Background()

	disk := NewDiskCache(path)
	value := []byte(`{"name":"Thunderfury"}`)
	if err := disk.Set(ctx, "req:u:item", NewEntry(value, time.Hour)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A fresh instance simulates a process restart.
	reloaded := NewDiskCache(path)
	entry, ok := reloaded.Get(ctx, "req:u:item")
	if !ok {
		t.Fatal("entry should survive a restart")
	}
	if !bytes.Equal(entry.Value, value) {
		t.Errorf("Get returned %q, want %q", entry.Value, value)
	}
}

func TestDiskCache_RestartDropsExpired(t *testing.T) {
	path := snapshotPath(t)
	ctx := context.Background()

	disk := NewDiskCache(path)
	if err := disk.Set(ctx, "req:u:stale", NewEntry([]byte(`1`), 20*time.Millisecond)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := disk.Set(ctx, "req:u:fresh", NewEntry([]byte(`2`), time.Hour)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	reloaded := NewDiskCache(path)
	if _, ok := reloaded.Get(ctx, "req:u:stale"); ok {
		t.Error("expired entry should be a miss after restart")
	}
	if _, ok := reloaded.Get(ctx, "req:u:fresh"); !ok {
		t.Error("unexpired entry should survive restart")
	}

	// The expired read evicted the entry and rewrote the snapshot.
	if got := reloaded.Len(); got != 1 {
		t.Errorf("Len = %d after expired eviction, want 1", got)
	}
}

func TestDiskCache_MissingSnapshotIsEmpty(t *testing.T) {
	disk := NewDiskCache(filepath.Join(t.TempDir(), "never-written.json"))

	if _, ok := disk.Get(context.Background(), "req:u:any"); ok {
		t.Error("missing snapshot should behave as an empty cache")
	}
	if err := disk.LoadError(); err != nil {
		t.Errorf("missing snapshot should not count as a load error, got %v", err)
	}
}

func TestDiskCache_CorruptSnapshotDiscarded(t *testing.T) {
	path := snapshotPath(t)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	disk := NewDiskCache(path)
	ctx := context.Background()

	if _, ok := disk.Get(ctx, "req:u:any"); ok {
		t.Error("corrupt snapshot should behave as an empty cache")
	}
	if err := disk.LoadError(); err == nil {
		t.Error("corrupt snapshot should be reported by LoadError")
	}

	// The cache must remain usable after discarding the snapshot.
	if err := disk.Set(ctx, "req:u:new", NewEntry([]byte(`1`), time.Hour)); err != nil {
		t.Fatalf("Set after corrupt load failed: %v", err)
	}
	if _, ok := disk.Get(ctx, "req:u:new"); !ok {
		t.Error("entry written after corrupt load should be readable")
	}
}

func TestDiskCache_DeleteAndPurge(t *testing.T) {
	path := snapshotPath(t)
	ctx := context.Background()

	disk := NewDiskCache(path)
	if err := disk.Set(ctx, "req:u:a", NewEntry([]byte(`1`), time.Hour)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := disk.Delete(ctx, "req:u:a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := disk.Get(ctx, "req:u:a"); ok {
		t.Error("Get after Delete should miss")
	}
	if err := disk.Delete(ctx, "req:u:a"); err != nil {
		t.Errorf("Delete should be idempotent, got %v", err)
	}

	if err := disk.Set(ctx, "req:u:b", NewEntry([]byte(`2`), time.Hour)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := disk.Purge(); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Purge should remove the snapshot file")
	}
	if _, ok := disk.Get(ctx, "req:u:b"); ok {
		t.Error("Get after Purge should miss")
	}
}
