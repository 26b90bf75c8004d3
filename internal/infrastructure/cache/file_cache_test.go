package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/sdkassist/internal/domain"
)

func newTestCache(t *testing.T, ttl string) *FileCache {
	t.Helper()
	return NewFileCache(domain.CacheSettings{TTL: ttl, Dir: t.TempDir()})
}

func TestFileCacheRoundTrip(t *testing.T) {
	c := newTestCache(t, "1h")

	payload := json.RawMessage(`{"name":"requests","version":"2.31.0"}`)
	if err := c.Put("package_info_requests", payload); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok := c.Get("package_info_requests")
	if !ok {
		t.Fatal("Get() returned miss for fresh entry")
	}
	if diff := cmp.Diff(payload, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestFileCacheMissForUnknownKey(t *testing.T) {
	c := newTestCache(t, "1h")
	if _, ok := c.Get("never-written"); ok {
		t.Fatal("Get() returned hit for unknown key")
	}
}

func TestFileCacheExpiredEntryReadsAsMiss(t *testing.T) {
	c := newTestCache(t, "1h")
	if err := c.Put("stale", json.RawMessage(`"v"`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	// Rewrite the envelope with a timestamp beyond the TTL. The file stays
	// on disk; only the freshness check must reject it.
	path := c.pathFor("stale")
	envelope := domain.CacheEnvelope{
		Data:     json.RawMessage(`"v"`),
		CachedAt: time.Now().Add(-2 * time.Hour),
	}
	data, _ := json.Marshal(envelope)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("rewrite envelope: %v", err)
	}

	if _, ok := c.Get("stale"); ok {
		t.Fatal("Get() returned hit for expired entry")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expired file should remain until swept: %v", err)
	}
}

func TestFileCacheCorruptFileReadsAsMiss(t *testing.T) {
	c := newTestCache(t, "1h")
	if err := c.Put("corrupt", json.RawMessage(`"v"`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := os.WriteFile(c.pathFor("corrupt"), []byte("{{{not json"), 0o644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	if _, ok := c.Get("corrupt"); ok {
		t.Fatal("Get() returned hit for corrupt file")
	}
}

func TestFileCacheLastWriteWins(t *testing.T) {
	c := newTestCache(t, "1h")
	if err := c.Put("k", json.RawMessage(`"first"`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := c.Put("k", json.RawMessage(`"second"`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, ok := c.Get("k")
	if !ok || string(got) != `"second"` {
		t.Fatalf("Get() = %s, %v; want \"second\", true", got, ok)
	}
}

func TestFileCacheSweepRemovesStaleAndCorrupt(t *testing.T) {
	c := newTestCache(t, "1h")

	if err := c.Put("fresh", json.RawMessage(`1`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	old, _ := json.Marshal(domain.CacheEnvelope{
		Data:     json.RawMessage(`2`),
		CachedAt: time.Now().Add(-48 * time.Hour),
	})
	if err := os.WriteFile(c.pathFor("old"), old, 0o644); err != nil {
		t.Fatalf("write old entry: %v", err)
	}
	if err := os.WriteFile(filepath.Join(c.Dir(), "broken.json"), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write corrupt entry: %v", err)
	}

	removed, err := c.Sweep("24h")
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if removed != 2 {
		t.Fatalf("Sweep() removed %d files, want 2", removed)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Fatal("Sweep() removed a fresh entry")
	}
}

func TestFileCacheSweepRejectsBadDuration(t *testing.T) {
	c := newTestCache(t, "1h")
	if _, err := c.Sweep("yesterday"); err == nil {
		t.Fatal("Sweep() accepted invalid duration")
	}
}
