package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/pkg/filesystem"
	"github.com/doeshing/sdkassist/internal/ports"
)

// FileCache stores opaque JSON payloads as one file per key under a cache
// directory. Filenames are the hex md5 digest of the original key; file
// content is a {data, cached_at} envelope. Reads fail soft: missing files,
// undecodable envelopes and entries older than the TTL all read as misses.
type FileCache struct {
	dir string
	ttl time.Duration
	mu  sync.Mutex
}

// NewFileCache returns a cache rooted under ~/.sdkassist/cache (or the
// configured directory) with the configured TTL.
func NewFileCache(settings domain.CacheSettings) *FileCache {
	dir := settings.Dir
	if dir == "" {
		dir = filepath.Join(filesystem.UserHomeDir(), ".sdkassist", "cache")
	}
	return &FileCache{
		dir: dir,
		ttl: settings.TTLDuration(),
	}
}

// Get retrieves a fresh payload. The second return is false on any miss.
func (c *FileCache) Get(key string) (json.RawMessage, bool) {
	if key == "" {
		return nil, false
	}
	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, false
	}
	var envelope domain.CacheEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, false
	}
	if c.ttl > 0 && time.Since(envelope.CachedAt) >= c.ttl {
		return nil, false
	}
	return envelope.Data, true
}

// Put stores a payload, overwriting any previous entry for the key.
// Concurrent writers to the same key race; last write wins.
func (c *FileCache) Put(key string, payload json.RawMessage) error {
	if key == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(domain.CacheEnvelope{
		Data:     payload,
		CachedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(c.pathFor(key), data, 0o644)
}

// Sweep deletes entries whose stored timestamp is older than maxAge, plus
// any file that cannot be parsed (corrupt-file self-healing). Returns the
// number of files removed.
func (c *FileCache) Sweep(maxAge string) (int, error) {
	age, err := time.ParseDuration(maxAge)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	files, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		path := filepath.Join(c.dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var envelope domain.CacheEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil || time.Since(envelope.CachedAt) > age {
			if os.Remove(path) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Entries lists stored cache files (best-effort).
func (c *FileCache) Entries() ([]ports.CacheEntryInfo, error) {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []ports.CacheEntryInfo
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		info := ports.CacheEntryInfo{File: f.Name()}
		if fi, err := f.Info(); err == nil {
			info.Size = fi.Size()
		}
		data, err := os.ReadFile(filepath.Join(c.dir, f.Name()))
		if err == nil {
			var envelope domain.CacheEnvelope
			if json.Unmarshal(data, &envelope) == nil {
				info.CachedAt = envelope.CachedAt.Format(time.RFC3339)
			}
		}
		entries = append(entries, info)
	}
	return entries, nil
}

// Dir exposes the cache directory path.
func (c *FileCache) Dir() string {
	return c.dir
}

// Clear removes all cached entries.
func (c *FileCache) Clear() error {
	return os.RemoveAll(c.dir)
}

func (c *FileCache) pathFor(key string) string {
	digest := md5.Sum([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(digest[:])+".json")
}

var _ ports.CacheRepository = (*FileCache)(nil)
