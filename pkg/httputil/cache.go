package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [ResponseCache.Get] when an entry exists but is
// older than the TTL. The stale body is still returned so callers can fall
// back to it when the source is unreachable.
var ErrExpired = errors.New("cached response expired")

// ResponseCache stores response bodies on disk, one file per key named by
// the SHA-256 of the key. Freshness is judged by file modification time;
// a TTL of 0 never expires.
//
// Separate processes may share a directory. A single ResponseCache is not
// synchronised; callers serialise access to the same key.
type ResponseCache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// NewResponseCache creates a cache in dir, or ~/.cache/crimeviz/http when
// dir is empty. The directory is created if needed.
func NewResponseCache(dir string, ttl time.Duration) (*ResponseCache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "crimeviz", "http")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ResponseCache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *ResponseCache) Dir() string { return c.dir }

// TTL returns the entry lifetime.
func (c *ResponseCache) TTL() time.Duration { return c.ttl }

// Get returns the body stored under key.
//
//   - (body, true, nil): fresh hit
//   - (nil, false, nil): miss
//   - (body, false, ErrExpired): stale entry
func (c *ResponseCache) Get(key string) ([]byte, bool, error) {
	path := c.keyPath(key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return data, false, ErrExpired
	}
	return data, true, nil
}

// Set stores body under key, refreshing its modification time.
func (c *ResponseCache) Set(key string, body []byte) error {
	return os.WriteFile(c.keyPath(key), body, 0o644)
}

// Namespace returns a view that prefixes every key with prefix.
// Views share the directory and TTL and can be chained.
func (c *ResponseCache) Namespace(prefix string) *ResponseCache {
	return &ResponseCache{dir: c.dir, ttl: c.ttl, prefix: c.prefix + prefix}
}

func (c *ResponseCache) keyPath(key string) string {
	h := sha256.Sum256([]byte(c.prefix + key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
