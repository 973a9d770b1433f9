// Package cache stores rendered artifacts and computed layouts.
//
// # Backends
//
//   - [FileCache]: JSON-wrapped files under ~/.cache/crimeviz (CLI default)
//   - [RedisCache]: shared cache for `crimeviz serve` deployments
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys are built by a [Keyer] from a content hash plus every option that
// changes the output, so a layout or artifact is reused only when it would
// be byte-identical:
//
//	key := keyer.ArtifactKey(layoutHash, cache.ArtifactKeyOpts{Kind: "pie", Format: "svg"})
//
// [ScopedKeyer] prefixes every key, for separating tenants or environments
// that share one Redis.
package cache

import (
	"context"
	"time"
)

// Default lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry. A ttl of 0 never expires.
type Cache interface {
	// Get returns the value and true on a hit, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LayoutKeyOpts are the inputs of a layout besides its data.
type LayoutKeyOpts struct {
	Kind    string `json:"kind"` // "pie" or "bar"
	Options any    `json:"options"`
}

// ArtifactKeyOpts are the inputs of a rendered artifact besides its layout.
type ArtifactKeyOpts struct {
	Kind    string            `json:"kind"`
	Format  string            `json:"format"`
	Title   string            `json:"title,omitempty"`
	Name    string            `json:"name,omitempty"` // chart heading, HTML only
	Scale   float64           `json:"scale,omitempty"`
	Native  bool              `json:"native,omitempty"` // PNG without rsvg
	Palette map[string]string `json:"palette,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	LayoutKey(dataHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey hashes the data hash together with the layout options.
func (DefaultKeyer) LayoutKey(dataHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", dataHash, opts)
}

// ArtifactKey hashes the layout hash together with the render options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
