// Package cache stores finished artifacts (exported PNGs, layout JSON) keyed
// by a hash of everything that determines them.
//
// Three backends implement [Cache]:
//   - [NullCache] never stores anything (caching disabled)
//   - [FileCache] keeps entries as files, used by the CLI
//   - [RedisCache] shares entries between export service instances
//
// Keys come from a [Keyer] so the CLI and the HTTP service agree on them.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default time-to-live values.
const (
	ExportTTL = 7 * 24 * time.Hour
	LayoutTTL = 24 * time.Hour
)

// ExportKeyOpts are the export settings that change the output bytes.
type ExportKeyOpts struct {
	WidthCm float64 `json:"width_cm"`
	DPI     int     `json:"dpi"`
	Palette int     `json:"palette"`
}

// LayoutKeyOpts are the inputs of a layout computation.
type LayoutKeyOpts struct {
	Template    string  `json:"template"`
	Count       int     `json:"count"`
	AspectRatio float64 `json:"aspect_ratio"`
	Word        string  `json:"word,omitempty"`
	Style       any     `json:"style,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ExportKey keys an exported image by the hash of its scene inputs.
	ExportKey(sceneHash string, opts ExportKeyOpts) string
	// LayoutKey keys a layout result.
	LayoutKey(opts LayoutKeyOpts) string
}

// DefaultKeyer hashes key parts with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ExportKey implements Keyer.
func (DefaultKeyer) ExportKey(sceneHash string, opts ExportKeyOpts) string {
	return hashKey("export", sceneHash, opts)
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(opts LayoutKeyOpts) string {
	return hashKey("layout", opts)
}
