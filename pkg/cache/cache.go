// Package cache stores lowered material graphs between export runs.
//
// An export of an unchanged material against an unchanged manifest with the
// same options yields the same target graph, so the export driver keys the
// serialized graph by a hash of those inputs. Backends:
//
//   - [FileCache]: JSON entries under the XDG cache directory (CLI default)
//   - [MemoryCache]: a bounded in-process LRU
//   - [RedisCache]: a shared Redis instance for build farms
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored data and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// TTLMaterial bounds how long a lowered material graph is reused.
const TTLMaterial = 7 * 24 * time.Hour

// MaterialKeyOpts are the export options that change a lowered graph.
type MaterialKeyOpts struct {
	Strict     bool `json:"strict"`
	ForceUnlit bool `json:"force_unlit"`
	// Assets digests the texture paths the material's images resolved to,
	// including which of them were missing.
	Assets string `json:"assets,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// MaterialKey keys a lowered material graph by the material's content
	// hash, the manifest digest and the options.
	MaterialKey(materialHash, manifestDigest string, opts MaterialKeyOpts) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// MaterialKey implements [Keyer].
func (DefaultKeyer) MaterialKey(materialHash, manifestDigest string, opts MaterialKeyOpts) string {
	return hashKey("material", materialHash, manifestDigest, opts)
}
