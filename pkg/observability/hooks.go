// Package observability provides hooks for metrics and tracing.
//
// Instrumentation is optional: consumers register hooks at startup and the
// export driver reports classification, lowering and cache events to them.
// The defaults do nothing, so the library carries no dependency on any
// metrics backend.
//
// Register hooks before the first export:
//
//	func main() {
//	    observability.SetExportHooks(&myExportHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Export().OnLowerStart(ctx, material)
//	// ... lower ...
//	observability.Export().OnLowerComplete(ctx, material, nodes, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// ExportHooks receives events from the export driver.
type ExportHooks interface {
	// OnClassify reports the compatibility gate over all materials.
	OnClassify(ctx context.Context, materials, errors, warnings int, duration time.Duration)

	// Per-material lowering events.
	OnLowerStart(ctx context.Context, material string)
	OnLowerComplete(ctx context.Context, material string, nodes int, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnClassify(context.Context, int, int, int, time.Duration)           {}
func (NoopExportHooks) OnLowerStart(context.Context, string)                               {}
func (NoopExportHooks) OnLowerComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	exportHooks ExportHooks = NoopExportHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetExportHooks registers custom export hooks. A nil h is ignored.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	exportHooks = NoopExportHooks{}
	cacheHooks = NoopCacheHooks{}
}
