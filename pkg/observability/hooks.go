// Package observability provides hooks for metrics and tracing around
// the compression pipeline.
//
// The core packages stay free of logging and metrics dependencies;
// instead they emit events through the hook interfaces defined here.
// Binaries register implementations at startup, libraries call the
// accessors. The default implementations do nothing.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCompressHooks(&myHooks{})
//	    // ... run
//	}
//
// Libraries emit events:
//
//	observability.Compress().OnRound(round, before, after, ratio)
package observability

import (
	"sync"
	"time"
)

// CompressHooks receives events from top tree construction and DAG
// building.
type CompressHooks interface {
	// OnConstructStart fires before the first constructor round.
	OnConstructStart(numNodes, numEdges int)

	// OnRound fires after each constructor round with the valid edge
	// counts before and after it and their ratio.
	OnRound(round, edgesBefore, edgesAfter int, ratio float64)

	// OnConstructDone fires when the tree has been reduced to a single
	// cluster.
	OnConstructDone(numClusters int, duration time.Duration)

	// OnDagDone fires after hash-consing with the resulting DAG size.
	OnDagDone(numNodes, numEdges int, duration time.Duration)
}

// CacheHooks receives events from artifact cache operations.
type CacheHooks interface {
	OnCacheHit(keyType string)
	OnCacheMiss(keyType string)
	OnCacheSet(keyType string, size int)
}

// NoopCompressHooks is a no-op implementation of CompressHooks.
type NoopCompressHooks struct{}

func (NoopCompressHooks) OnConstructStart(int, int)          {}
func (NoopCompressHooks) OnRound(int, int, int, float64)     {}
func (NoopCompressHooks) OnConstructDone(int, time.Duration) {}
func (NoopCompressHooks) OnDagDone(int, int, time.Duration)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(string)      {}
func (NoopCacheHooks) OnCacheMiss(string)     {}
func (NoopCacheHooks) OnCacheSet(string, int) {}

var (
	compressHooks CompressHooks = NoopCompressHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetCompressHooks registers custom compression hooks.
// Call once at startup, before compressing.
func SetCompressHooks(h CompressHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		compressHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// Call once at startup, before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Compress returns the registered compression hooks.
func Compress() CompressHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return compressHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores the no-op defaults. Primarily useful for tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	compressHooks = NoopCompressHooks{}
	cacheHooks = NoopCacheHooks{}
}
