// Package cache stores compressed artifacts keyed by a digest of their
// input, so recompressing an unchanged document is a read instead of a
// full pipeline run.
//
// Backends:
//   - file: entries as JSON files under a directory (CLI default)
//   - redis: shared cache for batch evaluation fleets
//   - null: caching disabled
//
// Keys are derived with [Key] from the input bytes and the compression
// options, so a cache never returns an artifact produced with different
// settings.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrBackend is returned when a cache backend fails in a way that is not
// a miss. Callers usually log it and continue uncached.
var ErrBackend = errors.New("cache backend error")

// Cache is the interface all backends implement. A miss is reported via
// the bool, not an error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key derives the cache key for an input document compressed with the
// given option fingerprint (e.g. "repair,m=1.22"). The full SHA-256 is
// kept to make collisions a non-concern.
func Key(input []byte, optsFingerprint string) string {
	h := sha256.New()
	h.Write(input)
	h.Write([]byte{0})
	h.Write([]byte(optsFingerprint))
	return "artifact:" + hex.EncodeToString(h.Sum(nil))
}

// Scoped wraps a cache with a key prefix, isolating namespaces that
// share one backend.
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped creates a prefixed view of inner.
func NewScoped(inner Cache, prefix string) *Scoped {
	return &Scoped{inner: inner, prefix: prefix}
}

func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

func (s *Scoped) Close() error { return s.inner.Close() }

var _ Cache = (*Scoped)(nil)

// NullCache is a no-op cache that never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return &NullCache{} }

// Get always returns a cache miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error { return nil }

// Close does nothing.
func (c *NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)

// wrapBackendErr tags backend failures so callers can distinguish them
// from bad keys.
func wrapBackendErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrBackend, op, err)
}
