// Package cache stores computed layouts and rendered artifacts.
//
// # Overview
//
// Building a scene is cheap for small traces but rendering PNG or PDF output
// shells out to librsvg, and the HTTP server rebuilds the same layout for
// every client with the same viewport. The [Cache] interface lets the
// pipeline skip both when the inputs have not changed.
//
// Backends:
//
//   - [FileCache]: entries as JSON files under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: never stores anything (--no-cache)
//
// # Keys
//
// A [Keyer] derives keys from content hashes plus every option that affects
// the output, so a stale entry is never served for different options:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(cache.Hash(traceJSON), cache.LayoutKeyOpts{Width: 960, Height: 540})
//
// [ScopedKeyer] prefixes every key, which keeps caches of separate
// deployments apart when they share one Redis.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the data stored under key. A missing or expired entry is
	// reported as (nil, false, nil); err is reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Entry lifetimes.
const (
	// TTLLayout is how long a computed layout is kept. Layouts are pure
	// functions of their key, so this only bounds disk usage.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact is how long a rendered SVG, PNG, PDF, JSON or DOT output
	// is kept.
	TTLArtifact = 24 * time.Hour
)
