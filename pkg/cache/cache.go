// Package cache provides the byte cache used for downloaded fonts.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under the user cache directory (CLI)
//   - [RedisCache]: a shared Redis instance (server mode, several workers)
//   - [NullCache]: never stores anything (tests, --no-cache)
//
// Keys are produced by a [Keyer] so that every backend sees the same layout.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional TTL.
//
// Get reports a miss with (nil, false, nil); an error is only returned when
// the backend itself fails. A TTL of 0 means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs.
const (
	// TTLFont applies to downloaded font files. Google Fonts URLs are
	// versioned, so fonts rarely change.
	TTLFont = 30 * 24 * time.Hour

	// TTLHTTP applies to intermediate HTTP responses such as the CSS
	// stylesheet that points to the font file.
	TTLHTTP = 24 * time.Hour
)

// Keyer generates cache keys.
type Keyer interface {
	// HTTPKey generates a key for a raw HTTP response body.
	HTTPKey(namespace, key string) string

	// FontKey generates a key for a font file identified by family and weight.
	FontKey(family string, weight int) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key layout.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// FontKey returns "font:<sha256(family, weight)>".
func (DefaultKeyer) FontKey(family string, weight int) string {
	return hashKey("font", family, weight)
}

// ScopedKeyer prefixes every key, so several deployments can share one
// Redis instance without collisions.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer falls back to [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// FontKey generates a prefixed key for font caching.
func (k *ScopedKeyer) FontKey(family string, weight int) string {
	return k.prefix + k.inner.FontKey(family, weight)
}
