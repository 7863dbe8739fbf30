package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrCacheMiss is returned by helpers that need a value and found none.
	ErrCacheMiss = errors.New("cache miss")

	// ErrClosed is returned when a closed cache is used.
	ErrClosed = errors.New("cache closed")
)
