package query

import (
	"context"
	"net/url"
	"time"
)

// Key identifies one logical query: an endpoint namespace plus the
// parameters that shape its result. Equal parameters always produce equal
// keys regardless of construction order.
type Key struct {
	Namespace string
	Params    url.Values
}

// NewKey builds a key for a namespace. Params may be nil for parameterless
// queries.
func NewKey(namespace string, params url.Values) Key {
	return Key{Namespace: namespace, Params: params}
}

// String renders the canonical cache key. url.Values.Encode sorts by key,
// which is what makes the rendering deterministic.
func (k Key) String() string {
	if len(k.Params) == 0 {
		return k.Namespace
	}
	return k.Namespace + "?" + k.Params.Encode()
}

// Options shape a single cache read.
type Options struct {
	// TTL is the freshness window. Zero falls back to the namespace TTL
	// configured on the cache, then to the cache default.
	TTL time.Duration
	// ForceRefresh skips the cached value and fetches from the backend,
	// the manual refresh button behavior.
	ForceRefresh bool
}

// Meta describes how a value was served.
type Meta struct {
	Stale      bool
	FetchedAt  time.Time
	Refreshing bool
}

// Result pairs a typed value with its serving metadata.
type Result[T any] struct {
	Value      T
	Stale      bool
	FetchedAt  time.Time
	Refreshing bool
}

// FetchFunc loads a value from the backend.
type FetchFunc func(ctx context.Context) (any, error)

// WarmSpec pairs a key with its fetch so startup can prime the cache.
type WarmSpec struct {
	Key   Key
	TTL   time.Duration
	Fetch FetchFunc
}
