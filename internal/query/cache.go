package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/scoutdeck/scoutdeck/internal/metrics"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// entry is one cached result.
type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache is a stale-while-revalidate read cache over the stats backend.
// It is created once at startup and passed explicitly to everything that
// reads through it; there is no package-level instance.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	gens       map[string]uint64
	refreshing map[string]bool

	group   singleflight.Group
	metrics metrics.Metrics

	now            func() time.Time
	defaultTTL     time.Duration
	ttls           map[string]time.Duration
	maxRetries     uint64
	retryBackoff   time.Duration
	refreshTimeout time.Duration
}

// CacheOption customises a Cache.
type CacheOption func(*Cache)

// WithClock swaps the time source; tests use it to age entries instantly.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// WithDefaultTTL sets the freshness window for namespaces without their own.
func WithDefaultTTL(d time.Duration) CacheOption {
	return func(c *Cache) { c.defaultTTL = d }
}

// WithTTLs sets per-namespace freshness windows.
func WithTTLs(ttls map[string]time.Duration) CacheOption {
	return func(c *Cache) {
		for ns, d := range ttls {
			c.ttls[ns] = d
		}
	}
}

// WithMaxRetries sets how many times a failed blocking fetch is retried.
func WithMaxRetries(n uint64) CacheOption {
	return func(c *Cache) { c.maxRetries = n }
}

// WithRetryBackoff sets the pause between fetch attempts.
func WithRetryBackoff(d time.Duration) CacheOption {
	return func(c *Cache) { c.retryBackoff = d }
}

// New creates an empty cache.
func New(m metrics.Metrics, opts ...CacheOption) *Cache {
	c := &Cache{
		entries:        make(map[string]entry),
		gens:           make(map[string]uint64),
		refreshing:     make(map[string]bool),
		metrics:        m,
		now:            time.Now,
		defaultTTL:     2 * time.Minute,
		ttls:           defaultTTLs(),
		maxRetries:     1,
		retryBackoff:   250 * time.Millisecond,
		refreshTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get serves the key from cache when possible. A fresh entry is returned
// as-is; a stale entry is returned immediately while one background
// revalidation runs; a miss blocks on the fetch. Concurrent misses for the
// same key share a single in-flight fetch.
func (c *Cache) Get(ctx context.Context, key Key, opts Options, fetch FetchFunc) (any, Meta, error) {
	k := key.String()
	ttl := c.ttlFor(key.Namespace, opts.TTL)

	if !opts.ForceRefresh {
		c.mu.RLock()
		ent, ok := c.entries[k]
		c.mu.RUnlock()
		if ok {
			if c.now().Sub(ent.fetchedAt) < ttl {
				c.metrics.IncCacheHit(key.Namespace)
				return ent.value, Meta{FetchedAt: ent.fetchedAt}, nil
			}
			// Serve what we have; revalidation happens off the caller's path.
			c.metrics.IncCacheStale(key.Namespace)
			c.revalidate(key, k, fetch)
			return ent.value, Meta{Stale: true, FetchedAt: ent.fetchedAt, Refreshing: true}, nil
		}
	}

	c.metrics.IncCacheMiss(key.Namespace)
	value, fetchedAt, err := c.fetchAndStore(ctx, key, k, fetch)
	if err != nil {
		return nil, Meta{}, err
	}
	return value, Meta{FetchedAt: fetchedAt}, nil
}

// Lookup is the typed read path over Get.
func Lookup[T any](ctx context.Context, c *Cache, key Key, opts Options, fetch func(context.Context) (T, error)) (Result[T], error) {
	value, meta, err := c.Get(ctx, key, opts, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return Result[T]{}, err
	}
	typed, ok := value.(T)
	if !ok {
		return Result[T]{}, fmt.Errorf("cache entry for %s holds a %T", key, value)
	}
	return Result[T]{Value: typed, Stale: meta.Stale, FetchedAt: meta.FetchedAt, Refreshing: meta.Refreshing}, nil
}

// Invalidate drops every entry in the given namespaces and marks any
// in-flight fetches for them as discardable. It returns the number of
// entries dropped.
func (c *Cache) Invalidate(namespaces ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for k := range c.entries {
		if keyInNamespaces(k, namespaces) {
			delete(c.entries, k)
			dropped++
		}
	}
	// Bump generations for every key ever seen in these namespaces, so a
	// fetch that started before the invalidation cannot write back.
	for k := range c.gens {
		if keyInNamespaces(k, namespaces) {
			c.gens[k]++
		}
	}
	if dropped > 0 {
		c.metrics.AddInvalidations(dropped)
	}
	log.Debug("Invalidated cache namespaces", "namespaces", namespaces, "dropped", dropped)
	return dropped
}

// InvalidateKey drops a single entry.
func (c *Cache) InvalidateKey(key Key) {
	k := key.String()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[k]; ok {
		delete(c.entries, k)
		c.metrics.AddInvalidations(1)
	}
	c.gens[k]++
}

// Flush empties the cache.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := len(c.entries)
	c.entries = make(map[string]entry)
	for k := range c.gens {
		c.gens[k]++
	}
	if dropped > 0 {
		c.metrics.AddInvalidations(dropped)
	}
	log.Info("Flushed query cache", "dropped", dropped)
}

// Len reports how many entries are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Warm primes the cache concurrently. Individual failures surface in the
// returned error; entries that did load stay cached either way.
func (c *Cache) Warm(ctx context.Context, specs ...WarmSpec) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, spec := range specs {
		g.Go(func() error {
			if _, _, err := c.Get(ctx, spec.Key, Options{TTL: spec.TTL}, spec.Fetch); err != nil {
				return fmt.Errorf("warming %s: %w", spec.Key, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (c *Cache) ttlFor(namespace string, explicit time.Duration) time.Duration {
	if explicit > 0 {
		return explicit
	}
	if d, ok := c.ttls[namespace]; ok {
		return d
	}
	return c.defaultTTL
}

// fetchAndStore runs the blocking fetch path with bounded retry and
// singleflight dedup. The write-back is dropped if the key's generation
// moved while the fetch was in flight.
func (c *Cache) fetchAndStore(ctx context.Context, key Key, k string, fetch FetchFunc) (any, time.Time, error) {
	type fetched struct {
		value any
		at    time.Time
	}
	v, err, _ := c.group.Do(k, func() (any, error) {
		gen := c.generation(k)
		start := c.now()

		var value any
		backoff := retry.WithMaxRetries(c.maxRetries, retry.NewConstant(c.retryBackoff))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			var ferr error
			value, ferr = fetch(ctx)
			if ferr != nil {
				log.Debug("Fetch attempt failed", "key", k, "error", ferr)
				// The backend answers a 4xx the same way every time.
				var apiErr *statsapi.APIError
				if errors.As(ferr, &apiErr) && !apiErr.Temporary() {
					return ferr
				}
				return retry.RetryableError(ferr)
			}
			return nil
		})
		c.metrics.ObserveFetchDuration(key.Namespace, c.now().Sub(start).Seconds())
		if err != nil {
			return nil, err
		}
		at := c.store(k, gen, value)
		return fetched{value: value, at: at}, nil
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	f := v.(fetched)
	return f.value, f.at, nil
}

// revalidate refreshes one stale key in the background. At most one
// revalidation per key runs at a time; the stale value stays served until
// a refresh succeeds.
func (c *Cache) revalidate(key Key, k string, fetch FetchFunc) {
	c.mu.Lock()
	if c.refreshing[k] {
		c.mu.Unlock()
		return
	}
	c.refreshing[k] = true
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.refreshing, k)
			c.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
		defer cancel()

		gen := c.generation(k)
		start := c.now()
		value, err := fetch(ctx)
		c.metrics.ObserveFetchDuration(key.Namespace, c.now().Sub(start).Seconds())
		if err != nil {
			c.metrics.IncRefreshFailed(key.Namespace)
			log.Warn("Background revalidation failed, keeping stale value", "key", k, "error", err)
			return
		}
		c.store(k, gen, value)
		c.metrics.IncRefreshSucceeded(key.Namespace)
	}()
}

// generation reads the current generation for a key, registering the key
// so a later Invalidate can fence its in-flight fetch.
func (c *Cache) generation(k string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.gens[k]; !ok {
		c.gens[k] = 0
	}
	return c.gens[k]
}

// store writes a fetched value back under the key captured when the fetch
// started. Results that raced an invalidation are discarded.
func (c *Cache) store(k string, gen uint64, value any) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[k] != gen {
		log.Debug("Discarding fetch result for invalidated key", "key", k)
		return c.now()
	}
	at := c.now()
	c.entries[k] = entry{value: value, fetchedAt: at}
	return at
}

func keyInNamespaces(k string, namespaces []string) bool {
	for _, ns := range namespaces {
		if k == ns || strings.HasPrefix(k, ns+"?") {
			return true
		}
	}
	return false
}
