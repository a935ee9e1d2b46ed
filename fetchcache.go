package fetchcache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoFetcher is returned by Get when a value needs to be fetched but
// neither the Cache nor the call has a fetcher configured.
var ErrNoFetcher = errors.New("fetchcache: no fetcher configured")

// Fetcher is the type for functions that produce the value for a cache key.
//
// Fetchers run on their own goroutine with a background context, detached
// from any single caller. The params value is passed through from
// GetOptions.Params and is nil when not given. The cache instance is passed
// so that fetchers can look up other keys; fetching the key currently being
// produced is not allowed.
//
// If a fetcher returns a non-nil error, the returned value is discarded.
type Fetcher[V any] func(ctx context.Context, key string, params any, c *Cache[V]) (V, error)

// Config configures a Cache.
//
// The zero value is usable: entries never expire, no cleaner runs, errors are
// not cached, double buffering is off and every Get must carry its own
// fetcher.
type Config[V any] struct {
	// DefaultTTL is the time-to-live applied to committed entries when a Get
	// does not override it. A value <= 0 means entries never expire
	// automatically and are only removed by explicit invalidation.
	DefaultTTL time.Duration

	// CleanInterval, when > 0, starts the background cleaner with this
	// interval as part of New.
	CleanInterval time.Duration

	// CacheErrors controls whether failed fetches are committed. When false
	// a failed fetch leaves no trace, so the next Get for the key starts a
	// fresh fetch instead of replaying the error.
	CacheErrors bool

	// DoubleBuffer is the default for Gets that don't set their own
	// DoubleBufferMode.
	DoubleBuffer bool

	// Fetcher is the default producer, used by Gets without a per-call one.
	Fetcher Fetcher[V]
}

// entry is a committed result for a key: either a usable value or, when
// error caching is enabled, a cached failure. Never both.
type entry[V any] struct {
	val V
	err error

	// expireAt is the absolute expiry deadline. The zero time means the
	// entry never expires.
	expireAt time.Time
}

func (e *entry[V]) fresh(now time.Time) bool {
	return e.expireAt.IsZero() || e.expireAt.After(now)
}

// Cache memoizes fetcher results per key with TTL expiry, request coalescing
// and optional double buffering. See Get for the exact behavior.
//
// A Cache must not be copied after first use. All methods are safe for
// concurrent use.
type Cache[V any] struct {
	cfg Config[V]

	nowFunc func() time.Time // for tests

	mu      sync.Mutex
	entries map[string]*entry[V]
	flights map[string]*flight[V]

	cleanerMu   sync.Mutex
	cleanerStop chan struct{}
}

// New returns a new Cache using the given Config.
//
// If cfg.CleanInterval is > 0 the background cleaner is started immediately;
// callers should StopCleaner when discarding the cache to not leak its
// goroutine.
func New[V any](cfg Config[V]) *Cache[V] {
	c := &Cache[V]{
		cfg: cfg,

		nowFunc: time.Now,

		entries: make(map[string]*entry[V]),
		flights: make(map[string]*flight[V]),
	}
	if cfg.CleanInterval > 0 {
		c.StartCleaner(cfg.CleanInterval)
	}
	return c
}

// Invalidate removes the committed entry for key, if any.
//
// An in-flight fetch for the key is not affected: it runs to completion and
// commits its result as usual.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll removes all committed entries.
func (c *Cache[V]) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*entry[V])
	c.mu.Unlock()
}

// Clean removes all committed entries whose TTL expired.
//
// Clean is called periodically by the cleaner but can also be called
// manually. It is safe to call concurrently with Get.
func (c *Cache[V]) Clean() {
	now := c.nowFunc()

	c.mu.Lock()
	for key, e := range c.entries {
		if !e.fresh(now) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// Len returns the number of committed entries, including expired ones that
// were not swept yet.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()
	return n
}
