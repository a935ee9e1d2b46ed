package fetchcache

import (
	"context"
	"fmt"
	"time"
)

type result[V any] struct {
	val V
	err error
}

// flight is an outstanding fetch for a key. At most one flight exists per key
// at any time; all callers that arrive while it is outstanding append a
// waiter and share its outcome.
type flight[V any] struct {
	// waiters in call order. Each channel has capacity 1 and receives the
	// flight's result exactly once.
	waiters []chan result[V]
}

// Get returns the value for the given key, fetching it if necessary.
//
// For every call one of three things happens:
//
//   - The committed entry for key exists and its TTL has not expired: the
//     entry is returned immediately. A cached failure (see
//     Config.CacheErrors) is returned as its error.
//   - A fetch for key is outstanding and there is no usable entry: the call
//     joins it and returns the shared outcome. The fetcher is not invoked
//     again.
//   - Otherwise a new fetch is started. Without double buffering the call
//     waits for it; with double buffering and an expired entry present, the
//     expired value is returned immediately and the fetch commits in the
//     background.
//
// The context bounds only this caller's wait. A started fetch always runs to
// completion and commits, even if every waiter gave up.
func (c *Cache[V]) Get(ctx context.Context, key string, opts *GetOptions[V]) (V, error) {
	var zero V

	now := c.nowFunc()

	c.mu.Lock()

	e := c.entries[key]
	if e != nil && e.fresh(now) {
		val, err := e.val, e.err
		c.mu.Unlock()
		return val, err
	}

	f := c.flights[key]

	if e != nil && c.doubleBuffer(opts) {
		// Serve the expired value and refresh in the background. The entry
		// stays in place until the new fetch commits, so concurrent callers
		// keep getting it instead of blocking on the refresh.
		if f == nil {
			if _, err := c.startFlightLocked(key, opts); err != nil {
				c.mu.Unlock()
				return zero, err
			}
		}
		val, err := e.val, e.err
		c.mu.Unlock()
		return val, err
	}

	if f == nil {
		if e != nil {
			// Expired and not double buffered: drop the entry so that every
			// caller from here on joins the new fetch.
			delete(c.entries, key)
		}
		var err error
		f, err = c.startFlightLocked(key, opts)
		if err != nil {
			c.mu.Unlock()
			return zero, err
		}
	}

	ch := make(chan result[V], 1)
	f.waiters = append(f.waiters, ch)
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		return r.val, r.err
	}
}

// startFlightLocked registers a new flight for key and starts the fetch on
// its own goroutine. Must be called with c.mu held and no existing flight for
// the key.
func (c *Cache[V]) startFlightLocked(key string, opts *GetOptions[V]) (*flight[V], error) {
	fetch := c.fetcher(opts)
	if fetch == nil {
		return nil, ErrNoFetcher
	}

	f := &flight[V]{}
	c.flights[key] = f

	go c.runFetch(key, f, fetch, c.params(opts), c.ttl(opts))

	return f, nil
}

func (c *Cache[V]) runFetch(key string, f *flight[V], fetch Fetcher[V], params any, ttl time.Duration) {
	val, err := invoke(key, fetch, params, c)
	if err != nil {
		// never hand out both a value and an error
		var zero V
		val = zero
	}
	c.commit(key, f, val, err, ttl)
}

func invoke[V any](key string, fetch Fetcher[V], params any, c *Cache[V]) (val V, err error) {
	defer func() {
		if v := recover(); v != nil {
			perr, ok := v.(error)
			if !ok {
				perr = fmt.Errorf("panic while fetching key %q: %v", key, v)
			}
			var zero V
			val, err = zero, perr
		}
	}()

	return fetch(context.Background(), key, params, c)
}

// commit records the outcome of a flight and fans it out to all waiters, in
// the order they called Get. It runs exactly once per flight.
func (c *Cache[V]) commit(key string, f *flight[V], val V, err error, ttl time.Duration) {
	c.mu.Lock()

	if c.flights[key] == f {
		delete(c.flights, key)
	}

	if err == nil || c.cfg.CacheErrors {
		e := &entry[V]{val: val, err: err}
		if ttl > 0 {
			e.expireAt = c.nowFunc().Add(ttl)
		}
		c.entries[key] = e
	} else {
		// failed and errors are not cached: leave nothing behind so the
		// next call retries
		delete(c.entries, key)
	}

	waiters := f.waiters
	f.waiters = nil

	c.mu.Unlock()

	r := result[V]{val: val, err: err}
	for _, ch := range waiters {
		ch <- r
	}
}
