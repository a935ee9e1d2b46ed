package fetchcache

import "time"

// NoExpire can be used as a TTL to request an entry that never expires
// automatically, regardless of the cache's DefaultTTL. Any negative duration
// works the same way.
const NoExpire time.Duration = -1

// GetOptions contains per-call options for Get.
type GetOptions[V any] struct {
	// TTL overrides the cache's DefaultTTL for the entry committed by this
	// call. 0 means "use the default"; a negative value (see NoExpire) means
	// the entry never expires automatically.
	TTL time.Duration

	// DoubleBuffer controls whether an expired entry is served stale while
	// being refreshed in the background.
	DoubleBuffer DoubleBufferMode

	// Params is passed through to the fetcher unchanged.
	Params any

	// Fetcher overrides the cache's default fetcher for this call. The
	// override only matters for the call that starts a fetch; calls joining
	// an in-flight fetch share the fetcher that started it.
	Fetcher Fetcher[V]
}

// DoubleBufferMode controls how a Get treats an entry whose TTL expired.
type DoubleBufferMode int

const (
	// DoubleBufferDefault uses the cache-wide Config.DoubleBuffer setting.
	DoubleBufferDefault DoubleBufferMode = iota

	// DoubleBufferEnabled serves the expired entry immediately and refreshes
	// it in the background.
	DoubleBufferEnabled

	// DoubleBufferDisabled waits for a fresh value.
	DoubleBufferDisabled
)

// ttl resolves the effective TTL for a commit.
func (c *Cache[V]) ttl(opts *GetOptions[V]) time.Duration {
	if opts != nil && opts.TTL != 0 {
		return opts.TTL
	}
	return c.cfg.DefaultTTL
}

// doubleBuffer resolves the effective double-buffer setting for a call.
func (c *Cache[V]) doubleBuffer(opts *GetOptions[V]) bool {
	if opts != nil && opts.DoubleBuffer != DoubleBufferDefault {
		return opts.DoubleBuffer == DoubleBufferEnabled
	}
	return c.cfg.DoubleBuffer
}

// fetcher resolves the effective fetcher for a call. May return nil.
func (c *Cache[V]) fetcher(opts *GetOptions[V]) Fetcher[V] {
	if opts != nil && opts.Fetcher != nil {
		return opts.Fetcher
	}
	return c.cfg.Fetcher
}

func (c *Cache[V]) params(opts *GetOptions[V]) any {
	if opts != nil {
		return opts.Params
	}
	return nil
}
