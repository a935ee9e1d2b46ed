// Package fetchcache implements an in-process, key-addressable cache that
// memoizes the result of an expensive fetcher function per key, combining
// time-to-live expiry, request coalescing and optional double buffering
// (stale-while-revalidate).
//
// Concurrent Get calls for the same key share a single fetcher invocation and
// all observe the same outcome. With double buffering enabled, callers keep
// receiving the previous value while an expired key is refreshed in the
// background, so readers never block on a refresh they didn't initiate.
//
// A fetcher, once started, always runs to completion: canceling the context
// passed to Get abandons the wait but the fetch still commits its result.
// Fetchers receive the cache instance and may call Get for other keys;
// calling Get for the key currently being fetched would deadlock and is not
// allowed.
package fetchcache
