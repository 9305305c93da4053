// Package cache provides the characters query cache.
//
// The cache maps a normalized QueryKey (the page number) to a single shared
// Entry and offers the following guarantees:
//
//   - At most one upstream request per key is in flight; later callers for
//     the same key attach to it (golang.org/x/sync/singleflight)
//   - Ready entries are retained for the lifetime of the cache unless
//     explicitly invalidated, so revisiting a page never refetches
//   - Error entries are kept until the caller asks for a refetch
//   - Navigating away never cancels an in-flight request; it resolves into
//     the cache and is reused later
//
// # Basic Usage
//
//	c := cache.New(graphqlClient, cache.DefaultConfig())
//	defer c.Close()
//
//	// Snapshot, starting a load when the key is unknown
//	res := c.Query(cache.NewQueryKey(1))
//
//	// Block until the entry resolves
//	page, err := c.Fetch(ctx, cache.NewQueryKey(1))
//
// # Subscriptions
//
//	cancel := c.Subscribe(cache.NewQueryKey(2), func(res cache.Result) {
//		// called on every state transition of page 2
//	})
//	defer cancel()
//
// # Prefetch
//
// Prefetch populates a key in the background. Failures are logged and
// counted but never returned; the Error entry only shows up if a caller
// later queries that key.
//
//	c.Prefetch(cache.NewQueryKey(3))
//
// # Shared Store
//
// RedisStore wraps a Loader with a Redis-backed response cache so several
// processes can share fetched pages:
//
//	store := cache.NewRedisStore(redisClient, graphqlClient, 5*time.Minute)
//	c := cache.New(store, cache.DefaultConfig())
//
// # Metrics
//
//   - character_cache_hits_total{layer} - Cache hits (memory, redis)
//   - character_cache_misses_total{layer} - Cache misses
//   - character_cache_inflight_joins_total - Deduplicated requests
//   - character_cache_prefetches_total{outcome} - Prefetch outcomes
//   - character_cache_entries{status} - Entries by status
//   - character_cache_errors_total{operation} - Store errors
package cache
