// Package cache provides the in-process cache CountryCompare keeps upstream
// responses in: a thread-safe map with per-item TTL, least-recently-used
// eviction and a background expiry sweep, plus a registry of named caches.
//
// # Quick Start
//
//	caches, err := cache.NewManager(cache.DefaultConfig(),
//		cache.WithLogger(logger),
//		cache.WithMetrics(registry),
//	)
//	if err != nil {
//		return err
//	}
//	if err := caches.Start(ctx); err != nil {
//		return err
//	}
//	defer caches.Close()
//
//	c := caches.Default()
//	c.Set("all_countries", countries)
//	list, ok := cache.GetAs[[]types.Country](c, "all_countries")
//
// # Keys
//
// Keys may be any value. NormalizeKey turns strings into themselves, maps into
// an order-independent hash, slices and arrays into an order-dependent hash,
// and anything else into fmt.Sprint output. Types can implement Keyer to
// control their key.
//
// # Expiry
//
// Every item carries its own TTL; zero or less never expires. Reads never
// return an expired value: Get, Exists and TTL delete expired entries they
// touch. Start launches one goroutine per cache that calls CleanupExpired on
// the configured interval until the context is cancelled or Close is called.
// Sweep runs one pass on demand. Tests inject a clock with WithClock instead
// of sleeping.
//
// # Eviction
//
// When a new key is inserted into a full cache, the least recently used entry
// is evicted first, so Size never exceeds the configured maximum. Recency is
// kept in a container/list that every successful read moves to the front.
// Overwriting an existing key never evicts.
//
// Eviction callbacks registered with WithEvictionCallback run after the cache
// lock is released. A panicking callback is recovered and logged; the rest of
// the pass continues.
//
// # Memoization
//
// Memoize wraps a fetch function so results are cached per argument. The
// wrapped function runs outside the cache lock and concurrent misses for the
// same key are collapsed with singleflight:
//
//	fetch := cache.Memoize(c, "indicators", time.Hour, nil, wb.FetchIndicators)
//
// # Observability
//
// Statistics are always collected. Stats returns occupancy (total, expired,
// active, usage percentage), access counts and operation counters. WithMetrics
// additionally exports counters and a size gauge labelled by cache name.
package cache
