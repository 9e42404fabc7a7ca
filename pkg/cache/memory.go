package cache

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Hamza-spc/CountryCompare/errors"
)

// MemoryCache is a bounded, thread-safe key/value store with per-item TTL,
// least-recently-used eviction and an optional background expiry sweep.
//
// One mutex guards the entry map and the LRU list for the whole of every
// public operation. Eviction callbacks run after the lock is released.
type MemoryCache struct {
	name            string
	defaultTTL      time.Duration
	maxSize         int
	cleanupInterval time.Duration

	logger  *slog.Logger
	now     func() time.Time
	evictFn EvictCallback
	stats   *Statistics
	metrics *recorder

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used

	lifecycleMu sync.Mutex
	shutdown    chan struct{}
	done        chan struct{}
}

type removed struct {
	key    string
	value  any
	reason EvictReason
}

// NewMemoryCache creates a cache. defaultTTL <= 0 makes Set store entries that
// never expire; maxSize <= 0 leaves the cache unbounded. The sweep does not run
// until Start is called.
func NewMemoryCache(name string, defaultTTL time.Duration, maxSize int, opts ...Option) *MemoryCache {
	o := applyOptions(opts...)

	c := &MemoryCache{
		name:            name,
		defaultTTL:      defaultTTL,
		maxSize:         maxSize,
		cleanupInterval: o.cleanupInterval,
		logger:          o.logger.With("component", "cache", "cache", name),
		now:             o.now,
		evictFn:         o.evictCallback,
		stats:           &Statistics{},
		entries:         make(map[string]*list.Element),
		order:           list.New(),
	}

	shared := o.metrics
	if shared == nil && o.registry != nil {
		m, err := newCacheMetrics(o.registry)
		if err != nil {
			c.logger.Warn("cache metrics disabled", "error", err)
		}
		shared = m
	}
	c.metrics = shared.forCache(name)

	return c
}

// Name returns the cache name.
func (c *MemoryCache) Name() string {
	return c.name
}

// DefaultTTL returns the TTL applied by Set.
func (c *MemoryCache) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// MaxSize returns the capacity, zero or less meaning unbounded.
func (c *MemoryCache) MaxSize() int {
	return c.maxSize
}

// Get returns the live value stored under key. Expired entries are removed
// and reported as a miss.
func (c *MemoryCache) Get(key any) (any, bool) {
	k := NormalizeKey(key)
	now := c.now()

	c.mu.Lock()
	elem, ok := c.entries[k]
	if !ok {
		c.mu.Unlock()
		c.recordMiss()
		return nil, false
	}

	e := elem.Value.(*entry)
	if e.item.IsExpired(now) {
		c.removeElement(elem)
		size := len(c.entries)
		c.mu.Unlock()

		c.afterExpire(1, size, []removed{{key: k, value: e.item.Value, reason: EvictExpired}})
		c.recordMiss()
		return nil, false
	}

	e.item.touch(now)
	c.order.MoveToFront(elem)
	value := e.item.Value
	c.mu.Unlock()

	c.stats.hit()
	c.metrics.hit()
	return value, true
}

// GetOr returns the live value under key or def.
func (c *MemoryCache) GetOr(key, def any) any {
	if v, ok := c.Get(key); ok {
		return v
	}
	return def
}

// Set stores value with the cache's default TTL.
func (c *MemoryCache) Set(key, value any) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key. A ttl of zero or less never expires.
// Overwriting a key resets its metadata. Inserting a new key into a full cache
// first evicts the least recently used entry.
func (c *MemoryCache) SetWithTTL(key, value any, ttl time.Duration) {
	k := NormalizeKey(key)
	now := c.now()
	item := newItem(value, ttl, now)

	var evicted []removed

	c.mu.Lock()
	if elem, ok := c.entries[k]; ok {
		elem.Value.(*entry).item = item
		c.order.MoveToFront(elem)
	} else {
		if c.maxSize > 0 && len(c.entries) >= c.maxSize {
			if back := c.order.Back(); back != nil {
				victim := back.Value.(*entry)
				reason := EvictCapacity
				if victim.item.IsExpired(now) {
					reason = EvictExpired
				}
				c.removeElement(back)
				evicted = append(evicted, removed{key: victim.key, value: victim.item.Value, reason: reason})
			}
		}
		c.entries[k] = c.order.PushFront(&entry{key: k, item: item})
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.stats.set()
	c.metrics.set()
	for _, r := range evicted {
		if r.reason == EvictExpired {
			c.stats.expired(1)
			c.metrics.expired(1)
			continue
		}
		c.stats.eviction()
		c.metrics.evicted()
	}
	c.metrics.updateSize(size)
	c.notify(evicted)
}

// Delete removes key and reports whether a live or expired entry was present.
func (c *MemoryCache) Delete(key any) bool {
	k := NormalizeKey(key)

	c.mu.Lock()
	elem, ok := c.entries[k]
	if !ok {
		c.mu.Unlock()
		return false
	}
	e := elem.Value.(*entry)
	c.removeElement(elem)
	size := len(c.entries)
	c.mu.Unlock()

	c.afterDelete(size, []removed{{key: k, value: e.item.Value, reason: EvictDeleted}})
	return true
}

// Exists reports whether a live entry is stored under key, removing it if expired.
// It does not count as an access.
func (c *MemoryCache) Exists(key any) bool {
	return c.remaining(NormalizeKey(key)) >= 0
}

// TTL returns the remaining lifetime of key in whole seconds, 0 for entries
// that never expire and -1 when the key is absent or expired.
func (c *MemoryCache) TTL(key any) int {
	rem := c.remaining(NormalizeKey(key))
	if rem < 0 {
		return -1
	}
	return int(rem / time.Second)
}

// remaining returns the time left for k, 0 for never-expiring entries and -1
// when absent. Expired entries are removed.
func (c *MemoryCache) remaining(k string) time.Duration {
	now := c.now()

	c.mu.Lock()
	elem, ok := c.entries[k]
	if !ok {
		c.mu.Unlock()
		return -1
	}
	e := elem.Value.(*entry)
	if e.item.IsExpired(now) {
		c.removeElement(elem)
		size := len(c.entries)
		c.mu.Unlock()
		c.afterExpire(1, size, []removed{{key: k, value: e.item.Value, reason: EvictExpired}})
		return -1
	}
	c.mu.Unlock()

	expiresAt, expires := e.item.ExpiresAt()
	if !expires {
		return 0
	}
	return expiresAt.Sub(now)
}

// CleanupExpired removes every expired entry and returns how many were removed.
func (c *MemoryCache) CleanupExpired() int {
	now := c.now()
	var expired []removed

	c.mu.Lock()
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		e := elem.Value.(*entry)
		if e.item.IsExpired(now) {
			c.removeElement(elem)
			expired = append(expired, removed{key: e.key, value: e.item.Value, reason: EvictExpired})
		}
		elem = next
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.afterExpire(len(expired), size, expired)
	return len(expired)
}

// Sweep runs one cleanup pass and logs the outcome.
func (c *MemoryCache) Sweep() int {
	n := c.CleanupExpired()
	if n > 0 {
		c.logger.Debug("Removed expired cache entries", "removed", n, "size", c.Size())
	}
	return n
}

// Size returns the number of stored entries, including expired ones not yet swept.
func (c *MemoryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the live keys, most recently used first. It does not touch entries.
func (c *MemoryCache) Keys() []string {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*entry)
		if !e.item.IsExpired(now) {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Stats returns a snapshot of occupancy and operation counters.
func (c *MemoryCache) Stats() Stats {
	now := c.now()
	var s Stats

	c.mu.Lock()
	s.TotalItems = len(c.entries)
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*entry)
		if e.item.IsExpired(now) {
			s.ExpiredItems++
		}
		s.TotalAccessCount += e.item.AccessCount
	}
	c.mu.Unlock()

	s.ActiveItems = s.TotalItems - s.ExpiredItems
	if s.TotalItems > 0 {
		s.AverageAccessCount = float64(s.TotalAccessCount) / float64(s.TotalItems)
	}
	s.MaxSize = c.maxSize
	if c.maxSize > 0 {
		s.UsagePercentage = float64(s.TotalItems) / float64(c.maxSize) * 100
	}
	c.stats.fill(&s)
	return s
}

// Clear removes all entries.
func (c *MemoryCache) Clear() {
	c.DeleteMatching("")
}

// DeleteMatching removes every key containing substr and returns the count.
// An empty substr removes everything.
func (c *MemoryCache) DeleteMatching(substr string) int {
	var gone []removed

	c.mu.Lock()
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		e := elem.Value.(*entry)
		if strings.Contains(e.key, substr) {
			c.removeElement(elem)
			gone = append(gone, removed{key: e.key, value: e.item.Value, reason: EvictDeleted})
		}
		elem = next
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.afterDelete(size, gone)
	return len(gone)
}

// Start launches the background sweep. It stops when ctx is cancelled or
// Close is called.
func (c *MemoryCache) Start(ctx context.Context) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.shutdown != nil {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "MemoryCache", "Start", "start sweep for "+c.name)
	}

	c.shutdown = make(chan struct{})
	c.done = make(chan struct{})
	go c.sweepLoop(ctx, c.cleanupInterval, c.shutdown, c.done)

	c.logger.Debug("Cache sweep started", "interval", c.cleanupInterval)
	return nil
}

// Close stops the background sweep. Entries are kept. Closing a cache that
// was never started is a no-op.
func (c *MemoryCache) Close() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.shutdown == nil {
		return nil
	}

	close(c.shutdown)
	done := c.done
	c.shutdown = nil
	c.done = nil

	select {
	case <-done:
		return nil
	case <-time.After(5 * time.Second):
		return errors.WrapTransient(
			fmt.Errorf("timeout waiting for sweep goroutine to finish"),
			"MemoryCache", "Close", "stop sweep for "+c.name)
	}
}

func (c *MemoryCache) sweepLoop(ctx context.Context, interval time.Duration, shutdown <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-shutdown:
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// removeElement must be called with mu held.
func (c *MemoryCache) removeElement(elem *list.Element) {
	e := c.order.Remove(elem).(*entry)
	delete(c.entries, e.key)
}

func (c *MemoryCache) recordMiss() {
	c.stats.miss()
	c.metrics.miss()
}

func (c *MemoryCache) afterExpire(n, size int, gone []removed) {
	if n == 0 {
		return
	}
	c.stats.expired(n)
	c.metrics.expired(n)
	c.metrics.updateSize(size)
	c.notify(gone)
}

func (c *MemoryCache) afterDelete(size int, gone []removed) {
	if len(gone) == 0 {
		return
	}
	c.stats.delete(len(gone))
	c.metrics.deleted(len(gone))
	c.metrics.updateSize(size)
	c.notify(gone)
}

func (c *MemoryCache) notify(gone []removed) {
	if c.evictFn == nil {
		return
	}
	for _, r := range gone {
		c.safeEvict(r)
	}
}

// safeEvict isolates a panicking callback to the entry it was called for.
func (c *MemoryCache) safeEvict(r removed) {
	defer func() {
		if p := recover(); p != nil {
			c.logger.Error("Eviction callback panicked",
				"key", r.key, "reason", string(r.reason), "panic", p)
		}
	}()
	c.evictFn(r.key, r.value, r.reason)
}
