package cache

import (
	"log/slog"
	"time"

	"github.com/Hamza-spc/CountryCompare/metric"
)

// EvictReason tells an eviction callback why an entry left the cache.
type EvictReason string

const (
	// EvictExpired marks entries removed after their TTL passed.
	EvictExpired EvictReason = "expired"
	// EvictCapacity marks the least recently used entry dropped to make room.
	EvictCapacity EvictReason = "capacity"
	// EvictDeleted marks explicit Delete, DeleteMatching and Clear calls.
	EvictDeleted EvictReason = "deleted"
)

// EvictCallback is called outside the cache lock for every removed entry.
type EvictCallback func(key string, value any, reason EvictReason)

// Option configures a MemoryCache or a Manager.
type Option func(*options)

type options struct {
	logger          *slog.Logger
	now             func() time.Time
	cleanupInterval time.Duration
	evictCallback   EvictCallback
	registry        *metric.MetricsRegistry

	// set by Manager so all caches share one set of collectors
	metrics *cacheMetrics
}

// WithLogger sets the logger used for sweep and callback diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock replaces time.Now, letting tests drive expiry without sleeping.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithCleanupInterval sets how often the background sweep runs.
// Non-positive intervals are ignored.
func WithCleanupInterval(interval time.Duration) Option {
	return func(o *options) {
		if interval > 0 {
			o.cleanupInterval = interval
		}
	}
}

// WithEvictionCallback registers a callback for removed entries.
func WithEvictionCallback(callback EvictCallback) Option {
	return func(o *options) {
		o.evictCallback = callback
	}
}

// WithMetrics exports cache counters and sizes to the registry.
// If registry is nil, this option is ignored.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(o *options) {
		if registry != nil {
			o.registry = registry
		}
	}
}

func withSharedMetrics(m *cacheMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{
		logger:          slog.Default(),
		now:             time.Now,
		cleanupInterval: DefaultCleanupInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
