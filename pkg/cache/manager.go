package cache

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Hamza-spc/CountryCompare/errors"
)

// Manager is a registry of named caches. A cache named "default" always
// exists; the empty name resolves to it too. The registry has its own lock,
// independent of the per-cache locks.
type Manager struct {
	cfg     Config
	opts    []Option
	logger  *slog.Logger
	metrics *cacheMetrics

	mu      sync.Mutex
	caches  map[string]*MemoryCache
	ctx     context.Context
	started bool
}

// NewManager creates a manager with the default cache and every named cache
// listed in cfg. Options apply to all caches the manager creates.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Manager", "NewManager", "config validation")
	}

	o := applyOptions(opts...)

	m := &Manager{
		cfg:    cfg,
		logger: o.logger.With("component", "cache-manager"),
		caches: make(map[string]*MemoryCache),
	}

	if o.registry != nil {
		metrics, err := newCacheMetrics(o.registry)
		if err != nil {
			return nil, errors.WrapTransient(err, "Manager", "NewManager", "metrics registration")
		}
		m.metrics = metrics
	}

	m.opts = append(append([]Option{}, opts...),
		WithCleanupInterval(cfg.CleanupInterval),
		withSharedMetrics(m.metrics),
	)

	m.caches[DefaultName] = m.newCache(DefaultName, cfg.DefaultTTL, cfg.MaxSize)
	for name, nc := range cfg.Caches {
		m.caches[name] = m.newCache(name, nc.TTL, nc.MaxSize)
	}

	return m, nil
}

func (m *Manager) newCache(name string, ttl time.Duration, maxSize int) *MemoryCache {
	return NewMemoryCache(name, ttl, maxSize, m.opts...)
}

func canonical(name string) string {
	if name == "" {
		return DefaultName
	}
	return name
}

// Default returns the default cache.
func (m *Manager) Default() *MemoryCache {
	return m.Cache(DefaultName)
}

// Cache returns the named cache, creating it with the manager defaults on
// first reference.
func (m *Manager) Cache(name string) *MemoryCache {
	name = canonical(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.caches[name]; ok {
		return c
	}

	c := m.newCache(name, m.cfg.DefaultTTL, m.cfg.MaxSize)
	m.caches[name] = c
	m.startLocked(c)
	return c
}

// CreateCache creates the named cache, replacing and closing any existing one.
func (m *Manager) CreateCache(name string, ttl time.Duration, maxSize int) *MemoryCache {
	name = canonical(name)
	c := m.newCache(name, ttl, maxSize)

	m.mu.Lock()
	old := m.caches[name]
	m.caches[name] = c
	m.startLocked(c)
	m.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			m.logger.Warn("Failed to close replaced cache", "cache", name, "error", err)
		}
	}

	m.logger.Debug("Cache created", "cache", name, "ttl", ttl, "max_size", maxSize)
	return c
}

// DeleteCache removes a named cache after clearing it. The default cache is
// cleared but kept. Returns false if no such cache exists.
func (m *Manager) DeleteCache(name string) bool {
	name = canonical(name)

	m.mu.Lock()
	c, ok := m.caches[name]
	if ok && name != DefaultName {
		delete(m.caches, name)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}

	c.Clear()
	if name == DefaultName {
		return true
	}

	if err := c.Close(); err != nil {
		m.logger.Warn("Failed to close deleted cache", "cache", name, "error", err)
	}
	m.metrics.forget(name)
	return true
}

// Names returns the registered cache names in sorted order.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.caches))
	for name := range m.caches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) snapshot() map[string]*MemoryCache {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]*MemoryCache, len(m.caches))
	for name, c := range m.caches {
		out[name] = c
	}
	return out
}

// ClearAll removes every entry from every cache.
func (m *Manager) ClearAll() {
	for _, c := range m.snapshot() {
		c.Clear()
	}
}

// AllStats returns a snapshot per cache name.
func (m *Manager) AllStats() map[string]Stats {
	caches := m.snapshot()
	out := make(map[string]Stats, len(caches))
	for name, c := range caches {
		out[name] = c.Stats()
	}
	return out
}

// CleanupAll sweeps every cache and returns the removed count per cache name.
func (m *Manager) CleanupAll() map[string]int {
	caches := m.snapshot()
	out := make(map[string]int, len(caches))
	for name, c := range caches {
		out[name] = c.CleanupExpired()
	}
	return out
}

// Start launches the sweep of every cache, including caches created later.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Manager", "Start", "start cache sweeps")
	}
	m.started = true
	m.ctx = ctx

	for _, c := range m.caches {
		m.startLocked(c)
	}

	m.logger.Info("Cache manager started", "caches", len(m.caches), "cleanup_interval", m.cfg.CleanupInterval)
	return nil
}

// startLocked must be called with mu held.
func (m *Manager) startLocked(c *MemoryCache) {
	if !m.started {
		return
	}
	if err := c.Start(m.ctx); err != nil {
		m.logger.Warn("Cache sweep not started", "cache", c.Name(), "error", err)
	}
}

// Close stops every sweep. Caches and their entries remain usable.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.started = false
	m.ctx = nil
	m.mu.Unlock()

	var errs []error
	for _, c := range m.snapshot() {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
