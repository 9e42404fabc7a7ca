package cache

import (
	"context"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hamza-spc/CountryCompare/errors"
	"github.com/Hamza-spc/CountryCompare/metric"
)

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	m, err := NewManager(DefaultConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_DefaultCache(t *testing.T) {
	m := newTestManager(t)

	def := m.Default()
	require.NotNil(t, def)
	assert.Same(t, def, m.Cache("default"))
	assert.Same(t, def, m.Cache(""))
	assert.Equal(t, time.Hour, def.DefaultTTL())
	assert.Equal(t, 1000, def.MaxSize())
}

func TestManager_LazyCreation(t *testing.T) {
	m := newTestManager(t)

	c := m.Cache("countries")
	assert.Same(t, c, m.Cache("countries"))
	assert.Equal(t, []string{"countries", "default"}, m.Names())
}

func TestManager_ConfiguredCaches(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Caches = map[string]NamedConfig{
		"indicators": {TTL: 24 * time.Hour, MaxSize: 300},
	}

	m, err := NewManager(cfg)
	require.NoError(t, err)

	c := m.Cache("indicators")
	assert.Equal(t, 24*time.Hour, c.DefaultTTL())
	assert.Equal(t, 300, c.MaxSize())
}

func TestManager_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CleanupInterval = 0

	_, err := NewManager(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestManager_CreateCacheReplaces(t *testing.T) {
	m := newTestManager(t)

	old := m.Cache("api")
	old.Set("k", "v")

	replacement := m.CreateCache("api", time.Minute, 5)
	assert.NotSame(t, old, replacement)
	assert.Same(t, replacement, m.Cache("api"))
	assert.False(t, replacement.Exists("k"))
	assert.Equal(t, 5, replacement.MaxSize())
}

func TestManager_DeleteCache(t *testing.T) {
	m := newTestManager(t)

	m.Cache("api").Set("k", "v")
	assert.True(t, m.DeleteCache("api"))
	assert.False(t, m.DeleteCache("api"))
	assert.Equal(t, []string{"default"}, m.Names())

	def := m.Default()
	def.Set("k", "v")
	assert.True(t, m.DeleteCache("default"))
	assert.Same(t, def, m.Default(), "default cache is kept")
	assert.Equal(t, 0, def.Size())
}

func TestManager_BulkOperations(t *testing.T) {
	clock := newFakeClock()
	m := newTestManager(t, WithClock(clock.Now))

	m.Default().SetWithTTL("a", 1, time.Second)
	m.Default().Set("b", 2)
	m.Cache("other").SetWithTTL("c", 3, time.Second)

	clock.Advance(2 * time.Second)

	stats := m.AllStats()
	assert.Equal(t, 1, stats["default"].ExpiredItems)
	assert.Equal(t, 1, stats["other"].ExpiredItems)

	assert.Equal(t, map[string]int{"default": 1, "other": 1}, m.CleanupAll())

	m.ClearAll()
	for name, s := range m.AllStats() {
		assert.Equal(t, 0, s.TotalItems, name)
	}
}

func TestManager_StartCoversLaterCaches(t *testing.T) {
	clock := newFakeClock()
	cfg := DefaultConfig()
	cfg.CleanupInterval = 10 * time.Millisecond

	m, err := NewManager(cfg, WithClock(clock.Now))
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))
	defer m.Close()

	assert.ErrorIs(t, m.Start(context.Background()), errors.ErrAlreadyStarted)

	late := m.Cache("late")
	late.SetWithTTL("k", "v", time.Second)
	m.Default().SetWithTTL("k", "v", time.Second)
	clock.Advance(2 * time.Second)

	assert.Eventually(t, func() bool {
		return late.Size() == 0 && m.Default().Size() == 0
	}, time.Second, 5*time.Millisecond)
}

func counterValue(t *testing.T, registry *metric.MetricsRegistry, name, cacheName string) float64 {
	t.Helper()
	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelValue(m, "cache") == cacheName {
				if m.GetCounter() != nil {
					return m.GetCounter().GetValue()
				}
				return m.GetGauge().GetValue()
			}
		}
	}
	return -1
}

func labelValue(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

func TestManager_Metrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	m := newTestManager(t, WithMetrics(registry))

	c := m.Cache("countries")
	c.Set("a", 1)
	_, _ = c.Get("a")
	_, _ = c.Get("missing")
	m.Default().Set("x", 1)

	assert.Equal(t, 1.0, counterValue(t, registry, "countrycompare_cache_hits_total", "countries"))
	assert.Equal(t, 1.0, counterValue(t, registry, "countrycompare_cache_misses_total", "countries"))
	assert.Equal(t, 1.0, counterValue(t, registry, "countrycompare_cache_sets_total", "default"))
	assert.Equal(t, 1.0, counterValue(t, registry, "countrycompare_cache_size", "countries"))

	// a second manager on the same registry cannot register the same collectors
	_, err := NewManager(DefaultConfig(), WithMetrics(registry))
	assert.Error(t, err)

	m.DeleteCache("countries")
	assert.Equal(t, -1.0, counterValue(t, registry, "countrycompare_cache_hits_total", "countries"))
}
