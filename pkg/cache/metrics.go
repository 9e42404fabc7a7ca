package cache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Hamza-spc/CountryCompare/metric"
)

const metricsOwner = "cache"

// cacheMetrics holds the collectors shared by every cache of a process,
// labelled by cache name.
type cacheMetrics struct {
	hits        *prometheus.CounterVec
	misses      *prometheus.CounterVec
	sets        *prometheus.CounterVec
	deletes     *prometheus.CounterVec
	evictions   *prometheus.CounterVec
	expirations *prometheus.CounterVec
	size        *prometheus.GaugeVec
}

func newCounterVec(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metric.Namespace,
		Subsystem: "cache",
		Name:      name,
		Help:      help,
	}, []string{"cache"})
}

// newCacheMetrics creates and registers cache metrics with the provided registry.
func newCacheMetrics(registry *metric.MetricsRegistry) (*cacheMetrics, error) {
	m := &cacheMetrics{
		hits:        newCounterVec("hits_total", "Total number of cache hits"),
		misses:      newCounterVec("misses_total", "Total number of cache misses"),
		sets:        newCounterVec("sets_total", "Total number of cache set operations"),
		deletes:     newCounterVec("deletes_total", "Total number of explicitly deleted entries"),
		evictions:   newCounterVec("evictions_total", "Total number of LRU evictions"),
		expirations: newCounterVec("expirations_total", "Total number of expired entries removed"),
		size: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metric.Namespace,
			Subsystem: "cache",
			Name:      "size",
			Help:      "Current number of entries in cache",
		}, []string{"cache"}),
	}

	counters := map[string]*prometheus.CounterVec{
		"cache_hits":        m.hits,
		"cache_misses":      m.misses,
		"cache_sets":        m.sets,
		"cache_deletes":     m.deletes,
		"cache_evictions":   m.evictions,
		"cache_expirations": m.expirations,
	}
	for name, vec := range counters {
		if err := registry.RegisterCounterVec(metricsOwner, name, vec); err != nil {
			return nil, err
		}
	}
	if err := registry.RegisterGaugeVec(metricsOwner, "cache_size", m.size); err != nil {
		return nil, err
	}

	return m, nil
}

// recorder binds the shared vectors to one cache name.
type recorder struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	sets        prometheus.Counter
	deletes     prometheus.Counter
	evictions   prometheus.Counter
	expirations prometheus.Counter
	size        prometheus.Gauge
}

func (m *cacheMetrics) forCache(name string) *recorder {
	if m == nil {
		return nil
	}
	return &recorder{
		hits:        m.hits.WithLabelValues(name),
		misses:      m.misses.WithLabelValues(name),
		sets:        m.sets.WithLabelValues(name),
		deletes:     m.deletes.WithLabelValues(name),
		evictions:   m.evictions.WithLabelValues(name),
		expirations: m.expirations.WithLabelValues(name),
		size:        m.size.WithLabelValues(name),
	}
}

// forget drops the label set of a removed cache.
func (m *cacheMetrics) forget(name string) {
	if m == nil {
		return
	}
	for _, vec := range []*prometheus.CounterVec{m.hits, m.misses, m.sets, m.deletes, m.evictions, m.expirations} {
		vec.DeleteLabelValues(name)
	}
	m.size.DeleteLabelValues(name)
}

func (r *recorder) hit() {
	if r != nil {
		r.hits.Inc()
	}
}

func (r *recorder) miss() {
	if r != nil {
		r.misses.Inc()
	}
}

func (r *recorder) set() {
	if r != nil {
		r.sets.Inc()
	}
}

func (r *recorder) deleted(n int) {
	if r != nil && n > 0 {
		r.deletes.Add(float64(n))
	}
}

func (r *recorder) evicted() {
	if r != nil {
		r.evictions.Inc()
	}
}

func (r *recorder) expired(n int) {
	if r != nil && n > 0 {
		r.expirations.Add(float64(n))
	}
}

func (r *recorder) updateSize(n int) {
	if r != nil {
		r.size.Set(float64(n))
	}
}
