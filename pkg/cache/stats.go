package cache

import "sync/atomic"

// Statistics counts cache operations. Counters are updated atomically and are
// always collected, whether or not Prometheus metrics are enabled.
type Statistics struct {
	hits        atomic.Int64
	misses      atomic.Int64
	sets        atomic.Int64
	deletes     atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64
}

func (s *Statistics) hit() { s.hits.Add(1) }

func (s *Statistics) miss() { s.misses.Add(1) }

func (s *Statistics) set() { s.sets.Add(1) }

func (s *Statistics) delete(n int) { s.deletes.Add(int64(n)) }

func (s *Statistics) eviction() { s.evictions.Add(1) }

func (s *Statistics) expired(n int) { s.expirations.Add(int64(n)) }

// HitRatio returns hits / (hits + misses), or 0 before any read.
func (s *Statistics) HitRatio() float64 {
	hits := s.hits.Load()
	total := hits + s.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Stats is a point-in-time snapshot of a cache.
type Stats struct {
	TotalItems         int     `json:"total_items"`
	ExpiredItems       int     `json:"expired_items"`
	ActiveItems        int     `json:"active_items"`
	TotalAccessCount   int64   `json:"total_access_count"`
	AverageAccessCount float64 `json:"average_access_count"`
	MaxSize            int     `json:"max_size"`
	UsagePercentage    float64 `json:"usage_percentage"`

	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Sets        int64   `json:"sets"`
	Deletes     int64   `json:"deletes"`
	Evictions   int64   `json:"evictions"`
	Expirations int64   `json:"expirations"`
	HitRatio    float64 `json:"hit_ratio"`
}

func (s *Statistics) fill(out *Stats) {
	out.Hits = s.hits.Load()
	out.Misses = s.misses.Load()
	out.Sets = s.sets.Load()
	out.Deletes = s.deletes.Load()
	out.Evictions = s.evictions.Load()
	out.Expirations = s.expirations.Load()
	out.HitRatio = s.HitRatio()
}
