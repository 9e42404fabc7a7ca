package service

import (
	"strings"
	"time"

	"github.com/Hamza-spc/CountryCompare/economy"
	"github.com/Hamza-spc/CountryCompare/pkg/cache"
)

// DefaultIndicatorTTL is how long World Bank answers are reused. The series
// are annual so a few hours is plenty.
const DefaultIndicatorTTL = 6 * time.Hour

// MemoizedIndicators caches provider answers per ISO code in c. Errors are
// not cached, so a failed lookup is retried on the next estimate.
func MemoizedIndicators(c *cache.MemoryCache, provider economy.IndicatorProvider, ttl time.Duration) economy.IndicatorProvider {
	if ttl <= 0 {
		ttl = DefaultIndicatorTTL
	}
	fetch := cache.Memoize(c, "indicators", ttl,
		func(iso string) any { return strings.ToUpper(iso) },
		provider.FetchIndicators,
	)
	return economy.IndicatorFunc(fetch)
}
