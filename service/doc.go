// Package service implements CountryService, the application layer that
// answers country listings, single-country lookups, comparisons and
// background refreshes.
//
// Reads go through three layers. The full list is cached under
// AllCountriesKey for an hour; below that sits the record store, and below
// that the REST Countries catalog. Every record built from the catalog is
// enriched by the economy estimator and upserted, so the store only replaces
// a record once it is older than a day.
//
// Refresh re-estimates the stored records through a pkg/worker pool and
// reports how many were updated, skipped or failed. RunRefresh repeats it on
// a ticker.
//
// MemoizedIndicators wraps a World Bank client in a cache.Memoize so the
// estimator's live tier asks the API at most once per country per TTL.
package service
