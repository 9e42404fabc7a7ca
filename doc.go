// Package countrycompare aggregates country metadata and economic indicators
// from public sources, persists them, and compares countries side by side.
//
// # Architecture
//
// Requests flow through three layers:
//
//	cmd/countrycompare        flags, logging, wiring, signal handling
//	        │
//	service.CountryService    cache → record store → catalog, then estimation
//	        │
//	provider/restcountries    country catalog (REST Countries v3.1)
//	economy.Estimator         World Bank → static table → deterministic formula
//	storage.Store             memstore (in process) or kvstore (NATS JetStream KV)
//
// The in-process cache (pkg/cache) holds the full country list and memoized
// World Bank answers. Entries carry their own TTL, the least recently used
// entry is evicted when a cache is full, and a background sweep removes
// expired entries.
//
// Economic fields are always filled in. When the World Bank has no answer the
// estimator falls back to a table of known values, then to a formula seeded
// by the country name so repeated runs produce the same numbers.
//
// # Packages
//
//   - compare: pairwise metric comparison, insights, aggregate statistics,
//     record validation and locale-aware number formatting
//   - config: JSON/YAML configuration with schema validation and
//     COUNTRYCOMPARE_* environment overrides
//   - economy: the three-tier estimator
//   - errors: classified errors (transient, invalid, fatal)
//   - health: component health checks and aggregation
//   - metric: Prometheus registry and the /metrics and /health server
//   - natsclient: NATS connection management and KV helpers
//   - pkg/cache: TTL and LRU memory cache with a named-cache manager
//   - pkg/retry: exponential backoff
//   - pkg/tlsutil: outbound TLS configuration
//   - pkg/worker: bounded worker pool used for enrichment and refresh
//   - provider: HTTP clients for the upstream APIs
//   - service: the CountryService
//   - storage: the record store interface and its implementations
//   - types: country and comparison records
//
// # Running
//
//	countrycompare compare Germany France
//	countrycompare --config configs/countrycompare.yaml serve
package countrycompare
