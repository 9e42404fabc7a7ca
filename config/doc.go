// Package config loads the CountryCompare configuration.
//
// A Loader starts from Default, merges each layer file over it, applies
// COUNTRYCOMPARE_* environment overrides and validates the result:
//
//	loader := config.NewLoader()
//	cfg, err := loader.LoadFile("configs/countrycompare.yaml")
//	if err != nil {
//		return err
//	}
//
// Files may be JSON (.json) or YAML (.yaml, .yml). YAML is converted to JSON
// before anything else happens, so both formats go through the same checks:
// a nesting depth limit, the embedded JSON Schema (see Schema) and finally
// Config.Validate for constraints that span fields. Unknown keys are rejected.
//
// Durations accept either a Go duration string ("1h30m") or integer
// nanoseconds.
//
// The tls section (see tlsutil.Config) applies to every outbound connection:
// the REST Countries and World Bank clients and NATS.
//
// # Environment
//
//	COUNTRYCOMPARE_REST_COUNTRIES_URL   providers.rest_countries_url
//	COUNTRYCOMPARE_WORLD_BANK_URL       providers.world_bank_url
//	COUNTRYCOMPARE_PROVIDER_TIMEOUT     providers.timeout
//	COUNTRYCOMPARE_PROVIDER_MAX_RETRIES providers.max_retries
//	COUNTRYCOMPARE_DISABLE_LIVE         providers.disable_live
//	COUNTRYCOMPARE_NATS_URL             nats.url
//	COUNTRYCOMPARE_NATS_TOKEN           nats.token
//	COUNTRYCOMPARE_NATS_USERNAME        nats.username
//	COUNTRYCOMPARE_NATS_PASSWORD        nats.password
//	COUNTRYCOMPARE_METRICS_ENABLED      metrics.enabled
//	COUNTRYCOMPARE_METRICS_PORT         metrics.port
//	COUNTRYCOMPARE_REFRESH_WORKERS      refresh.workers
//	COUNTRYCOMPARE_REFRESH_INTERVAL     refresh.interval
//	COUNTRYCOMPARE_CACHE_DEFAULT_TTL    cache.default_ttl
//	COUNTRYCOMPARE_LOCALE               locale
//
// Environment values are not checked against the schema, only by Validate.
package config
