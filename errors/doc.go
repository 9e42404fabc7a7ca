// # Overview
//
// Every error that leaves a CountryCompare component falls in one of three
// classes:
//
//   - Transient: upstream timeouts, 5xx and 429 responses, storage outages (retry)
//   - Invalid: unknown countries, malformed payloads, bad input (do not retry)
//   - Fatal: missing or invalid configuration (stop the process)
//
// Classification works on ClassifiedError values produced by the Wrap family
// and falls back to the sentinel variables and a few message patterns, so
// plain errors from net/http or the NATS client are still classified.
//
// # Error Wrapping Pattern
//
// Wrapping follows a single format:
//
//	"component.method: action failed: %w"
//
// For example:
//
//	if resp.StatusCode == http.StatusNotFound {
//	    return errors.WrapInvalid(errors.ErrCountryNotFound, "restcountries", "FetchByName", name)
//	}
//
// # Retry Integration
//
// pkg/retry decides whether to try again through Config.Retryable, which the
// provider clients set to IsTransient:
//
//	cfg := appCfg.ProviderRetry()
//	cfg.Retryable = errors.IsTransient
//	err := retry.Do(ctx, cfg, fetch)
//
// # Compatibility
//
// The package shadows the standard library errors package. Import it under an
// alias (errs) where errors.Is and errors.As from the standard library are also needed.
package errors
