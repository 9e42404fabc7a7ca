// Package retry provides exponential backoff retry logic for transient failures.
//
// # Overview
//
// Upstream data providers (REST Countries, World Bank) and the record store are
// reached over the network and fail intermittently. Do and DoWithResult repeat
// an operation with exponential backoff until it succeeds, the attempts run out,
// or the context is cancelled.
//
// # Configuration Presets
//
//   - DefaultConfig(): 3 attempts, 100ms-5s delay
//   - Provider(): 4 attempts (one call plus three retries), 1s-10s delay
//   - Quick(): 10 attempts, 50ms-1s delay (storage connection at startup)
//
// # Deciding What to Retry
//
// Errors wrapped with NonRetryable stop the loop immediately. Config.Retryable
// narrows retries further; provider clients set it to errors.IsTransient so a
// 404 or a malformed payload is returned at once:
//
//	cfg := retry.Provider()
//	cfg.Retryable = errs.IsTransient
//	body, err := retry.DoWithResult(ctx, cfg, func() ([]byte, error) {
//	    return c.get(ctx, path)
//	})
//
// Config.OnRetry observes each backoff, which is where callers log and count retries.
//
// # Context Cancellation
//
// All retry operations respect context cancellation and stop when the context is
// cancelled, either between attempts or during a backoff delay.
//
// # Thread Safety
//
// All functions are safe for concurrent use. The jitter source is guarded by a mutex.
package retry
