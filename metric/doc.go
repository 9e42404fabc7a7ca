// Package metric provides Prometheus metrics collection and the HTTP server
// that exposes them.
//
// MetricsRegistry wraps a private prometheus.Registry. It registers the core
// CountryCompare metrics (provider requests, estimator tiers, comparisons,
// refresh outcomes, store errors, health) plus Go runtime collectors, and lets
// other components register their own collectors under an owner name:
//
//	registry := metric.NewMetricsRegistry()
//	caches, err := cache.NewManager(cfg.Cache, cache.WithMetrics(registry))
//
// Registering the same owner/metric pair twice returns an invalid-class error
// instead of panicking.
//
// Server serves the registry at the configured path and a JSON health report at
// /health, which answers 503 when the reported status is unhealthy:
//
//	srv := metric.NewServer(9090, "/metrics", registry, monitor.Check)
//	go func() { _ = srv.Start() }()
//	defer srv.Stop(ctx)
package metric
