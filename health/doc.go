// Package health tracks the health of the dependencies CountryCompare talks to:
// the record store, the NATS connection and the upstream data providers.
//
// A Monitor holds named checks. Check runs them concurrently, each under its
// own timeout, stores the resulting Status per component and returns the
// aggregate. A failing critical check makes the system unhealthy; a failing
// non-critical check (an upstream provider, for example) only degrades it,
// since the economic estimator falls back to offline tiers.
//
//	monitor := health.NewMonitor("countrycompare", 3*time.Second)
//	monitor.Register("store", true, store.Ping)
//	monitor.Register("worldbank", false, wb.Ping)
//	status := monitor.Check(ctx)
//
// Error messages are sanitized before they are exposed on /health: URLs,
// IP addresses, ports and credential-looking pairs are replaced by placeholders.
package health
