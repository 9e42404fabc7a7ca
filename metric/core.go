package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric the process exports.
const Namespace = "countrycompare"

// Metrics contains the application-level metrics shared by all components.
// Cache and worker pool metrics are registered separately by their owners.
type Metrics struct {
	// Upstream providers
	ProviderRequests *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	ProviderRetries  *prometheus.CounterVec

	// Economic estimation
	Estimates *prometheus.CounterVec

	// Service operations
	Comparisons        prometheus.Counter
	CountriesRefreshed *prometheus.CounterVec
	StoreErrors        *prometheus.CounterVec

	// Health
	HealthStatus  *prometheus.GaugeVec
	NATSConnected prometheus.Gauge
}

// NewMetrics creates the core metric set
func NewMetrics() *Metrics {
	return &Metrics{
		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "provider",
				Name:      "requests_total",
				Help:      "Total number of upstream provider requests",
			},
			[]string{"provider", "status"},
		),

		ProviderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "provider",
				Name:      "request_duration_seconds",
				Help:      "Upstream provider request duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"provider"},
		),

		ProviderRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "provider",
				Name:      "retries_total",
				Help:      "Total number of retried provider requests",
			},
			[]string{"provider"},
		),

		Estimates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "economy",
				Name:      "estimates_total",
				Help:      "Economic data records produced, by source tier",
			},
			[]string{"source"},
		),

		Comparisons: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "service",
				Name:      "comparisons_total",
				Help:      "Total number of country comparisons computed",
			},
		),

		CountriesRefreshed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "service",
				Name:      "countries_refreshed_total",
				Help:      "Countries processed by refresh runs",
			},
			[]string{"status"},
		),

		StoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "store",
				Name:      "errors_total",
				Help:      "Record store errors by operation",
			},
			[]string{"operation"},
		),

		HealthStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=degraded, 2=healthy)",
			},
			[]string{"component"},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ProviderRequests,
		m.ProviderDuration,
		m.ProviderRetries,
		m.Estimates,
		m.Comparisons,
		m.CountriesRefreshed,
		m.StoreErrors,
		m.HealthStatus,
		m.NATSConnected,
	}
}

// RecordProviderRequest counts one provider request and observes its latency
func (m *Metrics) RecordProviderRequest(provider, status string, duration time.Duration) {
	m.ProviderRequests.WithLabelValues(provider, status).Inc()
	m.ProviderDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordProviderRetry increments the retry counter for a provider
func (m *Metrics) RecordProviderRetry(provider string) {
	m.ProviderRetries.WithLabelValues(provider).Inc()
}

// RecordEstimate counts an economic record by the tier that produced it
func (m *Metrics) RecordEstimate(source string) {
	m.Estimates.WithLabelValues(source).Inc()
}

// RecordComparison increments the comparison counter
func (m *Metrics) RecordComparison() {
	m.Comparisons.Inc()
}

// RecordRefresh counts a refreshed country ("updated", "skipped", "failed")
func (m *Metrics) RecordRefresh(status string) {
	m.CountriesRefreshed.WithLabelValues(status).Inc()
}

// RecordStoreError increments the store error counter
func (m *Metrics) RecordStoreError(operation string) {
	m.StoreErrors.WithLabelValues(operation).Inc()
}

// RecordHealth updates the health gauge from a status string
func (m *Metrics) RecordHealth(component, status string) {
	value := 0.0
	switch status {
	case "healthy":
		value = 2
	case "degraded":
		value = 1
	}
	m.HealthStatus.WithLabelValues(component).Set(value)
}

// RecordNATSStatus updates NATS connection status
func (m *Metrics) RecordNATSStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	m.NATSConnected.Set(value)
}
