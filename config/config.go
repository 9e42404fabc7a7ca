package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Hamza-spc/CountryCompare/economy"
	"github.com/Hamza-spc/CountryCompare/errors"
	"github.com/Hamza-spc/CountryCompare/pkg/cache"
	"github.com/Hamza-spc/CountryCompare/pkg/retry"
	"github.com/Hamza-spc/CountryCompare/pkg/tlsutil"
)

// Config is the complete application configuration.
type Config struct {
	Cache      cache.Config     `json:"cache"`
	Providers  ProvidersConfig  `json:"providers"`
	Estimation EstimationConfig `json:"estimation"`
	NATS       NATSConfig       `json:"nats"`
	Metrics    MetricsConfig    `json:"metrics"`
	Refresh    RefreshConfig    `json:"refresh"`
	// TLS applies to outbound connections: the providers and NATS.
	TLS tlsutil.Config `json:"tls"`
	// Locale selects number formatting for CLI output (BCP 47, e.g. "en", "de-CH").
	Locale string `json:"locale"`
}

// ProvidersConfig locates the upstream APIs and bounds calls to them.
type ProvidersConfig struct {
	RestCountriesURL string   `json:"rest_countries_url"`
	WorldBankURL     string   `json:"world_bank_url"`
	Timeout          Duration `json:"timeout"`
	MaxRetries       int      `json:"max_retries"`
	RetryDelay       Duration `json:"retry_delay"`
	MaxRetryDelay    Duration `json:"max_retry_delay"`
	// RequestsPerSecond throttles each provider client; 0 disables it.
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`
	// IndicatorTTL is how long World Bank answers are cached.
	IndicatorTTL Duration `json:"indicator_ttl"`
	// DisableLive skips the World Bank tier entirely.
	DisableLive bool `json:"disable_live"`
}

// EstimationConfig overrides the deterministic tier constants.
type EstimationConfig struct {
	HDIJitter            float64  `json:"hdi_jitter"`
	LifeExpectancyJitter float64  `json:"life_expectancy_jitter"`
	InternetJitter       float64  `json:"internet_jitter"`
	ProviderTimeout      Duration `json:"provider_timeout"`
}

// NATSConfig selects the JetStream record store. An empty URL keeps records in memory.
type NATSConfig struct {
	URL               string   `json:"url"`
	Name              string   `json:"name,omitempty"`
	Token             string   `json:"token,omitempty"`
	Username          string   `json:"username,omitempty"`
	Password          string   `json:"password,omitempty"`
	MaxReconnects     int      `json:"max_reconnects"`
	ReconnectWait     Duration `json:"reconnect_wait"`
	Timeout           Duration `json:"timeout"`
	CountriesBucket   string   `json:"countries_bucket"`
	ComparisonsBucket string   `json:"comparisons_bucket"`
	Replicas          int      `json:"replicas"`
	ComparisonTTL     Duration `json:"comparison_ttl"`
}

// MetricsConfig configures the Prometheus and health endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port"`
	Path    string `json:"path"`
}

// RefreshConfig configures background re-estimation of stored countries.
type RefreshConfig struct {
	Workers int `json:"workers"`
	// Interval between scheduled refreshes. Zero disables scheduling.
	Interval Duration `json:"interval"`
}

// Duration is a time.Duration that reads from a duration string or integer
// nanoseconds and writes as a string.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalJSON writes the duration as a string such as "1h0m0s".
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts "10s" or 10000000000.
func (d *Duration) UnmarshalJSON(data []byte) error {
	v, err := cache.ParseDurationField(data, "duration")
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	params := economy.DefaultParams()
	return &Config{
		Cache: cache.DefaultConfig(),
		Providers: ProvidersConfig{
			RestCountriesURL: "https://restcountries.com/v3.1",
			WorldBankURL:     "https://api.worldbank.org/v2",
			Timeout:          Duration(10 * time.Second),
			MaxRetries:       3,
			RetryDelay:       Duration(time.Second),
			MaxRetryDelay:    Duration(10 * time.Second),
			IndicatorTTL:     Duration(6 * time.Hour),

			RequestsPerSecond: 20,
			Burst:             10,
		},
		Estimation: EstimationConfig{
			HDIJitter:            params.HDIJitter,
			LifeExpectancyJitter: params.LifeExpectancyJitter,
			InternetJitter:       params.InternetJitter,
			ProviderTimeout:      Duration(params.ProviderTimeout),
		},
		NATS: NATSConfig{
			MaxReconnects:     -1,
			ReconnectWait:     Duration(2 * time.Second),
			Timeout:           Duration(5 * time.Second),
			CountriesBucket:   "COUNTRIES",
			ComparisonsBucket: "COMPARISONS",
			Replicas:          1,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Refresh: RefreshConfig{
			Workers: 4,
		},
		Locale: "en",
	}
}

func invalid(format string, args ...any) error {
	return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", fmt.Sprintf(format, args...))
}

// Validate checks cross-field constraints the schema cannot express.
func (c *Config) Validate() error {
	if c == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "config is nil")
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}

	p := c.Providers
	if p.RestCountriesURL == "" {
		return invalid("providers.rest_countries_url is required")
	}
	if !p.DisableLive && p.WorldBankURL == "" {
		return invalid("providers.world_bank_url is required unless disable_live is set")
	}
	if p.Timeout.Std() <= 0 {
		return invalid("providers.timeout must be positive, got %v", p.Timeout.Std())
	}
	if p.MaxRetries < 0 {
		return invalid("providers.max_retries must not be negative, got %d", p.MaxRetries)
	}
	if p.RetryDelay.Std() < 0 || p.MaxRetryDelay.Std() < p.RetryDelay.Std() {
		return invalid("providers.retry_delay must be between 0 and max_retry_delay")
	}
	if p.RequestsPerSecond < 0 || p.Burst < 0 {
		return invalid("providers.requests_per_second and providers.burst must not be negative")
	}

	e := c.Estimation
	if e.HDIJitter < 0 || e.LifeExpectancyJitter < 0 || e.InternetJitter < 0 {
		return invalid("estimation jitter amplitudes must not be negative")
	}

	if c.NATS.URL != "" {
		if c.NATS.CountriesBucket == "" || c.NATS.ComparisonsBucket == "" {
			return invalid("nats bucket names are required when nats.url is set")
		}
		if c.NATS.CountriesBucket == c.NATS.ComparisonsBucket {
			return invalid("nats.countries_bucket and nats.comparisons_bucket must differ")
		}
	}

	if err := c.TLS.Validate(); err != nil {
		return err
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return invalid("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}
	if c.Refresh.Workers <= 0 {
		return invalid("refresh.workers must be positive, got %d", c.Refresh.Workers)
	}
	if c.Refresh.Interval.Std() < 0 {
		return invalid("refresh.interval must not be negative")
	}
	return nil
}

// EstimationParams returns the estimator constants with the configured overrides.
func (c *Config) EstimationParams() economy.Params {
	params := economy.DefaultParams()
	params.HDIJitter = c.Estimation.HDIJitter
	params.LifeExpectancyJitter = c.Estimation.LifeExpectancyJitter
	params.InternetJitter = c.Estimation.InternetJitter
	if d := c.Estimation.ProviderTimeout.Std(); d > 0 {
		params.ProviderTimeout = d
	}
	return params
}

// ProviderRetry returns the backoff used by the HTTP provider clients.
// MaxRetries counts retries, so the attempt budget is one more.
func (c *Config) ProviderRetry() retry.Config {
	cfg := retry.Provider()
	cfg.MaxAttempts = c.Providers.MaxRetries + 1
	cfg.InitialDelay = c.Providers.RetryDelay.Std()
	cfg.MaxDelay = c.Providers.MaxRetryDelay.Std()
	return cfg
}

// String returns the configuration as indented JSON with secrets masked.
func (c *Config) String() string {
	masked := *c
	if masked.NATS.Token != "" {
		masked.NATS.Token = "***"
	}
	if masked.NATS.Password != "" {
		masked.NATS.Password = "***"
	}
	data, err := json.MarshalIndent(masked, "", "  ")
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(data)
}
