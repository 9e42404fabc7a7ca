package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/Hamza-spc/CountryCompare/config"
	"github.com/Hamza-spc/CountryCompare/economy"
	"github.com/Hamza-spc/CountryCompare/health"
	"github.com/Hamza-spc/CountryCompare/metric"
	"github.com/Hamza-spc/CountryCompare/natsclient"
	"github.com/Hamza-spc/CountryCompare/pkg/cache"
	"github.com/Hamza-spc/CountryCompare/pkg/retry"
	"github.com/Hamza-spc/CountryCompare/pkg/tlsutil"
	"github.com/Hamza-spc/CountryCompare/provider"
	"github.com/Hamza-spc/CountryCompare/provider/restcountries"
	"github.com/Hamza-spc/CountryCompare/provider/worldbank"
	"github.com/Hamza-spc/CountryCompare/service"
	"github.com/Hamza-spc/CountryCompare/storage"
	"github.com/Hamza-spc/CountryCompare/storage/kvstore"
	"github.com/Hamza-spc/CountryCompare/storage/memstore"
)

// Names of the caches the application uses.
const (
	countriesCache  = "countries"
	indicatorsCache = "indicators"
)

// app holds the wired dependencies of one process.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metric.MetricsRegistry
	monitor *health.Monitor
	caches  *cache.Manager
	nats    *natsclient.Client
	store   storage.Store
	service *service.CountryService
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metric.NewMetricsRegistry(),
		monitor: health.NewMonitor(appName, 5*time.Second),
	}
	core := a.metrics.CoreMetrics()
	a.monitor.SetRecorder(core.RecordHealth)

	caches, err := cache.NewManager(cfg.Cache,
		cache.WithLogger(logger),
		cache.WithMetrics(a.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("create caches: %w", err)
	}
	a.caches = caches

	tlsConfig, err := clientTLS(cfg)
	if err != nil {
		return nil, err
	}

	httpOpts := []provider.Option{
		provider.WithTimeout(cfg.Providers.Timeout.Std()),
		provider.WithRetry(cfg.ProviderRetry()),
		provider.WithRateLimit(cfg.Providers.RequestsPerSecond, cfg.Providers.Burst),
		provider.WithLogger(logger),
		provider.WithRecorder(core),
	}
	if tlsConfig != nil {
		hc := tlsutil.HTTPClient(tlsConfig)
		hc.Timeout = cfg.Providers.Timeout.Std()
		httpOpts = append(httpOpts, provider.WithHTTPClient(hc))
	}
	catalog := restcountries.NewClient(cfg.Providers.RestCountriesURL, httpOpts...)

	var indicators economy.IndicatorProvider
	if !cfg.Providers.DisableLive {
		wb := worldbank.NewClient(cfg.Providers.WorldBankURL, logger, httpOpts...)
		indicators = service.MemoizedIndicators(caches.Cache(indicatorsCache), wb, cfg.Providers.IndicatorTTL.Std())
		a.monitor.Register("world_bank", false, wb.Ping)
	} else {
		logger.Info("Live World Bank indicators disabled")
	}
	estimator := economy.NewEstimator(indicators,
		economy.WithParams(cfg.EstimationParams()),
		economy.WithLogger(logger),
		economy.WithRecorder(core),
	)

	if err := a.openStore(ctx, tlsConfig); err != nil {
		a.close(ctx)
		return nil, err
	}

	svc, err := service.New(catalog, estimator, a.store,
		service.WithLogger(logger),
		service.WithRecorder(core),
		service.WithMetricsRegistry(a.metrics),
		service.WithCache(caches.Cache(countriesCache)),
		service.WithListTTL(listTTL(cfg.Cache)),
		service.WithWorkers(cfg.Refresh.Workers),
	)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("create service: %w", err)
	}
	svc.RegisterHealth(a.monitor)
	a.service = svc

	return a, nil
}

// clientTLS loads the outbound TLS settings, or returns nil when none are set.
func clientTLS(cfg *config.Config) (*tls.Config, error) {
	if cfg.TLS.IsZero() {
		return nil, nil
	}
	tlsConfig, err := tlsutil.LoadClientConfig(cfg.TLS)
	if err != nil {
		return nil, fmt.Errorf("load TLS config: %w", err)
	}
	return tlsConfig, nil
}

// listTTL is the TTL of the countries cache when configured by name.
func listTTL(cfg cache.Config) time.Duration {
	if named, ok := cfg.Caches[countriesCache]; ok && named.TTL > 0 {
		return named.TTL
	}
	return cfg.DefaultTTL
}

// openStore picks the JetStream KV store when a NATS URL is configured and
// the in-memory store otherwise.
func (a *app) openStore(ctx context.Context, tlsConfig *tls.Config) error {
	nc := a.cfg.NATS
	if nc.URL == "" {
		a.logger.Info("Using in-memory record store")
		a.store = memstore.New()
		return nil
	}

	core := a.metrics.CoreMetrics()
	opts := []natsclient.ClientOption{
		natsclient.WithLogger(a.logger),
		natsclient.WithMaxReconnects(nc.MaxReconnects),
		natsclient.WithReconnectWait(nc.ReconnectWait.Std()),
		natsclient.WithTimeout(nc.Timeout.Std()),
		natsclient.WithHealthChangeCallback(core.RecordNATSStatus),
	}
	if nc.Name != "" {
		opts = append(opts, natsclient.WithName(nc.Name))
	} else {
		opts = append(opts, natsclient.WithName(appName))
	}
	if nc.Token != "" {
		opts = append(opts, natsclient.WithToken(nc.Token))
	}
	if nc.Username != "" {
		opts = append(opts, natsclient.WithCredentials(nc.Username, nc.Password))
	}
	if tlsConfig != nil {
		opts = append(opts, natsclient.WithTLSConfig(tlsConfig))
	}

	client, err := natsclient.NewClient(nc.URL, opts...)
	if err != nil {
		return fmt.Errorf("create NATS client: %w", err)
	}

	connectCfg := retry.Quick()
	connectCfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		a.logger.Warn("NATS connect failed, retrying", "attempt", attempt, "delay", delay, "error", err)
	}
	if err := retry.Do(ctx, connectCfg, func() error { return client.Connect(ctx) }); err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	a.nats = client

	store, err := kvstore.New(ctx, client, kvstore.Config{
		CountriesBucket:   nc.CountriesBucket,
		ComparisonsBucket: nc.ComparisonsBucket,
		Replicas:          nc.Replicas,
		ComparisonTTL:     nc.ComparisonTTL.Std(),
	}, a.logger)
	if err != nil {
		return fmt.Errorf("open KV store: %w", err)
	}
	a.store = store
	a.logger.Info("Using NATS KV record store",
		"countries_bucket", nc.CountriesBucket,
		"comparisons_bucket", nc.ComparisonsBucket)
	return nil
}

// close releases resources in reverse order of creation. Errors are logged.
func (a *app) close(ctx context.Context) {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Failed to close store", "error", err)
		}
	}
	if a.nats != nil {
		if err := a.nats.Close(ctx); err != nil {
			a.logger.Warn("Failed to close NATS client", "error", err)
		}
	}
	if a.caches != nil {
		if err := a.caches.Close(); err != nil {
			a.logger.Warn("Failed to close caches", "error", err)
		}
	}
}
