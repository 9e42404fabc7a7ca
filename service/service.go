package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Hamza-spc/CountryCompare/compare"
	"github.com/Hamza-spc/CountryCompare/economy"
	"github.com/Hamza-spc/CountryCompare/errors"
	"github.com/Hamza-spc/CountryCompare/health"
	"github.com/Hamza-spc/CountryCompare/metric"
	"github.com/Hamza-spc/CountryCompare/pkg/cache"
	"github.com/Hamza-spc/CountryCompare/pkg/worker"
	"github.com/Hamza-spc/CountryCompare/provider/restcountries"
	"github.com/Hamza-spc/CountryCompare/storage"
	"github.com/Hamza-spc/CountryCompare/types"
)

// AllCountriesKey is the cache key of the full country list.
const AllCountriesKey = "all_countries"

// Defaults for the service options.
const (
	DefaultListTTL        = time.Hour
	DefaultFreshFor       = time.Hour
	DefaultRefreshWorkers = 4
)

// Catalog supplies country metadata.
type Catalog interface {
	FetchAll(ctx context.Context) ([]restcountries.Country, error)
	FetchByName(ctx context.Context, name string) (*restcountries.Country, error)
	Ping(ctx context.Context) error
}

// Estimator fills in the economic fields of a country.
type Estimator interface {
	Estimate(ctx context.Context, name string, population int64, region string) economy.Data
}

// Recorder receives service-level counters. *metric.Metrics satisfies it.
type Recorder interface {
	RecordComparison()
	RecordRefresh(status string)
	RecordStoreError(operation string)
}

type nopRecorder struct{}

func (nopRecorder) RecordComparison()       {}
func (nopRecorder) RecordRefresh(string)    {}
func (nopRecorder) RecordStoreError(string) {}

// Refresh outcomes.
const (
	RefreshUpdated = "updated"
	RefreshSkipped = "skipped"
	RefreshFailed  = "failed"
)

// RefreshReport summarizes one Refresh run.
type RefreshReport struct {
	Total    int           `json:"total"`
	Updated  int           `json:"updated"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// CountryService answers country listings, lookups and comparisons from the
// record store, falling back to the catalog and estimator.
type CountryService struct {
	catalog   Catalog
	estimator Estimator
	store     storage.Store
	cache     *cache.MemoryCache

	logger          *slog.Logger
	recorder        Recorder
	metricsRegistry *metric.MetricsRegistry
	now             func() time.Time

	listTTL    time.Duration
	freshFor   time.Duration
	staleAfter time.Duration
	workers    int

	refreshMu sync.Mutex
	listGroup singleflight.Group
}

// Option configures a CountryService.
type Option func(*CountryService)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *CountryService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *CountryService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithMetricsRegistry exports the worker pool metrics of enrichment and refresh runs.
func WithMetricsRegistry(registry *metric.MetricsRegistry) Option {
	return func(s *CountryService) {
		s.metricsRegistry = registry
	}
}

// WithCache sets the cache holding the country list.
func WithCache(c *cache.MemoryCache) Option {
	return func(s *CountryService) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *CountryService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithListTTL sets how long the country list stays cached.
func WithListTTL(ttl time.Duration) Option {
	return func(s *CountryService) {
		if ttl > 0 {
			s.listTTL = ttl
		}
	}
}

// WithFreshFor sets how recent a stored record must be for GetCountry to
// return it without asking the catalog.
func WithFreshFor(d time.Duration) Option {
	return func(s *CountryService) {
		if d > 0 {
			s.freshFor = d
		}
	}
}

// WithStaleAfter sets the age after which upserts replace stored records.
func WithStaleAfter(d time.Duration) Option {
	return func(s *CountryService) {
		if d > 0 {
			s.staleAfter = d
		}
	}
}

// WithWorkers sets the enrichment and refresh concurrency.
func WithWorkers(n int) Option {
	return func(s *CountryService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New creates a CountryService. catalog, estimator and store are required.
func New(catalog Catalog, estimator Estimator, store storage.Store, opts ...Option) (*CountryService, error) {
	if catalog == nil || estimator == nil || store == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "CountryService", "New",
			"catalog, estimator and store are required")
	}

	s := &CountryService{
		catalog:    catalog,
		estimator:  estimator,
		store:      store,
		logger:     slog.Default(),
		recorder:   nopRecorder{},
		now:        time.Now,
		listTTL:    DefaultListTTL,
		freshFor:   DefaultFreshFor,
		staleAfter: storage.DefaultStaleAfter,
		workers:    DefaultRefreshWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryCache("countries", s.listTTL, 100, cache.WithLogger(s.logger))
	}
	s.logger = s.logger.With("component", "country_service")
	return s, nil
}

// ListCountries returns every country sorted by name. The list is served
// from cache, then the store, then the catalog. A catalog failure yields an
// empty list rather than an error. Concurrent misses share one load, which
// outlives the cancellation of any single caller.
func (s *CountryService) ListCountries(ctx context.Context) ([]types.Country, error) {
	if cached, ok := cache.GetAs[[]types.Country](s.cache, AllCountriesKey); ok {
		return cloneCountries(cached), nil
	}

	ch := s.listGroup.DoChan(AllCountriesKey, func() (any, error) {
		if cached, ok := cache.GetAs[[]types.Country](s.cache, AllCountriesKey); ok {
			return cached, nil
		}
		return s.loadCountries(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, errors.WrapTransient(ctx.Err(), "CountryService", "ListCountries", "wait for country list")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		countries, _ := res.Val.([]types.Country)
		return cloneCountries(countries), nil
	}
}

// loadCountries reads the store, or the catalog when the store is empty, and
// caches the sorted result.
func (s *CountryService) loadCountries(ctx context.Context) ([]types.Country, error) {
	stored, err := s.store.ListCountries(ctx)
	if err != nil {
		s.recorder.RecordStoreError("list_countries")
		s.logger.Warn("Store listing failed, using catalog", "error", err)
	}
	if len(stored) > 0 {
		sortCountries(stored)
		s.cache.SetWithTTL(AllCountriesKey, cloneCountries(stored), s.listTTL)
		return stored, nil
	}

	s.logger.Info("Fetching countries from catalog")
	raw, err := s.catalog.FetchAll(ctx)
	if err != nil {
		s.logger.Error("Catalog fetch failed", "error", err)
		return []types.Country{}, nil
	}

	countries, err := s.buildAll(ctx, raw)
	if err != nil {
		return nil, err
	}
	sortCountries(countries)
	s.logger.Info("Loaded countries from catalog", "count", len(countries))

	s.cache.SetWithTTL(AllCountriesKey, cloneCountries(countries), s.listTTL)
	return countries, nil
}

// buildAll enriches and persists catalog records concurrently.
func (s *CountryService) buildAll(ctx context.Context, raw []restcountries.Country) ([]types.Country, error) {
	now := s.now()
	out := make([]types.Country, len(raw))
	indexes := make([]int, len(raw))
	for i := range raw {
		indexes[i] = i
	}

	_, err := worker.Run(ctx, s.workers, indexes, func(ctx context.Context, i int) error {
		c := s.enrich(ctx, fromCatalog(raw[i], now))
		out[i] = s.upsert(ctx, c)
		return nil
	}, poolOptions[int](s, "enrich")...)
	if err != nil {
		return nil, errors.Wrap(err, "CountryService", "ListCountries", "enrich countries")
	}

	countries := out[:0]
	for _, c := range out {
		if c.Name != "" {
			countries = append(countries, c)
		}
	}
	return countries, nil
}

// GetCountry returns one country. A stored record younger than the freshness
// window is returned as is. Otherwise the catalog is asked and the enriched
// result upserted. Unknown names yield an error matching ErrCountryNotFound.
func (s *CountryService) GetCountry(ctx context.Context, name string) (types.Country, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Country{}, errors.WrapInvalid(errors.ErrInvalidData, "CountryService", "GetCountry",
			"country name is required")
	}

	stored, found := s.lookup(ctx, name)
	if found && !stored.OlderThan(s.now(), s.freshFor) {
		return stored, nil
	}

	rc, err := s.catalog.FetchByName(ctx, name)
	if err != nil {
		if !stderrors.Is(err, errors.ErrCountryNotFound) && found {
			s.logger.Warn("Catalog unavailable, serving stored record", "country", name, "error", err)
			return stored, nil
		}
		return types.Country{}, err
	}

	c := s.enrich(ctx, fromCatalog(*rc, s.now()))
	return s.upsert(ctx, c), nil
}

func (s *CountryService) lookup(ctx context.Context, name string) (types.Country, bool) {
	c, err := s.store.GetCountry(ctx, name)
	if err == nil {
		return c, true
	}
	if !stderrors.Is(err, errors.ErrKeyNotFound) {
		s.recorder.RecordStoreError("get_country")
		s.logger.Warn("Store lookup failed", "country", name, "error", err)
	}
	return types.Country{}, false
}

// Compare resolves both countries, compares them and records the comparison.
func (s *CountryService) Compare(ctx context.Context, name1, name2 string) (compare.Result, error) {
	name1, name2 = strings.TrimSpace(name1), strings.TrimSpace(name2)
	if name1 == "" || name2 == "" {
		return compare.Result{}, errors.WrapInvalid(errors.ErrInvalidData, "CountryService", "Compare",
			"both country names are required")
	}

	c1, err := s.resolve(ctx, name1)
	if err != nil {
		return compare.Result{}, err
	}
	c2, err := s.resolve(ctx, name2)
	if err != nil {
		return compare.Result{}, err
	}

	now := s.now()
	result := compare.Compare(c1, c2, now)
	s.recorder.RecordComparison()

	record, err := types.NewComparison(name1, name2, result, now)
	if err == nil {
		err = s.store.SaveComparison(ctx, record)
	}
	if err != nil {
		s.recorder.RecordStoreError("save_comparison")
		s.logger.Warn("Failed to record comparison", "country1", name1, "country2", name2, "error", err)
	}
	return result, nil
}

// resolve prefers any stored record and only asks the catalog for unknown names.
func (s *CountryService) resolve(ctx context.Context, name string) (types.Country, error) {
	if c, ok := s.lookup(ctx, name); ok {
		return c, nil
	}
	rc, err := s.catalog.FetchByName(ctx, name)
	if err != nil {
		return types.Country{}, err
	}
	return s.upsert(ctx, s.enrich(ctx, fromCatalog(*rc, s.now()))), nil
}

// History returns recorded comparisons, newest first.
func (s *CountryService) History(ctx context.Context) ([]types.Comparison, error) {
	list, err := s.store.ListComparisons(ctx)
	if err != nil {
		s.recorder.RecordStoreError("list_comparisons")
		return nil, errors.Wrap(err, "CountryService", "History", "list comparisons")
	}
	return list, nil
}

// Statistics aggregates the current country list.
func (s *CountryService) Statistics(ctx context.Context) (compare.Statistics, error) {
	countries, err := s.ListCountries(ctx)
	if err != nil {
		return compare.Statistics{}, err
	}
	return compare.Aggregate(countries), nil
}

// Refresh re-estimates the economic fields of every stored country through a
// worker pool. Records newer than the stale-after age are left alone. Only one
// refresh runs at a time.
func (s *CountryService) Refresh(ctx context.Context) (RefreshReport, error) {
	if !s.refreshMu.TryLock() {
		return RefreshReport{}, errors.WrapTransient(errors.ErrAlreadyStarted, "CountryService", "Refresh",
			"refresh already running")
	}
	defer s.refreshMu.Unlock()

	start := s.now()
	countries, err := s.store.ListCountries(ctx)
	if err != nil {
		s.recorder.RecordStoreError("list_countries")
		return RefreshReport{}, errors.Wrap(err, "CountryService", "Refresh", "list stored countries")
	}

	var mu sync.Mutex
	report := RefreshReport{Total: len(countries)}
	count := func(status string) {
		mu.Lock()
		defer mu.Unlock()
		switch status {
		case RefreshUpdated:
			report.Updated++
		case RefreshSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
		s.recorder.RecordRefresh(status)
	}

	_, err = worker.Run(ctx, s.workers, countries, func(ctx context.Context, c types.Country) error {
		next := s.enrich(ctx, c)
		next.LastUpdated = s.now().UTC()

		_, written, err := s.store.UpsertCountry(ctx, next, s.staleAfter)
		switch {
		case err != nil:
			s.recorder.RecordStoreError("upsert_country")
			count(RefreshFailed)
			return fmt.Errorf("refresh %s: %w", c.Name, err)
		case written:
			count(RefreshUpdated)
		default:
			count(RefreshSkipped)
		}
		return nil
	}, poolOptions[types.Country](s, "refresh")...)

	if report.Updated > 0 {
		s.cache.Delete(AllCountriesKey)
	}
	report.Duration = s.now().Sub(start)

	s.logger.Info("Refresh finished",
		"total", report.Total,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration", report.Duration)

	if err != nil {
		return report, errors.Wrap(err, "CountryService", "Refresh", "run refresh pool")
	}
	return report, nil
}

// RunRefresh calls Refresh on every tick until ctx is cancelled.
func (s *CountryService) RunRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Warn("Scheduled refresh failed", "error", err)
			}
		}
	}
}

// InvalidateCache drops cached listings whose key contains pattern; an empty
// pattern clears everything. It returns the number of dropped entries.
func (s *CountryService) InvalidateCache(pattern string) int {
	if pattern == "" {
		n := s.cache.Size()
		s.cache.Clear()
		return n
	}
	return s.cache.DeleteMatching(pattern)
}

// RegisterHealth adds the store check, which is critical, and the catalog
// check, which only degrades, to m.
func (s *CountryService) RegisterHealth(m *health.Monitor) {
	m.Register("store", true, s.store.Ping)
	m.Register("catalog", false, s.catalog.Ping)
}

// enrich fills the economic fields. The catalog groups both Americas under
// one region, so the subregion picks the estimation base.
func (s *CountryService) enrich(ctx context.Context, c types.Country) types.Country {
	region := economy.RegionFor(c.Region, c.Subregion)
	c.ApplyEconomy(s.estimator.Estimate(ctx, c.Name, c.Population, region))
	return c
}

// upsert stores c and returns the record the store holds afterwards. Store
// failures are logged and c is returned.
func (s *CountryService) upsert(ctx context.Context, c types.Country) types.Country {
	stored, _, err := s.store.UpsertCountry(ctx, c, s.staleAfter)
	if err != nil {
		s.recorder.RecordStoreError("upsert_country")
		s.logger.Warn("Failed to store country", "country", c.Name, "error", err)
		return c
	}
	return stored
}

func poolOptions[T any](s *CountryService, name string) []worker.Option[T] {
	opts := []worker.Option[T]{worker.WithName[T](name), worker.WithLogger[T](s.logger)}
	if s.metricsRegistry != nil {
		opts = append(opts, worker.WithMetricsRegistry[T](s.metricsRegistry))
	}
	return opts
}

func sortCountries(countries []types.Country) {
	sort.SliceStable(countries, func(i, j int) bool { return countries[i].Name < countries[j].Name })
}

func cloneCountries(in []types.Country) []types.Country {
	out := make([]types.Country, len(in))
	copy(out, in)
	return out
}
