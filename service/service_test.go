package service

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Hamza-spc/CountryCompare/compare"
	"github.com/Hamza-spc/CountryCompare/economy"
	"github.com/Hamza-spc/CountryCompare/errors"
	"github.com/Hamza-spc/CountryCompare/health"
	"github.com/Hamza-spc/CountryCompare/pkg/cache"
	"github.com/Hamza-spc/CountryCompare/provider/restcountries"
	"github.com/Hamza-spc/CountryCompare/storage/memstore"
	"github.com/Hamza-spc/CountryCompare/types"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) FetchAll(ctx context.Context) ([]restcountries.Country, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]restcountries.Country)
	return list, args.Error(1)
}

func (m *mockCatalog) FetchByName(ctx context.Context, name string) (*restcountries.Country, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(*restcountries.Country)
	return c, args.Error(1)
}

func (m *mockCatalog) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// fixedEstimator returns GDP equal to population so results are easy to check.
type fixedEstimator struct {
	calls   atomic.Int64
	regions sync.Map // country name -> region passed in
}

func (e *fixedEstimator) Estimate(_ context.Context, name string, population int64, region string) economy.Data {
	e.calls.Add(1)
	e.regions.Store(name, region)
	return economy.Data{GDP: float64(population), HDI: 0.8, Source: economy.SourceEstimated}
}

func (e *fixedEstimator) region(name string) string {
	v, _ := e.regions.Load(name)
	s, _ := v.(string)
	return s
}

type countingRecorder struct {
	mu          sync.Mutex
	comparisons int
	refresh     map[string]int
	storeErrors map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{refresh: map[string]int{}, storeErrors: map[string]int{}}
}

func (r *countingRecorder) RecordComparison() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comparisons++
}

func (r *countingRecorder) RecordRefresh(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh[status]++
}

func (r *countingRecorder) RecordStoreError(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storeErrors[op]++
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func catalogCountry(name string, population int64) restcountries.Country {
	return restcountries.Country{
		Name:       restcountries.Name{Common: name},
		Capital:    []string{name + " City"},
		Population: population,
		Area:       1000,
		Region:     "Europe",
		Currencies: map[string]restcountries.Currency{"EUR": {Name: "Euro"}},
		Flags:      restcountries.Flags{PNG: "https://flags/" + name + ".png"},
		CCA2:       name[:2],
	}
}

type fixture struct {
	svc      *CountryService
	catalog  *mockCatalog
	est      *fixedEstimator
	store    *memstore.Store
	clock    *clock
	recorder *countingRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		catalog:  &mockCatalog{},
		est:      &fixedEstimator{},
		store:    memstore.New(),
		clock:    &clock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
		recorder: newCountingRecorder(),
	}
	c := cache.NewMemoryCache("test", time.Hour, 10, cache.WithClock(f.clock.Now))

	svc, err := New(f.catalog, f.est, f.store,
		WithCache(c),
		WithClock(f.clock.Now),
		WithRecorder(f.recorder),
		WithWorkers(3),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(nil, &fixedEstimator{}, memstore.New())
	assert.True(t, errors.IsInvalid(err))
}

func TestListCountries_FromCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.catalog.On("FetchAll", mock.Anything).Return([]restcountries.Country{
		catalogCountry("Spain", 48_000_000),
		catalogCountry("Austria", 9_000_000),
		catalogCountry("Malta", 500_000),
	}, nil).Once()

	list, err := f.svc.ListCountries(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Austria", "Malta", "Spain"}, names(list))
	assert.Equal(t, 9_000_000.0, list[0].GDP)
	assert.Equal(t, "EUR", list[0].Currency)
	assert.Equal(t, "Austria City", list[0].Capital)
	assert.Equal(t, economy.SourceEstimated, list[0].DataSource)

	stored, err := f.store.ListCountries(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 3, "catalog results are persisted")

	again, err := f.svc.ListCountries(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, again)
	f.catalog.AssertNumberOfCalls(t, "FetchAll", 1)
	assert.Equal(t, int64(3), f.est.calls.Load(), "second call is served from cache")
}

func TestListCountries_StoreBeforeCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.PutCountry(ctx, types.Country{Name: "Peru", LastUpdated: f.clock.Now()}))
	require.NoError(t, f.store.PutCountry(ctx, types.Country{Name: "Chile", LastUpdated: f.clock.Now()}))

	list, err := f.svc.ListCountries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chile", "Peru"}, names(list))
	f.catalog.AssertNotCalled(t, "FetchAll", mock.Anything)
}

func TestListCountries_CacheExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.PutCountry(ctx, types.Country{Name: "Peru", LastUpdated: f.clock.Now()}))

	_, err := f.svc.ListCountries(ctx)
	require.NoError(t, err)
	require.NoError(t, f.store.PutCountry(ctx, types.Country{Name: "Chile", LastUpdated: f.clock.Now()}))

	list, err := f.svc.ListCountries(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "still cached")

	f.clock.Advance(time.Hour + time.Second)
	list, err = f.svc.ListCountries(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestListCountries_CatalogFailureYieldsEmptyList(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("FetchAll", mock.Anything).
		Return(nil, errors.WrapTransient(errors.ErrProviderUnavailable, "test", "FetchAll", "down"))

	list, err := f.svc.ListCountries(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestListCountries_ReturnsCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.PutCountry(ctx, types.Country{Name: "Peru", LastUpdated: f.clock.Now()}))

	list, err := f.svc.ListCountries(ctx)
	require.NoError(t, err)
	list[0].Name = "mutated"

	again, err := f.svc.ListCountries(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Peru", again[0].Name)
}

func TestListCountries_ConcurrentMissesShareOneLoad(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	f.catalog.On("FetchAll", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return([]restcountries.Country{catalogCountry("Spain", 48_000_000)}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list, err := f.svc.ListCountries(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, []string{"Spain"}, names(list))
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	f.catalog.AssertNumberOfCalls(t, "FetchAll", 1)
	assert.Equal(t, int64(1), f.est.calls.Load())
}

func TestListCountries_CancelledCallerDoesNotAbortLoad(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	f.catalog.On("FetchAll", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return([]restcountries.Country{catalogCountry("Spain", 48_000_000)}, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := f.svc.ListCountries(ctx)
		first <- err
	}()

	time.Sleep(20 * time.Millisecond)
	second := make(chan []types.Country, 1)
	go func() {
		list, err := f.svc.ListCountries(context.Background())
		assert.NoError(t, err)
		second <- list
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-first, context.Canceled)

	close(release)
	assert.Equal(t, []string{"Spain"}, names(<-second))
}

func TestEnrich_SplitsAmericasBySubregion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	brazil := catalogCountry("Brazil", 214_000_000)
	brazil.Region, brazil.Subregion = "Americas", "South America"
	canada := catalogCountry("Canada", 38_000_000)
	canada.Region, canada.Subregion = "Americas", "North America"
	f.catalog.On("FetchByName", mock.Anything, "Brazil").Return(&brazil, nil)
	f.catalog.On("FetchByName", mock.Anything, "Canada").Return(&canada, nil)

	_, err := f.svc.GetCountry(ctx, "Brazil")
	require.NoError(t, err)
	_, err = f.svc.GetCountry(ctx, "Canada")
	require.NoError(t, err)

	assert.Equal(t, "South America", f.est.region("Brazil"))
	assert.Equal(t, "North America", f.est.region("Canada"))

	stored, err := f.store.GetCountry(ctx, "Brazil")
	require.NoError(t, err)
	assert.Equal(t, "Americas", stored.Region, "the stored record keeps the catalog region")

	f.clock.Advance(48 * time.Hour)
	f.est.regions.Delete("Brazil")
	_, err = f.svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "South America", f.est.region("Brazil"), "refresh uses the same mapping")
}

func TestGetCountry_FreshStoredRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.PutCountry(ctx, types.Country{Name: "Peru", Population: 1, LastUpdated: f.clock.Now()}))

	f.clock.Advance(30 * time.Minute)
	c, err := f.svc.GetCountry(ctx, "peru")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Population)
	f.catalog.AssertNotCalled(t, "FetchByName", mock.Anything, mock.Anything)
}

func TestGetCountry_FromCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rc := catalogCountry("Portugal", 10_000_000)
	f.catalog.On("FetchByName", mock.Anything, "Portugal").Return(&rc, nil).Once()

	c, err := f.svc.GetCountry(ctx, " Portugal ")
	require.NoError(t, err)
	assert.Equal(t, "Portugal", c.Name)
	assert.Equal(t, 10_000_000.0, c.GDP)
	assert.Equal(t, "Po", c.ISOCode)
	assert.Equal(t, f.clock.Now(), c.LastUpdated)

	stored, err := f.store.GetCountry(ctx, "portugal")
	require.NoError(t, err)
	assert.Equal(t, c, stored)
}

func TestGetCountry_StaleButNotExpiredKeepsStoredRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.PutCountry(ctx, types.Country{Name: "Portugal", Population: 1, LastUpdated: f.clock.Now()}))

	f.clock.Advance(2 * time.Hour)
	rc := catalogCountry("Portugal", 10_000_000)
	f.catalog.On("FetchByName", mock.Anything, "Portugal").Return(&rc, nil).Once()

	c, err := f.svc.GetCountry(ctx, "Portugal")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Population, "records younger than a day are not replaced")

	f.clock.Advance(24 * time.Hour)
	f.catalog.On("FetchByName", mock.Anything, "Portugal").Return(&rc, nil).Once()
	c, err = f.svc.GetCountry(ctx, "Portugal")
	require.NoError(t, err)
	assert.Equal(t, int64(10_000_000), c.Population)
}

func TestGetCountry_NotFound(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("FetchByName", mock.Anything, "Atlantis").
		Return(nil, errors.WrapInvalid(errors.ErrCountryNotFound, "test", "FetchByName", "Atlantis"))

	_, err := f.svc.GetCountry(context.Background(), "Atlantis")
	assert.True(t, stderrors.Is(err, errors.ErrCountryNotFound))
}

func TestGetCountry_EmptyName(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetCountry(context.Background(), "  ")
	assert.True(t, errors.IsInvalid(err))
}

func TestGetCountry_CatalogDownServesStoredRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.PutCountry(ctx, types.Country{Name: "Peru", Population: 7, LastUpdated: f.clock.Now()}))
	f.clock.Advance(3 * time.Hour)
	f.catalog.On("FetchByName", mock.Anything, "Peru").
		Return(nil, errors.WrapTransient(errors.ErrProviderUnavailable, "test", "FetchByName", "down"))

	c, err := f.svc.GetCountry(ctx, "Peru")
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.Population)
}

func TestCompare(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.PutCountry(ctx, types.Country{
		Name: "Germany", Population: 83_000_000, Area: 357_000, GDP: 4.2e12, LastUpdated: f.clock.Now(),
	}))
	fr := catalogCountry("France", 68_000_000)
	f.catalog.On("FetchByName", mock.Anything, "France").Return(&fr, nil).Once()

	res, err := f.svc.Compare(ctx, "Germany", "France")
	require.NoError(t, err)
	assert.Equal(t, "Germany", res.Country1.Name)
	assert.Equal(t, "France", res.Country2.Name)
	assert.Equal(t, "Germany", res.Metrics[compare.MetricPopulation].Winner)
	assert.Equal(t, f.clock.Now(), res.ComparedAt)

	history, err := f.svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Germany", history[0].Country1Name)
	assert.Contains(t, string(history[0].Data), "comparison_metrics")
	assert.Equal(t, 1, f.recorder.comparisons)
}

func TestCompare_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Compare(ctx, "", "France")
	assert.True(t, errors.IsInvalid(err))

	f.catalog.On("FetchByName", mock.Anything, "Atlantis").
		Return(nil, errors.WrapInvalid(errors.ErrCountryNotFound, "test", "FetchByName", "Atlantis"))
	_, err = f.svc.Compare(ctx, "Atlantis", "France")
	assert.True(t, stderrors.Is(err, errors.ErrCountryNotFound))

	history, err := f.svc.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := f.clock.Now()
	require.NoError(t, f.store.PutCountry(ctx, types.Country{Name: "Old1", Population: 5, LastUpdated: start.Add(-48 * time.Hour)}))
	require.NoError(t, f.store.PutCountry(ctx, types.Country{Name: "Old2", Population: 6, LastUpdated: start.Add(-25 * time.Hour)}))
	require.NoError(t, f.store.PutCountry(ctx, types.Country{Name: "Fresh", Population: 7, LastUpdated: start.Add(-time.Hour)}))

	_, err := f.svc.ListCountries(ctx)
	require.NoError(t, err)

	report, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 2, f.recorder.refresh[RefreshUpdated])
	assert.Equal(t, 1, f.recorder.refresh[RefreshSkipped])

	old, err := f.store.GetCountry(ctx, "Old1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, old.GDP)
	assert.Equal(t, start, old.LastUpdated)

	fresh, err := f.store.GetCountry(ctx, "Fresh")
	require.NoError(t, err)
	assert.Equal(t, 0.0, fresh.GDP)

	_, cached := f.svc.cache.Get(AllCountriesKey)
	assert.False(t, cached, "updated records invalidate the cached list")
}

func TestRefresh_Empty(t *testing.T) {
	f := newFixture(t)
	report, err := f.svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RefreshReport{}, report)
}

func TestRefresh_RejectsConcurrentRun(t *testing.T) {
	f := newFixture(t)
	f.svc.refreshMu.Lock()
	defer f.svc.refreshMu.Unlock()

	_, err := f.svc.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}

func TestRunRefresh(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	old := types.Country{Name: "Old", Population: 9, LastUpdated: f.clock.Now().Add(-48 * time.Hour)}
	require.NoError(t, f.store.PutCountry(ctx, old))

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.svc.RunRefresh(ctx, 10*time.Millisecond)
	}()

	assert.Eventually(t, func() bool {
		c, err := f.store.GetCountry(context.Background(), "Old")
		return err == nil && c.GDP == 9
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunRefresh did not stop after cancel")
	}
}

func TestInvalidateCache(t *testing.T) {
	f := newFixture(t)
	f.svc.cache.Set(AllCountriesKey, []types.Country{})
	f.svc.cache.Set("country:peru", types.Country{})

	assert.Equal(t, 1, f.svc.InvalidateCache("peru"))
	assert.Equal(t, 1, f.svc.InvalidateCache(""))
	assert.Equal(t, 0, f.svc.cache.Size())
}

func TestStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.PutCountry(ctx, types.Country{Name: "A", Population: 10, Region: "Europe", LastUpdated: f.clock.Now()}))
	require.NoError(t, f.store.PutCountry(ctx, types.Country{Name: "B", Population: 30, Region: "Asia", LastUpdated: f.clock.Now()}))

	stats, err := f.svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCountries)
	require.NotNil(t, stats.Population)
	assert.Equal(t, 20.0, stats.Population.Average)
}

func names(list []types.Country) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Name
	}
	return out
}

func TestRegisterHealth(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("Ping", mock.Anything).
		Return(errors.WrapTransient(errors.ErrProviderUnavailable, "test", "Ping", "down"))

	m := health.NewMonitor("countrycompare", time.Second)
	f.svc.RegisterHealth(m)

	status := m.Check(context.Background())
	assert.True(t, status.IsDegraded())
}
