package economy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) FetchIndicators(ctx context.Context, iso string) (map[string]Indicator, error) {
	args := m.Called(ctx, iso)
	indicators, _ := args.Get(0).(map[string]Indicator)
	return indicators, args.Error(1)
}

type countingRecorder struct {
	sources []string
}

func (r *countingRecorder) RecordEstimate(source string) {
	r.sources = append(r.sources, source)
}

func TestEstimate_Deterministic(t *testing.T) {
	e := NewEstimator(nil)

	first := e.Estimate(context.Background(), "Ruritania", 2_000_000, "Europe")
	second := e.Estimate(context.Background(), "Ruritania", 2_000_000, "Europe")

	assert.Equal(t, first, second)
	assert.Equal(t, SourceEstimated, first.Source)
	assert.Greater(t, first.GDP, 0.0)
	assert.InDelta(t, first.GDP/2_000_000, first.GDPPerCapita, 1e-6)
	assert.GreaterOrEqual(t, first.HDI, 0.3)
	assert.LessOrEqual(t, first.HDI, 0.99)
	assert.GreaterOrEqual(t, first.LifeExpectancy, 50.0)
	assert.LessOrEqual(t, first.LifeExpectancy, 85.0)
	assert.GreaterOrEqual(t, first.InternetPenetration, 5.0)
	assert.LessOrEqual(t, first.InternetPenetration, 95.0)
}

func TestEstimate_DeterministicDependsOnName(t *testing.T) {
	e := NewEstimator(nil)

	a := e.Deterministic("Ruritania", 2_000_000, "Europe")
	b := e.Deterministic("Freedonia", 2_000_000, "Europe")

	assert.NotEqual(t, a, b)
}

func TestDeterministic_FormulaComponents(t *testing.T) {
	e := NewEstimator(nil)
	s := seed("Ruritania")

	got := e.Deterministic("Ruritania", 2_000_000, "Europe")

	wantPC := 25000 * variation(s) * 1.2
	assert.InDelta(t, wantPC, got.GDPPerCapita, 1e-9)
	assert.InDelta(t, wantPC*2_000_000, got.GDP, 1e-3)
}

func TestDeterministic_UnknownRegionUsesAsia(t *testing.T) {
	e := NewEstimator(nil)

	unknown := e.Deterministic("Atlantis", 500_000, "Under the Sea")
	asia := e.Deterministic("Atlantis", 500_000, "Asia")

	assert.Equal(t, asia, unknown)
}

func TestDeterministic_ZeroPopulation(t *testing.T) {
	e := NewEstimator(nil)

	got := e.Deterministic("Nowhere", 0, "Africa")

	assert.Equal(t, 0.0, got.GDP)
	assert.Greater(t, got.GDPPerCapita, 0.0)
	assert.Equal(t, SourceEstimated, got.Source)
}

func TestDeterministic_Rounding(t *testing.T) {
	e := NewEstimator(nil)

	got := e.Deterministic("Ruritania", 2_000_000, "Europe")

	assert.InDelta(t, got.HDI, round(got.HDI, 3), 1e-12)
	assert.InDelta(t, got.LifeExpectancy, round(got.LifeExpectancy, 1), 1e-12)
	assert.InDelta(t, got.InternetPenetration, round(got.InternetPenetration, 1), 1e-12)
}

func TestEstimate_LiveTier(t *testing.T) {
	provider := &mockProvider{}
	provider.On("FetchIndicators", mock.Anything, "DE").Return(map[string]Indicator{
		IndicatorGDP:          {Value: 4.2e12, Year: 2023},
		IndicatorGDPPerCapita: {Value: 50000, Year: 2023},
	}, nil).Once()

	e := NewEstimator(provider)
	got := e.Estimate(context.Background(), "Germany", 84_000_000, "Europe")

	assert.Equal(t, SourceWorldBank, got.Source)
	assert.Equal(t, 4.2e12, got.GDP)
	assert.Equal(t, 50000.0, got.GDPPerCapita)
	assert.GreaterOrEqual(t, got.HDI, 0.9)
	assert.LessOrEqual(t, got.HDI, 0.99)
	assert.GreaterOrEqual(t, got.LifeExpectancy, 50.0)
	assert.LessOrEqual(t, got.LifeExpectancy, 85.0)
	provider.AssertExpectations(t)
}

func TestLive_DerivesMissingFields(t *testing.T) {
	tests := []struct {
		name       string
		indicators map[string]Indicator
		population int64
		wantGDP    float64
		wantPC     float64
	}{
		{
			name:       "gdp only",
			indicators: map[string]Indicator{IndicatorGDP: {Value: 1e12}},
			population: 10_000_000,
			wantGDP:    1e12,
			wantPC:     100000,
		},
		{
			name:       "per capita only",
			indicators: map[string]Indicator{IndicatorGDPPerCapita: {Value: 20000}},
			population: 5_000_000,
			wantGDP:    1e11,
			wantPC:     20000,
		},
		{
			name:       "gdp only with zero population",
			indicators: map[string]Indicator{IndicatorGDP: {Value: 1e12}},
			population: 0,
			wantGDP:    1e12,
			wantPC:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{}
			provider.On("FetchIndicators", mock.Anything, "FR").Return(tt.indicators, nil)

			e := NewEstimator(provider)
			got, ok := e.Live(context.Background(), "France", tt.population)

			require.True(t, ok)
			assert.InDelta(t, tt.wantGDP, got.GDP, 1e-3)
			assert.InDelta(t, tt.wantPC, got.GDPPerCapita, 1e-9)
			assert.Equal(t, SourceWorldBank, got.Source)
		})
	}
}

func TestLive_UsesReportedIndicators(t *testing.T) {
	provider := &mockProvider{}
	provider.On("FetchIndicators", mock.Anything, "JP").Return(map[string]Indicator{
		IndicatorGDPPerCapita:        {Value: 40000},
		IndicatorHDI:                 {Value: 0.9254},
		IndicatorLifeExpectancy:      {Value: 84.26},
		IndicatorInternetPenetration: {Value: 82.94},
	}, nil)

	e := NewEstimator(provider)
	got, ok := e.Live(context.Background(), "Japan", 125_000_000)

	require.True(t, ok)
	assert.Equal(t, 0.925, got.HDI)
	assert.Equal(t, 84.3, got.LifeExpectancy)
	assert.Equal(t, 82.9, got.InternetPenetration)
}

func TestEstimate_FallsThroughToSample(t *testing.T) {
	tests := []struct {
		name  string
		setup func(p *mockProvider)
	}{
		{
			name: "provider error",
			setup: func(p *mockProvider) {
				p.On("FetchIndicators", mock.Anything, "KM").Return(nil, errors.New("connection refused"))
			},
		},
		{
			name: "no gdp reported",
			setup: func(p *mockProvider) {
				p.On("FetchIndicators", mock.Anything, "KM").Return(map[string]Indicator{
					IndicatorLifeExpectancy: {Value: 64},
				}, nil)
			},
		},
		{
			name: "non-positive gdp",
			setup: func(p *mockProvider) {
				p.On("FetchIndicators", mock.Anything, "KM").Return(map[string]Indicator{
					IndicatorGDP:          {Value: 0},
					IndicatorGDPPerCapita: {Value: -1},
				}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{}
			tt.setup(provider)

			e := NewEstimator(provider)
			got := e.Estimate(context.Background(), "Comoros", 900_000, "Africa")

			assert.Equal(t, SourceSample, got.Source)
			assert.Equal(t, 1.2e9, got.GDP)
			assert.InDelta(t, 1.2e9/900_000, got.GDPPerCapita, 1e-9)
			assert.Equal(t, 0.554, got.HDI)
			assert.Equal(t, 64.3, got.LifeExpectancy)
			assert.Equal(t, 8.0, got.InternetPenetration)
			provider.AssertExpectations(t)
		})
	}
}

func TestEstimate_ProviderTimeout(t *testing.T) {
	provider := &mockProvider{}
	provider.On("FetchIndicators", mock.Anything, "KM").
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			<-ctx.Done()
		}).
		Return(nil, context.DeadlineExceeded)

	params := DefaultParams()
	params.ProviderTimeout = 20 * time.Millisecond

	e := NewEstimator(provider, WithParams(params))

	start := time.Now()
	got := e.Estimate(context.Background(), "Comoros", 900_000, "Africa")

	assert.Equal(t, SourceSample, got.Source)
	assert.Less(t, time.Since(start), time.Second)
}

func TestEstimate_UnknownCodeSkipsProvider(t *testing.T) {
	provider := &mockProvider{}

	e := NewEstimator(provider)
	got := e.Estimate(context.Background(), "Ruritania", 2_000_000, "Europe")

	assert.Equal(t, SourceEstimated, got.Source)
	provider.AssertNotCalled(t, "FetchIndicators", mock.Anything, mock.Anything)
}

func TestSample_ZeroPopulation(t *testing.T) {
	e := NewEstimator(nil)

	got, ok := e.Sample("Comoros", 0)

	require.True(t, ok)
	assert.Equal(t, 0.0, got.GDPPerCapita)
	assert.Equal(t, 1.2e9, got.GDP)
}

func TestEstimate_CustomTables(t *testing.T) {
	e := NewEstimator(nil,
		WithCodeTable(CodeTable{}),
		WithSampleTable(map[string]Sample{
			"Ruritania": {GDP: 5e9, HDI: 0.8, LifeExpectancy: 77, InternetPenetration: 60},
		}),
	)

	got := e.Estimate(context.Background(), "Ruritania", 1_000_000, "Europe")
	assert.Equal(t, SourceSample, got.Source)
	assert.Equal(t, 5000.0, got.GDPPerCapita)

	got = e.Estimate(context.Background(), "Comoros", 900_000, "Africa")
	assert.Equal(t, SourceEstimated, got.Source)
}

func TestEstimate_RecordsSource(t *testing.T) {
	rec := &countingRecorder{}
	e := NewEstimator(nil, WithRecorder(rec))

	e.Estimate(context.Background(), "Comoros", 900_000, "Africa")
	e.Estimate(context.Background(), "Ruritania", 2_000_000, "Europe")

	assert.Equal(t, []string{"sample", "estimated"}, rec.sources)
}

func TestJitterRange(t *testing.T) {
	for _, name := range []string{"", "a", "Ruritania", "Freedonia", "Elbonia", "Genovia"} {
		s := seed(name)
		for _, shift := range []uint{hdiShift, lifeShift, internetShift} {
			j := jitter(s, shift, 0.01)
			assert.GreaterOrEqual(t, j, -0.01, name)
			assert.LessOrEqual(t, j, 0.01, name)
		}
		v := variation(s)
		assert.GreaterOrEqual(t, v, 0.5)
		assert.Less(t, v, 1.5)
	}
}

func TestPopulationFactor(t *testing.T) {
	tests := []struct {
		population int64
		want       float64
	}{
		{200_000_000, 0.6},
		{100_000_001, 0.6},
		{100_000_000, 0.8},
		{60_000_000, 0.8},
		{20_000_000, 1.0},
		{2_000_000, 1.2},
		{1_000_000, 1.4},
		{0, 1.4},
	}
	for _, tt := range tests {
		if got := populationFactor(tt.population); got != tt.want {
			t.Errorf("populationFactor(%d) = %v, want %v", tt.population, got, tt.want)
		}
	}
}

func TestHDIFormulaClamps(t *testing.T) {
	p := DefaultParams()
	s := seed("Ruritania")

	assert.Equal(t, 0.99, p.hdi(s, 1e7))
	assert.GreaterOrEqual(t, p.hdi(s, 0), 0.3)
	assert.LessOrEqual(t, p.hdi(s, 0), 0.31)
	assert.InDelta(t, 0.8, p.hdi(s, 5000), 0.011)
	assert.InDelta(t, 0.5, p.hdi(s, 5001), 0.011)
}

func TestRegionFor(t *testing.T) {
	tests := []struct {
		region, subregion, want string
	}{
		{"Americas", "South America", "South America"},
		{"Americas", "North America", "North America"},
		{"Americas", "Caribbean", "North America"},
		{"Europe", "Western Europe", "Europe"},
		{"Africa", "", "Africa"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RegionFor(tt.region, tt.subregion))
	}
}
