package economy

import (
	"context"
	"log/slog"
)

// Recorder counts produced records by source. *metric.Metrics implements it.
type Recorder interface {
	RecordEstimate(source string)
}

// Estimator produces economic data for a country: live indicators first,
// then the static table, then a deterministic formula seeded by the name.
// Estimate never fails.
type Estimator struct {
	provider IndicatorProvider
	codes    CodeTable
	samples  map[string]Sample
	params   Params
	logger   *slog.Logger
	recorder Recorder
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithCodeTable replaces the name to ISO code table.
func WithCodeTable(codes CodeTable) Option {
	return func(e *Estimator) {
		if codes != nil {
			e.codes = codes
		}
	}
}

// WithSampleTable replaces the static table.
func WithSampleTable(samples map[string]Sample) Option {
	return func(e *Estimator) {
		if samples != nil {
			e.samples = samples
		}
	}
}

// WithParams replaces the estimation constants.
func WithParams(p Params) Option {
	return func(e *Estimator) {
		e.params = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Estimator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder counts every produced record by source.
func WithRecorder(r Recorder) Option {
	return func(e *Estimator) {
		e.recorder = r
	}
}

// NewEstimator creates an estimator. A nil provider disables the live tier.
func NewEstimator(provider IndicatorProvider, opts ...Option) *Estimator {
	e := &Estimator{
		provider: provider,
		codes:    DefaultCodeTable(),
		samples:  DefaultSampleTable(),
		params:   DefaultParams(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "estimator")
	return e
}

// Estimate returns economic data for the named country.
func (e *Estimator) Estimate(ctx context.Context, name string, population int64, region string) Data {
	if population < 0 {
		population = 0
	}

	data, ok := e.Live(ctx, name, population)
	if !ok {
		data, ok = e.Sample(name, population)
	}
	if !ok {
		data = e.Deterministic(name, population, region)
	}

	if e.recorder != nil {
		e.recorder.RecordEstimate(string(data.Source))
	}
	return data
}

// Live queries the indicator provider. It fails when the country has no ISO
// code, the call errors or times out, or neither GDP nor GDP per capita is
// reported. Missing fields are derived from the ones present.
func (e *Estimator) Live(ctx context.Context, name string, population int64) (Data, bool) {
	if e.provider == nil {
		return Data{}, false
	}
	iso, ok := e.codes[name]
	if !ok {
		return Data{}, false
	}

	if e.params.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.params.ProviderTimeout)
		defer cancel()
	}

	indicators, err := e.provider.FetchIndicators(ctx, iso)
	if err != nil {
		e.logger.Debug("Live indicators unavailable", "country", name, "iso", iso, "error", err)
		return Data{}, false
	}

	value := func(key string) float64 {
		if ind, ok := indicators[key]; ok && ind.Value > 0 {
			return ind.Value
		}
		return 0
	}

	gdp := value(IndicatorGDP)
	gdpPerCapita := value(IndicatorGDPPerCapita)
	if gdp == 0 && gdpPerCapita == 0 {
		e.logger.Debug("Live indicators lack GDP", "country", name, "iso", iso)
		return Data{}, false
	}
	if gdp == 0 {
		gdp = gdpPerCapita * float64(population)
	}
	if gdpPerCapita == 0 {
		gdpPerCapita = perCapita(gdp, population)
	}

	s := seed(name)
	hdi := value(IndicatorHDI)
	if hdi == 0 {
		hdi = e.params.hdi(s, gdpPerCapita)
	}
	life := value(IndicatorLifeExpectancy)
	if life == 0 {
		life = e.params.lifeExpectancy(s, hdi)
	}
	internet := value(IndicatorInternetPenetration)
	if internet == 0 {
		internet = e.params.internet(s, hdi)
	}

	return Data{
		GDP:                 gdp,
		GDPPerCapita:        gdpPerCapita,
		HDI:                 round(hdi, 3),
		LifeExpectancy:      round(life, 1),
		InternetPenetration: round(internet, 1),
		Source:              SourceWorldBank,
	}, true
}

// Sample looks the country up in the static table.
func (e *Estimator) Sample(name string, population int64) (Data, bool) {
	row, ok := e.samples[name]
	if !ok {
		return Data{}, false
	}
	return Data{
		GDP:                 row.GDP,
		GDPPerCapita:        perCapita(row.GDP, population),
		HDI:                 row.HDI,
		LifeExpectancy:      row.LifeExpectancy,
		InternetPenetration: row.InternetPenetration,
		Source:              SourceSample,
	}, true
}

// Deterministic computes estimates from region, population and the name seed.
// The same inputs always produce the same output.
func (e *Estimator) Deterministic(name string, population int64, region string) Data {
	s := seed(name)

	gdpPerCapita := e.params.base(region) * variation(s) * populationFactor(population)
	gdp := 0.0
	if population > 0 {
		gdp = gdpPerCapita * float64(population)
	}

	hdi := e.params.hdi(s, gdpPerCapita)

	return Data{
		GDP:                 gdp,
		GDPPerCapita:        gdpPerCapita,
		HDI:                 round(hdi, 3),
		LifeExpectancy:      round(e.params.lifeExpectancy(s, hdi), 1),
		InternetPenetration: round(e.params.internet(s, hdi), 1),
		Source:              SourceEstimated,
	}
}
