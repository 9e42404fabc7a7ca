package economy

import "context"

// Source records which tier produced a Data value.
type Source string

const (
	// SourceWorldBank marks live indicator data.
	SourceWorldBank Source = "world_bank"
	// SourceSample marks the built-in table of curated figures.
	SourceSample Source = "sample"
	// SourceEstimated marks the deterministic formula.
	SourceEstimated Source = "estimated"
)

// Data holds the economic fields of a country record.
type Data struct {
	GDP                 float64 `json:"gdp"`
	GDPPerCapita        float64 `json:"gdp_per_capita"`
	HDI                 float64 `json:"hdi"`
	LifeExpectancy      float64 `json:"life_expectancy"`
	InternetPenetration float64 `json:"internet_penetration"`
	Source              Source  `json:"data_source"`
}

// Indicator names understood by the live tier.
const (
	IndicatorGDP                 = "gdp"
	IndicatorGDPPerCapita        = "gdp_per_capita"
	IndicatorHDI                 = "hdi"
	IndicatorLifeExpectancy      = "life_expectancy"
	IndicatorInternetPenetration = "internet_penetration"
)

// Indicator is one observed value and the year it was reported for.
type Indicator struct {
	Value float64 `json:"value"`
	Year  int     `json:"year"`
}

// IndicatorProvider returns the latest indicators for an ISO 3166 code.
// Missing indicators are simply absent from the map.
type IndicatorProvider interface {
	FetchIndicators(ctx context.Context, iso string) (map[string]Indicator, error)
}

// CodeTable maps country names to ISO 3166-1 alpha-2 codes.
type CodeTable map[string]string

// Sample is a curated row of the static table. GDP per capita is not stored;
// it is derived from the caller's population.
type Sample struct {
	GDP                 float64
	HDI                 float64
	LifeExpectancy      float64
	InternetPenetration float64
}

// IndicatorFunc adapts a function to IndicatorProvider.
type IndicatorFunc func(ctx context.Context, iso string) (map[string]Indicator, error)

// FetchIndicators calls f.
func (f IndicatorFunc) FetchIndicators(ctx context.Context, iso string) (map[string]Indicator, error) {
	return f(ctx, iso)
}
