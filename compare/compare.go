package compare

import (
	"math"
	"time"

	"github.com/Hamza-spc/CountryCompare/types"
)

// Metric names, in the order they are reported.
const (
	MetricPopulation          = "population"
	MetricArea                = "area"
	MetricGDP                 = "gdp"
	MetricGDPPerCapita        = "gdp_per_capita"
	MetricHDI                 = "hdi"
	MetricLifeExpectancy      = "life_expectancy"
	MetricInternetPenetration = "internet_penetration"
)

// Metrics lists every compared metric.
var Metrics = []string{
	MetricPopulation,
	MetricArea,
	MetricGDP,
	MetricGDPPerCapita,
	MetricHDI,
	MetricLifeExpectancy,
	MetricInternetPenetration,
}

// Value returns the named metric of a country, or 0 for an unknown name.
func Value(c types.Country, metric string) float64 {
	switch metric {
	case MetricPopulation:
		return float64(c.Population)
	case MetricArea:
		return c.Area
	case MetricGDP:
		return c.GDP
	case MetricGDPPerCapita:
		return c.GDPPerCapita
	case MetricHDI:
		return c.HDI
	case MetricLifeExpectancy:
		return c.LifeExpectancy
	case MetricInternetPenetration:
		return c.InternetPenetration
	default:
		return 0
	}
}

// MetricComparison compares one metric between two countries.
// Ratio is 0 unless both values are non-zero; DifferencePercentage is 0 when
// the second value is zero.
type MetricComparison struct {
	Country1Value        float64 `json:"country1"`
	Country2Value        float64 `json:"country2"`
	Winner               string  `json:"winner"`
	Ratio                float64 `json:"ratio"`
	DifferencePercentage float64 `json:"difference_percentage"`
}

// Result is a full comparison between two countries.
type Result struct {
	Country1   types.Country               `json:"country1"`
	Country2   types.Country               `json:"country2"`
	Metrics    map[string]MetricComparison `json:"comparison_metrics"`
	Insights   []string                    `json:"insights"`
	ComparedAt time.Time                   `json:"comparison_date"`
}

// Compare builds a Result. The winner of a metric is the country with the
// larger value; equal values have no winner.
func Compare(c1, c2 types.Country, now time.Time) Result {
	metrics := make(map[string]MetricComparison, len(Metrics))
	for _, name := range Metrics {
		metrics[name] = compareMetric(c1.Name, c2.Name, Value(c1, name), Value(c2, name))
	}
	return Result{
		Country1:   c1,
		Country2:   c2,
		Metrics:    metrics,
		Insights:   Insights(metrics),
		ComparedAt: now.UTC(),
	}
}

func compareMetric(name1, name2 string, v1, v2 float64) MetricComparison {
	mc := MetricComparison{Country1Value: v1, Country2Value: v2}
	switch {
	case v1 > v2:
		mc.Winner = name1
	case v2 > v1:
		mc.Winner = name2
	}
	// Ratio stays 0 unless both sides are known; Insights skips such metrics.
	if v1 != 0 && v2 != 0 {
		mc.Ratio = v1 / v2
	}
	if v2 != 0 {
		mc.DifferencePercentage = math.Abs((v1 - v2) / v2 * 100)
	}
	return mc
}
