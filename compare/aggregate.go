package compare

import (
	"sort"

	"github.com/Hamza-spc/CountryCompare/types"
)

// Summary describes the distribution of one numeric field.
type Summary struct {
	Count   int     `json:"count"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Statistics aggregates a list of countries. Zero values are treated as
// missing and left out of the numeric summaries.
type Statistics struct {
	TotalCountries       int            `json:"total_countries"`
	Population           *Summary       `json:"population_stats,omitempty"`
	Area                 *Summary       `json:"area_stats,omitempty"`
	GDP                  *Summary       `json:"gdp_stats,omitempty"`
	HDI                  *Summary       `json:"hdi_stats,omitempty"`
	RegionalDistribution map[string]int `json:"regional_distribution"`
	CurrencyDistribution map[string]int `json:"currency_distribution"`
	SourceDistribution   map[string]int `json:"source_distribution"`
}

// Aggregate computes Statistics over countries.
func Aggregate(countries []types.Country) Statistics {
	stats := Statistics{
		TotalCountries:       len(countries),
		RegionalDistribution: make(map[string]int),
		CurrencyDistribution: make(map[string]int),
		SourceDistribution:   make(map[string]int),
	}
	if len(countries) == 0 {
		return stats
	}

	var populations, areas, gdps, hdis []float64
	for _, c := range countries {
		if c.Population != 0 {
			populations = append(populations, float64(c.Population))
		}
		if c.Area != 0 {
			areas = append(areas, c.Area)
		}
		if c.GDP != 0 {
			gdps = append(gdps, c.GDP)
		}
		if c.HDI != 0 {
			hdis = append(hdis, c.HDI)
		}

		stats.RegionalDistribution[orUnknown(c.Region)]++
		stats.CurrencyDistribution[orUnknown(c.Currency)]++
		stats.SourceDistribution[orUnknown(string(c.DataSource))]++
	}

	stats.Population = summarize(populations)
	stats.Area = summarize(areas)
	stats.GDP = summarize(gdps)
	stats.HDI = summarize(hdis)
	return stats
}

func summarize(values []float64) *Summary {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s := &Summary{
		Count: len(sorted),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
	}
	for _, v := range sorted {
		s.Total += v
	}
	s.Average = s.Total / float64(len(sorted))

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		s.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		s.Median = sorted[mid]
	}
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// Size categories by GDP.
const (
	SizeVeryLarge = "Very Large"
	SizeLarge     = "Large"
	SizeMedium    = "Medium"
	SizeSmall     = "Small"
	SizeVerySmall = "Very Small"
)

// EconomicSizeCategory buckets a GDP in US dollars.
func EconomicSizeCategory(gdp float64) string {
	switch {
	case gdp >= 5e12:
		return SizeVeryLarge
	case gdp >= 1e12:
		return SizeLarge
	case gdp >= 1e11:
		return SizeMedium
	case gdp >= 1e10:
		return SizeSmall
	default:
		return SizeVerySmall
	}
}

// PopulationDensity returns inhabitants per square kilometre, or 0 when area
// or population is unknown.
func PopulationDensity(c types.Country) float64 {
	if c.Area <= 0 || c.Population <= 0 {
		return 0
	}
	return float64(c.Population) / c.Area
}
