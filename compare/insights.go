package compare

import "math"

// Insight texts.
const (
	InsightPopulationLarger   = "Significant population size difference"
	InsightPopulationSmaller  = "Major population size difference"
	InsightEconomicGap        = "Large economic gap between countries"
	InsightSimilarEconomies   = "Similar economic sizes"
	InsightSimilarDevelopment = "Similar development levels"
	InsightDevelopmentGap     = "Significant development gap"
	InsightDigitalDivide      = "Major digital divide"
	InsightSimilarTechnology  = "Similar technology adoption"
)

// Insights derives short observations from metric comparisons. Metrics
// without a ratio (one side is zero) produce nothing.
func Insights(metrics map[string]MetricComparison) []string {
	insights := []string{}

	if m, ok := metrics[MetricPopulation]; ok && m.Ratio != 0 {
		switch {
		case m.Ratio > 10:
			insights = append(insights, InsightPopulationLarger)
		case m.Ratio < 0.1:
			insights = append(insights, InsightPopulationSmaller)
		}
	}

	if m, ok := metrics[MetricGDP]; ok && m.Ratio != 0 {
		switch {
		case m.Ratio > 5:
			insights = append(insights, InsightEconomicGap)
		case math.Abs(m.Ratio-1) < 0.2:
			insights = append(insights, InsightSimilarEconomies)
		}
	}

	if m, ok := metrics[MetricHDI]; ok && m.Ratio != 0 {
		switch {
		case m.DifferencePercentage < 5:
			insights = append(insights, InsightSimilarDevelopment)
		case m.DifferencePercentage > 20:
			insights = append(insights, InsightDevelopmentGap)
		}
	}

	if m, ok := metrics[MetricInternetPenetration]; ok && m.Ratio != 0 {
		switch {
		case m.Ratio > 2:
			insights = append(insights, InsightDigitalDivide)
		case math.Abs(m.Ratio-1) < 0.3:
			insights = append(insights, InsightSimilarTechnology)
		}
	}

	return insights
}
