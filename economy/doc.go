// Package economy estimates the economic fields of a country record.
//
// Estimate tries three tiers and returns the first that succeeds:
//
//  1. Live: indicators from an IndicatorProvider (the World Bank client),
//     looked up by ISO code and bounded by Params.ProviderTimeout. GDP and GDP
//     per capita are derived from each other; HDI, life expectancy and
//     internet penetration are back-filled with the formulas of tier 3.
//  2. Sample: a static table of twenty countries. GDP per capita is always
//     computed from the caller's population.
//  3. Estimated: a formula over region, population and a seed hashed from
//     the country name. It always succeeds.
//
// Jitter is a pure function of the seed, so the result is reproducible for a
// given name, population, region, table and provider response.
package economy
