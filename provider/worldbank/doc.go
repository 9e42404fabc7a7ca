// Package worldbank fetches economic indicators from the World Bank v2 API
// for the live tier of the economy estimator.
//
// The four series in Indicators are requested in parallel. Each request asks
// for the most recent observations and keeps the newest that is not null, so
// a country whose latest year is unpublished still reports the year before.
package worldbank
