// Package compare computes pairwise country comparisons and aggregate
// statistics over country lists.
//
// Compare reports, for every metric in Metrics, both values, the winner, the
// ratio and the absolute difference in percent, plus short textual insights
// for population, GDP, HDI and internet penetration. Aggregate summarises a
// list (total, mean, median, min, max) and counts countries per region,
// currency and data source. Validate flags missing fields and out-of-range
// values. Formatter renders numbers for the command line with locale-aware
// separators via golang.org/x/text.
package compare
