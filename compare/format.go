package compare

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NotAvailable is printed for values that cannot be formatted.
const NotAvailable = "N/A"

// Formatter renders comparison values with locale-aware separators.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter creates a Formatter from a POSIX locale string (e.g.
// "de_DE.UTF-8") or BCP 47 tag. Empty or unparseable input uses en-US.
func NewFormatter(raw string) Formatter {
	if idx := strings.IndexByte(raw, '.'); idx != -1 {
		raw = raw[:idx]
	}
	raw = strings.ReplaceAll(raw, "_", "-")

	tag, _ := language.Parse(raw)
	if tag == language.Und {
		tag = language.AmericanEnglish
	}
	return Formatter{tag: tag, printer: message.NewPrinter(tag)}
}

// Tag returns the resolved language tag.
func (f Formatter) Tag() language.Tag {
	return f.tag
}

// Number formats v with grouping and at most two fraction digits.
func (f Formatter) Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return f.printer.Sprint(number.Decimal(int64(v)))
	}
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// Compact abbreviates large values with K, M, B and T suffixes and exactly
// precision fraction digits: 4.2e12 becomes "4.20T".
func (f Formatter) Compact(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	scaled, suffix := v, ""
	switch abs := math.Abs(v); {
	case abs >= 1e12:
		scaled, suffix = v/1e12, "T"
	case abs >= 1e9:
		scaled, suffix = v/1e9, "B"
	case abs >= 1e6:
		scaled, suffix = v/1e6, "M"
	case abs >= 1e3:
		scaled, suffix = v/1e3, "K"
	}
	return f.fixed(scaled, precision) + suffix
}

// Currency prefixes the compact value with symbol.
func (f Formatter) Currency(v float64, symbol string) string {
	s := f.Compact(v, 2)
	if s == NotAvailable {
		return s
	}
	return symbol + s
}

// Percentage formats v, already in percent, with precision fraction digits.
func (f Formatter) Percentage(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return f.fixed(v, precision) + "%"
}

func (f Formatter) fixed(v float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	return f.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(precision),
		number.MaxFractionDigits(precision),
	))
}

// Metric formats a metric value in its natural unit.
func (f Formatter) Metric(metric string, v float64) string {
	switch metric {
	case MetricGDP:
		return f.Currency(v, "$")
	case MetricGDPPerCapita:
		return "$" + f.Number(math.Round(v))
	case MetricPopulation:
		return f.Compact(v, 2)
	case MetricArea:
		return f.Number(v) + " km²"
	case MetricHDI:
		return f.fixed(v, 3)
	case MetricLifeExpectancy:
		return f.fixed(v, 1) + " years"
	case MetricInternetPenetration:
		return f.Percentage(v, 1)
	default:
		return f.Number(v)
	}
}
