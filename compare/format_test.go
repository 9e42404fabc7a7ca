package compare

import (
	"math"
	"testing"
)

func TestFormatterNumber(t *testing.T) {
	tests := []struct {
		locale string
		value  float64
		want   string
	}{
		{"en-US", 1234.56, "1,234.56"},
		{"de-DE", 1234.56, "1.234,56"},
		{"en-US", 83000000, "83,000,000"},
		{"de_DE.UTF-8", 1000000, "1.000.000"},
		{"", 42, "42"},
		{"en-US", math.NaN(), NotAvailable},
	}
	for _, tt := range tests {
		if got := NewFormatter(tt.locale).Number(tt.value); got != tt.want {
			t.Errorf("Number(%v, %q) = %q, want %q", tt.value, tt.locale, got, tt.want)
		}
	}
}

func TestFormatterCompact(t *testing.T) {
	en := NewFormatter("en-US")
	de := NewFormatter("de-DE")

	tests := []struct {
		f     Formatter
		value float64
		want  string
	}{
		{en, 4.2e12, "4.20T"},
		{en, 1.2e9, "1.20B"},
		{en, 83_000_000, "83.00M"},
		{en, 1500, "1.50K"},
		{en, 999, "999.00"},
		{en, -2.5e6, "-2.50M"},
		{de, 4.2e12, "4,20T"},
	}
	for _, tt := range tests {
		if got := tt.f.Compact(tt.value, 2); got != tt.want {
			t.Errorf("Compact(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatterCurrencyAndPercentage(t *testing.T) {
	en := NewFormatter("en-US")

	if got := en.Currency(4.2e12, "$"); got != "$4.20T" {
		t.Errorf("Currency = %q", got)
	}
	if got := en.Currency(math.Inf(1), "$"); got != NotAvailable {
		t.Errorf("Currency(Inf) = %q", got)
	}
	if got := en.Percentage(74.44, 1); got != "74.4%" {
		t.Errorf("Percentage = %q", got)
	}
}

func TestFormatterMetric(t *testing.T) {
	en := NewFormatter("en-US")

	tests := []struct {
		metric string
		value  float64
		want   string
	}{
		{MetricGDP, 4.2e12, "$4.20T"},
		{MetricGDPPerCapita, 50600.4, "$50,600"},
		{MetricHDI, 0.9, "0.900"},
		{MetricLifeExpectancy, 81, "81.0 years"},
		{MetricInternetPenetration, 90, "90.0%"},
		{MetricArea, 357114, "357,114 km²"},
	}
	for _, tt := range tests {
		if got := en.Metric(tt.metric, tt.value); got != tt.want {
			t.Errorf("Metric(%s, %v) = %q, want %q", tt.metric, tt.value, got, tt.want)
		}
	}
}

func TestFormatterTagFallback(t *testing.T) {
	if got := NewFormatter("not a locale!!").Tag().String(); got != "en-US" {
		t.Errorf("Tag() = %q, want en-US", got)
	}
}
