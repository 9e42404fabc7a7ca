package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Hamza-spc/CountryCompare/compare"
	"github.com/Hamza-spc/CountryCompare/service"
	"github.com/Hamza-spc/CountryCompare/types"
)

// printer renders command results as aligned text or JSON.
type printer struct {
	out    io.Writer
	json   bool
	format compare.Formatter
}

func newPrinter(out io.Writer, asJSON bool, locale string) *printer {
	return &printer{out: out, json: asJSON, format: compare.NewFormatter(locale)}
}

func (p *printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) table(fn func(w io.Writer)) error {
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fn(w)
	return w.Flush()
}

func (p *printer) countries(countries []types.Country) error {
	if p.json {
		return p.writeJSON(countries)
	}
	return p.table(func(w io.Writer) {
		_, _ = fmt.Fprintln(w, "NAME\tREGION\tPOPULATION\tGDP\tHDI\tSOURCE")
		for _, c := range countries {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				c.Name, c.Region,
				p.format.Metric(compare.MetricPopulation, float64(c.Population)),
				p.format.Metric(compare.MetricGDP, c.GDP),
				p.format.Metric(compare.MetricHDI, c.HDI),
				c.DataSource)
		}
	})
}

func (p *printer) country(c types.Country) error {
	validation := compare.Validate(c)
	if p.json {
		return p.writeJSON(struct {
			types.Country
			EconomicSize      string             `json:"economic_size"`
			PopulationDensity float64            `json:"population_density"`
			Validation        compare.Validation `json:"validation"`
		}{c, compare.EconomicSizeCategory(c.GDP), compare.PopulationDensity(c), validation})
	}
	err := p.table(func(w io.Writer) {
		row := func(label, value string) { _, _ = fmt.Fprintf(w, "%s\t%s\n", label, value) }
		row("Name", c.Name)
		row("Capital", c.Capital)
		row("Region", strings.TrimSuffix(c.Region+" / "+c.Subregion, " / "))
		row("Currency", c.Currency)
		for _, m := range compare.Metrics {
			row(metricLabel(m), p.format.Metric(m, compare.Value(c, m)))
		}
		row("Density", p.format.Number(compare.PopulationDensity(c))+" /km²")
		row("Economic size", compare.EconomicSizeCategory(c.GDP))
		row("Source", string(c.DataSource))
		row("Updated", c.LastUpdated.Format(time.RFC3339))
	})
	if err != nil {
		return err
	}
	for _, e := range validation.Errors {
		_, _ = fmt.Fprintf(p.out, "error: %s\n", e)
	}
	for _, warning := range validation.Warnings {
		_, _ = fmt.Fprintf(p.out, "warning: %s\n", warning)
	}
	return nil
}

func (p *printer) comparison(r compare.Result) error {
	if p.json {
		return p.writeJSON(r)
	}
	err := p.table(func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "METRIC\t%s\t%s\tWINNER\tDIFF\n", r.Country1.Name, r.Country2.Name)
		for _, m := range compare.Metrics {
			mc := r.Metrics[m]
			winner := mc.Winner
			if winner == "" {
				winner = "-"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				metricLabel(m),
				p.format.Metric(m, mc.Country1Value),
				p.format.Metric(m, mc.Country2Value),
				winner,
				p.format.Percentage(mc.DifferencePercentage, 1))
		}
	})
	if err != nil {
		return err
	}
	for _, insight := range r.Insights {
		_, _ = fmt.Fprintf(p.out, "* %s\n", insight)
	}
	return nil
}

func (p *printer) refresh(report service.RefreshReport) error {
	if p.json {
		return p.writeJSON(report)
	}
	_, err := fmt.Fprintf(p.out, "refreshed %d countries in %v: %d updated, %d skipped, %d failed\n",
		report.Total, report.Duration.Round(time.Millisecond), report.Updated, report.Skipped, report.Failed)
	return err
}

func (p *printer) statistics(stats compare.Statistics) error {
	if p.json {
		return p.writeJSON(stats)
	}
	return p.table(func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Countries\t%d\n", stats.TotalCountries)
		summaries := []struct {
			metric  string
			summary *compare.Summary
		}{
			{compare.MetricPopulation, stats.Population},
			{compare.MetricArea, stats.Area},
			{compare.MetricGDP, stats.GDP},
			{compare.MetricHDI, stats.HDI},
		}
		for _, s := range summaries {
			if s.summary == nil {
				continue
			}
			_, _ = fmt.Fprintf(w, "%s\tavg %s\tmedian %s\tmin %s\tmax %s\n",
				metricLabel(s.metric),
				p.format.Metric(s.metric, s.summary.Average),
				p.format.Metric(s.metric, s.summary.Median),
				p.format.Metric(s.metric, s.summary.Min),
				p.format.Metric(s.metric, s.summary.Max))
		}
		for _, region := range sortedKeys(stats.RegionalDistribution) {
			_, _ = fmt.Fprintf(w, "Region %s\t%d\n", region, stats.RegionalDistribution[region])
		}
		for _, source := range sortedKeys(stats.SourceDistribution) {
			_, _ = fmt.Fprintf(w, "Source %s\t%d\n", source, stats.SourceDistribution[source])
		}
	})
}

func (p *printer) history(comparisons []types.Comparison) error {
	if p.json {
		return p.writeJSON(comparisons)
	}
	return p.table(func(w io.Writer) {
		_, _ = fmt.Fprintln(w, "ID\tCOUNTRY 1\tCOUNTRY 2\tCREATED")
		for _, c := range comparisons {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Country1Name, c.Country2Name, c.CreatedAt.Format(time.RFC3339))
		}
	})
}

func metricLabel(metric string) string {
	switch metric {
	case compare.MetricGDP:
		return "GDP"
	case compare.MetricGDPPerCapita:
		return "GDP per capita"
	case compare.MetricHDI:
		return "HDI"
	}
	label := strings.ReplaceAll(metric, "_", " ")
	return strings.ToUpper(label[:1]) + label[1:]
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
