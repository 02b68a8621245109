package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
)

// Report is a markdown-friendly summary of one query scope.
type Report struct {
	Name      string   `json:"name"`
	Scope     string   `json:"scope,omitempty"`
	Year      string   `json:"year"`
	Countries int      `json:"countries"`
	Highest   *Entry   `json:"highest,omitempty"`
	Lowest    *Entry   `json:"lowest,omitempty"`
	KPI       KPI      `json:"kpi"`
	Groups    []Group  `json:"groups"`
	Outliers  Outliers `json:"outliers"`
	Top       []Entry  `json:"top"`
	Warnings  []string `json:"warnings,omitempty"`
}

// BuildReport runs every aggregate over records. An empty record set
// produces a report with zero countries rather than an error.
func BuildReport(name, scope string, records []dataset.Record, opt Options) *Report {
	if opt.Year == "" {
		opt.Year = dataset.LatestYear
	}
	if opt.LatestYear == "" {
		opt.LatestYear = dataset.LatestYear
	}
	if opt.PriorYear == "" {
		opt.PriorYear = dataset.PriorYear
	}
	rep := &Report{
		Name:      name,
		Scope:     scope,
		Year:      opt.Year,
		Countries: len(records),
		KPI:       Summarize(records, opt.LatestYear, opt.PriorYear),
		Groups:    GroupAverages(records, opt.Year),
		Outliers:  DetectOutliers(records, opt.Year, opt.Sigma),
		Top:       TopN(records, opt.Year, opt.TopN),
	}
	if hi, lo, ok := Extremes(records, opt.Year); ok {
		rep.Highest, rep.Lowest = &hi, &lo
	}
	if missing := len(records) - len(validEntries(records, opt.Year)); missing > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d of %d countries have no %s reading", missing, len(records), opt.Year))
	}
	return rep
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[SPEED SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", r.Name))
	}
	if r.Scope != "" {
		b.WriteString(fmt.Sprintf("Scope: %s\n", r.Scope))
	}
	b.WriteString(fmt.Sprintf("Year: %s\n", r.Year))
	b.WriteString(fmt.Sprintf("Countries: %d\n", r.Countries))
	if r.Countries == 0 {
		b.WriteString("\n(no data for this scope)\n")
		return b.String()
	}
	if r.Highest != nil && r.Lowest != nil {
		b.WriteString(fmt.Sprintf("Highest: %s (%.2f Mbps)\n", safeVal(r.Highest.Record.Country), r.Highest.Value))
		b.WriteString(fmt.Sprintf("Lowest: %s (%.2f Mbps)\n", safeVal(r.Lowest.Record.Country), r.Lowest.Value))
	}

	k := r.KPI
	b.WriteString("\n[KPI]\n")
	b.WriteString(fmt.Sprintf("- Average %s: %.2f Mbps (%d reporting)\n", k.LatestYear, k.Average, k.Reporting))
	b.WriteString(fmt.Sprintf("- Improved %s→%s: %d\n", k.PriorYear, k.LatestYear, k.Improved))
	b.WriteString(fmt.Sprintf("- Mean growth: %+.2f Mbps (n=%d)\n", k.MeanGrowth, k.GrowthSamples))
	b.WriteString(fmt.Sprintf("- Impact score: %.1f\n", k.ImpactScore))

	if len(r.Groups) > 0 {
		b.WriteString("\n[GROUP AVERAGES]\n")
		b.WriteString("| Group | Average | n |\n| --- | --- | --- |\n")
		for _, g := range r.Groups {
			b.WriteString(fmt.Sprintf("| %s | %.2f | %d |\n", safeVal(g.Key), g.Average, g.Count))
		}
	}

	o := r.Outliers
	b.WriteString("\n[OUTLIERS]\n")
	b.WriteString(fmt.Sprintf("- mean %.2f, stddev %.2f, band %.2f..%.2f (±%.1fσ)\n", o.Mean, o.StdDev, o.Lower, o.Upper, o.Sigma))
	b.WriteString(fmt.Sprintf("- high: %s\n", entryNames(o.High)))
	b.WriteString(fmt.Sprintf("- low: %s\n", entryNames(o.Low)))

	if len(r.Top) > 0 {
		b.WriteString(fmt.Sprintf("\n[TOP %d]\n", len(r.Top)))
		for i, e := range r.Top {
			b.WriteString(fmt.Sprintf("%d. %s: %.2f Mbps\n", i+1, safeVal(e.Record.Country), e.Value))
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func entryNames(entries []Entry) string {
	if len(entries) == 0 {
		return "(none)"
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = fmt.Sprintf("%s (%.2f)", safeVal(e.Record.Country), e.Value)
	}
	return strings.Join(names, ", ")
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
