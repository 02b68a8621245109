package render

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
)

// Table renders records as a Markdown table with one column per year.
// Missing readings show as "-".
func Table(records []dataset.Record, years []string) string {
	if len(years) == 0 {
		years = dataset.Years
	}
	var b strings.Builder
	b.WriteString("| Country | Major area | Region |")
	for _, y := range years {
		b.WriteString(" " + y + " |")
	}
	b.WriteString("\n| --- | --- | --- |")
	for range years {
		b.WriteString(" ---: |")
	}
	b.WriteString("\n")
	for _, r := range records {
		name := cell(r.Country)
		if r.Manual {
			name += " *"
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s |", name, cell(r.MajorArea), cell(r.Region)))
		for _, y := range years {
			if v, ok := r.Value(y); ok {
				b.WriteString(fmt.Sprintf(" %.2f |", v))
			} else {
				b.WriteString(" - |")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SeriesTable renders a series as a two-column Markdown table.
func SeriesTable(s Series, labelHeader, valueHeader string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("| # | %s | %s |\n| --- | --- | ---: |\n", labelHeader, valueHeader))
	for i := range s.Values {
		b.WriteString(fmt.Sprintf("| %d | %s | %.2f |\n", i+1, cell(s.Labels[i]), s.Values[i]))
	}
	return b.String()
}

func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(s), "\n", " "), "|", "/")
}
