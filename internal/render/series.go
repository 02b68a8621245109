// Package render turns aggregates into presentation payloads: chart series,
// Markdown tables, standalone HTML and PNG bar charts.
package render

import (
	"github.com/KaramelBytes/speedatlas-cli/internal/analysis"
	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
)

// Series is a labeled sequence of values; Labels and Values are parallel.
type Series struct {
	Title  string    `json:"title,omitempty"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Values) }

// FromEntries labels each ranked entry by country. Entries are expected to
// carry valid readings; callers ranking mixed data should trim first.
func FromEntries(title string, entries []analysis.Entry) Series {
	s := Series{Title: title, Labels: make([]string, 0, len(entries)), Values: make([]float64, 0, len(entries))}
	for _, e := range entries {
		s.Labels = append(s.Labels, e.Record.Country)
		s.Values = append(s.Values, e.Value)
	}
	return s
}

// FromGroups labels each group average by its key.
func FromGroups(title string, groups []analysis.Group) Series {
	s := Series{Title: title, Labels: make([]string, 0, len(groups)), Values: make([]float64, 0, len(groups))}
	for _, g := range groups {
		s.Labels = append(s.Labels, g.Key)
		s.Values = append(s.Values, g.Average)
	}
	return s
}

// FromYears is one record's readings over time. Missing years are skipped.
func FromYears(r dataset.Record) Series {
	s := Series{Title: r.Country, Labels: []string{}, Values: []float64{}}
	for _, y := range dataset.Years {
		if v, ok := r.Value(y); ok {
			s.Labels = append(s.Labels, y)
			s.Values = append(s.Values, v)
		}
	}
	return s
}

// Valid keeps only entries with a reading for year.
func Valid(entries []analysis.Entry, year string) []analysis.Entry {
	out := make([]analysis.Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := e.Record.Value(year); ok {
			out = append(out, e)
		}
	}
	return out
}
