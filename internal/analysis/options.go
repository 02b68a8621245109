package analysis

import "github.com/KaramelBytes/speedatlas-cli/internal/dataset"

// DefaultSigma is the outlier threshold in population standard deviations.
const DefaultSigma = 2.0

// Options controls which year is summarized and how.
type Options struct {
	// Year is the target column for group averages, outliers, extremes and ranking.
	Year string
	// LatestYear and PriorYear define growth for the KPI summary.
	LatestYear string
	PriorYear  string
	// Sigma is the outlier band half-width in standard deviations.
	Sigma float64
	// TopN limits the ranking section of the report; 0 disables it.
	TopN int
}

// DefaultOptions returns the settings used by the CLI when nothing is overridden.
func DefaultOptions() Options {
	return Options{
		Year:       dataset.LatestYear,
		LatestYear: dataset.LatestYear,
		PriorYear:  dataset.PriorYear,
		Sigma:      DefaultSigma,
		TopN:       10,
	}
}

// Entry pairs a record with its value for the year under analysis.
type Entry struct {
	Record dataset.Record `json:"record"`
	Value  float64        `json:"value"`
}
