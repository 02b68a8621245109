package analysis

import (
	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/montanaflynn/stats"
)

// Outliers holds the population statistics of one year and the records
// falling strictly outside mean ± Sigma·StdDev.
type Outliers struct {
	Year   string  `json:"year"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Sigma  float64 `json:"sigma"`
	Upper  float64 `json:"upper"`
	Lower  float64 `json:"lower"`
	High   []Entry `json:"high"`
	Low    []Entry `json:"low"`
}

// DetectOutliers computes population mean and standard deviation (divided by
// n, not n-1) over the valid readings of year. sigma <= 0 uses DefaultSigma.
// With zero variance both outlier sets are empty.
func DetectOutliers(records []dataset.Record, year string, sigma float64) Outliers {
	if sigma <= 0 {
		sigma = DefaultSigma
	}
	out := Outliers{Year: year, Sigma: sigma, High: []Entry{}, Low: []Entry{}}
	entries := validEntries(records, year)
	if len(entries) == 0 {
		return out
	}
	data := make(stats.Float64Data, len(entries))
	for i, e := range entries {
		data[i] = e.Value
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return out
	}
	sd, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return out
	}
	out.Mean, out.StdDev = mean, sd
	out.Upper = mean + sigma*sd
	out.Lower = mean - sigma*sd
	if sd == 0 {
		return out
	}
	for _, e := range entries {
		switch {
		case e.Value > out.Upper:
			out.High = append(out.High, e)
		case e.Value < out.Lower:
			out.Low = append(out.Low, e)
		}
	}
	return out
}

func validEntries(records []dataset.Record, year string) []Entry {
	out := make([]Entry, 0, len(records))
	for _, r := range records {
		if v, ok := r.Value(year); ok {
			out = append(out, Entry{Record: r, Value: v})
		}
	}
	return out
}
