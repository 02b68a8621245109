package analysis

import (
	"math"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// KPI is the headline summary over a record set.
type KPI struct {
	LatestYear string `json:"latest_year"`
	PriorYear  string `json:"prior_year"`
	Records    int    `json:"records"`
	// Average is the mean of the latest year's valid readings; Reporting
	// counts them.
	Average   float64 `json:"average"`
	Reporting int     `json:"reporting"`
	// Improved counts records whose latest reading is strictly above the prior one.
	Improved int `json:"improved"`
	// MeanGrowth averages latest-prior over records where both are present.
	MeanGrowth    float64 `json:"mean_growth"`
	GrowthSamples int     `json:"growth_samples"`
	// ImpactScore is max(0, MeanGrowth/Average·100), with Average 0 read as 1.
	ImpactScore float64 `json:"impact_score"`
}

// Summarize computes the KPI block. Empty input yields a zero KPI.
func Summarize(records []dataset.Record, latest, prior string) KPI {
	k := KPI{LatestYear: latest, PriorYear: prior, Records: len(records)}
	var latestVals, growth []float64
	for _, r := range records {
		if v, ok := r.Value(latest); ok {
			latestVals = append(latestVals, v)
		}
		if g, ok := r.Growth(latest, prior); ok {
			growth = append(growth, g)
			if g > 0 {
				k.Improved++
			}
		}
	}
	k.Reporting = len(latestVals)
	k.GrowthSamples = len(growth)
	if len(latestVals) > 0 {
		k.Average = stat.Mean(latestVals, nil)
	}
	if len(growth) > 0 {
		k.MeanGrowth = stat.Mean(growth, nil)
	}
	denom := k.Average
	if denom == 0 {
		denom = 1
	}
	k.ImpactScore = math.Max(0, k.MeanGrowth/denom*100)
	return k
}
