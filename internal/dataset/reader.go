package dataset

import (
	_ "embed"
	"iter"
)

// Result is the outcome of one parse. Dropped counts rows rejected for
// having too few fields or a blank country.
type Result struct {
	Records        []Record
	Rows           int
	Dropped        int
	HeaderDetected bool
}

// Parse runs the row parser and normalizer over text.
func Parse(text string, opt Options) Result {
	return Collect(Rows(text, opt), opt)
}

// Collect normalizes a row sequence, resolving the header per opt.Header.
func Collect(rows iter.Seq[[]string], opt Options) Result {
	res := Result{Records: make([]Record, 0)}
	sch := PositionalSchema()
	first := true
	for fields := range rows {
		if first {
			first = false
			switch opt.Header {
			case HeaderAuto:
				if hs, ok := HeaderSchema(fields); ok {
					sch = hs
					res.HeaderDetected = true
					continue
				}
			case HeaderPresent:
				if hs, ok := HeaderSchema(fields); ok {
					sch = hs
					res.HeaderDetected = true
				}
				continue
			}
		}
		res.Rows++
		rec, ok := Normalize(fields, sch, opt.Policy)
		if !ok {
			res.Dropped++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

//go:embed sample/speeds.csv
var sampleCSV string

// SampleName is the source name that selects the embedded dataset.
const SampleName = "sample"

// SampleCSV returns the embedded sample dataset.
func SampleCSV() string { return sampleCSV }
