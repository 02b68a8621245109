package analysis

import (
	"sort"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
)

// TopN ranks records by year descending and returns the first n. The sort is
// stable, so equal values keep their input order; records without a valid
// reading rank after all valid ones. n larger than the input returns all of
// it, n <= 0 returns none.
func TopN(records []dataset.Record, year string, n int) []Entry {
	if n <= 0 || len(records) == 0 {
		return []Entry{}
	}
	type ranked struct {
		Entry
		valid bool
	}
	all := make([]ranked, len(records))
	for i, r := range records {
		v, ok := r.Value(year)
		all[i] = ranked{Entry: Entry{Record: r, Value: v}, valid: ok}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].valid != all[j].valid {
			return all[i].valid
		}
		return all[i].Value > all[j].Value
	})
	if n > len(all) {
		n = len(all)
	}
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = all[i].Entry
	}
	return out
}

// Extremes returns the highest and lowest valid readings of year. The first
// record wins a tie. ok is false when no record has a valid reading.
func Extremes(records []dataset.Record, year string) (highest, lowest Entry, ok bool) {
	for _, e := range validEntries(records, year) {
		if !ok {
			highest, lowest, ok = e, e, true
			continue
		}
		if e.Value > highest.Value {
			highest = e
		}
		if e.Value < lowest.Value {
			lowest = e
		}
	}
	return highest, lowest, ok
}
