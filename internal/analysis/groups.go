package analysis

import (
	"sort"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"gonum.org/v1/gonum/floats"
)

// Group is the average of one year's readings across records sharing a key.
type Group struct {
	Key     string  `json:"key"`
	Average float64 `json:"average"`
	Sum     float64 `json:"sum"`
	// Count is the number of readings in the denominator.
	Count int `json:"count"`
	// Size is the number of records in the group.
	Size int `json:"size"`
}

// GroupAverages partitions records by Record.GroupKey and averages year.
//
// Every record joins exactly one group. A reading stored as a valid zero
// (ZeroAsMissing) is part of the denominator and drags the average down;
// an invalid reading (NullAsMissing) is not, and a group with no valid
// readings averages 0. Groups are sorted by average descending with ties in
// first-seen order.
func GroupAverages(records []dataset.Record, year string) []Group {
	if len(records) == 0 {
		return []Group{}
	}
	index := make(map[string]int)
	groups := make([]Group, 0)
	values := make([][]float64, 0)
	for _, r := range records {
		key := r.GroupKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
			values = append(values, nil)
		}
		groups[i].Size++
		if v, ok := r.Value(year); ok {
			values[i] = append(values[i], v)
		}
	}
	for i := range groups {
		groups[i].Count = len(values[i])
		if groups[i].Count == 0 {
			continue
		}
		groups[i].Sum = floats.Sum(values[i])
		groups[i].Average = groups[i].Sum / float64(groups[i].Count)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Average > groups[j].Average })
	return groups
}
