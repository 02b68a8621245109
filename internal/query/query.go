// Package query filters a record set by continent, region, country list and
// free-text search.
package query

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
)

// All is the region-select value that disables region filtering.
const All = "all"

// Predicate reports whether a record belongs to the result.
type Predicate func(dataset.Record) bool

// Continent matches a case-insensitive substring of the major area.
// An empty substring matches everything.
func Continent(sub string) Predicate {
	needle := strings.ToLower(strings.TrimSpace(sub))
	return func(r dataset.Record) bool {
		return strings.Contains(strings.ToLower(r.MajorArea), needle)
	}
}

// RegionSelect matches the major area or the region exactly, ignoring case.
// Empty or All selects every record.
func RegionSelect(name string) Predicate {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, All) {
		return func(dataset.Record) bool { return true }
	}
	return func(r dataset.Record) bool {
		return strings.EqualFold(r.MajorArea, name) || strings.EqualFold(r.Region, name)
	}
}

// Countries matches membership in a comma-separated list of country names.
func Countries(list string) Predicate {
	set := make(map[string]struct{})
	for _, c := range strings.Split(list, ",") {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			set[c] = struct{}{}
		}
	}
	return func(r dataset.Record) bool {
		_, ok := set[strings.ToLower(strings.TrimSpace(r.Country))]
		return ok
	}
}

// Search matches a case-insensitive substring of the country or the region.
func Search(term string) Predicate {
	needle := strings.ToLower(strings.TrimSpace(term))
	return func(r dataset.Record) bool {
		return strings.Contains(strings.ToLower(r.Country), needle) ||
			strings.Contains(strings.ToLower(r.Region), needle)
	}
}

// Filter keeps the records satisfying every predicate. Each predicate is
// evaluated against the same base record, so the result is their conjunction.
// A filter matching nothing returns an empty, non-nil slice.
func Filter(records []dataset.Record, preds ...Predicate) []dataset.Record {
	out := make([]dataset.Record, 0, len(records))
next:
	for _, r := range records {
		for _, p := range preds {
			if p != nil && !p(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// Query bundles the filters a caller may supply. Zero fields are ignored.
type Query struct {
	Continent string `json:"continent,omitempty"`
	Region    string `json:"region,omitempty"`
	Countries string `json:"countries,omitempty"`
	Search    string `json:"search,omitempty"`
}

// Predicates returns one predicate per non-empty field.
func (q Query) Predicates() []Predicate {
	var ps []Predicate
	if strings.TrimSpace(q.Continent) != "" {
		ps = append(ps, Continent(q.Continent))
	}
	if strings.TrimSpace(q.Region) != "" {
		ps = append(ps, RegionSelect(q.Region))
	}
	if strings.TrimSpace(q.Countries) != "" {
		ps = append(ps, Countries(q.Countries))
	}
	if strings.TrimSpace(q.Search) != "" {
		ps = append(ps, Search(q.Search))
	}
	return ps
}

// Apply filters records by q.
func (q Query) Apply(records []dataset.Record) []dataset.Record {
	return Filter(records, q.Predicates()...)
}

// Empty reports whether q filters nothing.
func (q Query) Empty() bool { return len(q.Predicates()) == 0 }

// String describes the scope, e.g. "continent=asia search=ind".
func (q Query) String() string {
	var parts []string
	add := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", k, v))
		}
	}
	add("continent", q.Continent)
	add("region", q.Region)
	add("countries", q.Countries)
	add("search", q.Search)
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, " ")
}
