package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Schema maps record fields to column positions. -1 means absent.
type Schema struct {
	Country   int
	MajorArea int
	Region    int
	Years     map[string]int
}

// PositionalSchema is the fixed column order:
// country, major_area, region, then the year columns ascending.
func PositionalSchema() Schema {
	s := Schema{Country: 0, MajorArea: 1, Region: 2, Years: make(map[string]int, len(Years))}
	for i, y := range Years {
		s.Years[y] = 3 + i
	}
	return s
}

var yearPattern = regexp.MustCompile(`(\d{4})`)

// HeaderSchema keys columns by header name. ok is false when no column
// names the country, in which case the row is not a header.
func HeaderSchema(header []string) (Schema, bool) {
	s := Schema{Country: -1, MajorArea: -1, Region: -1, Years: make(map[string]int, len(Years))}
	for i, h := range header {
		key := toSnakeCase(h)
		switch key {
		case "country", "country_name", "nation":
			if s.Country < 0 {
				s.Country = i
			}
			continue
		case "major_area", "majorarea", "continent", "area":
			if s.MajorArea < 0 {
				s.MajorArea = i
			}
			continue
		case "region", "sub_region", "subregion":
			if s.Region < 0 {
				s.Region = i
			}
			continue
		}
		if m := yearPattern.FindStringSubmatch(key); len(m) == 2 && IsYear(m[1]) {
			if _, dup := s.Years[m[1]]; !dup {
				s.Years[m[1]] = i
			}
		}
	}
	if s.Country < 0 {
		return s, false
	}
	for _, y := range Years {
		if _, ok := s.Years[y]; !ok {
			s.Years[y] = -1
		}
	}
	return s, true
}

// ParseSpeed coerces a raw cell to Mbps. It never fails: blank cells, the
// token "null" (any case), unparsable and non-finite values all report ok=false.
func ParseSpeed(raw string) (float64, bool) {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "null") {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// SpeedFrom applies the missing-value policy to a raw cell.
func SpeedFrom(raw string, p MissingPolicy) Speed {
	if f, ok := ParseSpeed(raw); ok {
		return Speed{Mbps: f, Valid: true}
	}
	return Missing(p)
}

// Normalize maps one field vector to a Record. Rows narrower than MinFields
// or with a blank country are rejected with ok=false.
func Normalize(fields []string, sch Schema, p MissingPolicy) (Record, bool) {
	if len(fields) < MinFields {
		return Record{}, false
	}
	at := func(i int) string {
		if i < 0 || i >= len(fields) {
			return ""
		}
		return fields[i]
	}
	rec := NewRecord(at(sch.Country), at(sch.MajorArea), at(sch.Region), p)
	if rec.Country == "" {
		return Record{}, false
	}
	for _, y := range Years {
		idx, ok := sch.Years[y]
		if !ok {
			continue
		}
		rec.Speeds[y] = SpeedFrom(at(idx), p)
	}
	return rec, true
}

// Header returns the canonical column names used by FormatRow.
func Header() []string {
	h := []string{"country", "major_area", "region"}
	return append(h, Years...)
}

// FormatRow serializes a record in canonical column order. Missing readings
// are written as "null" so the row normalizes back to the same record.
func FormatRow(r Record) []string {
	row := make([]string, 0, MinFields)
	row = append(row, r.Country, r.MajorArea, r.Region)
	for _, y := range Years {
		row = append(row, FormatSpeed(r.Speeds[y]))
	}
	return row
}

// FormatSpeed renders a reading with the shortest exact representation.
func FormatSpeed(s Speed) string {
	if !s.Valid {
		return "null"
	}
	return strconv.FormatFloat(s.Mbps, 'f', -1, 64)
}

// toSnakeCase converts "Major Area" → "major_area".
func toSnakeCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
