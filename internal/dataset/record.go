package dataset

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Years lists the yearly speed columns in ascending chronological order.
var Years = []string{"2017", "2018", "2019", "2020", "2021", "2022", "2023", "2024"}

const (
	// LatestYear and PriorYear drive growth and KPI computations by default.
	LatestYear = "2024"
	PriorYear  = "2023"

	// MinFields is country, major_area, region plus one column per year.
	MinFields = 3 + 8
)

// IsYear reports whether y is one of the known year labels.
func IsYear(y string) bool {
	for _, v := range Years {
		if v == y {
			return true
		}
	}
	return false
}

// MissingPolicy selects how absent readings are represented in memory.
type MissingPolicy int

const (
	// NullAsMissing keeps absent readings invalid; they are left out of
	// every aggregate denominator.
	NullAsMissing MissingPolicy = iota
	// ZeroAsMissing stores absent readings as a real 0 Mbps value. A missing
	// reading becomes indistinguishable from a true zero and counts in averages.
	ZeroAsMissing
)

func (p MissingPolicy) String() string {
	switch p {
	case ZeroAsMissing:
		return "zero"
	default:
		return "null"
	}
}

// ParseMissingPolicy accepts "null"|"zero" (case-insensitive).
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "nullasmissing":
		return NullAsMissing, nil
	case "zero", "0", "zeroasmissing":
		return ZeroAsMissing, nil
	default:
		return NullAsMissing, fmt.Errorf("unsupported missing policy: %s (use null|zero)", s)
	}
}

// Speed is one yearly reading in Mbps. Valid is false for a missing reading.
type Speed struct {
	Mbps  float64
	Valid bool
}

// Missing returns the in-memory sentinel for an absent reading under p.
func Missing(p MissingPolicy) Speed {
	if p == ZeroAsMissing {
		return Speed{Mbps: 0, Valid: true}
	}
	return Speed{}
}

func (s Speed) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Mbps)
}

func (s *Speed) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Speed{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*s = Speed{Mbps: f, Valid: true}
	return nil
}

// Record is one country's multi-year speed series plus grouping labels.
type Record struct {
	ID        string           `json:"id,omitempty"`
	Country   string           `json:"country"`
	MajorArea string           `json:"major_area"`
	Region    string           `json:"region"`
	Speeds    map[string]Speed `json:"speeds"`
	Manual    bool             `json:"manual,omitempty"`
}

// NewRecord returns a record with every year key set to the missing sentinel.
func NewRecord(country, majorArea, region string, p MissingPolicy) Record {
	r := Record{
		Country:   strings.TrimSpace(country),
		MajorArea: strings.TrimSpace(majorArea),
		Region:    strings.TrimSpace(region),
		Speeds:    make(map[string]Speed, len(Years)),
	}
	for _, y := range Years {
		r.Speeds[y] = Missing(p)
	}
	return r
}

// Value returns the reading for year; ok is false when it is missing.
func (r Record) Value(year string) (float64, bool) {
	s, found := r.Speeds[year]
	if !found || !s.Valid {
		return 0, false
	}
	return s.Mbps, true
}

// Growth is speeds[latest] - speeds[prior], defined only when both are present.
func (r Record) Growth(latest, prior string) (float64, bool) {
	cur, ok := r.Value(latest)
	if !ok {
		return 0, false
	}
	prev, ok := r.Value(prior)
	if !ok {
		return 0, false
	}
	return cur - prev, true
}

// GroupKey is the region, falling back to the major area, then "Unknown".
func (r Record) GroupKey() string {
	if r.Region != "" {
		return r.Region
	}
	if r.MajorArea != "" {
		return r.MajorArea
	}
	return "Unknown"
}

// WithPolicy re-applies p to a record loaded under another policy: invalid
// readings become the policy's missing sentinel and missing keys are filled.
func (r Record) WithPolicy(p MissingPolicy) Record {
	out := r
	out.Speeds = make(map[string]Speed, len(Years))
	for _, y := range Years {
		s, ok := r.Speeds[y]
		if !ok || !s.Valid {
			s = Missing(p)
		}
		out.Speeds[y] = s
	}
	return out
}
