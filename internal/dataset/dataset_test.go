package dataset

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

const header = "country,major_area,region,2017,2018,2019,2020,2021,2022,2023,2024"

func TestParseAfghanistanRow(t *testing.T) {
	text := header + "\n" + "Afghanistan,Asia,Southern Asia,null,null,6.49,8.2,9.23,1.9,2.84,3.63\n"
	res := Parse(text, DefaultOptions())
	if !res.HeaderDetected {
		t.Fatalf("expected header detection")
	}
	if len(res.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(res.Records))
	}
	r := res.Records[0]
	if r.Country != "Afghanistan" || r.MajorArea != "Asia" || r.Region != "Southern Asia" {
		t.Fatalf("labels = %+v", r)
	}
	if _, ok := r.Value("2017"); ok {
		t.Fatalf("2017 should be missing")
	}
	if v, ok := r.Value("2019"); !ok || v != 6.49 {
		t.Fatalf("2019 = %v,%v want 6.49", v, ok)
	}
	if v, ok := r.Value("2024"); !ok || v != 3.63 {
		t.Fatalf("2024 = %v,%v want 3.63", v, ok)
	}
	g, ok := r.Growth(LatestYear, PriorYear)
	if !ok || math.Abs(g-0.79) > 1e-9 {
		t.Fatalf("growth = %v,%v want 0.79", g, ok)
	}
	if len(r.Speeds) != len(Years) {
		t.Fatalf("speeds should carry every year key, got %d", len(r.Speeds))
	}
}

func TestParseLineEndingsAndBlankLines(t *testing.T) {
	text := header + "\r\n" +
		"A,Asia,East,1,2,3,4,5,6,7,8\r\n" +
		"\r\n" +
		"   \n" +
		"B,Europe,West,1,2,3,4,5,6,7,9\n\n"
	res := Parse(text, DefaultOptions())
	if len(res.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(res.Records))
	}
	if v, _ := res.Records[0].Value("2024"); v != 8 {
		t.Fatalf("CR not stripped from last field: %v", v)
	}
	if res.Dropped != 0 {
		t.Fatalf("dropped = %d, want 0", res.Dropped)
	}
}

func TestParseDropsShortRowsSilently(t *testing.T) {
	text := header + "\n" +
		"A,Asia,East,1,2,3\n" +
		"B,Asia,East,1,2,3,4,5,6,7,8\n" +
		" ,Asia,East,1,2,3,4,5,6,7,8\n"
	res := Parse(text, DefaultOptions())
	if len(res.Records) != 1 || res.Records[0].Country != "B" {
		t.Fatalf("records = %#v", res.Records)
	}
	if res.Rows != 3 || res.Dropped != 2 {
		t.Fatalf("rows=%d dropped=%d, want 3/2", res.Rows, res.Dropped)
	}
}

func TestNaiveSplitMisparsesQuotedCommas(t *testing.T) {
	row := `"Korea, Republic of",Asia,Eastern Asia,1,2,3,4,5,6,7,8`
	naive := Parse(header+"\n"+row, DefaultOptions())
	if len(naive.Records) != 1 {
		t.Fatalf("naive records = %d", len(naive.Records))
	}
	if naive.Records[0].Country != `"Korea` {
		t.Fatalf("naive split is expected to break the quoted field, got %q", naive.Records[0].Country)
	}

	opt := DefaultOptions()
	opt.Split = SplitQuoted
	quoted := Parse(header+"\n"+row, opt)
	if len(quoted.Records) != 1 || quoted.Records[0].Country != "Korea, Republic of" {
		t.Fatalf("quoted records = %#v", quoted.Records)
	}
	if v, _ := quoted.Records[0].Value("2024"); v != 8 {
		t.Fatalf("quoted 2024 = %v", v)
	}
}

func TestHeaderKeyedColumnsInAnyOrder(t *testing.T) {
	text := "Region,Speed 2024,Country,Speed 2023,Continent,2017,2018,2019,2020,2021,2022\n" +
		"Western Europe,88.6,Germany,78.4,Europe,1,2,3,4,5,6\n"
	res := Parse(text, DefaultOptions())
	if len(res.Records) != 1 {
		t.Fatalf("records = %d", len(res.Records))
	}
	r := res.Records[0]
	if r.Country != "Germany" || r.MajorArea != "Europe" || r.Region != "Western Europe" {
		t.Fatalf("labels = %+v", r)
	}
	if v, _ := r.Value("2024"); v != 88.6 {
		t.Fatalf("2024 = %v", v)
	}
	if v, _ := r.Value("2017"); v != 1 {
		t.Fatalf("2017 = %v", v)
	}
}

func TestPositionalFallbackWithoutHeader(t *testing.T) {
	text := "Chile,Americas,South America,17.4,28.5,53.1,117.2,186.4,212.6,238.1,261.4\n"
	res := Parse(text, DefaultOptions())
	if res.HeaderDetected {
		t.Fatalf("data row mistaken for header")
	}
	if len(res.Records) != 1 || res.Records[0].Country != "Chile" {
		t.Fatalf("records = %#v", res.Records)
	}

	opt := DefaultOptions()
	opt.Header = HeaderPresent
	res = Parse("c,m,r,a,b,c,d,e,f,g,h\n"+text, opt)
	if len(res.Records) != 1 || res.HeaderDetected {
		t.Fatalf("unnamed header should be discarded by position: %#v", res)
	}

	opt.Header = HeaderAbsent
	res = Parse(header+"\n"+text, opt)
	if len(res.Records) != 2 {
		t.Fatalf("absent header should keep the first row as data: %d", len(res.Records))
	}
}

func TestParseSpeed(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.5", 12.5, true},
		{"  7 ", 7, true},
		{"0", 0, true},
		{"null", 0, false},
		{"NULL", 0, false},
		{" Null ", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{"+Inf", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseSpeed(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseSpeed(%q) = %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestZeroAsMissingPolicy(t *testing.T) {
	opt := DefaultOptions()
	opt.Policy = ZeroAsMissing
	res := Parse(header+"\nX,Asia,East,null,,abc,4,5,6,7,8", opt)
	r := res.Records[0]
	for _, y := range []string{"2017", "2018", "2019"} {
		v, ok := r.Value(y)
		if !ok || v != 0 {
			t.Fatalf("%s = %v,%v want 0,true", y, v, ok)
		}
	}
}

func TestFormatRowRoundTripIsIdempotent(t *testing.T) {
	for _, p := range []MissingPolicy{NullAsMissing, ZeroAsMissing} {
		opt := DefaultOptions()
		opt.Policy = p
		first := Parse(SampleCSV(), opt)
		var b strings.Builder
		b.WriteString(strings.Join(Header(), ","))
		b.WriteString("\n")
		for _, r := range first.Records {
			b.WriteString(strings.Join(FormatRow(r), ","))
			b.WriteString("\n")
		}
		second := Parse(b.String(), opt)
		if len(second.Records) != len(first.Records) {
			t.Fatalf("%s: records %d != %d", p, len(second.Records), len(first.Records))
		}
		for i := range first.Records {
			a, c := first.Records[i], second.Records[i]
			if a.Country != c.Country || a.MajorArea != c.MajorArea || a.Region != c.Region {
				t.Fatalf("%s: labels differ at %d: %+v vs %+v", p, i, a, c)
			}
			for _, y := range Years {
				if a.Speeds[y] != c.Speeds[y] {
					t.Fatalf("%s: %s/%s differs: %+v vs %+v", p, a.Country, y, a.Speeds[y], c.Speeds[y])
				}
			}
		}
	}
}

func TestSampleDataset(t *testing.T) {
	res := Parse(SampleCSV(), DefaultOptions())
	if res.Dropped != 0 {
		t.Fatalf("sample dropped %d rows", res.Dropped)
	}
	if len(res.Records) < 20 {
		t.Fatalf("sample too small: %d", len(res.Records))
	}
}

func TestSpeedJSON(t *testing.T) {
	r := NewRecord("X", "Asia", "East", NullAsMissing)
	r.Speeds["2024"] = Speed{Mbps: 12.5, Valid: true}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"2024":12.5`) || !strings.Contains(s, `"2017":null`) {
		t.Fatalf("unexpected json: %s", s)
	}
	var back Record
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Speeds["2024"] != r.Speeds["2024"] || back.Speeds["2017"].Valid {
		t.Fatalf("round trip mismatch: %+v", back.Speeds)
	}
}

func TestParseMissingPolicy(t *testing.T) {
	if p, err := ParseMissingPolicy("ZERO"); err != nil || p != ZeroAsMissing {
		t.Fatalf("zero: %v %v", p, err)
	}
	if p, err := ParseMissingPolicy(""); err != nil || p != NullAsMissing {
		t.Fatalf("default: %v %v", p, err)
	}
	if _, err := ParseMissingPolicy("maybe"); err == nil {
		t.Fatalf("expected error")
	}
}
