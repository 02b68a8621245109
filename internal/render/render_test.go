package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/speedatlas-cli/internal/analysis"
	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
)

func sample(t *testing.T) []dataset.Record {
	t.Helper()
	return dataset.Parse(dataset.SampleCSV(), dataset.DefaultOptions()).Records
}

func TestSeriesFromTopN(t *testing.T) {
	top := analysis.TopN(sample(t), "2024", 3)
	s := FromEntries("Top 3", top)
	if s.Len() != 3 || len(s.Labels) != 3 {
		t.Fatalf("want 3 points, got %+v", s)
	}
	if s.Labels[0] != "Chile" || s.Values[0] != 261.4 {
		t.Fatalf("first point: %s=%v", s.Labels[0], s.Values[0])
	}
}

func TestSeriesFromGroupsAndYears(t *testing.T) {
	recs := sample(t)
	g := FromGroups("Groups", analysis.GroupAverages(recs, "2024"))
	if g.Len() == 0 || len(g.Labels) != g.Len() {
		t.Fatalf("bad group series: %+v", g)
	}
	afg := FromYears(recs[0])
	if afg.Len() != 6 || afg.Labels[0] != "2019" {
		t.Fatalf("Afghanistan series should skip 2017-2018: %+v", afg)
	}
}

func TestValidDropsMissing(t *testing.T) {
	recs := sample(t)
	top := analysis.TopN(recs, "2017", len(recs))
	valid := Valid(top, "2017")
	if len(valid) >= len(top) {
		t.Fatalf("expected missing 2017 readings to be dropped")
	}
}

func TestTable(t *testing.T) {
	recs := sample(t)[:1]
	recs[0].Manual = true
	out := Table(recs, []string{"2017", "2024"})
	if !strings.Contains(out, "| Country | Major area | Region | 2017 | 2024 |") {
		t.Fatalf("header missing:\n%s", out)
	}
	if !strings.Contains(out, "| Afghanistan * | Asia | Southern Asia | - | 3.63 |") {
		t.Fatalf("row missing:\n%s", out)
	}
}

func TestHTMLPromotesSections(t *testing.T) {
	rep := analysis.BuildReport("sample", "all", sample(t), analysis.DefaultOptions())
	page := string(HTML("Speed summary", rep.Markdown()))
	for _, want := range []string{"<title>Speed summary</title>", "KPI</h2>", "<table>"} {
		if !strings.Contains(page, want) {
			t.Fatalf("missing %q in html", want)
		}
	}
}

func TestBarChartPNG(t *testing.T) {
	s := FromEntries("Top", analysis.TopN(sample(t), "2024", 5))
	var buf bytes.Buffer
	if err := BarChart(&buf, s, DefaultChartOptions()); err != nil {
		t.Fatalf("chart: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG")
	}
	if err := BarChart(&buf, Series{}, DefaultChartOptions()); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}
