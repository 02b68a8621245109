package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag of c and its children to its default so
// Changed state does not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns its stdout.
func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	logger = nil
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// runCmd is execCmd that fails the test on error.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestCLI_SummaryOnSample(t *testing.T) {
	isolateHome(t)
	out := runCmd(t, "summary")
	for _, want := range []string{"[SPEED SUMMARY]", "Source: sample", "Highest: Chile", "[KPI]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_SummaryEmptyScope(t *testing.T) {
	isolateHome(t)
	out := runCmd(t, "summary", "--region", "Atlantis")
	if !strings.Contains(out, "Countries: 0") || !strings.Contains(out, "(no data for this scope)") {
		t.Fatalf("unexpected empty-scope output:\n%s", out)
	}
	if strings.Contains(out, "[KPI]") {
		t.Fatalf("empty scope should not print KPIs:\n%s", out)
	}
}

func TestCLI_SummaryHTMLToFile(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, "summary.html")
	runCmd(t, "summary", "--html", "-o", path)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read html: %v", err)
	}
	if !strings.Contains(string(b), "<html") || !strings.Contains(string(b), "Chile") {
		t.Fatalf("unexpected html: %s", b)
	}
}

func TestCLI_InvalidYearRejected(t *testing.T) {
	isolateHome(t)
	if _, err := execCmd(t, "top", "--year", "1999"); err == nil {
		t.Fatalf("expected error for unknown year")
	}
}

func TestCLI_Init_Add_List_Summary(t *testing.T) {
	home := isolateHome(t)

	runCmd(t, "init", "lab", "-d", "manual readings")
	if _, err := os.Stat(filepath.Join(home, ".speedatlas", "workspaces", "lab", "workspace.json")); err != nil {
		t.Fatalf("workspace.json not created: %v", err)
	}
	if _, err := execCmd(t, "init", "lab"); err == nil {
		t.Fatalf("expected re-init to fail")
	}

	out := runCmd(t, "add", "-w", "lab", "Atlantis", "Oceania", "Micronesia", "1", "2", "3", "4", "5", "6", "null", "999")
	if !strings.Contains(out, "Record added: Atlantis") {
		t.Fatalf("unexpected add output: %s", out)
	}

	out = runCmd(t, "list", "--entries", "-w", "lab")
	if !strings.Contains(out, "Atlantis (Oceania, Micronesia) 2024=999.00") {
		t.Fatalf("unexpected entries: %s", out)
	}
	out = runCmd(t, "list", "--workspaces")
	if !strings.Contains(out, "- lab") {
		t.Fatalf("workspace not listed: %s", out)
	}

	out = runCmd(t, "summary", "-w", "lab")
	if !strings.Contains(out, "Highest: Atlantis") {
		t.Fatalf("manual entry not merged:\n%s", out)
	}
	out = runCmd(t, "summary")
	if strings.Contains(out, "Atlantis") {
		t.Fatalf("manual entry leaked without -w:\n%s", out)
	}

	runCmd(t, "summary", "-w", "lab", "--save")
	runCmd(t, "summary", "-w", "lab", "--save")
	dir := filepath.Join(home, ".speedatlas", "workspaces", "lab", "summaries")
	for _, name := range []string{"sample.summary.md", "sample__2.summary.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestCLI_AddRequiresWorkspace(t *testing.T) {
	isolateHome(t)
	_, err := execCmd(t, "add", "X", "A", "R", "1", "2", "3", "4", "5", "6", "7", "8")
	if err == nil || !strings.Contains(err.Error(), "--workspace") {
		t.Fatalf("expected workspace error, got %v", err)
	}
}

func TestCLI_GroupsOutliersTopQuery(t *testing.T) {
	isolateHome(t)

	out := runCmd(t, "groups", "--continent", "asia")
	if !strings.Contains(out, "| Group | Average |") {
		t.Fatalf("groups table missing:\n%s", out)
	}

	out = runCmd(t, "outliers", "--sigma", "1")
	if !strings.Contains(out, "(±1.0σ)") || !strings.Contains(out, "high:") {
		t.Fatalf("unexpected outliers output:\n%s", out)
	}

	out = runCmd(t, "top", "-n", "3")
	if !strings.Contains(out, "[TOP 3 2024]") || !strings.Contains(out, "Chile") {
		t.Fatalf("unexpected top output:\n%s", out)
	}

	out = runCmd(t, "query", "--countries", "Chile", "--years", "2023,2024")
	if !strings.Contains(out, "Chile") || !strings.Contains(out, "1 of") {
		t.Fatalf("unexpected query output:\n%s", out)
	}
	if _, err := execCmd(t, "query", "--years", "1900"); err == nil {
		t.Fatalf("expected error for unknown --years entry")
	}
}

func TestCLI_ExportCSVAndJSON(t *testing.T) {
	home := isolateHome(t)
	csvPath := filepath.Join(home, "out.csv")
	runCmd(t, "export", "--countries", "Chile", "-o", csvPath)
	b, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("want header plus one row, got %d lines:\n%s", len(lines), b)
	}
	if lines[0] != strings.Join(dataset.Header(), ",") {
		t.Fatalf("unexpected header: %s", lines[0])
	}

	out := runCmd(t, "export", "--format", "json", "--region", "Atlantis")
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("empty JSON export should be [], got %q", out)
	}
	if _, err := execCmd(t, "export", "--format", "xlsx"); err == nil {
		t.Fatalf("expected xlsx without --output to fail")
	}
}

func TestCLI_ChartPNG(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, "top.png")
	runCmd(t, "chart", "-o", path, "--top", "5")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("chart is not a PNG")
	}
	if _, err := execCmd(t, "chart", "-o", path, "--kind", "pie"); err == nil {
		t.Fatalf("expected unknown kind to fail")
	}
}

func TestCLI_SummaryBatch(t *testing.T) {
	home := isolateHome(t)
	const header = "country,major_area,region,2017,2018,2019,2020,2021,2022,2023,2024\n"
	files := map[string]string{
		"b.csv": header + "Kenya,Africa,Eastern Africa,5,6,7,8,9,10,11,12\n",
		"a.csv": header + "Fiji,Oceania,Melanesia,1,2,3,4,5,6,7,8\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(home, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	out := runCmd(t, "summary-batch", filepath.Join(home, "*.csv"), "--concurrency", "2")
	first := strings.Index(out, "[1/2] a.csv")
	second := strings.Index(out, "[2/2] b.csv")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("summaries not in path order:\n%s", out)
	}
	if !strings.Contains(out, "Highest: Fiji") || !strings.Contains(out, "Highest: Kenya") {
		t.Fatalf("missing per-file summaries:\n%s", out)
	}

	if _, err := execCmd(t, "summary-batch", filepath.Join(home, "*.nope")); err == nil {
		t.Fatalf("expected no-match error")
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	isolateHome(t)
	runCmd(t, "config", "set", "top_n", "3")
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "top_n: 3") {
		t.Fatalf("config not persisted:\n%s", out)
	}
}

func TestCLI_MissingFlagOverridesConfig(t *testing.T) {
	isolateHome(t)
	out := runCmd(t, "--missing", "zero", "config", "show")
	if !strings.Contains(out, "missing_policy: zero") {
		t.Fatalf("flag override not applied:\n%s", out)
	}
}

func TestCLI_AddUnderZeroPolicyStoresNull(t *testing.T) {
	isolateHome(t)
	runCmd(t, "init", "gaps")
	runCmd(t, "--missing", "zero", "add", "-w", "gaps", "Tuvalu", "Oceania", "Polynesia", "1", "2", "3", "4", "5", "6", "7", "null")

	out := runCmd(t, "list", "--entries", "-w", "gaps")
	if !strings.Contains(out, "Tuvalu (Oceania, Polynesia) 2024=null") {
		t.Fatalf("missing 2024 stored as a reading:\n%s", out)
	}
}
