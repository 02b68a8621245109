package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/speedatlas-cli/internal/analysis"
	"github.com/KaramelBytes/speedatlas-cli/internal/render"
	"github.com/KaramelBytes/speedatlas-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	sumScope  scopeFlags
	sumOutput string
	sumHTML   bool
	sumJSON   bool
	sumTopN   int
	sumSave   bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary [source]",
	Short: "Summarize a speed dataset for a query scope",
	Long: `Load a dataset (CSV/TSV path, .xlsx workbook, http(s) URL or "sample") and print
highest/lowest countries, KPIs, group averages, outliers and a top-N list for the
records matching --continent, --region, --countries and --search.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := load(cmd, args, sumScope)
		if err != nil {
			return err
		}
		opt := l.Options
		if cmd.Flags().Changed("top") {
			opt.TopN = sumTopN
		}
		rep := analysis.BuildReport(l.Source, l.Query.String(), l.Records, opt)
		md := rep.Markdown()

		var data []byte
		switch {
		case sumJSON:
			b, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal report: %w", err)
			}
			data = append(b, '\n')
		case sumHTML:
			data = render.HTML("Speed summary: "+l.Source, md)
		default:
			data = []byte(md)
		}

		if sumSave {
			ws, err := openWorkspace(sumScope.workspace)
			if err != nil {
				return err
			}
			if ws == nil {
				return fmt.Errorf("--save requires --workspace")
			}
			path, err := saveSummary(ws, l.Source, md)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved summary to workspace '%s' as %s\n", ws.Name, filepath.Base(path))
			if sumOutput == "" {
				return nil
			}
		}
		return writeOutput(cmd, sumOutput, data, "summary")
	},
}

// saveSummary writes md under the workspace's summaries/ directory without
// overwriting an earlier summary of the same source.
func saveSummary(ws *workspace.Workspace, sourceName, md string) (string, error) {
	outDir := filepath.Join(ws.RootDir(), "summaries")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	base := safeBase(sourceName)
	outFile := filepath.Join(outDir, base+".summary.md")
	if _, statErr := os.Stat(outFile); statErr == nil {
		for idx := 2; ; idx++ {
			cand := filepath.Join(outDir, fmt.Sprintf("%s__%d.summary.md", base, idx))
			if _, err := os.Stat(cand); os.IsNotExist(err) {
				outFile = cand
				break
			}
		}
	}
	if err := os.WriteFile(outFile, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("write workspace summary: %w", err)
	}
	return outFile, nil
}

// safeBase turns a source name or URL into a filename stem.
func safeBase(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.':
			b.WriteRune('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		s = "dataset"
	}
	return s
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	addScopeFlags(summaryCmd, &sumScope)
	summaryCmd.Flags().StringVarP(&sumOutput, "output", "o", "", "optional path to write the summary")
	summaryCmd.Flags().BoolVar(&sumHTML, "html", false, "render the summary as a standalone HTML page")
	summaryCmd.Flags().BoolVar(&sumJSON, "json", false, "emit the report as JSON")
	summaryCmd.Flags().IntVar(&sumTopN, "top", 10, "entries in the top-N section (0 hides it)")
	summaryCmd.Flags().BoolVar(&sumSave, "save", false, "store the Markdown summary in the workspace (-w)")
}
