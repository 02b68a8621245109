package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/speedatlas-cli/internal/analysis"
	"github.com/KaramelBytes/speedatlas-cli/internal/pipeline"
	"github.com/KaramelBytes/speedatlas-cli/internal/source"
	"github.com/KaramelBytes/speedatlas-cli/internal/state"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	sbScope       scopeFlags
	sbQuiet       bool
	sbSave        bool
	sbConcurrency int
)

var summaryBatchCmd = &cobra.Command{
	Use:   "summary-batch <files...>",
	Short: "Summarize several CSV/TSV/XLSX files concurrently",
	Long: `Expand each argument as a glob, load the matching files concurrently (bounded by
batch_concurrency) and print one summary per file in sorted path order. With --save
and -w the summaries are stored in the workspace instead of printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		c, err := settings()
		if err != nil {
			return err
		}
		parseOpt, err := c.ParseOptions()
		if err != nil {
			return err
		}
		opt, err := analysisOptions(sbScope.year)
		if err != nil {
			return err
		}
		limit := c.BatchConcurrency
		if cmd.Flags().Changed("concurrency") {
			limit = sbConcurrency
		}
		if limit < 1 {
			limit = 1
		}
		ws, err := openWorkspace(sbScope.workspace)
		if err != nil {
			return err
		}
		if sbSave && ws == nil {
			return fmt.Errorf("--save requires --workspace")
		}

		q := sbScope.query()
		ctx := commandContext(cmd)
		reports := make([]*analysis.Report, len(files))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for i, path := range files {
			g.Go(func() error {
				src := source.Resolve(path, c.HTTPTimeout())
				store := state.New()
				out, err := pipeline.Load(gctx, store, src, parseOpt, nil)
				if err != nil {
					return err
				}
				if out.Dropped > 0 && !sbQuiet {
					fmt.Fprintf(os.Stderr, "⚠ Warning: skipped %d malformed row(s) in %s\n", out.Dropped, out.Source)
				}
				records, name := store.Snapshot()
				reports[i] = analysis.BuildReport(name, q.String(), q.Apply(records), opt)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		total := len(files)
		for i, rep := range reports {
			if !sbQuiet {
				fmt.Fprintf(w, "[%d/%d] %s\n", i+1, total, filepath.Base(files[i]))
			}
			md := rep.Markdown()
			if sbSave {
				path, err := saveSummary(ws, files[i], md)
				if err != nil {
					return err
				}
				if !sbQuiet {
					fmt.Fprintf(w, "✓ Saved summary to workspace '%s' as %s\n", ws.Name, filepath.Base(path))
				}
				continue
			}
			fmt.Fprintln(w, md)
		}
		return nil
	},
}

// expandInputs globs each argument, keeps literal paths that exist, drops
// duplicates and sorts the result.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func init() {
	rootCmd.AddCommand(summaryBatchCmd)
	addScopeFlags(summaryBatchCmd, &sbScope)
	summaryBatchCmd.Flags().BoolVar(&sbQuiet, "quiet", false, "suppress progress and non-essential output")
	summaryBatchCmd.Flags().BoolVar(&sbSave, "save", false, "store each summary in the workspace (-w) instead of printing it")
	summaryBatchCmd.Flags().IntVar(&sbConcurrency, "concurrency", 4, "files loaded at once (default: batch_concurrency)")
}
