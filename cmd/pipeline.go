package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/speedatlas-cli/internal/analysis"
	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/KaramelBytes/speedatlas-cli/internal/pipeline"
	"github.com/KaramelBytes/speedatlas-cli/internal/query"
	"github.com/KaramelBytes/speedatlas-cli/internal/source"
	"github.com/KaramelBytes/speedatlas-cli/internal/state"
	"github.com/KaramelBytes/speedatlas-cli/internal/utils"
	"github.com/KaramelBytes/speedatlas-cli/internal/workspace"
	"github.com/spf13/cobra"
)

// scopeFlags are the filters and inputs shared by the data commands.
type scopeFlags struct {
	continent string
	region    string
	countries string
	search    string
	year      string
	workspace string
	sheet     string
}

func addScopeFlags(c *cobra.Command, s *scopeFlags) {
	c.Flags().StringVar(&s.continent, "continent", "", "case-insensitive substring of the major area")
	c.Flags().StringVar(&s.region, "region", "", "exact major area or region name ('all' for no filter)")
	c.Flags().StringVar(&s.countries, "countries", "", "comma-separated country names")
	c.Flags().StringVar(&s.search, "search", "", "substring of the country or region")
	c.Flags().StringVar(&s.year, "year", "", "target year (default: latest_year)")
	c.Flags().StringVarP(&s.workspace, "workspace", "w", "", "workspace whose manual entries are included")
	c.Flags().StringVar(&s.sheet, "sheet", "", "XLSX: sheet name (default: first sheet)")
}

func (s scopeFlags) query() query.Query {
	return query.Query{Continent: s.continent, Region: s.region, Countries: s.countries, Search: s.search}
}

// loaded is one acquisition narrowed to the requested scope.
type loaded struct {
	Source  string
	Query   query.Query
	All     []dataset.Record
	Records []dataset.Record
	Options analysis.Options
	Outcome pipeline.Outcome
}

func (l loaded) Year() string { return l.Options.Year }

// analysisOptions maps config keys and the --year flag to aggregation options.
func analysisOptions(year string) (analysis.Options, error) {
	c, err := settings()
	if err != nil {
		return analysis.Options{}, err
	}
	opt := analysis.DefaultOptions()
	opt.LatestYear = c.LatestYear
	opt.PriorYear = c.PriorYear
	opt.Year = c.LatestYear
	opt.Sigma = c.OutlierSigma
	opt.TopN = c.TopN
	if year = strings.TrimSpace(year); year != "" {
		if !dataset.IsYear(year) {
			return opt, fmt.Errorf("unknown year %q (use %s..%s)", year, dataset.Years[0], dataset.Years[len(dataset.Years)-1])
		}
		opt.Year = year
	}
	return opt, nil
}

// openWorkspace loads a named workspace, or the one enclosing the working
// directory when name is empty. It returns nil when neither exists.
func openWorkspace(name string) (*workspace.Workspace, error) {
	if name == "" {
		dir, err := utils.FindWorkspaceRoot("")
		if err != nil {
			return nil, nil
		}
		return workspace.Load(dir)
	}
	dir, err := resolveWorkspaceDirByName(name)
	if err != nil {
		return nil, err
	}
	return workspace.Load(dir)
}

// resolveSource picks the source argument, falling back to the workspace
// default and finally the embedded sample.
func resolveSource(args []string, ws *workspace.Workspace, sheet string) (source.Source, error) {
	c, err := settings()
	if err != nil {
		return nil, err
	}
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	} else if ws != nil && ws.Source != "" {
		arg = ws.Source
	}
	src := source.Resolve(arg, c.HTTPTimeout())
	if sheet != "" {
		x, ok := src.(source.XLSX)
		if !ok {
			return nil, errors.New("--sheet applies to .xlsx sources only")
		}
		x.Sheet = sheet
		src = x
	}
	return src, nil
}

// load runs the pipeline for one command invocation and applies the scope.
func load(cmd *cobra.Command, args []string, s scopeFlags) (*loaded, error) {
	c, err := settings()
	if err != nil {
		return nil, err
	}
	parseOpt, err := c.ParseOptions()
	if err != nil {
		return nil, err
	}
	aopt, err := analysisOptions(s.year)
	if err != nil {
		return nil, err
	}
	ws, err := openWorkspace(s.workspace)
	if err != nil {
		return nil, err
	}
	src, err := resolveSource(args, ws, s.sheet)
	if err != nil {
		return nil, err
	}
	store := state.New()
	out, err := pipeline.Load(commandContext(cmd), store, src, parseOpt, ws)
	if err != nil {
		return nil, err
	}
	if out.Dropped > 0 {
		fmt.Fprintf(os.Stderr, "⚠ Warning: skipped %d malformed row(s) in %s\n", out.Dropped, out.Source)
	}
	all, name := store.Snapshot()
	q := s.query()
	return &loaded{
		Source:  name,
		Query:   q,
		All:     all,
		Records: q.Apply(all),
		Options: aopt,
		Outcome: out,
	}, nil
}

// writeOutput writes data to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte, what string) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s to %s\n", what, path)
	return nil
}
