package cmd

import (
	"fmt"

	"github.com/KaramelBytes/speedatlas-cli/internal/analysis"
	"github.com/KaramelBytes/speedatlas-cli/internal/render"
	"github.com/spf13/cobra"
)

var (
	topScope scopeFlags
	topN     int
)

var topCmd = &cobra.Command{
	Use:   "top [source]",
	Short: "Rank countries by speed for a year",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := load(cmd, args, topScope)
		if err != nil {
			return err
		}
		n := l.Options.TopN
		if cmd.Flags().Changed("count") {
			n = topN
		}
		entries := analysis.TopN(l.Records, l.Year(), n)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "[TOP %d %s] %s\n", len(entries), l.Year(), l.Query.String())
		if len(entries) == 0 {
			fmt.Fprintln(out, "(no data for this scope)")
			return nil
		}
		valid := render.Valid(entries, l.Year())
		fmt.Fprint(out, render.SeriesTable(render.FromEntries("", valid), "Country", "Mbps"))
		if missing := len(entries) - len(valid); missing > 0 {
			fmt.Fprintf(out, "(%d ranked last with no %s reading)\n", missing, l.Year())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(topCmd)
	addScopeFlags(topCmd, &topScope)
	topCmd.Flags().IntVarP(&topN, "count", "n", 10, "number of countries (default: top_n)")
}
