package cmd

import (
	"fmt"

	"github.com/KaramelBytes/speedatlas-cli/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	outScope scopeFlags
	outSigma float64
)

var outliersCmd = &cobra.Command{
	Use:   "outliers [source]",
	Short: "Countries beyond mean ± sigma·stddev for a year",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := load(cmd, args, outScope)
		if err != nil {
			return err
		}
		sigma := l.Options.Sigma
		if cmd.Flags().Changed("sigma") {
			sigma = outSigma
		}
		o := analysis.DetectOutliers(l.Records, l.Year(), sigma)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "[OUTLIERS %s] %s\n", l.Year(), l.Query.String())
		fmt.Fprintf(out, "mean: %.2f  stddev: %.2f  band: %.2f..%.2f (±%.1fσ)\n", o.Mean, o.StdDev, o.Lower, o.Upper, o.Sigma)
		printEntries := func(label string, es []analysis.Entry) {
			if len(es) == 0 {
				fmt.Fprintf(out, "%s: (none)\n", label)
				return
			}
			fmt.Fprintf(out, "%s:\n", label)
			for _, e := range es {
				fmt.Fprintf(out, "  - %s: %.2f\n", e.Record.Country, e.Value)
			}
		}
		printEntries("high", o.High)
		printEntries("low", o.Low)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outliersCmd)
	addScopeFlags(outliersCmd, &outScope)
	outliersCmd.Flags().Float64Var(&outSigma, "sigma", analysis.DefaultSigma, "band half-width in standard deviations (default: outlier_sigma)")
}
