package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KaramelBytes/speedatlas-cli/internal/analysis"
	"github.com/KaramelBytes/speedatlas-cli/internal/render"
	"github.com/spf13/cobra"
)

var (
	chartScope  scopeFlags
	chartOutput string
	chartKind   string
	chartTopN   int
)

var chartCmd = &cobra.Command{
	Use:   "chart [source]",
	Short: "Render a PNG bar chart of the top countries, group averages or one country",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if chartOutput == "" {
			return fmt.Errorf("--output is required (e.g. -o chart.png)")
		}
		l, err := load(cmd, args, chartScope)
		if err != nil {
			return err
		}
		year := l.Year()
		opt := render.DefaultChartOptions()
		var series render.Series
		switch kind := strings.ToLower(strings.TrimSpace(chartKind)); kind {
		case "", "top":
			n := l.Options.TopN
			if cmd.Flags().Changed("top") {
				n = chartTopN
			}
			top := render.Valid(analysis.TopN(l.Records, year, n), year)
			series = render.FromEntries(fmt.Sprintf("Top %d by speed (%s)", len(top), year), top)
		case "groups":
			series = render.FromGroups(fmt.Sprintf("Average speed by group (%s)", year), analysis.GroupAverages(l.Records, year))
		case "country":
			if len(l.Records) == 0 {
				return fmt.Errorf("no record matches %s", l.Query.String())
			}
			series = render.FromYears(l.Records[0])
		default:
			return fmt.Errorf("unknown chart kind %q (use top|groups|country)", kind)
		}

		var buf bytes.Buffer
		if err := render.BarChart(&buf, series, opt); err != nil {
			return err
		}
		return writeOutput(cmd, chartOutput, buf.Bytes(), "chart")
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	addScopeFlags(chartCmd, &chartScope)
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "", "PNG file to write")
	chartCmd.Flags().StringVar(&chartKind, "kind", "top", "top|groups|country")
	chartCmd.Flags().IntVar(&chartTopN, "top", 10, "bars for --kind top (default: top_n)")
}
