package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/KaramelBytes/speedatlas-cli/internal/render"
	"github.com/spf13/cobra"
)

var (
	qryScope scopeFlags
	qryYears string
)

var queryCmd = &cobra.Command{
	Use:   "query [source]",
	Short: "Print the records matching a scope as a table",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		years, err := parseYears(qryYears)
		if err != nil {
			return err
		}
		l, err := load(cmd, args, qryScope)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "[QUERY] %s: %d of %d countries\n", l.Query.String(), len(l.Records), len(l.All))
		if len(l.Records) == 0 {
			fmt.Fprintln(out, "(no data for this scope)")
			return nil
		}
		fmt.Fprint(out, render.Table(l.Records, years))
		return nil
	},
}

// parseYears reads a comma-separated year list; empty means every year.
func parseYears(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return dataset.Years, nil
	}
	var years []string
	for _, y := range strings.Split(s, ",") {
		y = strings.TrimSpace(y)
		if y == "" {
			continue
		}
		if !dataset.IsYear(y) {
			return nil, fmt.Errorf("unknown year %q", y)
		}
		years = append(years, y)
	}
	return years, nil
}

func init() {
	rootCmd.AddCommand(queryCmd)
	addScopeFlags(queryCmd, &qryScope)
	queryCmd.Flags().StringVar(&qryYears, "years", "", "comma-separated year columns to show (default: all)")
}
