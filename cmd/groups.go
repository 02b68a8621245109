package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/speedatlas-cli/internal/analysis"
	"github.com/spf13/cobra"
)

var grpScope scopeFlags

var groupsCmd = &cobra.Command{
	Use:   "groups [source]",
	Short: "Average speed per region (falling back to major area)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := load(cmd, args, grpScope)
		if err != nil {
			return err
		}
		groups := analysis.GroupAverages(l.Records, l.Year())
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "[GROUP AVERAGES %s] %s\n", l.Year(), l.Query.String())
		if len(groups) == 0 {
			fmt.Fprintln(out, "(no data for this scope)")
			return nil
		}
		var b strings.Builder
		b.WriteString("| Group | Average | Readings | Countries |\n| --- | ---: | ---: | ---: |\n")
		for _, g := range groups {
			b.WriteString(fmt.Sprintf("| %s | %.2f | %d | %d |\n", g.Key, g.Average, g.Count, g.Size))
		}
		fmt.Fprint(out, b.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
	addScopeFlags(groupsCmd, &grpScope)
}
