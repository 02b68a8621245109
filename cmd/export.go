package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/speedatlas-cli/internal/export"
	"github.com/spf13/cobra"
)

var (
	expScope  scopeFlags
	expFormat string
	expOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export [source]",
	Short: "Write the records matching a scope as CSV, JSON or XLSX",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := export.CSV
		switch {
		case expFormat != "":
			f, err := export.ParseFormat(expFormat)
			if err != nil {
				return err
			}
			format = f
		case expOutput != "":
			format = export.FormatFromPath(expOutput)
		}
		if format == export.XLSX && expOutput == "" {
			return fmt.Errorf("xlsx export requires --output")
		}
		l, err := load(cmd, args, expScope)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := export.Write(&buf, format, l.Records); err != nil {
			return err
		}
		return writeOutput(cmd, expOutput, buf.Bytes(), fmt.Sprintf("%d record(s) as %s", len(l.Records), format))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addScopeFlags(exportCmd, &expScope)
	exportCmd.Flags().StringVarP(&expFormat, "format", "f", "", "csv|json|xlsx (default: from --output extension, else csv)")
	exportCmd.Flags().StringVarP(&expOutput, "output", "o", "", "destination file (default: stdout)")
}
