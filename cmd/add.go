package cmd

import (
	"fmt"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/KaramelBytes/speedatlas-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	addWorkspaceName string
	removeWorkspace  string
)

var addCmd = &cobra.Command{
	Use:   "add <country> <major_area> <region> <2017> ... <2024>",
	Short: "Add a manual record to a workspace",
	Long: `Add one country row to a workspace. Values follow the CSV column order; use
"null" or "" for a missing year. Manual records are placed in front of every
dataset loaded with -w <workspace>, next to any row for the same country.`,
	Args: cobra.ExactArgs(dataset.MinFields),
	RunE: func(cmd *cobra.Command, args []string) error {
		if addWorkspaceName == "" {
			return fmt.Errorf("--workspace is required")
		}
		if _, err := settings(); err != nil {
			return err
		}
		// Stored with nulls; --missing applies when the workspace is loaded.
		rec, ok := dataset.Normalize(args, dataset.PositionalSchema(), dataset.NullAsMissing)
		if !ok {
			return fmt.Errorf("country is required")
		}
		wsDir, err := resolveWorkspaceDirByName(addWorkspaceName)
		if err != nil {
			return err
		}
		w, err := workspace.Load(wsDir)
		if err != nil {
			return err
		}
		added, err := w.AddEntry(rec)
		if err != nil {
			return err
		}
		if err := w.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Record added: %s (%s)\n", added.Country, added.ID)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <entry-id>",
	Short: "Remove a manual record from a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if removeWorkspace == "" {
			return fmt.Errorf("--workspace is required")
		}
		wsDir, err := resolveWorkspaceDirByName(removeWorkspace)
		if err != nil {
			return err
		}
		w, err := workspace.Load(wsDir)
		if err != nil {
			return err
		}
		if err := w.RemoveEntry(args[0]); err != nil {
			return err
		}
		if err := w.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Record removed: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	addCmd.Flags().StringVarP(&addWorkspaceName, "workspace", "w", "", "workspace name")
	removeCmd.Flags().StringVarP(&removeWorkspace, "workspace", "w", "", "workspace name")
}
