package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/KaramelBytes/speedatlas-cli/internal/utils"
	"github.com/KaramelBytes/speedatlas-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	listWorkspaces bool
	listEntries    bool
	listWsName     string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces or their manual records",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listWorkspaces == listEntries { // either both true or both false
			return fmt.Errorf("specify exactly one of --workspaces or --entries")
		}
		if listWorkspaces {
			return listAllWorkspaces(cmd)
		}
		if listWsName == "" {
			return fmt.Errorf("--workspace is required when using --entries")
		}
		wsDir, err := resolveWorkspaceDirByName(listWsName)
		if err != nil {
			return err
		}
		w, err := workspace.Load(wsDir)
		if err != nil {
			return err
		}
		entries := w.Entries(dataset.NullAsMissing)
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "(no entries)")
			return nil
		}
		for _, e := range entries {
			latest := "null"
			if v, ok := e.Value(dataset.LatestYear); ok {
				latest = fmt.Sprintf("%.2f", v)
			}
			fmt.Fprintf(out, "- %s: %s (%s, %s) %s=%s\n", e.ID, e.Country, e.MajorArea, e.Region, dataset.LatestYear, latest)
		}
		return nil
	},
}

func listAllWorkspaces(cmd *cobra.Command) error {
	root, err := defaultWorkspacesDir()
	if err != nil {
		return err
	}
	dirs, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	found := false
	for _, e := range dirs {
		if !e.IsDir() {
			continue
		}
		wf := filepath.Join(root, e.Name(), utils.WorkspaceFile)
		if _, err := os.Stat(wf); err == nil {
			fmt.Fprintf(out, "- %s\n", e.Name())
			found = true
		}
	}
	if !found {
		fmt.Fprintln(out, "(no workspaces)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listWorkspaces, "workspaces", false, "list workspaces")
	listCmd.Flags().BoolVar(&listEntries, "entries", false, "list manual records in a workspace")
	listCmd.Flags().StringVarP(&listWsName, "workspace", "w", "", "workspace name for --entries")
}
