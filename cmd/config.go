package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/speedatlas-cli/internal/config"
	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/KaramelBytes/speedatlas-cli/internal/logging"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set speedatlas configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := settings()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "missing_policy: %s\n", c.MissingPolicy)
		fmt.Fprintf(out, "split_mode: %s\n", c.SplitMode)
		fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		fmt.Fprintf(out, "header_mode: %s\n", c.HeaderMode)
		fmt.Fprintf(out, "latest_year: %s\n", c.LatestYear)
		fmt.Fprintf(out, "prior_year: %s\n", c.PriorYear)
		fmt.Fprintf(out, "top_n: %d\n", c.TopN)
		fmt.Fprintf(out, "outlier_sigma: %.2f\n", c.OutlierSigma)
		fmt.Fprintf(out, "http_timeout_sec: %d\n", c.HTTPTimeoutSec)
		fmt.Fprintf(out, "workspaces_dir: %s\n", c.WorkspacesDir)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		fmt.Fprintf(out, "listen_addr: %s\n", c.ListenAddr)
		fmt.Fprintf(out, "batch_concurrency: %d\n", c.BatchConcurrency)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], strings.TrimSpace(args[1])
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "missing_policy":
			p, err := dataset.ParseMissingPolicy(val)
			if err != nil {
				return err
			}
			cfg.MissingPolicy = p.String()
		case "split_mode":
			if _, err := dataset.ParseSplitMode(val); err != nil {
				return err
			}
			cfg.SplitMode = strings.ToLower(val)
		case "header_mode":
			if _, err := dataset.ParseHeaderMode(val); err != nil {
				return err
			}
			cfg.HeaderMode = strings.ToLower(val)
		case "delimiter":
			if _, err := dataset.ParseDelimiter(args[1]); err != nil {
				return err
			}
			cfg.Delimiter = args[1]
		case "latest_year", "prior_year":
			if !dataset.IsYear(val) {
				return fmt.Errorf("invalid year for %s: %s", key, val)
			}
			if key == "latest_year" {
				cfg.LatestYear = val
			} else {
				cfg.PriorYear = val
			}
		case "top_n":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for top_n: %v", val)
			}
			cfg.TopN = i
		case "outlier_sigma":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for outlier_sigma: %v", val)
			}
			cfg.OutlierSigma = f
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
			}
			cfg.HTTPTimeoutSec = i
		case "batch_concurrency":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for batch_concurrency: %v", val)
			}
			cfg.BatchConcurrency = i
		case "workspaces_dir":
			cfg.WorkspacesDir = val
		case "log_level":
			if _, err := logging.ParseLevel(val); err != nil {
				return err
			}
			cfg.LogLevel = strings.ToLower(val)
		case "log_format":
			switch strings.ToLower(val) {
			case "text", "json":
				cfg.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		case "listen_addr":
			cfg.ListenAddr = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
