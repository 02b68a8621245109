package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/speedatlas-cli/internal/config"
	"github.com/KaramelBytes/speedatlas-cli/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Parsing/HTTP flags (override config if set)
	flagMissingPolicy  string
	flagSplitMode      string
	flagHeaderMode     string
	flagDelimiter      string
	flagHTTPTimeoutSec int
	flagLogFormat      string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Structured logger for diagnostics on stderr
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "speedatlas",
	Short: "speedatlas CLI: summarize country internet-speed datasets",
	Long: `speedatlas loads yearly per-country internet speeds from CSV, XLSX, a URL or the
built-in sample, then filters them by continent, region, country or free text and
reports group averages, outliers, top-N rankings and headline KPIs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.speedatlas/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagMissingPolicy, "missing", "", "missing-value policy: null|zero (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagSplitMode, "split", "", "row splitting: naive|quoted (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagHeaderMode, "header", "", "header row: auto|present|absent (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "field delimiter: ',' | ';' | '|' | 'tab' (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP fetch timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log output: text|json (overrides config)")
}

func loadConfig() {
	// A .env in the working directory seeds SPEEDATLAS_* variables.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to read .env: %v\n", err)
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	applyFlagOverrides()
	logger = newLogger()
}

// applyFlagOverrides copies explicitly set persistent flags onto cfg.
func applyFlagOverrides() {
	f := rootCmd.PersistentFlags()
	if f.Changed("missing") {
		cfg.MissingPolicy = flagMissingPolicy
	}
	if f.Changed("split") {
		cfg.SplitMode = flagSplitMode
	}
	if f.Changed("header") {
		cfg.HeaderMode = flagHeaderMode
	}
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	if debug {
		cfg.LogLevel = "debug"
	}
}

func newLogger() *slog.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	}
	return logging.New(os.Stderr, level, cfg.LogFormat)
}

// settings returns the effective configuration, loading it when the root
// command ran without OnInitialize (as in tests).
func settings() (*cfgpkg.Global, error) {
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
		applyFlagOverrides()
	}
	if logger == nil {
		logger = newLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// commandContext carries the logger into pipeline code.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, logger)
}
