package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Parsing
	MissingPolicy string `mapstructure:"missing_policy" yaml:"missing_policy"`
	SplitMode     string `mapstructure:"split_mode" yaml:"split_mode"`
	Delimiter     string `mapstructure:"delimiter" yaml:"delimiter"`
	HeaderMode    string `mapstructure:"header_mode" yaml:"header_mode"`

	// Aggregation
	LatestYear   string  `mapstructure:"latest_year" yaml:"latest_year"`
	PriorYear    string  `mapstructure:"prior_year" yaml:"prior_year"`
	TopN         int     `mapstructure:"top_n" yaml:"top_n"`
	OutlierSigma float64 `mapstructure:"outlier_sigma" yaml:"outlier_sigma"`

	// Acquisition and storage
	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	WorkspacesDir  string `mapstructure:"workspaces_dir" yaml:"workspaces_dir"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Server and batch
	ListenAddr       string `mapstructure:"listen_addr" yaml:"listen_addr"`
	BatchConcurrency int    `mapstructure:"batch_concurrency" yaml:"batch_concurrency"`
}

// Dir is the per-user configuration directory, ~/.speedatlas.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".speedatlas"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.speedatlas/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SPEEDATLAS")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("missing_policy", "null")
	v.SetDefault("split_mode", "naive")
	v.SetDefault("delimiter", ",")
	v.SetDefault("header_mode", "auto")
	v.SetDefault("latest_year", dataset.LatestYear)
	v.SetDefault("prior_year", dataset.PriorYear)
	v.SetDefault("top_n", 10)
	v.SetDefault("outlier_sigma", 2.0)
	v.SetDefault("http_timeout_sec", 30)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("listen_addr", "127.0.0.1:8080")
	v.SetDefault("batch_concurrency", 4)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve workspaces_dir default: ~/.speedatlas/workspaces
	if c.WorkspacesDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.WorkspacesDir = filepath.Join(dir, "workspaces")
	}
	return &c, nil
}

// ParseOptions converts the parsing keys into dataset options.
func (c *Global) ParseOptions() (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	var err error
	if opt.Policy, err = dataset.ParseMissingPolicy(c.MissingPolicy); err != nil {
		return opt, err
	}
	if opt.Split, err = dataset.ParseSplitMode(c.SplitMode); err != nil {
		return opt, err
	}
	if opt.Header, err = dataset.ParseHeaderMode(c.HeaderMode); err != nil {
		return opt, err
	}
	if opt.Delimiter, err = dataset.ParseDelimiter(c.Delimiter); err != nil {
		return opt, err
	}
	return opt, nil
}

// Validate checks the keys that have no parser of their own.
func (c *Global) Validate() error {
	if !dataset.IsYear(c.LatestYear) {
		return fmt.Errorf("invalid latest_year: %s", c.LatestYear)
	}
	if !dataset.IsYear(c.PriorYear) {
		return fmt.Errorf("invalid prior_year: %s", c.PriorYear)
	}
	if c.TopN < 0 {
		return fmt.Errorf("invalid top_n: %d", c.TopN)
	}
	if c.OutlierSigma < 0 {
		return fmt.Errorf("invalid outlier_sigma: %v", c.OutlierSigma)
	}
	if _, err := c.ParseOptions(); err != nil {
		return err
	}
	return nil
}

// HTTPTimeout returns the fetch timeout; zero or negative means the default.
func (c *Global) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}
