package config

import (
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.MissingPolicy != "null" || c.TopN != 10 || c.OutlierSigma != 2.0 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if want := filepath.Join(home, ".speedatlas", "workspaces"); c.WorkspacesDir != want {
		t.Fatalf("workspaces_dir = %s, want %s", c.WorkspacesDir, want)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	opt, err := c.ParseOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opt != dataset.DefaultOptions() {
		t.Fatalf("options = %+v", opt)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c.MissingPolicy = "zero"
	c.TopN = 5
	if err := Save(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	t.Setenv("SPEEDATLAS_TOP_N", "3")
	got, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.MissingPolicy != "zero" {
		t.Fatalf("missing_policy from file = %s", got.MissingPolicy)
	}
	if got.TopN != 3 {
		t.Fatalf("top_n should come from env, got %d", got.TopN)
	}
	opt, err := got.ParseOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opt.Policy != dataset.ZeroAsMissing {
		t.Fatalf("policy = %v", opt.Policy)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	bad := *c
	bad.LatestYear = "2030"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for unknown year")
	}
	bad = *c
	bad.SplitMode = "regex"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for unknown split mode")
	}
}
