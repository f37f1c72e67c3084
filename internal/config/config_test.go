package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_RequiresUpstream(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "")
	t.Setenv("RATE_CONFIG_FILE", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "UPSTREAM_URL") {
		t.Fatalf("expected UPSTREAM_URL error, got %v", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
upstream-url: http://file-upstream:9000
rate:
  enabled: true
  store: memory
  window: 1500ms
  max: 5
  skip-paths: ["/healthz"]
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("RATE_CONFIG_FILE", path)
	t.Setenv("UPSTREAM_URL", "")
	t.Setenv("RATE_MAX", "7")
	t.Setenv("RATE_SKIP_PATHS", "/healthz, /metrics")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.UpstreamURL != "http://file-upstream:9000" {
		t.Fatalf("expected upstream from file, got %q", cfg.UpstreamURL)
	}
	if cfg.Rate.Window != 1500*time.Millisecond {
		t.Fatalf("expected window 1.5s, got %s", cfg.Rate.Window)
	}
	if cfg.Rate.Max != 7 {
		t.Fatalf("expected env to override max, got %d", cfg.Rate.Max)
	}
	if len(cfg.Rate.SkipPaths) != 2 || cfg.Rate.SkipPaths[1] != "/metrics" {
		t.Fatalf("unexpected skip paths: %v", cfg.Rate.SkipPaths)
	}
}

func TestLoad_MissingFileFails(t *testing.T) {
	t.Setenv("RATE_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv("RATE_CONFIG_FILE", "")
	t.Setenv("UPSTREAM_URL", "http://upstream")
	t.Setenv("RATE_WINDOW", "soon")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "RATE_WINDOW") {
		t.Fatalf("expected RATE_WINDOW error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Default()
	base.UpstreamURL = "http://upstream"

	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"sub millisecond window", func(c *Config) { c.Rate.Window = 1500 * time.Microsecond }, false},
		{"zero max", func(c *Config) { c.Rate.Max = 0 }, false},
		{"unknown store", func(c *Config) { c.Rate.Store = "etcd" }, false},
		{"stats need redis", func(c *Config) { c.Rate.Store = "memory"; c.Stats.Enabled = true }, false},
		{"disabled skips rate checks", func(c *Config) { c.Rate.Enabled = false; c.Rate.Max = 0 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
