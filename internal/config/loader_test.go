package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestEmbeddedDefaultsMatchDefault(t *testing.T) {
	cfg := Default()
	if err := yaml.Unmarshal(DefaultYAML(), &cfg); err != nil {
		t.Fatalf("embedded YAML does not parse: %v", err)
	}
	if cfg != Default() {
		t.Errorf("embedded YAML differs from Default():\n got  %+v\n want %+v", cfg, Default())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadCustomYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := "grid:\n  grid_size: 100\n  padding: 10\ninteraction:\n  swap_delay: 2s\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Grid.GridSize != 100 || cfg.Grid.Padding != 10 {
		t.Errorf("grid not overridden: %+v", cfg.Grid)
	}
	if cfg.Interaction.SwapDelay != 2*time.Second {
		t.Errorf("SwapDelay = %v, expected 2s", cfg.Interaction.SwapDelay)
	}
	// Untouched keys keep defaults
	if cfg.Grid.UsableWidth != 16 || cfg.Interaction.RejectCue != 300*time.Millisecond {
		t.Errorf("defaults lost: %+v %+v", cfg.Grid, cfg.Interaction)
	}
}

func TestLoadCustomTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	data := "[grid]\ngrid_size = 60\noffset_x = 10\noffset_y = 10\npadding = 5\n\n[storage]\ndriver = \"memory\"\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Grid.GridSize != 60 || cfg.Storage.Driver != DriverMemory {
		t.Errorf("TOML not applied: %+v %+v", cfg.Grid, cfg.Storage)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestValidateRejectsBadGrid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"offset too large", func(c *Config) { c.Grid.OffsetX = c.Grid.GridSize }},
		{"padding too large", func(c *Config) { c.Grid.Padding = c.Grid.GridSize / 2 }},
		{"zero grid", func(c *Config) { c.Grid.GridSize = 0 }},
		{"no columns", func(c *Config) { c.Grid.UsableWidth = 0 }},
		{"bad driver", func(c *Config) { c.Storage.Driver = "cookie" }},
		{"zero radius", func(c *Config) { c.Interaction.SearchRadius = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted an invalid config")
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	got, err := ExpandHome("/tmp/x.db")
	if err != nil || got != "/tmp/x.db" {
		t.Errorf("ExpandHome(abs) = %q, %v", got, err)
	}
	got, err = ExpandHome("~/x.db")
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if strings.HasPrefix(got, "~") {
		t.Errorf("ExpandHome did not expand: %q", got)
	}
}
