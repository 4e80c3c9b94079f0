package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"), nil)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Source != "topology.toml" {
		t.Errorf("expected default source, got %q", cfg.Source)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.Layering != "flat" {
		t.Errorf("expected flat layering, got %q", cfg.Layering)
	}
	if cfg.WebMode || cfg.Watch || cfg.Open || cfg.JSONLogs || cfg.Links != "" {
		t.Errorf("expected switches off by default: %+v", cfg)
	}
}

func TestLoadFile_Precedence(t *testing.T) {
	path := writeConfig(t, `
source = "site.yaml"
links = "links.d"
port = 9000
zoom = 2
layering = "default"
focus = ["v1", "v2"]
`)
	t.Setenv("TOPOLOGY_LENS_PORT", "9100")
	t.Setenv("TOPOLOGY_LENS_JSON_LOGS", "true")

	cfg, err := LoadFile(path, nil)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Source != "site.yaml" {
		t.Errorf("expected source from file, got %q", cfg.Source)
	}
	if cfg.Links != "links.d" {
		t.Errorf("expected links from file, got %q", cfg.Links)
	}
	if cfg.Port != 9100 {
		t.Errorf("expected env to override file port, got %d", cfg.Port)
	}
	if !cfg.JSONLogs {
		t.Error("expected json-logs from env")
	}
	if len(cfg.Focus) != 2 || cfg.Focus[0] != "v1" {
		t.Errorf("unexpected focus %v", cfg.Focus)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 8080, "")
	flags.Int("zoom", 0, "")
	flags.String("layering", "flat", "")
	if err := flags.Parse([]string{"--port=9200", "--layering=reference"}); err != nil {
		t.Fatalf("flag parse failed: %v", err)
	}

	cfg, err = LoadFile(path, flags)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Port != 9200 {
		t.Errorf("expected flag to override env port, got %d", cfg.Port)
	}
	if cfg.Layering != "reference" {
		t.Errorf("expected layering from flag, got %q", cfg.Layering)
	}
	if cfg.Zoom != 2 {
		t.Errorf("expected unset flag to keep file zoom, got %d", cfg.Zoom)
	}
}
