package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `
[project]
name = "demo"
version = "0.3.1"
authors = ["dev@example.com"]

[scanning]
include_tests = false
exclude_patterns = ["target/**"]
include_patterns = ["**/*.rs"]
scan_interval = 10
max_file_size = 1048576
follow_symlinks = true

[visualization]
theme = "Dark"
layout = "Grid"

[server]
port = 9000
host = "0.0.0.0"

[watch]
debounce = 1000000000
rescan_rate = 2.0
rescan_burst = 4

[observability]
tracing_enabled = true
otlp_endpoint = "collector:4317"
sample_ratio = 0.25
`
	cfg, err := Load(writeConfig(t, "archmap.toml", content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Project.Name == nil || *cfg.Project.Name != "demo" {
		t.Errorf("unexpected project name: %v", cfg.Project.Name)
	}
	if got := *cfg.Scanning.IncludeTests; got {
		t.Error("explicit include_tests=false was overridden")
	}
	if len(cfg.Scanning.ExcludePatterns) != 1 || cfg.Scanning.ExcludePatterns[0] != "target/**" {
		t.Errorf("unexpected exclude patterns: %v", cfg.Scanning.ExcludePatterns)
	}
	if cfg.Scanning.ScanInterval != 10 {
		t.Errorf("expected scan_interval 10, got %d", cfg.Scanning.ScanInterval)
	}
	if cfg.Scanning.MaxSize() != 1048576 {
		t.Errorf("expected max_file_size 1048576, got %d", cfg.Scanning.MaxSize())
	}
	if !cfg.Scanning.FollowSymlinks {
		t.Error("expected follow_symlinks true")
	}
	if cfg.Visualization.Theme != "Dark" {
		t.Errorf("expected theme Dark, got %q", cfg.Visualization.Theme)
	}
	if cfg.Server.Port != 9000 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("unexpected server settings: %s", cfg.Server.Address())
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.RescanBurst != 4 {
		t.Errorf("expected rescan_burst 4, got %d", cfg.Watch.RescanBurst)
	}
	if cfg.Observability.OTLPEndpoint != "collector:4317" {
		t.Errorf("unexpected otlp endpoint %q", cfg.Observability.OTLPEndpoint)
	}
	if cfg.Observability.SampleRatio != 0.25 {
		t.Errorf("expected sample_ratio 0.25, got %v", cfg.Observability.SampleRatio)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "archmap.toml", "[project]\nname = \"x\"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !*cfg.Scanning.IncludeTests {
		t.Error("expected include_tests default true")
	}
	if cfg.Scanning.IncludeExamples {
		t.Error("expected include_examples default false")
	}
	if len(cfg.Scanning.ExcludePatterns) != 5 {
		t.Errorf("expected 5 default exclude patterns, got %v", cfg.Scanning.ExcludePatterns)
	}
	if len(cfg.Scanning.IncludePatterns) != 1 || cfg.Scanning.IncludePatterns[0] != "**/*.rs" {
		t.Errorf("unexpected default include patterns: %v", cfg.Scanning.IncludePatterns)
	}
	if cfg.Scanning.ScanInterval != 30 {
		t.Errorf("expected default scan_interval 30, got %d", cfg.Scanning.ScanInterval)
	}
	if cfg.Scanning.MaxSize() != 10*1024*1024 {
		t.Errorf("expected default max_file_size 10MB, got %d", cfg.Scanning.MaxSize())
	}
	if cfg.Scanning.FollowSymlinks {
		t.Error("expected follow_symlinks default false")
	}
	if cfg.Server.Port != 8000 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("unexpected default server address %s", cfg.Server.Address())
	}
	if cfg.Visualization.Theme != "Auto" || cfg.Visualization.Layout != "ForceDirected" {
		t.Errorf("unexpected visualization defaults: %q/%q", cfg.Visualization.Theme, cfg.Visualization.Layout)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected default debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.Observability.TracingEnabled {
		t.Error("expected tracing disabled by default")
	}
	if cfg.Observability.ServiceName != "archmap" {
		t.Errorf("unexpected default service name %q", cfg.Observability.ServiceName)
	}
}

func TestLoadYAML(t *testing.T) {
	content := `
scanning:
  scan_interval: 15
server:
  port: 8081
`
	cfg, err := Load(writeConfig(t, "archmap.yaml", content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Scanning.ScanInterval != 15 {
		t.Errorf("expected scan_interval 15, got %d", cfg.Scanning.ScanInterval)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("expected port 8081, got %d", cfg.Server.Port)
	}
}

func TestLoadJSON(t *testing.T) {
	content := `{"server": {"port": 8082}, "scanning": {"include_tests": false}}`
	cfg, err := Load(writeConfig(t, "archmap.json", content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8082 {
		t.Errorf("expected port 8082, got %d", cfg.Server.Port)
	}
	if *cfg.Scanning.IncludeTests {
		t.Error("expected include_tests false")
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "archmap.ini", "[server]\nport=1\n"))
	if err == nil || !strings.Contains(err.Error(), "unsupported config file format") {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestLoadError(t *testing.T) {
	if _, err := Load("nonexistent.toml"); err == nil {
		t.Error("expected error for nonexistent file")
	}
	if _, err := Load(writeConfig(t, "bad.toml", "bad = toml = format")); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errSub  string
	}{
		{
			name:    "bad port",
			content: "[server]\nport = 70000\n",
			errSub:  "server.port must be between 1 and 65535",
		},
		{
			name:    "negative scan interval",
			content: "[scanning]\nscan_interval = -5\n",
			errSub:  "scanning.scan_interval must be >= 1",
		},
		{
			name:    "bad exclude pattern",
			content: "[scanning]\nexclude_patterns = [\"[unclosed\"]\n",
			errSub:  "scanning.exclude_patterns[0]",
		},
		{
			name:    "sample ratio out of range",
			content: "[observability]\nsample_ratio = 1.5\n",
			errSub:  "observability.sample_ratio must be between 0 and 1",
		},
		{
			name:    "bad rescan rate",
			content: "[watch]\nrescan_rate = -1.0\n",
			errSub:  "watch.rescan_rate must be > 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "archmap.toml", tt.content))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFindConfigFilePriority(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"archmap.yaml", "archmap.toml", ".archmap.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(""), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	path, ok := FindConfigFile(dir)
	if !ok {
		t.Fatal("expected a config file to be found")
	}
	if filepath.Base(path) != "archmap.toml" {
		t.Errorf("expected archmap.toml to win, got %s", path)
	}
}

func TestLoadDirCargoManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := `
[package]
name = "my-crate"
version = "1.2.0"
description = "test crate"
authors = ["a@example.com", "b@example.com"]
repository = "https://example.com/my-crate"
`
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if cfg.Project.Name == nil || *cfg.Project.Name != "my-crate" {
		t.Errorf("expected project name from manifest, got %v", cfg.Project.Name)
	}
	if cfg.Project.Version == nil || *cfg.Project.Version != "1.2.0" {
		t.Errorf("expected version from manifest, got %v", cfg.Project.Version)
	}
	if len(cfg.Project.Authors) != 2 {
		t.Errorf("expected 2 authors, got %v", cfg.Project.Authors)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port alongside manifest metadata, got %d", cfg.Server.Port)
	}
}

func TestLoadDirDefaults(t *testing.T) {
	cfg, err := LoadDir(t.TempDir())
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default config, got port %d", cfg.Server.Port)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Server.Port = 9999

	for _, name := range []string{"out.toml", "out.yaml", "out.json"} {
		path := filepath.Join(dir, name)
		if err := cfg.Save(path); err != nil {
			t.Fatalf("Save %s failed: %v", name, err)
		}
		back, err := Load(path)
		if err != nil {
			t.Fatalf("reload %s failed: %v", name, err)
		}
		if back.Server.Port != 9999 {
			t.Errorf("%s: expected port 9999 after round trip, got %d", name, back.Server.Port)
		}
		if len(back.Scanning.ExcludePatterns) != 5 {
			t.Errorf("%s: exclude patterns did not survive round trip: %v", name, back.Scanning.ExcludePatterns)
		}
	}
}
