package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Config carries all settings for a scan and the surfaces built on top of
// it. Fields serialize under the same names in TOML, YAML and JSON so a
// config round-trips through any of the supported formats.
type Config struct {
	Project       Project       `toml:"project" yaml:"project" json:"project"`
	Scanning      Scanning      `toml:"scanning" yaml:"scanning" json:"scanning"`
	Visualization Visualization `toml:"visualization" yaml:"visualization" json:"visualization"`
	Server        Server        `toml:"server" yaml:"server" json:"server"`
	Watch         Watch         `toml:"watch" yaml:"watch" json:"watch"`
	Observability Observability `toml:"observability" yaml:"observability" json:"observability"`
}

// Project identifies the scanned project. All fields are optional; when no
// config file exists they may be filled from a Cargo.toml manifest.
type Project struct {
	Name        *string  `toml:"name" yaml:"name" json:"name"`
	Description *string  `toml:"description" yaml:"description" json:"description"`
	Version     *string  `toml:"version" yaml:"version" json:"version"`
	Authors     []string `toml:"authors" yaml:"authors" json:"authors"`
	Repository  *string  `toml:"repository" yaml:"repository" json:"repository"`
}

// Scanning controls file selection. Interval values are in seconds and
// sizes in bytes. Default-true booleans are pointers so an explicit false
// in a config file survives defaulting.
type Scanning struct {
	IncludeTests    *bool    `toml:"include_tests" yaml:"include_tests" json:"include_tests"`
	IncludeExamples bool     `toml:"include_examples" yaml:"include_examples" json:"include_examples"`
	IncludeBenches  bool     `toml:"include_benches" yaml:"include_benches" json:"include_benches"`
	IncludeDocs     bool     `toml:"include_docs" yaml:"include_docs" json:"include_docs"`
	ExcludePatterns []string `toml:"exclude_patterns" yaml:"exclude_patterns" json:"exclude_patterns"`
	IncludePatterns []string `toml:"include_patterns" yaml:"include_patterns" json:"include_patterns"`
	ScanInterval    int      `toml:"scan_interval" yaml:"scan_interval" json:"scan_interval"`
	MaxFileSize     *int64   `toml:"max_file_size" yaml:"max_file_size" json:"max_file_size"`
	FollowSymlinks  bool     `toml:"follow_symlinks" yaml:"follow_symlinks" json:"follow_symlinks"`
	IgnoreGitignore *bool    `toml:"ignore_gitignore" yaml:"ignore_gitignore" json:"ignore_gitignore"`
}

// Visualization carries renderer hints. The scanner itself ignores this
// section; it is preserved so clients reading the config see it.
type Visualization struct {
	Theme             string   `toml:"theme" yaml:"theme" json:"theme"`
	Layout            string   `toml:"layout" yaml:"layout" json:"layout"`
	ShowMetrics       *bool    `toml:"show_metrics" yaml:"show_metrics" json:"show_metrics"`
	ShowDependencies  *bool    `toml:"show_dependencies" yaml:"show_dependencies" json:"show_dependencies"`
	ShowErrors        *bool    `toml:"show_errors" yaml:"show_errors" json:"show_errors"`
	ShowWarnings      *bool    `toml:"show_warnings" yaml:"show_warnings" json:"show_warnings"`
	GroupByType       *bool    `toml:"group_by_type" yaml:"group_by_type" json:"group_by_type"`
	ShowFilePaths     *bool    `toml:"show_file_paths" yaml:"show_file_paths" json:"show_file_paths"`
	ShowDocumentation *bool    `toml:"show_documentation" yaml:"show_documentation" json:"show_documentation"`
	FilterComplexity  *float64 `toml:"filter_complexity" yaml:"filter_complexity" json:"filter_complexity"`
	FilterType        *string  `toml:"filter_type" yaml:"filter_type" json:"filter_type"`
	AutoRefresh       *bool    `toml:"auto_refresh" yaml:"auto_refresh" json:"auto_refresh"`
	RefreshInterval   int      `toml:"refresh_interval" yaml:"refresh_interval" json:"refresh_interval"`
}

// Server configures the HTTP/WebSocket surface.
type Server struct {
	Port              int      `toml:"port" yaml:"port" json:"port"`
	Host              string   `toml:"host" yaml:"host" json:"host"`
	CORSOrigins       []string `toml:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
	EnableWebsocket   *bool    `toml:"enable_websocket" yaml:"enable_websocket" json:"enable_websocket"`
	EnableCompression *bool    `toml:"enable_compression" yaml:"enable_compression" json:"enable_compression"`
	MaxRequestSize    *int64   `toml:"max_request_size" yaml:"max_request_size" json:"max_request_size"`
	Timeout           *int     `toml:"timeout" yaml:"timeout" json:"timeout"`
}

// Watch configures filesystem-triggered rescans.
type Watch struct {
	Debounce    time.Duration `toml:"debounce" yaml:"debounce" json:"debounce"`
	RescanRate  float64       `toml:"rescan_rate" yaml:"rescan_rate" json:"rescan_rate"`
	RescanBurst int           `toml:"rescan_burst" yaml:"rescan_burst" json:"rescan_burst"`
}

// Observability configures the OTLP trace exporter. Prometheus metrics are
// always registered and served from the main mux.
type Observability struct {
	TracingEnabled bool    `toml:"tracing_enabled" yaml:"tracing_enabled" json:"tracing_enabled"`
	OTLPEndpoint   string  `toml:"otlp_endpoint" yaml:"otlp_endpoint" json:"otlp_endpoint"`
	SampleRatio    float64 `toml:"sample_ratio" yaml:"sample_ratio" json:"sample_ratio"`
	ServiceName    string  `toml:"service_name" yaml:"service_name" json:"service_name"`
}

// ConfigFiles lists the file names probed by LoadDir, in priority order.
var ConfigFiles = []string{
	"archmap.toml",
	"archmap.yaml",
	"archmap.yml",
	"archmap.json",
	".archmap.toml",
	".archmap.yaml",
	".archmap.yml",
	".archmap.json",
}

// Default returns a config with every field at its default value.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Load reads a single config file, chosen by extension (TOML when the
// file has none), applies defaults and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing TOML config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format %q", ext)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfigFile returns the first config file present in dir.
func FindConfigFile(dir string) (string, bool) {
	for _, name := range ConfigFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// LoadDir loads the project config for a directory: the first config file
// found, else project metadata probed from Cargo.toml, else defaults.
func LoadDir(dir string) (*Config, error) {
	if path, ok := FindConfigFile(dir); ok {
		return Load(path)
	}

	manifest := filepath.Join(dir, "Cargo.toml")
	if _, err := os.Stat(manifest); err == nil {
		return loadCargoManifest(manifest)
	}

	return Default(), nil
}

// Save writes the config to path in the format chosen by extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		data, err = toml.Marshal(c)
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	default:
		return fmt.Errorf("unsupported config file format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// Address returns the host:port the server should bind.
func (s Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MaxSize returns the file size cap in bytes, 0 meaning no cap.
func (s Scanning) MaxSize() int64 {
	if s.MaxFileSize == nil {
		return 0
	}
	return *s.MaxFileSize
}

type cargoManifest struct {
	Package *cargoPackage `toml:"package"`
}

type cargoPackage struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Version     string   `toml:"version"`
	Authors     []string `toml:"authors"`
	Repository  string   `toml:"repository"`
}

func loadCargoManifest(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var manifest cargoManifest
	if _, err := toml.Decode(string(data), &manifest); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg := Default()
	if pkg := manifest.Package; pkg != nil {
		cfg.Project.Name = &pkg.Name
		if pkg.Description != "" {
			cfg.Project.Description = &pkg.Description
		}
		if pkg.Version != "" {
			cfg.Project.Version = &pkg.Version
		}
		if pkg.Authors != nil {
			cfg.Project.Authors = pkg.Authors
		}
		if pkg.Repository != "" {
			cfg.Project.Repository = &pkg.Repository
		}
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Project.Authors == nil {
		cfg.Project.Authors = []string{}
	}

	if cfg.Scanning.IncludeTests == nil {
		cfg.Scanning.IncludeTests = boolDefault(true)
	}
	if cfg.Scanning.IgnoreGitignore == nil {
		cfg.Scanning.IgnoreGitignore = boolDefault(true)
	}
	if len(cfg.Scanning.ExcludePatterns) == 0 {
		cfg.Scanning.ExcludePatterns = []string{
			"target/**",
			"**/target/**",
			"**/.git/**",
			"**/node_modules/**",
			"**/.*",
		}
	}
	if len(cfg.Scanning.IncludePatterns) == 0 {
		cfg.Scanning.IncludePatterns = []string{"**/*.rs"}
	}
	if cfg.Scanning.ScanInterval == 0 {
		cfg.Scanning.ScanInterval = 30
	}
	if cfg.Scanning.MaxFileSize == nil {
		size := int64(10 * 1024 * 1024)
		cfg.Scanning.MaxFileSize = &size
	}

	if strings.TrimSpace(cfg.Visualization.Theme) == "" {
		cfg.Visualization.Theme = "Auto"
	}
	if strings.TrimSpace(cfg.Visualization.Layout) == "" {
		cfg.Visualization.Layout = "ForceDirected"
	}
	if cfg.Visualization.ShowMetrics == nil {
		cfg.Visualization.ShowMetrics = boolDefault(true)
	}
	if cfg.Visualization.ShowDependencies == nil {
		cfg.Visualization.ShowDependencies = boolDefault(true)
	}
	if cfg.Visualization.ShowErrors == nil {
		cfg.Visualization.ShowErrors = boolDefault(true)
	}
	if cfg.Visualization.ShowWarnings == nil {
		cfg.Visualization.ShowWarnings = boolDefault(true)
	}
	if cfg.Visualization.GroupByType == nil {
		cfg.Visualization.GroupByType = boolDefault(true)
	}
	if cfg.Visualization.ShowFilePaths == nil {
		cfg.Visualization.ShowFilePaths = boolDefault(true)
	}
	if cfg.Visualization.ShowDocumentation == nil {
		cfg.Visualization.ShowDocumentation = boolDefault(true)
	}
	if cfg.Visualization.AutoRefresh == nil {
		cfg.Visualization.AutoRefresh = boolDefault(true)
	}
	if cfg.Visualization.RefreshInterval == 0 {
		cfg.Visualization.RefreshInterval = 30
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if strings.TrimSpace(cfg.Server.Host) == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Server.EnableWebsocket == nil {
		cfg.Server.EnableWebsocket = boolDefault(true)
	}
	if cfg.Server.EnableCompression == nil {
		cfg.Server.EnableCompression = boolDefault(true)
	}
	if cfg.Server.MaxRequestSize == nil {
		size := int64(10 * 1024 * 1024)
		cfg.Server.MaxRequestSize = &size
	}
	if cfg.Server.Timeout == nil {
		timeout := 30
		cfg.Server.Timeout = &timeout
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RescanRate == 0 {
		cfg.Watch.RescanRate = 1
	}
	if cfg.Watch.RescanBurst == 0 {
		cfg.Watch.RescanBurst = 2
	}

	if strings.TrimSpace(cfg.Observability.OTLPEndpoint) == "" {
		cfg.Observability.OTLPEndpoint = "localhost:4317"
	}
	if cfg.Observability.SampleRatio == 0 {
		cfg.Observability.SampleRatio = 1
	}
	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "archmap"
	}
}

func validate(cfg *Config) error {
	if err := validateScanning(cfg); err != nil {
		return err
	}
	if err := validateVisualization(cfg); err != nil {
		return err
	}
	if err := validateServer(cfg); err != nil {
		return err
	}
	if err := validateWatch(cfg); err != nil {
		return err
	}
	if err := validateObservability(cfg); err != nil {
		return err
	}
	return nil
}

func validateScanning(cfg *Config) error {
	if cfg.Scanning.ScanInterval < 1 {
		return fmt.Errorf("scanning.scan_interval must be >= 1, got %d", cfg.Scanning.ScanInterval)
	}
	if size := cfg.Scanning.MaxSize(); size < 1 {
		return fmt.Errorf("scanning.max_file_size must be > 0, got %d", size)
	}
	for i, pattern := range cfg.Scanning.ExcludePatterns {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("scanning.exclude_patterns[%d]: invalid pattern %q: %w", i, pattern, err)
		}
	}
	for i, pattern := range cfg.Scanning.IncludePatterns {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("scanning.include_patterns[%d]: invalid pattern %q: %w", i, pattern, err)
		}
	}
	return nil
}

func validateVisualization(cfg *Config) error {
	if cfg.Visualization.RefreshInterval < 1 {
		return fmt.Errorf("visualization.refresh_interval must be >= 1, got %d", cfg.Visualization.RefreshInterval)
	}
	if fc := cfg.Visualization.FilterComplexity; fc != nil && *fc < 0 {
		return fmt.Errorf("visualization.filter_complexity must be >= 0, got %v", *fc)
	}
	return nil
}

func validateServer(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if strings.TrimSpace(cfg.Server.Host) == "" {
		return fmt.Errorf("server.host must not be empty")
	}
	if cfg.Server.Timeout != nil && *cfg.Server.Timeout < 1 {
		return fmt.Errorf("server.timeout must be >= 1, got %d", *cfg.Server.Timeout)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	if cfg.Watch.RescanRate <= 0 {
		return fmt.Errorf("watch.rescan_rate must be > 0, got %v", cfg.Watch.RescanRate)
	}
	if cfg.Watch.RescanBurst < 1 {
		return fmt.Errorf("watch.rescan_burst must be >= 1, got %d", cfg.Watch.RescanBurst)
	}
	return nil
}

func validateObservability(cfg *Config) error {
	ratio := cfg.Observability.SampleRatio
	if ratio < 0 || ratio > 1 {
		return fmt.Errorf("observability.sample_ratio must be between 0 and 1, got %v", ratio)
	}
	if cfg.Observability.TracingEnabled && strings.TrimSpace(cfg.Observability.OTLPEndpoint) == "" {
		return fmt.Errorf("observability.otlp_endpoint must not be empty when tracing is enabled")
	}
	return nil
}

func boolDefault(value bool) *bool {
	b := value
	return &b
}
