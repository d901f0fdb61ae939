// Package config loads and persists maquette.json, the project
// configuration file, layered with MAQUETTE_* environment overrides.
package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"

	envparse "github.com/caarlos0/env/v11"

	"github.com/maquette-dev/maquette/internal/enginerr"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "maquette.json"

	// DefaultPort is the default preview server port.
	DefaultPort = 4100

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultManifestDir is where manifest documents live.
	DefaultManifestDir = "manifests"

	// DefaultAssetDir is where referenced static assets live.
	DefaultAssetDir = "assets"
)

// Config represents the complete maquette.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" env:"-"`

	// Version is the project version.
	Version string `json:"version,omitempty" env:"-"`

	// TenantID is the default tenant stamped on new drafts.
	TenantID string `json:"tenantId,omitempty" env:"TENANT_ID"`

	// Paths contains project directory locations.
	Paths PathsConfig `json:"paths,omitempty" envPrefix:"PATHS_"`

	// Server contains preview server configuration.
	Server ServerConfig `json:"server,omitempty" envPrefix:"SERVER_"`

	// Theme contains design token configuration.
	Theme ThemeConfig `json:"theme,omitempty"`

	// Export contains bundle export configuration.
	Export ExportConfig `json:"export,omitempty" envPrefix:"EXPORT_"`

	// LogLevel is the textual log level (debug, info, warn, error).
	LogLevel string `json:"logLevel,omitempty" env:"LOG_LEVEL"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PathsConfig contains project directory locations.
type PathsConfig struct {
	// Manifests is the directory holding manifest documents.
	Manifests string `json:"manifests,omitempty" env:"MANIFESTS"`

	// Assets is the directory holding static assets.
	Assets string `json:"assets,omitempty" env:"ASSETS"`
}

// ServerConfig contains preview server settings.
type ServerConfig struct {
	// Port is the port to bind the preview server on.
	Port int `json:"port,omitempty" env:"PORT"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty" env:"HOST"`

	// DebounceMillis is the preview debounce window in milliseconds.
	DebounceMillis int `json:"debounceMillis,omitempty" env:"DEBOUNCE_MILLIS"`

	// Watch lists paths watched for manifest changes.
	Watch []string `json:"watch,omitempty" env:"-"`
}

// ThemeConfig contains design token settings.
type ThemeConfig struct {
	// BrandID selects the brand token set when the manifest names none.
	BrandID string `json:"brandId,omitempty"`

	// Tokens are project-level token defaults.
	Tokens map[string]any `json:"tokens,omitempty"`
}

// ExportConfig contains bundle export settings.
type ExportConfig struct {
	// Output is the directory bundle archives are written to.
	Output string `json:"output,omitempty" env:"OUTPUT"`

	// S3Bucket, when set, enables publishing bundles to S3.
	S3Bucket string `json:"s3Bucket,omitempty" env:"S3_BUCKET"`

	// S3Prefix scopes published object keys.
	S3Prefix string `json:"s3Prefix,omitempty" env:"S3_PREFIX"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Version: "0.1.0",
		Paths: PathsConfig{
			Manifests: DefaultManifestDir,
			Assets:    DefaultAssetDir,
		},
		Server: ServerConfig{
			Port:           DefaultPort,
			Host:           DefaultHost,
			DebounceMillis: 250,
			Watch:          []string{DefaultManifestDir},
		},
		Export: ExportConfig{
			Output: "dist",
		},
		LogLevel: "info",
	}
}

// Load reads configuration from the specified directory. It looks for
// maquette.json in the directory and applies MAQUETTE_* environment
// overrides on top.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, enginerr.New("M501").
				WithDetail("no maquette.json found in " + filepath.Dir(path)).
				WithSuggestion("run 'maquette init' or create maquette.json manually")
		}
		return nil, enginerr.New("M502").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, enginerr.New("M502").
			WithDetail("parsing maquette.json: " + err.Error()).
			WithSuggestion("check that maquette.json is valid JSON").
			Wrap(err)
	}
	cfg.configPath = path

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv returns the default configuration with only environment
// overrides applied, for running without a project file.
func FromEnv() (*Config, error) {
	cfg := New()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if err := envparse.ParseWithOptions(c, envparse.Options{Prefix: "MAQUETTE_"}); err != nil {
		return enginerr.New("M502").
			WithDetail("reading MAQUETTE_* environment: " + err.Error()).
			Wrap(err)
	}
	return nil
}

// Save writes the configuration back to its source path, or to
// dir/maquette.json for configs that were never loaded from disk.
func (c *Config) Save(dir string) error {
	path := c.configPath
	if path == "" {
		path = filepath.Join(dir, ConfigFileName)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return enginerr.New("M502").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return enginerr.New("M502").
			WithDetail("writing " + path + ": " + err.Error()).
			Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns where the config was loaded from, or empty for configs
// built in memory.
func (c *Config) Path() string { return c.configPath }

// Addr returns the host:port the preview server binds to.
func (c *Config) Addr() string {
	host := c.Server.Host
	if host == "" {
		host = DefaultHost
	}
	port := c.Server.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
