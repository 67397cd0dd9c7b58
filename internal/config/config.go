// Package config loads cohorts configuration from defaults, YAML files,
// a .env file and COHORTS_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	cerrors "github.com/Aman-CERP/cohorts/internal/errors"
	"github.com/Aman-CERP/cohorts/internal/logging"
)

const (
	// DefaultDataDir is the conventional dataset directory.
	DefaultDataDir = "data"
	// DefaultOutputName is the index file written inside the data directory.
	DefaultOutputName = "files.json"
	// DefaultIndent is the JSON indentation of the index file.
	DefaultIndent = "  "

	// ProjectFile is the per-directory config file name.
	ProjectFile = ".cohorts.yaml"
	// ProjectFileAlt is accepted when ProjectFile is absent.
	ProjectFileAlt = ".cohorts.yml"
	// EnvFile is loaded from the working directory when present.
	EnvFile = ".env"

	envPrefix = "COHORTS_"
)

// Config is the complete cohorts configuration.
type Config struct {
	Version    int         `yaml:"version" json:"version"`
	DataDir    string      `yaml:"data_dir" json:"data_dir"`
	OutputName string      `yaml:"output_name" json:"output_name"`
	Indent     string      `yaml:"indent" json:"indent"`
	LogLevel   string      `yaml:"log_level" json:"log_level"`
	SQLitePath string      `yaml:"sqlite_path,omitempty" json:"sqlite_path,omitempty"`
	Watch      WatchConfig `yaml:"watch" json:"watch"`
}

// WatchConfig configures `cohorts index --watch`.
type WatchConfig struct {
	// Debounce is the quiet period after the last change before a rebuild.
	Debounce string `yaml:"debounce" json:"debounce"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Version:    1,
		DataDir:    DefaultDataDir,
		OutputName: DefaultOutputName,
		Indent:     DefaultIndent,
		LogLevel:   "warn",
		Watch: WatchConfig{
			Debounce: "500ms",
		},
	}
}

// OutputPath is the index file path: DataDir joined with OutputName.
func (c *Config) OutputPath() string {
	return filepath.Join(c.DataDir, c.OutputName)
}

// DebounceDuration parses Watch.Debounce. Validate guarantees it parses.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/cohorts/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/cohorts/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cohorts", "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "cohorts", "config.yaml")
	}
	return filepath.Join(home, ".config", "cohorts", "config.yaml")
}

// Load builds the effective configuration for dir, in increasing precedence:
//  1. Built-in defaults
//  2. User config (~/.config/cohorts/config.yaml)
//  3. Project config (.cohorts.yaml in dir)
//  4. .env in dir (never overrides variables already set)
//  5. COHORTS_* environment variables
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	userPath := GetUserConfigPath()
	if fileExists(userPath) {
		if err := cfg.loadYAML(userPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadProjectFile(dir); err != nil {
		return nil, err
	}

	envPath := filepath.Join(dir, EnvFile)
	if fileExists(envPath) {
		if err := godotenv.Load(envPath); err != nil {
			return nil, cerrors.ConfigError(fmt.Sprintf("failed to parse %s", envPath), err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadProjectFile merges .cohorts.yaml (or .cohorts.yml) from dir if present.
func (c *Config) loadProjectFile(dir string) error {
	for _, name := range []string{ProjectFile, ProjectFileAlt} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	return nil
}

// loadYAML parses path and merges its non-zero values into c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return cerrors.New(cerrors.ErrCodeConfigPermission,
				fmt.Sprintf("cannot read config file %s", path), err)
		}
		return cerrors.ConfigError(fmt.Sprintf("failed to read config file %s", path), err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return cerrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith copies non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}
	if other.OutputName != "" {
		c.OutputName = other.OutputName
	}
	if other.Indent != "" {
		c.Indent = other.Indent
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.SQLitePath != "" {
		c.SQLitePath = other.SQLitePath
	}
	if other.Watch.Debounce != "" {
		c.Watch.Debounce = other.Watch.Debounce
	}
}

// applyEnvOverrides applies COHORTS_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(envPrefix + "DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(envPrefix + "OUTPUT_NAME"); v != "" {
		c.OutputName = v
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(envPrefix + "WATCH_DEBOUNCE"); v != "" {
		c.Watch.Debounce = v
	}
	if v := os.Getenv(envPrefix + "SQLITE_PATH"); v != "" {
		c.SQLitePath = v
	}
}

// Validate checks the configuration for values the indexer cannot use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return cerrors.ConfigError("data_dir must not be empty", nil)
	}
	if c.OutputName == "" {
		return cerrors.ConfigError("output_name must not be empty", nil)
	}
	if strings.ContainsAny(c.OutputName, `/\`) {
		return cerrors.ConfigError(
			fmt.Sprintf("output_name must be a plain file name, got %q", c.OutputName), nil)
	}
	// A .csv output would be picked up by the next scan.
	if strings.HasSuffix(c.OutputName, ".csv") {
		return cerrors.ConfigError(
			fmt.Sprintf("output_name must not end in .csv, got %q", c.OutputName), nil)
	}
	if strings.Trim(c.Indent, " \t") != "" {
		return cerrors.ConfigError("indent may only contain spaces and tabs", nil)
	}
	if !logging.ValidLevel(c.LogLevel) {
		return cerrors.ConfigError(
			fmt.Sprintf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel), nil)
	}
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return cerrors.ConfigError(
			fmt.Sprintf("watch.debounce is not a duration: %q", c.Watch.Debounce), err)
	}
	if d < 0 {
		return cerrors.ConfigError("watch.debounce must not be negative", nil)
	}
	return nil
}

// WriteYAML writes the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# cohorts configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
