package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// ImportConfig configures the importer's index range.
type ImportConfig struct {
	Start int  `mapstructure:"start"` // inclusive
	End   int  `mapstructure:"end"`   // exclusive
	Prune bool `mapstructure:"prune"`
}

// ManifestConfig configures operation history.
type ManifestConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	Source   string         `mapstructure:"source"`
	Target   string         `mapstructure:"target"`
	DryRun   bool           `mapstructure:"dry_run"`
	Output   string         `mapstructure:"output"`
	Import   ImportConfig   `mapstructure:"import"`
	Manifest ManifestConfig `mapstructure:"manifest"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ErrEmptyPath is returned by Validate when source or target is empty.
var ErrEmptyPath = errors.New("path cannot be empty")

// Load decodes and validates the configuration held by v. v is normally
// the viper instance prepared by Setup, with command-line flags bound.
func Load(v *viper.Viper) (*Config, error) {
	cfg, err := Decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Setup registers defaults, config file search paths and environment
// binding on v, then reads the config file. An explicit cfgFile must
// exist; a missing file in the search paths is not an error.
//
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/imageset/config.yaml
//   - $HOME/.config/imageset/config.yaml
func Setup(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return nil
}

// SetDefaults registers every configuration key with its default value.
// Keys must have a default for environment overrides to reach Decode.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source", DefaultSource)
	v.SetDefault("target", DefaultTarget)
	v.SetDefault("dry_run", false)
	v.SetDefault("output", DefaultOutput)

	v.SetDefault("import.start", DefaultImportStart)
	v.SetDefault("import.end", DefaultImportEnd)
	v.SetDefault("import.prune", false)

	v.SetDefault("manifest.enabled", true)
	v.SetDefault("manifest.path", "")
	v.SetDefault("manifest.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", "10MiB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{})
}

// Decode unmarshals v into a Config and expands ~ in path settings.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, p := range []*string{&cfg.Source, &cfg.Target, &cfg.Manifest.Path, &cfg.Logging.Path} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}

	if cfg.Manifest.Path == "" {
		cfg.Manifest.Path = DefaultManifestDir()
	}

	return &cfg, nil
}

// Validate checks settings that have no sensible fallback.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("source: %w", ErrEmptyPath)
	}
	if strings.TrimSpace(c.Target) == "" {
		return fmt.Errorf("target: %w", ErrEmptyPath)
	}
	return nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", AppName), nil
}

// ConfigPath returns the path of the default config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DataDir returns $XDG_DATA_HOME/imageset.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// StateDir returns $XDG_STATE_HOME/imageset, where log files live.
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// DefaultManifestDir returns the directory holding operation history.
func DefaultManifestDir() string {
	return filepath.Join(DataDir(), "manifest")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), AppName+".log")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// WriteDefault writes a commented default config file if none exists and
// returns its path. An existing file is left untouched.
func WriteDefault() (string, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	var components strings.Builder
	for _, name := range []string{"rename", "importer", "source", "manifest"} {
		fmt.Fprintf(&components, "    %s: %s\n", name, DefaultComponentLevels[name])
	}

	defaultConfig := fmt.Sprintf(`# imageset configuration

# Directory containing the "web", "web N" and "webN" screenshot folders
source: %s

# Asset catalog group that receives schedule-N.imageset directories
target: %s

# Preview renames and moves without touching the filesystem
dry_run: false

# Report format: pretty, plain, json, jsonl, yaml
output: %s

# Index range for import: start is inclusive, end is exclusive
import:
  start: %d
  end: %d
  # Trash source folders that are empty after a complete import
  prune: false

# Operation history
manifest:
  enabled: true
  # Empty means $XDG_DATA_HOME/imageset/manifest
  path: ""
  retention_days: %d

logging:
  # Log level: debug, info, warn, error
  level: %s
  # Empty means $XDG_STATE_HOME/imageset/imageset.log
  path: ""
  rotation:
    max_size: 10MiB
    max_age: 30       # days
    max_backups: 5
    daily: true
  components:
%s`, DefaultSource, DefaultTarget, DefaultOutput, DefaultImportStart, DefaultImportEnd,
		DefaultRetentionDays, DefaultLogLevel, components.String())

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}

	return configPath, nil
}
