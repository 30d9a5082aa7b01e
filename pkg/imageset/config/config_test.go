package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// load sets up a fresh viper from the default locations and loads it.
func load(t *testing.T) (*Config, error) {
	t.Helper()
	v := viper.New()
	if err := Setup(v, ""); err != nil {
		return nil, err
	}
	return Load(v)
}

func TestLoad_Defaults(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, DefaultSource, cfg.Source)
	assert.Equal(t, DefaultTarget, cfg.Target)
	assert.Equal(t, DefaultImportStart, cfg.Import.Start)
	assert.Equal(t, DefaultImportEnd, cfg.Import.End)
	assert.False(t, cfg.Import.Prune)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.True(t, cfg.Manifest.Enabled)
	assert.Equal(t, DefaultManifestDir(), cfg.Manifest.Path)
	assert.Equal(t, DefaultRetentionDays, cfg.Manifest.RetentionDays)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, "10MiB", cfg.Logging.Rotation.MaxSize)
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "imageset")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	configContent := `
source: /screens
target: ~/App/Assets.xcassets/schedule
dry_run: true
output: json
import:
  start: 1
  end: 6
  prune: true
manifest:
  enabled: false
  path: /custom/manifest
  retention_days: 7
logging:
  level: debug
  components:
    rename: warn
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0o644))

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, "/screens", cfg.Source)
	assert.Equal(t, filepath.Join(tempDir, "App", "Assets.xcassets", "schedule"), cfg.Target)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, 1, cfg.Import.Start)
	assert.Equal(t, 6, cfg.Import.End)
	assert.True(t, cfg.Import.Prune)
	assert.False(t, cfg.Manifest.Enabled)
	assert.Equal(t, "/custom/manifest", cfg.Manifest.Path)
	assert.Equal(t, 7, cfg.Manifest.RetentionDays)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "warn", cfg.Logging.Components["rename"])
}

func TestLoad_XDGConfigHome(t *testing.T) {
	tempDir := t.TempDir()
	xdgConfigDir := filepath.Join(tempDir, "xdg-config", "imageset")
	require.NoError(t, os.MkdirAll(xdgConfigDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdgConfigDir, "config.yaml"), []byte("import:\n  start: 2\n"), 0o644))

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "xdg-config"))

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Import.Start)
	assert.Equal(t, DefaultImportEnd, cfg.Import.End)
}

func TestLoad_EnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("IMAGESET_IMPORT_START", "9")
	t.Setenv("IMAGESET_TARGET", "/tmp/out")
	t.Setenv("IMAGESET_DRY_RUN", "true")

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Import.Start)
	assert.Equal(t, "/tmp/out", cfg.Target)
	assert.True(t, cfg.DryRun)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "imageset")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("import: [unclosed"), 0o644))

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	_, err := load(t)
	assert.Error(t, err)
}

func TestLoad_RejectsEmptySource(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	v := viper.New()
	require.NoError(t, Setup(v, ""))
	v.Set("source", " ")

	_, err := Load(v)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyPath))
}

func TestWriteDefault_ListsOutputFormats(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	path, err := WriteDefault()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Report format: pretty, plain, json, jsonl, yaml")
}

func TestSetup_ExplicitFileMustExist(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	err := Setup(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSetup_ExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: /elsewhere\n"), 0o644))

	v := viper.New()
	require.NoError(t, Setup(v, path))
	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere", cfg.Source)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := &Config{Source: ".", Target: "out"}
	require.NoError(t, cfg.Validate())

	cfg.Target = " "
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyPath))
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		input string
		want  string
	}{
		{"~", home},
		{"~/images", filepath.Join(home, "images")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"~user/x", "~user/x"},
		{"", ""},
	}

	for _, tt := range tests {
		got, err := ExpandPath(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "ExpandPath(%q)", tt.input)
	}
}

func TestWriteDefault(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	path, err := WriteDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, ".config", "imageset", "config.yaml"), path)

	// The written file must load back to the defaults.
	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, DefaultImportStart, cfg.Import.Start)
	assert.Equal(t, DefaultImportEnd, cfg.Import.End)
	assert.Equal(t, DefaultManifestDir(), cfg.Manifest.Path)
	assert.Equal(t, "warn", cfg.Logging.Components["manifest"])

	// A second call keeps the existing file.
	require.NoError(t, os.WriteFile(path, []byte("source: /kept\n"), 0o644))
	_, err = WriteDefault()
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "source: /kept\n", string(b))
}
