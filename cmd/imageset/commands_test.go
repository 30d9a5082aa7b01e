package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/imageset/pkg/imageset/config"
	"github.com/jamesainslie/imageset/pkg/imageset/importer"
	"github.com/jamesainslie/imageset/pkg/imageset/types"
)

// isolate points HOME and the XDG directories at a temp dir and resets
// global viper and flag state left by earlier tests.
func isolate(t *testing.T) string {
	t.Helper()

	// Registered first so it runs after the environment is restored.
	t.Cleanup(xdg.Reload)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "state"))
	xdg.Reload()

	viper.Reset()
	bindRootFlags()
	resetFlags(rootCmd)
	return home
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--quiet"}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := Execute()
	return out.String(), err
}

func writeScreens(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestRunCommand_EndToEnd(t *testing.T) {
	home := isolate(t)
	src := filepath.Join(home, "screens")
	dst := filepath.Join(home, "Assets.xcassets", "schedule")
	writeScreens(t, src, map[string]string{
		"web 7/icon57.png": "a",
		"web 7/icon60.png": "bb",
		"web 7/icon76.png": "ccc",
	})

	out, err := execute(t, "run", src, "--target", dst, "--start", "7", "--end", "8", "-o", "json")
	require.NoError(t, err)

	var doc struct {
		Summary struct {
			Renamed    int   `json:"renamed"`
			Moved      int   `json:"moved"`
			TotalBytes int64 `json:"total_bytes"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 3, doc.Summary.Renamed)
	assert.Equal(t, 3, doc.Summary.Moved)

	imageset := filepath.Join(dst, "schedule-7.imageset")
	got, err := os.ReadFile(filepath.Join(imageset, "schedule-7-3x.png"))
	require.NoError(t, err)
	assert.Equal(t, "ccc", string(got))

	data, err := os.ReadFile(filepath.Join(imageset, types.ContentsFile))
	require.NoError(t, err)
	var contents types.Contents
	require.NoError(t, json.Unmarshal(data, &contents))
	assert.Len(t, contents.Images, 3)

	// Both steps were recorded.
	resetFlags(rootCmd)
	out, err = execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "rename-")
	assert.Contains(t, out, "import-")
}

func TestRenameCommand_DryRun(t *testing.T) {
	home := isolate(t)
	src := filepath.Join(home, "screens")
	writeScreens(t, src, map[string]string{"web/icon57.png": "a"})

	out, err := execute(t, "rename", src, "--dry-run", "-o", "plain")
	require.NoError(t, err)

	assert.Contains(t, out, "rename")
	assert.Contains(t, out, "schedule-1.png")
	assert.FileExists(t, filepath.Join(src, "web", "icon57.png"))
	assert.NoDirExists(t, config.DefaultManifestDir())
}

func TestImportCommand_InvalidRange(t *testing.T) {
	home := isolate(t)

	_, err := execute(t, "import", home, "--start", "5", "--end", "5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, importer.ErrInvalidRange))
}

func TestImportCommand_UnknownOutput(t *testing.T) {
	home := isolate(t)

	writeScreens(t, home, map[string]string{"web 6/schedule-6.png": "x"})

	_, err := execute(t, "import", home, "--target", filepath.Join(home, "out"), "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
	assert.NoDirExists(t, filepath.Join(home, "out"))
	assert.FileExists(t, filepath.Join(home, "web 6", "schedule-6.png"))
}

func TestImportCommand_ConfigFile(t *testing.T) {
	home := isolate(t)
	src := filepath.Join(home, "screens")
	dst := filepath.Join(home, "out")
	writeScreens(t, src, map[string]string{"web2/schedule-2.png": "x"})

	cfgPath := filepath.Join(home, "imageset.yaml")
	cfgYAML := "source: " + src + "\ntarget: " + dst + "\nimport:\n  start: 2\n  end: 3\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))

	_, err := execute(t, "import", "--config", cfgPath, "-o", "plain")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dst, "schedule-2.imageset", "schedule-2.png"))
}

func TestConfigCommands(t *testing.T) {
	home := isolate(t)
	want := filepath.Join(home, "config", "imageset", "config.yaml")

	out, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(out))

	resetFlags(rootCmd)
	_, err = execute(t, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, want)

	t.Setenv("IMAGESET_IMPORT_END", "9")
	resetFlags(rootCmd)
	out, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Config file: "+want)
	assert.Contains(t, out, "import.end:               9")
	assert.Contains(t, out, "IMAGESET_IMPORT_END=9")
}

func TestVersionCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "imageset dev"))
}

func TestEnvOverrides(t *testing.T) {
	got := envOverrides([]string{"PATH=/bin", "IMAGESET_TARGET=/x", "IMAGESET_DRY_RUN=1", "IMAGESETX=1"})
	assert.Equal(t, []string{"IMAGESET_DRY_RUN=1", "IMAGESET_TARGET=/x"}, got)
}

func TestRelTo(t *testing.T) {
	assert.Equal(t, filepath.Join("web 7", "a.png"), relTo("/s", "/s/web 7/a.png"))
	assert.Equal(t, "/other/a.png", relTo("/s", "/other/a.png"))
	assert.Equal(t, "/x", relTo("", "/x"))
}
