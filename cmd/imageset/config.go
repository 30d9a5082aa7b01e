package main

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/imageset/pkg/imageset/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage imageset configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/imageset/config.yaml (if set)
  2. ~/.config/imageset/config.yaml

Environment variables override config file settings using the IMAGESET_ prefix:
  IMAGESET_SOURCE=~/Screens
  IMAGESET_TARGET=~/App/Assets.xcassets/schedule
  IMAGESET_IMPORT_START=1
  IMAGESET_IMPORT_END=6`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in $VISUAL, $EDITOR or vi.

If the config file doesn't exist, a default one is created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a commented default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	w := cmd.OutOrStdout()
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Fprintf(w, "Config file: %s\n\n", configFile)
	} else {
		fmt.Fprint(w, "Config file: (using defaults, no file found)\n\n")
	}

	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprintf(w, "source:                   %s\n", cfg.Source)
	fmt.Fprintf(w, "target:                   %s\n", cfg.Target)
	fmt.Fprintf(w, "dry_run:                  %t\n", cfg.DryRun)
	fmt.Fprintf(w, "output:                   %s\n", cfg.Output)
	fmt.Fprintf(w, "import.start:             %d\n", cfg.Import.Start)
	fmt.Fprintf(w, "import.end:               %d\n", cfg.Import.End)
	fmt.Fprintf(w, "import.prune:             %t\n", cfg.Import.Prune)
	fmt.Fprintf(w, "manifest.enabled:         %t\n", cfg.Manifest.Enabled)
	fmt.Fprintf(w, "manifest.path:            %s\n", cfg.Manifest.Path)
	fmt.Fprintf(w, "manifest.retention_days:  %d\n", cfg.Manifest.RetentionDays)
	fmt.Fprintf(w, "logging.level:            %s\n", cfg.Logging.Level)
	logPath := cfg.Logging.Path
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	fmt.Fprintf(w, "logging.path:             %s\n", logPath)
	fmt.Fprintf(w, "logging.rotation:         %s, %d backups, %d days, daily=%t\n",
		cfg.Logging.Rotation.MaxSize, cfg.Logging.Rotation.MaxBackups, cfg.Logging.Rotation.MaxAge, cfg.Logging.Rotation.Daily)

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	overrides := envOverrides(os.Environ())
	if len(overrides) == 0 {
		fmt.Fprintln(w, "(none)")
	}
	for _, kv := range overrides {
		fmt.Fprintln(w, kv)
	}

	return nil
}

// envOverrides returns the IMAGESET_ variables in env, sorted.
func envOverrides(env []string) []string {
	prefix := config.EnvPrefix + "_"
	var out []string
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			out = append(out, kv)
		}
	}
	sort.Strings(out)
	return out
}

func runConfigEdit(_ *cobra.Command, _ []string) error {
	configPath, err := config.WriteDefault()
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	printVerbose("Opening %s with %s", configPath, editor)

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		printInfo(cmd, "Config file already exists: %s", configPath)
		printInfo(cmd, "Use 'imageset config edit' to modify it.")
		return nil
	}

	if _, err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo(cmd, "Created default config file: %s", configPath)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), configPath)

	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}
	return nil
}
