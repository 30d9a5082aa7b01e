package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/imageset/pkg/imageset/config"
	"github.com/jamesainslie/imageset/pkg/imageset/logging"
)

// initializeLogging is the root PersistentPreRunE hook. It creates the
// XDG directories imageset uses and starts the file and console loggers.
func initializeLogging(_ *cobra.Command, _ []string) error {
	if configErr != nil {
		return configErr
	}

	cfg, err := config.Decode(viper.GetViper())
	if err != nil {
		return err
	}

	if err := ensureDirectories(); err != nil {
		return err
	}

	logPath := cfg.Logging.Path
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}

	return logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Path:         logPath,
		Rotation:     parseRotationConfig(cfg.Logging.Rotation),
		Components:   cfg.Logging.Components,
		ConsoleLevel: consoleLevel(getVerbose(), getQuiet()),
	})
}

func ensureDirectories() error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	for _, dir := range []string{configDir, config.DataDir(), config.StateDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// consoleLevel maps --verbose and --quiet to the stderr log level.
// Quiet wins when both are set.
func consoleLevel(verbose, quiet bool) string {
	switch {
	case quiet:
		return "error"
	case verbose:
		return "debug"
	default:
		return "info"
	}
}

// parseRotationConfig converts the config file's rotation settings.
// An empty or unparseable max_size falls back to the logging default.
func parseRotationConfig(c config.RotationConfig) logging.RotationConfig {
	maxSize := logging.DefaultRotationConfig().MaxSize
	if c.MaxSize != "" {
		if n, err := humanize.ParseBytes(c.MaxSize); err == nil && n > 0 {
			maxSize = int64(n)
		} else {
			printVerbose("invalid logging.rotation.max_size %q, using default", c.MaxSize)
		}
	}

	return logging.RotationConfig{
		MaxSize:    maxSize,
		MaxAge:     c.MaxAge,
		MaxBackups: c.MaxBackups,
		Daily:      c.Daily,
	}
}
