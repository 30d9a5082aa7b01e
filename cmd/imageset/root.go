package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/imageset/pkg/imageset/config"
	"github.com/jamesainslie/imageset/pkg/imageset/logging"
	"github.com/jamesainslie/imageset/pkg/imageset/output"
)

var (
	cfgFile   string
	configErr error

	rootCmd = &cobra.Command{
		Use:   "imageset",
		Short: "Rename screenshots and import them into an Xcode asset catalog",
		Long: `imageset organizes schedule screenshots kept in "web", "web N" and "webN"
folders.

"rename" gives every screenshot its canonical name, schedule-N.png,
schedule-N-2x.png or schedule-N-3x.png, using the 57/60/76 tokens in the
filename or, for three unlabeled files, their sizes. "import" then moves
those files into schedule-N.imageset folders and writes Contents.json.

Examples:
  imageset rename ~/Screens                   # Rename in place
  imageset import ~/Screens --target ./Assets.xcassets/schedule
  imageset run -d ~/Screens                   # Preview rename and import
  imageset import --start 1 --end 6 -o json   # Import indices 1-5 as JSON
  imageset history                            # View operation history`,
		SilenceUsage:      true,
		PersistentPreRunE: initializeLogging,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/imageset/config.yaml)")
	rootCmd.PersistentFlags().BoolP("dry-run", "d", false, "preview renames and moves without changing anything")
	rootCmd.PersistentFlags().StringP("output", "o", config.DefaultOutput, "output format (pretty, plain, json, jsonl, yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors to stderr")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	bindRootFlags()
}

// bindRootFlags binds the persistent flags to their viper keys.
func bindRootFlags() {
	_ = viper.BindPFlag("dry_run", rootCmd.PersistentFlags().Lookup("dry-run"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables. Errors are
// reported by initializeLogging so cobra can print them.
func initConfig() {
	configErr = config.Setup(viper.GetViper(), cfgFile)
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// loadConfig decodes and validates the effective configuration, including
// the output format, before anything touches the disk. A positional
// argument overrides the configured source directory.
func loadConfig(args []string) (*config.Config, error) {
	if len(args) > 0 {
		viper.Set("source", args[0])
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if _, err := output.Get(cfg.Output); err != nil {
		return nil, fmt.Errorf("unknown output format %q: available formats are %v", cfg.Output, output.Available())
	}
	return cfg, nil
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints to the command output unless quiet mode is enabled.
func printInfo(cmd *cobra.Command, format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	}
}
