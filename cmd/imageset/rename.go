package main

import (
	"github.com/spf13/cobra"

	"github.com/jamesainslie/imageset/pkg/imageset/output"
	"github.com/jamesainslie/imageset/pkg/imageset/rename"
)

var renameCmd = &cobra.Command{
	Use:   "rename [source]",
	Short: "Give screenshots their canonical schedule-N names",
	Long: `Rename the images in every "web", "web N" and "webN" folder under source.

A filename containing 57 becomes schedule-N.png, 60 becomes
schedule-N-2x.png and 76 becomes schedule-N-3x.png. A folder with exactly
three images that are not all labeled is sorted by size instead: smallest
1x, largest 3x. Files that cannot be classified are left alone.

Renaming stops at the first folder where a target name is already taken.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRename,
}

func init() {
	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	report, runErr := rename.New(rename.Options{Root: cfg.Source, DryRun: cfg.DryRun}).Run(ctx)
	res := &output.Result{Rename: report}

	recordHistory(cfg, res)
	return writeResult(cmd, cfg, res, runErr)
}
