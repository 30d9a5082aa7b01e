package main

import (
	"github.com/spf13/cobra"

	"github.com/jamesainslie/imageset/pkg/imageset/output"
	"github.com/jamesainslie/imageset/pkg/imageset/rename"
)

var runCmd = &cobra.Command{
	Use:   "run [source]",
	Short: "Rename, then import",
	Long: `Run "rename" and then "import" over the same source folder. The import
is skipped if renaming fails.

In dry-run mode the import preview sees the files under their old names,
because nothing was renamed.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: bindImportFlags,
	RunE:    runAll,
}

func init() {
	addImportFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func runAll(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	im, err := newImporter(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	res := &output.Result{}

	res.Rename, err = rename.New(rename.Options{Root: cfg.Source, DryRun: cfg.DryRun}).Run(ctx)
	if err == nil {
		res.Import, err = im.Run(ctx)
	}

	recordHistory(cfg, res)
	return writeResult(cmd, cfg, res, err)
}
