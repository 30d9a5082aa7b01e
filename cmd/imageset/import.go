package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/imageset/pkg/imageset/config"
	"github.com/jamesainslie/imageset/pkg/imageset/importer"
	"github.com/jamesainslie/imageset/pkg/imageset/output"
)

var importCmd = &cobra.Command{
	Use:   "import [source]",
	Short: "Move renamed screenshots into schedule-N.imageset folders",
	Long: `Import schedule-N.png, schedule-N-2x.png and schedule-N-3x.png for every
index N in [start, end) into <target>/schedule-N.imageset and write its
Contents.json.

Missing folders and files are reported and skipped. Run "imageset rename"
first so the files carry their canonical names.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: bindImportFlags,
	RunE:    runImport,
}

func init() {
	addImportFlags(importCmd)
	rootCmd.AddCommand(importCmd)
}

// addImportFlags registers the flags shared by import and run.
func addImportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("target", "t", config.DefaultTarget, "directory receiving the .imageset folders")
	cmd.Flags().Int("start", config.DefaultImportStart, "first index to import")
	cmd.Flags().Int("end", config.DefaultImportEnd, "stop before this index")
	cmd.Flags().Bool("prune", false, "trash source folders emptied by the import")
}

// bindImportFlags binds the running command's import flags. Binding at run
// time keeps import and run from overwriting each other's bindings.
func bindImportFlags(cmd *cobra.Command, _ []string) error {
	for key, flag := range map[string]string{
		"target":       "target",
		"import.start": "start",
		"import.end":   "end",
		"import.prune": "prune",
	} {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

func newImporter(cfg *config.Config) (*importer.Importer, error) {
	return importer.New(importer.Options{
		Source: cfg.Source,
		Target: cfg.Target,
		Start:  cfg.Import.Start,
		End:    cfg.Import.End,
		DryRun: cfg.DryRun,
		Prune:  cfg.Import.Prune,
	})
}

func runImport(cmd *cobra.Command, args []string) error {
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

	report, runErr := im.Run(ctx)
	res := &output.Result{Import: report}

	recordHistory(cfg, res)
	return writeResult(cmd, cfg, res, runErr)
}
