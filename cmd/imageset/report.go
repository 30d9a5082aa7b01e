package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/imageset/pkg/imageset/config"
	"github.com/jamesainslie/imageset/pkg/imageset/logging"
	"github.com/jamesainslie/imageset/pkg/imageset/manifest"
	"github.com/jamesainslie/imageset/pkg/imageset/output"
	"github.com/jamesainslie/imageset/pkg/imageset/types"
)

var logger = logging.Get("cli")

// writeResult formats res with the configured formatter and returns
// runErr, so a failed run still prints what it did.
func writeResult(cmd *cobra.Command, cfg *config.Config, res *output.Result, runErr error) error {
	formatter, err := output.Get(cfg.Output)
	if err != nil {
		return err
	}

	if runErr != nil {
		res.Err = runErr.Error()
		res.Interrupted = errors.Is(runErr, context.Canceled)
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, res); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), buf.String())

	return runErr
}

// recordHistory appends the runs in res to the manifest. Dry runs and
// runs that changed nothing are not recorded. Failures are logged only.
func recordHistory(cfg *config.Config, res *output.Result) {
	if !cfg.Manifest.Enabled || cfg.DryRun {
		return
	}

	hasRename := res.Rename != nil && len(res.Rename.Moves()) > 0
	hasImport := res.Import != nil && len(res.Import.Moves()) > 0
	if !hasRename && !hasImport {
		return
	}

	m, err := manifest.New(cfg.Manifest.Path)
	if err != nil {
		logger.Warn("manifest unavailable", "error", err)
		return
	}
	if err := m.EnsureDir(); err != nil {
		logger.Warn("failed to create manifest directory", "path", cfg.Manifest.Path, "error", err)
		return
	}

	if hasRename {
		logEntry(m.LogRename(res.Rename))
	}
	if hasImport {
		logEntry(m.LogImport(res.Import))
	}
}

func logEntry(entry *manifest.Entry, err error) {
	if err != nil {
		logger.Warn("failed to record history", "error", err)
		return
	}
	printVerbose("Recorded %s (%d files, %s)", entry.ID, entry.Summary.TotalFiles, types.FormatSize(entry.Summary.TotalBytes))
}
