package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/imageset/pkg/imageset/config"
	"github.com/jamesainslie/imageset/pkg/imageset/manifest"
	"github.com/jamesainslie/imageset/pkg/imageset/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	Long: `View the history of rename and import operations.

Every rename or import that changes files is recorded with the files it
renamed or moved. Dry runs are not recorded.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details of a specific operation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove history entries older than the retention period",
	RunE:  runHistoryClean,
}

// showFileLimit caps the files listed by "history show".
const showFileLimit = 50

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getManifest returns the configured manifest and configuration.
func getManifest() (*manifest.Manifest, *config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	m, err := manifest.New(cfg.Manifest.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize manifest: %w", err)
	}
	return m, cfg, nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	m, _, err := getManifest()
	if err != nil {
		return err
	}

	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo(cmd, "No history entries found.")
		printInfo(cmd, "Run 'imageset rename' or 'imageset import' to record operations.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tWHEN\tFILES\tSIZE")
	for _, entry := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			entry.ID,
			entry.Operation,
			humanize.Time(entry.Timestamp),
			entry.Summary.TotalFiles,
			types.FormatSize(entry.Summary.TotalBytes),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	printInfo(cmd, "\nShowing %d entries. Use --limit to change how many.", len(entries))
	printInfo(cmd, "Use 'imageset history show <id>' for details on a specific entry.")
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	m, _, err := getManifest()
	if err != nil {
		return err
	}

	entry, err := m.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Operation Details")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "ID:         %s\n", entry.ID)
	fmt.Fprintf(w, "Timestamp:  %s (%s)\n", entry.Timestamp.Local().Format("2006-01-02 15:04:05 MST"), humanize.Time(entry.Timestamp))
	fmt.Fprintf(w, "Operation:  %s\n", entry.Operation)
	fmt.Fprintf(w, "Root:       %s\n", entry.Root)
	if entry.Target != "" {
		fmt.Fprintf(w, "Target:     %s\n", entry.Target)
	}
	fmt.Fprintf(w, "Files:      %d\n", entry.Summary.TotalFiles)
	fmt.Fprintf(w, "Total Size: %s\n", types.FormatSize(entry.Summary.TotalBytes))

	if len(entry.Files) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	toRoot := entry.Root
	if entry.Target != "" {
		toRoot = entry.Target
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SIZE\tSCALE\tFROM\tTO")
	for i, f := range entry.Files {
		if i == showFileLimit {
			break
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", types.FormatSize(f.Size), f.Scale, relTo(entry.Root, f.From), relTo(toRoot, f.To))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(entry.Files) > showFileLimit {
		fmt.Fprintf(w, "\n... and %d more files\n", len(entry.Files)-showFileLimit)
	}
	return nil
}

func runHistoryClean(cmd *cobra.Command, _ []string) error {
	m, cfg, err := getManifest()
	if err != nil {
		return err
	}

	retentionDays := cfg.Manifest.RetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo(cmd, "Cleaning history entries older than %d days...", retentionDays)

	removed, err := m.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo(cmd, "Removed %d entries.", removed)
	return nil
}

// relTo shortens path relative to root when it lies inside it.
func relTo(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
