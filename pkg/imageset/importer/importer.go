// Package importer moves canonically named screenshots into
// schedule-N.imageset bundles and writes their Contents.json.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jamesainslie/imageset/pkg/imageset/fsx"
	"github.com/jamesainslie/imageset/pkg/imageset/logging"
	"github.com/jamesainslie/imageset/pkg/imageset/source"
	"github.com/jamesainslie/imageset/pkg/imageset/trash"
	"github.com/jamesainslie/imageset/pkg/imageset/types"
)

// ErrInvalidRange is returned for an index range with start < 1 or
// start >= end.
var ErrInvalidRange = errors.New("invalid index range")

var logger = logging.Get("importer")

// Options configures an Importer.
type Options struct {
	// Source is the directory holding the web directories.
	Source string

	// Target is the directory receiving schedule-N.imageset bundles.
	Target string

	// Start is the first index imported.
	Start int

	// End is one past the last index imported.
	End int

	// DryRun reports moves and metadata without writing anything.
	DryRun bool

	// Prune trashes a source directory left empty by a complete import.
	Prune bool
}

// TrashFunc disposes of a pruned source directory.
type TrashFunc func(ctx context.Context, path string) (trash.Method, error)

// Importer builds imagesets for every index in [Start, End).
type Importer struct {
	opts  Options
	trash TrashFunc
}

// ValidateRange checks a half-open index range.
func ValidateRange(start, end int) error {
	if start < 1 {
		return fmt.Errorf("%w: start %d must be at least 1", ErrInvalidRange, start)
	}
	if start >= end {
		return fmt.Errorf("%w: start %d must be less than end %d", ErrInvalidRange, start, end)
	}
	return nil
}

// New creates an Importer after validating the index range.
func New(opts Options) (*Importer, error) {
	if err := ValidateRange(opts.Start, opts.End); err != nil {
		return nil, err
	}
	return &Importer{opts: opts, trash: trash.MoveToTrash}, nil
}

// WithTrash replaces the function used to prune source directories.
func (im *Importer) WithTrash(fn TrashFunc) *Importer {
	im.trash = fn
	return im
}

// Run imports each index in ascending order. Missing source directories
// and files are logged and skipped; any other error stops the run and is
// returned with the report so far. ctx is checked between indices.
func (im *Importer) Run(ctx context.Context) (*types.ImportReport, error) {
	start := time.Now()
	report := &types.ImportReport{
		Source:  im.opts.Source,
		Target:  im.opts.Target,
		Start:   im.opts.Start,
		End:     im.opts.End,
		DryRun:  im.opts.DryRun,
		Indices: []types.ImportIndex{},
	}
	defer func() { report.Duration = time.Since(start) }()

	for index := im.opts.Start; index < im.opts.End; index++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result, err := im.Index(ctx, index)
		report.Indices = append(report.Indices, result)
		if err != nil {
			return report, fmt.Errorf("importing index %d: %w", index, err)
		}
	}

	return report, nil
}

// Index imports a single index: it creates the imageset directory, moves
// the 1x, 2x and 3x files that exist and writes Contents.json listing them.
func (im *Importer) Index(ctx context.Context, index int) (types.ImportIndex, error) {
	imagesetDir := filepath.Join(im.opts.Target, types.ImagesetName(index))
	result := types.ImportIndex{
		Index:    index,
		Imageset: imagesetDir,
		Moved:    []types.FileMove{},
	}

	if !im.opts.DryRun {
		if err := os.MkdirAll(imagesetDir, 0o755); err != nil {
			return result, fmt.Errorf("creating %s: %w", imagesetDir, err)
		}
	}

	dir, err := source.Resolve(im.opts.Source, index)
	if errors.Is(err, source.ErrNotFound) {
		logger.Warn("source dir not found", "index", index, "tried", source.Candidates(index))
		result.Skipped = true
		return result, nil
	}
	if err != nil {
		return result, err
	}
	result.Source = &dir

	entries := make([]types.ImageEntry, 0, len(types.Scales))
	for _, scale := range types.Scales {
		name := types.CanonicalName(index, scale)
		src := filepath.Join(dir.Path, name)

		info, err := os.Stat(src)
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("source file not found", "dir", dir.Name, "file", name)
			result.Missing = append(result.Missing, name)
			continue
		}
		if err != nil {
			return result, fmt.Errorf("checking %s: %w", src, err)
		}

		dst := filepath.Join(imagesetDir, name)
		logger.Info("moving", "from", filepath.Join(dir.Name, name), "to", filepath.Join(types.ImagesetName(index), name))
		if !im.opts.DryRun {
			if err := fsx.Move(src, dst); err != nil {
				if fsx.IsPathTypeConflict(err) {
					logger.Error("destination is not a file", "imageset", types.ImagesetName(index), "name", name)
				}
				return result, fmt.Errorf("moving %s: %w", name, err)
			}
		}

		result.Moved = append(result.Moved, types.FileMove{From: src, To: dst, Scale: scale, Size: info.Size()})
		entries = append(entries, types.ImageEntry{Filename: name, Idiom: types.IdiomUniversal, Scale: scale})
	}

	data, err := MarshalContents(types.NewContents(entries))
	if err != nil {
		return result, err
	}
	if !im.opts.DryRun {
		if err := fsx.WriteFileAtomic(imagesetDir, types.ContentsFile, data); err != nil {
			return result, fmt.Errorf("writing %s: %w", types.ContentsFile, err)
		}
	}
	logger.Debug("wrote contents", "imageset", types.ImagesetName(index), "images", len(entries))

	if im.opts.Prune && len(result.Missing) == 0 {
		pruned, err := im.prune(ctx, dir, result.Moved)
		if err != nil {
			return result, err
		}
		result.Pruned = pruned
	}

	return result, nil
}

// prune trashes dir when nothing but the moved files was in it. In dry-run
// mode the moved files are still present and are not counted.
func (im *Importer) prune(ctx context.Context, dir types.SourceDir, moved []types.FileMove) (bool, error) {
	entries, err := os.ReadDir(dir.Path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", dir.Path, err)
	}

	movedNames := make(map[string]bool, len(moved))
	for _, m := range moved {
		movedNames[filepath.Base(m.From)] = true
	}
	for _, e := range entries {
		if !movedNames[e.Name()] {
			logger.Debug("not pruning non-empty source dir", "dir", dir.Name)
			return false, nil
		}
	}

	if im.opts.DryRun {
		logger.Info("would prune source dir", "dir", dir.Name)
		return true, nil
	}

	method, err := im.trash(ctx, dir.Path)
	if err != nil {
		return false, fmt.Errorf("pruning %s: %w", dir.Name, err)
	}
	logger.Info("pruned source dir", "dir", dir.Name, "method", method)
	return true, nil
}

// MarshalContents encodes a Contents document with two-space indentation.
func MarshalContents(c types.Contents) ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", types.ContentsFile, err)
	}
	return data, nil
}
