// Package rename gives the screenshots in "web", "web N" and "webN"
// directories their canonical schedule-N[-2x|-3x].png names.
package rename

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jamesainslie/imageset/pkg/imageset/fsx"
	"github.com/jamesainslie/imageset/pkg/imageset/logging"
	"github.com/jamesainslie/imageset/pkg/imageset/source"
	"github.com/jamesainslie/imageset/pkg/imageset/types"
)

// ErrTargetExists is returned when a canonical name is already taken by a
// file that is not part of the rename. It stops the run.
var ErrTargetExists = errors.New("rename target already exists")

var logger = logging.Get("rename")

// Options configures a Renamer.
type Options struct {
	// Root is the directory holding the web directories.
	Root string

	// DryRun plans and reports renames without performing them.
	DryRun bool
}

// Renamer renames classified images in every source directory under a root.
type Renamer struct {
	opts Options
}

// New creates a Renamer.
func New(opts Options) *Renamer {
	return &Renamer{opts: opts}
}

// Run processes source directories in ascending index order. The first
// error stops the run; the returned report covers the directories handled
// up to that point, including the failing one. ctx is checked between
// directories.
func (r *Renamer) Run(ctx context.Context) (*types.RenameReport, error) {
	start := time.Now()
	report := &types.RenameReport{
		Root:   r.opts.Root,
		DryRun: r.opts.DryRun,
		Dirs:   []types.RenameDir{},
	}
	defer func() { report.Duration = time.Since(start) }()

	dirs, err := source.Discover(r.opts.Root)
	if err != nil {
		return report, err
	}
	logger.Info("found web directories", "count", len(dirs), "root", r.opts.Root)

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result, err := r.Dir(dir)
		report.Dirs = append(report.Dirs, result)
		if err != nil {
			return report, fmt.Errorf("renaming in %s: %w", dir.Name, err)
		}
	}

	return report, nil
}

// Dir classifies and renames the images of a single source directory.
// Every target is checked before the first rename, so a conflict leaves
// the directory untouched.
func (r *Renamer) Dir(dir types.SourceDir) (types.RenameDir, error) {
	result := types.RenameDir{
		Dir:     dir,
		Method:  types.MethodNone,
		Renames: []types.FileMove{},
	}

	images, err := source.ListImages(dir.Path)
	if err != nil {
		return result, err
	}
	result.Images = len(images)

	cls := Classify(dir.Index, images)
	result.Method = cls.Method
	switch {
	case cls.Method == types.MethodSize:
		logger.Info("missing scale indicators, sorting by size", "dir", dir.Name)
	case !cls.Complete():
		logger.Debug("incomplete scale set", "dir", dir.Name, "classified", len(cls.Buckets))
	}

	for _, img := range images {
		if !cls.Contains(img.Name) {
			result.Unclassified = append(result.Unclassified, img.Name)
		}
	}
	if len(result.Unclassified) > 0 {
		logger.Debug("leaving unclassified images", "dir", dir.Name, "files", result.Unclassified)
	}

	moves, unchanged := Plan(dir, cls)
	result.Unchanged = unchanged

	ordered, err := Order(moves)
	if err != nil {
		return result, err
	}
	if err := checkTargets(ordered); err != nil {
		return result, err
	}

	for _, m := range ordered {
		logger.Info("renaming", "dir", dir.Name, "from", filepath.Base(m.From), "to", filepath.Base(m.To))
		if !r.opts.DryRun {
			if err := renameFile(m); err != nil {
				return result, err
			}
		}
		result.Renames = append(result.Renames, m)
	}

	return result, nil
}

// Plan lists the renames a classification calls for, in 1x, 2x, 3x order,
// and the names of classified files that already have their canonical name.
func Plan(dir types.SourceDir, cls Classification) ([]types.FileMove, []string) {
	var (
		moves     []types.FileMove
		unchanged []string
	)
	for _, s := range types.Scales {
		f, ok := cls.Buckets[s]
		if !ok {
			continue
		}
		target := types.CanonicalName(dir.Index, s)
		if f.Name == target {
			unchanged = append(unchanged, f.Name)
			continue
		}
		moves = append(moves, types.FileMove{
			From:  f.Path,
			To:    filepath.Join(dir.Path, target),
			Scale: s,
			Size:  f.Size,
		})
	}
	return moves, unchanged
}

// Order sorts moves so that a rename onto another move's source runs after
// that source has been renamed away. Moves that form a cycle cannot be
// ordered and yield ErrTargetExists.
func Order(moves []types.FileMove) ([]types.FileMove, error) {
	pending := make(map[string]bool, len(moves))
	for _, m := range moves {
		pending[m.From] = true
	}

	ordered := make([]types.FileMove, 0, len(moves))
	done := make([]bool, len(moves))
	for len(ordered) < len(moves) {
		progressed := false
		for i, m := range moves {
			if done[i] || pending[m.To] {
				continue
			}
			ordered = append(ordered, m)
			done[i] = true
			delete(pending, m.From)
			progressed = true
		}
		if !progressed {
			for i, m := range moves {
				if !done[i] {
					return nil, fmt.Errorf("%w: %s (rename cycle)", ErrTargetExists, m.To)
				}
			}
		}
	}
	return ordered, nil
}

// checkTargets fails if any target exists and is neither renamed away by
// an earlier move nor the source file itself.
func checkTargets(moves []types.FileMove) error {
	sources := make(map[string]bool, len(moves))
	for _, m := range moves {
		sources[m.From] = true
	}
	for _, m := range moves {
		if sources[m.To] {
			continue
		}
		taken, err := targetTaken(m)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: %s", ErrTargetExists, m.To)
		}
	}
	return nil
}

func renameFile(m types.FileMove) error {
	taken, err := targetTaken(m)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %s", ErrTargetExists, m.To)
	}
	if err := fsx.Rename(m.From, m.To); err != nil {
		return fmt.Errorf("renaming %s: %w", filepath.Base(m.From), err)
	}
	return nil
}

// targetTaken reports whether m.To exists as a different file than m.From.
// On case-insensitive filesystems a case-only rename finds its own source.
func targetTaken(m types.FileMove) (bool, error) {
	exists, err := fsx.Exists(m.To)
	if err != nil || !exists {
		return false, err
	}
	src, err := os.Stat(m.From)
	if err != nil {
		return false, err
	}
	dst, err := os.Stat(m.To)
	if err != nil {
		return false, err
	}
	return !os.SameFile(src, dst), nil
}
