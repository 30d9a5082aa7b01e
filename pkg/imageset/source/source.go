// Package source locates screenshot directories ("web", "web N", "webN")
// under a source root and lists the image files inside them.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"
	"github.com/jamesainslie/imageset/pkg/imageset/logging"
	"github.com/jamesainslie/imageset/pkg/imageset/types"
)

// DirPrefix is the name every source directory starts with.
const DirPrefix = "web"

// ImagePattern matches image filenames after lower-casing.
const ImagePattern = "*.{png,jpg,jpeg}"

var (
	// ErrNotFound is returned by Resolve when no directory exists for an index.
	ErrNotFound = errors.New("source directory not found")

	// ErrNoRoot is returned when the source root is missing or not a directory.
	ErrNoRoot = errors.New("source root is not a directory")
)

var (
	logger       = logging.Get("source")
	imageMatcher = glob.MustCompile(ImagePattern)
)

// ParseDirName reports the index encoded in a source directory name.
// "web" is index 1, "web N" and "webN" are index N. N must be a positive
// integer; any other name is rejected.
func ParseDirName(name string) (int, bool) {
	if name == DirPrefix {
		return 1, true
	}
	if !strings.HasPrefix(name, DirPrefix) {
		return 0, false
	}

	rest := strings.TrimPrefix(name, DirPrefix)
	rest = strings.TrimPrefix(rest, " ")
	if rest == "" || !isDigits(rest) {
		return 0, false
	}

	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Candidates returns the directory names tried for index, in lookup order.
func Candidates(index int) []string {
	names := make([]string, 0, 3)
	if index == 1 {
		names = append(names, DirPrefix)
	}
	return append(names,
		fmt.Sprintf("%s %d", DirPrefix, index),
		fmt.Sprintf("%s%d", DirPrefix, index),
	)
}

// Discover returns the source directories directly under root, sorted by
// ascending index. Symlinks to directories count, as they do for Resolve. Directories with equal indices ("web 3" and "web3") are
// ordered by name.
func Discover(root string) ([]types.SourceDir, error) {
	root = filepath.Clean(root)
	if err := checkRoot(root); err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		dirs []types.SourceDir
	)

	conf := fastwalk.Config{
		Follow: false,
	}

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		// Symlinks are not walked, but one pointing at a directory is a
		// source directory like any other.
		isDir := d.IsDir()
		if d.Type()&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			if statErr != nil {
				logger.Debug("skipping broken symlink", "path", path, "error", statErr)
				return nil
			}
			isDir = info.IsDir()
		}
		if !isDir {
			return nil
		}

		// Only immediate children of root are candidates.
		if filepath.Dir(path) == root {
			if index, ok := ParseDirName(d.Name()); ok {
				mu.Lock()
				dirs = append(dirs, types.SourceDir{Index: index, Name: d.Name(), Path: path})
				mu.Unlock()
			}
		}
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Slice(dirs, func(i, j int) bool {
		if dirs[i].Index != dirs[j].Index {
			return dirs[i].Index < dirs[j].Index
		}
		return dirs[i].Name < dirs[j].Name
	})

	logger.Debug("discovered source directories", "root", root, "count", len(dirs))
	return dirs, nil
}

// Resolve finds the source directory for index under root, trying
// "web" (index 1 only), "web <index>" and "web<index>" in that order.
func Resolve(root string, index int) (types.SourceDir, error) {
	for _, name := range Candidates(index) {
		path := filepath.Join(root, name)
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return types.SourceDir{}, fmt.Errorf("checking %s: %w", path, err)
		}
		if info.IsDir() {
			return types.SourceDir{Index: index, Name: name, Path: path}, nil
		}
	}
	return types.SourceDir{}, fmt.Errorf("%w for index %d", ErrNotFound, index)
}

// IsImage reports whether name has a .png, .jpg or .jpeg extension,
// ignoring case.
func IsImage(name string) bool {
	return imageMatcher.Match(strings.ToLower(name))
}

// ListImages returns the image files in dir sorted by name.
func ListImages(dir string) ([]types.ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	images := make([]types.ImageFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		images = append(images, types.ImageFile{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}

	// os.ReadDir already sorts by name.
	return images, nil
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNoRoot, root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNoRoot, root)
	}
	return nil
}
