// Package trash moves pruned source folders to the system trash. When no
// trash is available the path is removed instead.
package trash

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// commandTimeout bounds each external trash command.
const commandTimeout = 30 * time.Second

// Method names the mechanism that disposed of a path.
type Method string

const (
	MethodFinder   Method = "finder"
	MethodGio      Method = "gio"
	MethodTrashCLI Method = "trash-put"
	MethodRemoved  Method = "removed"
)

// Replaceable in tests to hide the platform's trash tools.
var (
	lookPath = exec.LookPath
	goos     = runtime.GOOS
)

// MoveToTrash moves path to the trash and reports how. macOS uses Finder
// via osascript; Linux tries gio, then trash-put. Anything else, or a
// failing tool, falls back to permanent removal.
func MoveToTrash(ctx context.Context, path string) (Method, error) {
	if _, err := os.Lstat(path); err != nil {
		return "", fmt.Errorf("cannot trash %q: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve absolute path for %q: %w", path, err)
	}

	switch goos {
	case "darwin":
		script := fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, absPath)
		if run(ctx, "osascript", "-e", script) {
			return MethodFinder, nil
		}
	case "linux":
		if run(ctx, "gio", "trash", absPath) {
			return MethodGio, nil
		}
		if run(ctx, "trash-put", absPath) {
			return MethodTrashCLI, nil
		}
	}

	return remove(absPath)
}

// run executes a trash tool if it is installed and reports success.
func run(ctx context.Context, name string, args ...string) bool {
	bin, err := lookPath(name)
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	return exec.CommandContext(ctx, bin, args...).Run() == nil
}

func remove(path string) (Method, error) {
	if err := os.RemoveAll(path); err != nil {
		return "", fmt.Errorf("failed to delete %q: %w", path, err)
	}
	return MethodRemoved, nil
}
