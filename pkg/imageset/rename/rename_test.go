package rename

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/imageset/pkg/imageset/types"
)

// writeFiles creates files under root; keys are "dir/name", values sizes.
func writeFiles(t *testing.T, root string, files map[string]int) {
	t.Helper()
	for rel, size := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func sizeOf(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}

func TestRun_Web7Example(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]int{
		"web 7/icon57.png": 10,
		"web 7/icon60.png": 20,
		"web 7/icon76.png": 30,
	})

	report, err := New(Options{Root: root}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"schedule-7-2x.png", "schedule-7-3x.png", "schedule-7.png"}, listDir(t, filepath.Join(root, "web 7")))
	assert.Equal(t, int64(10), sizeOf(t, filepath.Join(root, "web 7", "schedule-7.png")))
	assert.Equal(t, int64(20), sizeOf(t, filepath.Join(root, "web 7", "schedule-7-2x.png")))
	assert.Equal(t, int64(30), sizeOf(t, filepath.Join(root, "web 7", "schedule-7-3x.png")))

	require.Len(t, report.Dirs, 1)
	assert.Equal(t, types.MethodName, report.Dirs[0].Method)
	assert.Len(t, report.Moves(), 3)
	assert.Equal(t, int64(60), types.TotalBytes(report.Moves()))
}

func TestRun_Idempotent(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]int{
		"web/a57.png":     1,
		"web/b60.png":     2,
		"web/c76.png":     3,
		"web 2/x.png":     30,
		"web 2/y.png":     10,
		"web 2/z.png":     20,
		"web60/s57.png":   5,
		"web60/s60.png":   6,
		"web60/s76.png":   7,
		"web3/only57.png": 1,
		// Two 1x candidates: z57.png wins, y57.png stays behind.
		"web 7/w76.png": 3,
		"web 7/x60.png": 2,
		"web 7/y57.png": 1,
		"web 7/z57.png": 1,
		// A canonical file competing with a later token file.
		"web 8/schedule-8.png": 1,
		"web 8/z57.png":        9,
		"web 8/a60.png":        2,
		"web 8/b76.png":        3,
	})

	r := New(Options{Root: root})
	first, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, first.Moves())

	second, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second.Moves())

	assert.Equal(t, []string{"schedule-60-2x.png", "schedule-60-3x.png", "schedule-60.png"}, listDir(t, filepath.Join(root, "web60")))
	assert.Equal(t, []string{"schedule-3.png"}, listDir(t, filepath.Join(root, "web3")))
	assert.Equal(t, []string{"schedule-7-2x.png", "schedule-7-3x.png", "schedule-7.png", "y57.png"}, listDir(t, filepath.Join(root, "web 7")))
	assert.Equal(t, []string{"schedule-8-2x.png", "schedule-8-3x.png", "schedule-8.png", "z57.png"}, listDir(t, filepath.Join(root, "web 8")))
	assert.Equal(t, int64(1), sizeOf(t, filepath.Join(root, "web 8", "schedule-8.png")))

	third, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, third.Moves())
}

func TestRun_SymlinkedDirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	target := t.TempDir()
	writeFiles(t, target, map[string]int{
		"icon57.png": 1,
		"icon60.png": 2,
		"icon76.png": 3,
	})
	require.NoError(t, os.Symlink(target, filepath.Join(root, "web 7")))

	report, err := New(Options{Root: root}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Dirs, 1)
	assert.Len(t, report.Moves(), 3)
	assert.Equal(t, []string{"schedule-7-2x.png", "schedule-7-3x.png", "schedule-7.png"}, listDir(t, target))
}

func TestRun_SizeFallback(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]int{
		"web 4/first.png":  300,
		"web 4/second.jpg": 100,
		"web 4/third.PNG":  200,
	})

	report, err := New(Options{Root: root}).Run(context.Background())
	require.NoError(t, err)

	dir := filepath.Join(root, "web 4")
	assert.Equal(t, int64(100), sizeOf(t, filepath.Join(dir, "schedule-4.png")))
	assert.Equal(t, int64(200), sizeOf(t, filepath.Join(dir, "schedule-4-2x.png")))
	assert.Equal(t, int64(300), sizeOf(t, filepath.Join(dir, "schedule-4-3x.png")))
	assert.Equal(t, types.MethodSize, report.Dirs[0].Method)
}

func TestRun_LeavesUnclassified(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]int{
		"web5/icon60.png": 1,
		"web5/a.png":      2,
		"web5/b.png":      3,
		"web5/c.png":      4,
		"web5/notes.txt":  5,
	})

	report, err := New(Options{Root: root}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a.png", "b.png", "c.png", "notes.txt", "schedule-5-2x.png"}, listDir(t, filepath.Join(root, "web5")))
	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, report.Dirs[0].Unclassified)
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]int{
		"web 9/icon57.png": 1,
		"web 9/icon60.png": 2,
		"web 9/icon76.png": 3,
	})

	report, err := New(Options{Root: root, DryRun: true}).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Len(t, report.Moves(), 3)
	assert.Equal(t, []string{"icon57.png", "icon60.png", "icon76.png"}, listDir(t, filepath.Join(root, "web 9")))
}

func TestRun_TargetExistsHalts(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]int{
		"web 2/z57.png":    2,
		"web 2/a60.png":    3,
		"web 3/icon57.png": 5,
	})
	// A directory holds the name z57.png should get.
	require.NoError(t, os.Mkdir(filepath.Join(root, "web 2", "schedule-2.png"), 0o755))

	report, err := New(Options{Root: root}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTargetExists))

	// Processing halted before web 3 and nothing in web 2 moved.
	require.Len(t, report.Dirs, 1)
	assert.Equal(t, []string{"icon57.png"}, listDir(t, filepath.Join(root, "web 3")))
	assert.Equal(t, []string{"a60.png", "schedule-2.png", "z57.png"}, listDir(t, filepath.Join(root, "web 2")))
}

func TestRun_ChainedRename(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]int{
		"web 7/schedule-7.png": 20,
		"web 7/small.png":      10,
		"web 7/large.png":      30,
	})

	_, err := New(Options{Root: root}).Run(context.Background())
	require.NoError(t, err)

	dir := filepath.Join(root, "web 7")
	assert.Equal(t, int64(10), sizeOf(t, filepath.Join(dir, "schedule-7.png")))
	assert.Equal(t, int64(20), sizeOf(t, filepath.Join(dir, "schedule-7-2x.png")))
	assert.Equal(t, int64(30), sizeOf(t, filepath.Join(dir, "schedule-7-3x.png")))
}

func TestRun_RenameCycle(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]int{
		"web 7/schedule-7.png":    30,
		"web 7/schedule-7-3x.png": 10,
		"web 7/other.png":         20,
	})

	_, err := New(Options{Root: root}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTargetExists))
	assert.Equal(t, []string{"other.png", "schedule-7-3x.png", "schedule-7.png"}, listDir(t, filepath.Join(root, "web 7")))
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]int{"web 1/icon57.png": 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(Options{Root: root}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Dirs)
	assert.Equal(t, []string{"icon57.png"}, listDir(t, filepath.Join(root, "web 1")))
}

func TestRun_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Root: filepath.Join(t.TempDir(), "missing")}).Run(context.Background())
	require.Error(t, err)
}

func TestOrder(t *testing.T) {
	t.Parallel()

	moves := []types.FileMove{
		{From: "/d/b", To: "/d/a"},
		{From: "/d/a", To: "/d/c"},
	}
	ordered, err := Order(moves)
	require.NoError(t, err)
	assert.Equal(t, "/d/a", ordered[0].From)
	assert.Equal(t, "/d/b", ordered[1].From)

	_, err = Order([]types.FileMove{
		{From: "/d/a", To: "/d/b"},
		{From: "/d/b", To: "/d/a"},
	})
	assert.True(t, errors.Is(err, ErrTargetExists))
}
