package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/imageset/pkg/imageset/fsx"
	"github.com/jamesainslie/imageset/pkg/imageset/logging"
	"github.com/jamesainslie/imageset/pkg/imageset/types"
)

// ErrNotFound is returned by Get when no entry has the requested ID.
var ErrNotFound = errors.New("manifest entry not found")

var logger = logging.Get("manifest")

// Manifest manages operation logging to the filesystem.
type Manifest struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// New creates a new Manifest with the given directory.
// The directory is not created until EnsureDir is called.
func New(dir string) (*Manifest, error) {
	if dir == "" {
		return nil, errors.New("manifest directory cannot be empty")
	}
	return &Manifest{dir: dir, now: time.Now}, nil
}

// Dir returns the manifest directory.
func (m *Manifest) Dir() string {
	return m.dir
}

// EnsureDir creates the manifest directory if it does not exist.
func (m *Manifest) EnsureDir() error {
	return os.MkdirAll(m.dir, 0o755)
}

// LogRename records a renamer run.
func (m *Manifest) LogRename(report *types.RenameReport) (*Entry, error) {
	return m.log(OpRename, report.Root, "", report.Moves())
}

// LogImport records an importer run.
func (m *Manifest) LogImport(report *types.ImportReport) (*Entry, error) {
	return m.log(OpImport, report.Source, report.Target, report.Moves())
}

func (m *Manifest) log(op OperationType, root, target string, moves []types.FileMove) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	entry := &Entry{
		ID:        generateID(op, now),
		Timestamp: now,
		Operation: op,
		Root:      root,
		Target:    target,
		Files:     Records(moves),
		Summary: Summary{
			TotalFiles: int64(len(moves)),
			TotalBytes: types.TotalBytes(moves),
		},
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entry: %w", err)
	}
	if err := fsx.WriteFileAtomic(m.dir, entry.ID+".json", data); err != nil {
		return nil, fmt.Errorf("failed to write manifest entry: %w", err)
	}

	logger.Debug("recorded operation", "id", entry.ID, "files", entry.Summary.TotalFiles)
	return entry, nil
}

// List returns all manifest entries sorted by timestamp descending (newest first).
// If limit is 0 or negative, all entries are returned.
func (m *Manifest) List(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get retrieves a specific entry by ID.
func (m *Manifest) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// IDs double as file names.
	if entry, err := m.readEntryFile(id + ".json"); err == nil && entry.ID == id {
		return entry, nil
	}

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Cleanup removes entries recorded more than retentionDays ago and
// returns how many were removed.
func (m *Manifest) Cleanup(retentionDays int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().AddDate(0, 0, -retentionDays)

	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	removed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		entry, err := m.readEntryFile(f.Name())
		if err != nil || !entry.Timestamp.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, f.Name())); err != nil {
			logger.Warn("failed to remove manifest entry", "file", f.Name(), "error", err)
			continue
		}
		removed++
	}

	return removed, nil
}

// readAll must be called with m.mu held. Unparseable files are skipped.
func (m *Manifest) readAll() ([]Entry, error) {
	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		entry, err := m.readEntryFile(f.Name())
		if err != nil {
			logger.Debug("skipping unreadable manifest file", "file", f.Name(), "error", err)
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func (m *Manifest) readEntryFile(filename string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return &entry, nil
}

// generateID creates an ID like "import-2024-06-15T10-30-00-1a2b3c4d".
func generateID(op OperationType, ts time.Time) string {
	return fmt.Sprintf("%s-%s-%s", op, ts.Format("2006-01-02T15-04-05"), uuid.NewString()[:8])
}
