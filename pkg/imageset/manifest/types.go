// Package manifest records completed rename and import runs so they can
// be reviewed later with "imageset history".
package manifest

import (
	"time"

	"github.com/jamesainslie/imageset/pkg/imageset/types"
)

// OperationType represents the type of operation.
type OperationType string

const (
	// OpRename represents a renamer run.
	OpRename OperationType = "rename"
	// OpImport represents an importer run.
	OpImport OperationType = "import"
)

// Entry represents a single manifest entry.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Operation OperationType `json:"operation"`
	Root      string        `json:"root"`
	Target    string        `json:"target,omitempty"`
	Files     []FileRecord  `json:"files"`
	Summary   Summary       `json:"summary"`
}

// FileRecord is one file that was renamed or moved.
type FileRecord struct {
	From  string      `json:"from"`
	To    string      `json:"to"`
	Scale types.Scale `json:"scale,omitempty"`
	Size  int64       `json:"size"`
}

// Summary contains operation summary.
type Summary struct {
	TotalFiles int64 `json:"total_files"`
	TotalBytes int64 `json:"total_bytes"`
}

// Records converts report moves into manifest file records.
func Records(moves []types.FileMove) []FileRecord {
	records := make([]FileRecord, 0, len(moves))
	for _, m := range moves {
		records = append(records, FileRecord{From: m.From, To: m.To, Scale: m.Scale, Size: m.Size})
	}
	return records
}
