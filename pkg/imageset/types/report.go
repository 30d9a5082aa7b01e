package types

import "time"

// Method records how a directory's images were assigned to scales.
type Method string

const (
	// MethodName means scales came from filename tokens (57, 60, 76)
	// or from files already carrying their canonical name.
	MethodName Method = "name"

	// MethodSize means the three images were ranked by file size.
	MethodSize Method = "size"

	// MethodNone means no image could be classified.
	MethodNone Method = "none"
)

// FileMove is a single rename or move, planned or performed.
type FileMove struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Scale Scale  `json:"scale" yaml:"scale"`
	Size  int64  `json:"size" yaml:"size"`
}

// RenameDir is the renamer's result for one source directory.
type RenameDir struct {
	Dir          SourceDir  `json:"dir" yaml:"dir"`
	Method       Method     `json:"method" yaml:"method"`
	Images       int        `json:"images" yaml:"images"`
	Renames      []FileMove `json:"renames" yaml:"renames"`
	Unchanged    []string   `json:"unchanged,omitempty" yaml:"unchanged,omitempty"`
	Unclassified []string   `json:"unclassified,omitempty" yaml:"unclassified,omitempty"`
}

// RenameReport summarizes a renamer run.
type RenameReport struct {
	Root     string        `json:"root" yaml:"root"`
	DryRun   bool          `json:"dry_run" yaml:"dry_run"`
	Dirs     []RenameDir   `json:"dirs" yaml:"dirs"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Moves returns every rename in directory order.
func (r *RenameReport) Moves() []FileMove {
	var moves []FileMove
	for _, d := range r.Dirs {
		moves = append(moves, d.Renames...)
	}
	return moves
}

// ImportIndex is the importer's result for one index.
type ImportIndex struct {
	Index    int        `json:"index" yaml:"index"`
	Source   *SourceDir `json:"source,omitempty" yaml:"source,omitempty"`
	Imageset string     `json:"imageset" yaml:"imageset"`
	Moved    []FileMove `json:"moved" yaml:"moved"`
	Missing  []string   `json:"missing,omitempty" yaml:"missing,omitempty"`
	Skipped  bool       `json:"skipped" yaml:"skipped"`
	Pruned   bool       `json:"pruned,omitempty" yaml:"pruned,omitempty"`
}

// ImportReport summarizes an importer run over [Start, End).
type ImportReport struct {
	Source   string        `json:"source" yaml:"source"`
	Target   string        `json:"target" yaml:"target"`
	Start    int           `json:"start" yaml:"start"`
	End      int           `json:"end" yaml:"end"`
	DryRun   bool          `json:"dry_run" yaml:"dry_run"`
	Indices  []ImportIndex `json:"indices" yaml:"indices"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Moves returns every moved file in index order.
func (r *ImportReport) Moves() []FileMove {
	var moves []FileMove
	for _, idx := range r.Indices {
		moves = append(moves, idx.Moved...)
	}
	return moves
}

// TotalBytes sums the sizes of moves.
func TotalBytes(moves []FileMove) int64 {
	var total int64
	for _, m := range moves {
		total += m.Size
	}
	return total
}
