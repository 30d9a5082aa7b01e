// Package output provides formatters for displaying rename and import
// reports in various output formats (pretty, plain, json, jsonl, yaml).
//
// The package uses a registry pattern so the formatter can be selected
// at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jamesainslie/imageset/pkg/imageset/logging"
	"github.com/jamesainslie/imageset/pkg/imageset/types"
)

var logger = logging.Get("output")

// Result contains the output data for formatting. Either report may be
// nil when its step did not run.
type Result struct {
	Rename *types.RenameReport `json:"rename,omitempty" yaml:"rename,omitempty"`
	Import *types.ImportReport `json:"import,omitempty" yaml:"import,omitempty"`

	// Err is the error that stopped the run, if any.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`

	// Interrupted indicates the run was cancelled by the user.
	Interrupted bool `json:"interrupted" yaml:"interrupted"`
}

// Summary totals a Result.
type Summary struct {
	Renamed    int    `json:"renamed" yaml:"renamed"`
	Moved      int    `json:"moved" yaml:"moved"`
	Missing    int    `json:"missing" yaml:"missing"`
	Skipped    int    `json:"skipped" yaml:"skipped"`
	TotalBytes int64  `json:"total_bytes" yaml:"total_bytes"`
	TotalHuman string `json:"total_human" yaml:"total_human"`
	DryRun     bool   `json:"dry_run" yaml:"dry_run"`
	Duration   string `json:"duration" yaml:"duration"`
}

// Summary computes totals across both reports.
func (r *Result) Summary() Summary {
	var (
		s        Summary
		moves    []types.FileMove
		duration time.Duration
	)
	if r.Rename != nil {
		renames := r.Rename.Moves()
		s.Renamed = len(renames)
		s.DryRun = r.Rename.DryRun
		moves = append(moves, renames...)
		duration += r.Rename.Duration
	}
	if r.Import != nil {
		imported := r.Import.Moves()
		s.Moved = len(imported)
		s.DryRun = s.DryRun || r.Import.DryRun
		moves = append(moves, imported...)
		duration += r.Import.Duration
		for _, idx := range r.Import.Indices {
			s.Missing += len(idx.Missing)
			if idx.Skipped {
				s.Skipped++
			}
		}
	}
	s.TotalBytes = types.TotalBytes(moves)
	s.TotalHuman = types.FormatSize(s.TotalBytes)
	s.Duration = formatDuration(duration)
	return s
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry, replacing any
// existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		logger.Debug("unknown formatter requested", "name", name)
		return nil, fmt.Errorf("unknown formatter: %s (available: %s)", name, strings.Join(r.available(), ", "))
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.available()
}

func (r *Registry) available() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	return fmt.Sprintf("%dm %ds", int(sec)/60, int(sec)%60)
}
