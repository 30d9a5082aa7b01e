// Package types provides core data types for the imageset asset organizer.
// It includes scale buckets, source directories, image files and the
// Contents.json metadata record, along with naming and size helpers.
package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Scale is a display-density variant of an image asset.
type Scale string

// Supported scales, from baseline to highest density.
const (
	Scale1x Scale = "1x"
	Scale2x Scale = "2x"
	Scale3x Scale = "3x"
)

// Scales lists every scale in canonical order (1x, 2x, 3x).
var Scales = []Scale{Scale1x, Scale2x, Scale3x}

// ErrInvalidScale indicates that a scale string could not be parsed.
var ErrInvalidScale = errors.New("invalid scale")

// ParseScale parses "1x", "2x" or "3x" (case-insensitive).
func ParseScale(s string) (Scale, error) {
	switch Scale(strings.ToLower(strings.TrimSpace(s))) {
	case Scale1x:
		return Scale1x, nil
	case Scale2x:
		return Scale2x, nil
	case Scale3x:
		return Scale3x, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidScale, s)
	}
}

// Suffix returns the filename suffix for the scale: "", "-2x" or "-3x".
func (s Scale) Suffix() string {
	switch s {
	case Scale2x:
		return "-2x"
	case Scale3x:
		return "-3x"
	default:
		return ""
	}
}

// UnmarshalText implements encoding.TextUnmarshaler, so a recorded scale
// is normalized on read and an unknown one is rejected. Empty stays unset.
func (s *Scale) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = ""
		return nil
	}
	parsed, err := ParseScale(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// String implements fmt.Stringer.
func (s Scale) String() string {
	return string(s)
}

// Naming constants shared by the renamer and importer.
const (
	// BaseName is the stem of every canonical asset filename.
	BaseName = "schedule"

	// CanonicalExt is the extension given to every renamed file.
	CanonicalExt = ".png"

	// ImagesetExt is the extension of an asset bundle directory.
	ImagesetExt = ".imageset"

	// ContentsFile is the name of the metadata sidecar inside an imageset.
	ContentsFile = "Contents.json"

	// IdiomUniversal is the only idiom written to Contents.json.
	IdiomUniversal = "universal"

	// Author is the static author field of Contents.json.
	Author = "xcode"

	// ContentsVersion is the static version field of Contents.json.
	ContentsVersion = 1
)

// CanonicalName returns the renamed filename for index and scale,
// e.g. "schedule-7-2x.png".
func CanonicalName(index int, scale Scale) string {
	return fmt.Sprintf("%s-%d%s%s", BaseName, index, scale.Suffix(), CanonicalExt)
}

// ImagesetName returns the asset bundle directory name for index,
// e.g. "schedule-7.imageset".
func ImagesetName(index int) string {
	return fmt.Sprintf("%s-%d%s", BaseName, index, ImagesetExt)
}

// SourceDir is a screenshot directory named "web", "web N" or "webN".
type SourceDir struct {
	// Index is N, or 1 for the bare "web" directory.
	Index int `json:"index" yaml:"index"`

	// Name is the directory's base name.
	Name string `json:"name" yaml:"name"`

	// Path is the full path to the directory.
	Path string `json:"path" yaml:"path"`
}

// ImageFile is an image found in a source directory.
type ImageFile struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
	Size int64  `json:"size" yaml:"size"`
}

// ImageEntry is one element of the Contents.json "images" list.
type ImageEntry struct {
	Filename string `json:"filename"`
	Idiom    string `json:"idiom"`
	Scale    Scale  `json:"scale"`
}

// ContentsInfo is the static "info" block of Contents.json.
type ContentsInfo struct {
	Author  string `json:"author"`
	Version int    `json:"version"`
}

// Contents is the metadata document written into every imageset.
type Contents struct {
	Images []ImageEntry `json:"images"`
	Info   ContentsInfo `json:"info"`
}

// NewContents returns a Contents document for the given entries.
// A nil slice is replaced by an empty one so "images" encodes as [].
func NewContents(entries []ImageEntry) Contents {
	if entries == nil {
		entries = []ImageEntry{}
	}
	return Contents{
		Images: entries,
		Info: ContentsInfo{
			Author:  Author,
			Version: ContentsVersion,
		},
	}
}

// FormatSize converts a size in bytes to a human-readable string
// using binary (IEC) units.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
