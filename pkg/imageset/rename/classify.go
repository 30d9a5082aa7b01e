package rename

import (
	"sort"
	"strings"

	"github.com/jamesainslie/imageset/pkg/imageset/types"
)

// Token maps a filename substring to the scale it indicates.
type Token struct {
	Text  string
	Scale types.Scale
}

// Tokens are checked in this order; the first match decides a file's scale.
var Tokens = []Token{
	{Text: "57", Scale: types.Scale1x},
	{Text: "60", Scale: types.Scale2x},
	{Text: "76", Scale: types.Scale3x},
}

// Classification assigns at most one image to each scale.
type Classification struct {
	Method  types.Method
	Buckets map[types.Scale]types.ImageFile
}

// Complete reports whether every scale has an image.
func (c Classification) Complete() bool {
	return len(c.Buckets) == len(types.Scales)
}

// Contains reports whether name was assigned to a scale.
func (c Classification) Contains(name string) bool {
	for _, f := range c.Buckets {
		if f.Name == name {
			return true
		}
	}
	return false
}

// canonicalScale reports the scale of a file already named
// CanonicalName(index, s).
func canonicalScale(index int, name string) (types.Scale, bool) {
	for _, s := range types.Scales {
		if name == types.CanonicalName(index, s) {
			return s, true
		}
	}
	return "", false
}

// ScaleForName returns the scale a filename indicates for a directory
// with the given index. A file already named CanonicalName(index, s) is
// scale s; otherwise the first matching token wins.
func ScaleForName(index int, name string) (types.Scale, bool) {
	if s, ok := canonicalScale(index, name); ok {
		return s, true
	}
	for _, tok := range Tokens {
		if strings.Contains(name, tok.Text) {
			return tok.Scale, true
		}
	}
	return "", false
}

// Classify assigns images to scales. A file that already carries its
// canonical name keeps its bucket. Other buckets go to token matches;
// images must be sorted by name, and when two token matches indicate the
// same scale the later one takes the bucket.
//
// If fewer than three scales are filled and the directory holds exactly
// three images, the name results are discarded and the images are ranked
// by size instead: smallest 1x, middle 2x, largest 3x. Equal sizes are
// ordered by name.
func Classify(index int, images []types.ImageFile) Classification {
	buckets := make(map[types.Scale]types.ImageFile, len(types.Scales))
	owned := make(map[types.Scale]bool, len(types.Scales))
	for _, img := range images {
		if s, ok := canonicalScale(index, img.Name); ok {
			buckets[s] = img
			owned[s] = true
		}
	}
	for _, img := range images {
		if _, ok := canonicalScale(index, img.Name); ok {
			continue
		}
		if s, ok := ScaleForName(index, img.Name); ok && !owned[s] {
			buckets[s] = img
		}
	}

	if len(buckets) < len(types.Scales) && len(images) == len(types.Scales) {
		return classifyBySize(images)
	}

	if len(buckets) == 0 {
		return Classification{Method: types.MethodNone, Buckets: buckets}
	}
	return Classification{Method: types.MethodName, Buckets: buckets}
}

func classifyBySize(images []types.ImageFile) Classification {
	sorted := make([]types.ImageFile, len(images))
	copy(sorted, images)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Size != sorted[j].Size {
			return sorted[i].Size < sorted[j].Size
		}
		return sorted[i].Name < sorted[j].Name
	})

	buckets := make(map[types.Scale]types.ImageFile, len(types.Scales))
	for i, s := range types.Scales {
		buckets[s] = sorted[i]
	}
	return Classification{Method: types.MethodSize, Buckets: buckets}
}
