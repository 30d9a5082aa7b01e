package output

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/jamesainslie/imageset/pkg/imageset/types"
)

// PlainFormatter writes one tab-aligned row per action, without colors,
// for scripting and piping.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := fmt.Fprintln(tw, "ACTION\tFROM\tTO\tSCALE\tSIZE"); err != nil {
		return err
	}

	if r.Rename != nil {
		for _, m := range r.Rename.Moves() {
			if err := writeRow(tw, "rename", m); err != nil {
				return err
			}
		}
	}

	if r.Import != nil {
		for _, idx := range r.Import.Indices {
			if idx.Skipped {
				if _, err := fmt.Fprintf(tw, "skip\t-\t%s\t-\t-\n", idx.Imageset); err != nil {
					return err
				}
				continue
			}
			for _, m := range idx.Moved {
				if err := writeRow(tw, "move", m); err != nil {
					return err
				}
			}
			for _, name := range idx.Missing {
				if _, err := fmt.Fprintf(tw, "missing\t%s\t%s\t-\t-\n", name, idx.Imageset); err != nil {
					return err
				}
			}
			if idx.Pruned {
				if _, err := fmt.Fprintf(tw, "prune\t%s\t-\t-\t-\n", idx.Source.Path); err != nil {
					return err
				}
			}
		}
	}

	return tw.Flush()
}

func writeRow(tw *tabwriter.Writer, action string, m types.FileMove) error {
	_, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", action, m.From, m.To, m.Scale, strconv.FormatInt(m.Size, 10))
	return err
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
