package output

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/imageset/pkg/imageset/types"
)

// PrettyFormatter renders reports with colors and boxes for a terminal.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	if r.Rename != nil {
		w.WriteString(f.formatRename(r.Rename))
	}
	if r.Import != nil {
		if r.Rename != nil {
			w.WriteString("\n")
		}
		w.WriteString(f.formatImport(r.Import))
	}

	// Err is left to the caller, which reports it on stderr.
	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) formatRename(rep *types.RenameReport) string {
	title := "Rename"
	if rep.DryRun {
		title += " (dry run)"
	}
	header := fmt.Sprintf("%s\n%s %s  %s %s",
		TitleStyle.Render(title),
		LabelStyle.Render("Root:"), ValueStyle.Render(rep.Root),
		LabelStyle.Render("Directories:"), ValueStyle.Render(fmt.Sprintf("%d", len(rep.Dirs))))

	var sb strings.Builder
	sb.WriteString(HeaderBox.Render(header))
	sb.WriteString("\n")

	if len(rep.Dirs) == 0 {
		sb.WriteString(MutedStyle.Render("  No web directories found"))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, d := range rep.Dirs {
		sb.WriteString(fmt.Sprintf("  %s %s\n", ValueStyle.Render(d.Dir.Name), MutedStyle.Render("["+string(d.Method)+"]")))
		for _, m := range d.Renames {
			sb.WriteString(fmt.Sprintf("    %s %s %s  %s\n",
				filepath.Base(m.From), MutedStyle.Render("->"), SuccessStyle.Render(filepath.Base(m.To)),
				SizeStyle.Render(types.FormatSize(m.Size))))
		}
		if len(d.Renames) == 0 && len(d.Unchanged) > 0 {
			sb.WriteString(MutedStyle.Render(fmt.Sprintf("    %d already named", len(d.Unchanged))))
			sb.WriteString("\n")
		}
		if len(d.Unclassified) > 0 {
			sb.WriteString(WarningStyle.Render("    unclassified: " + strings.Join(d.Unclassified, ", ")))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (f *PrettyFormatter) formatImport(rep *types.ImportReport) string {
	title := "Import"
	if rep.DryRun {
		title += " (dry run)"
	}
	header := fmt.Sprintf("%s\n%s %s  %s %s  %s %s",
		TitleStyle.Render(title),
		LabelStyle.Render("Source:"), ValueStyle.Render(rep.Source),
		LabelStyle.Render("Target:"), ValueStyle.Render(rep.Target),
		LabelStyle.Render("Range:"), ValueStyle.Render(fmt.Sprintf("[%d, %d)", rep.Start, rep.End)))

	var sb strings.Builder
	sb.WriteString(HeaderBox.Render(header))
	sb.WriteString("\n")

	for _, idx := range rep.Indices {
		name := types.ImagesetName(idx.Index)
		if idx.Skipped {
			sb.WriteString(fmt.Sprintf("  %s  %s\n", ValueStyle.Render(name), WarningStyle.Render("source dir not found")))
			continue
		}

		status := SuccessStyle.Render(fmt.Sprintf("%d moved", len(idx.Moved)))
		if idx.Pruned {
			status += MutedStyle.Render(", source pruned")
		}
		sb.WriteString(fmt.Sprintf("  %s  %s %s\n", ValueStyle.Render(name), MutedStyle.Render("<- "+idx.Source.Name), status))
		for _, m := range idx.Moved {
			sb.WriteString(fmt.Sprintf("    %s %s  %s\n",
				filepath.Base(m.To), MutedStyle.Render(string(m.Scale)), SizeStyle.Render(types.FormatSize(m.Size))))
		}
		for _, missing := range idx.Missing {
			sb.WriteString(WarningStyle.Render("    missing " + missing))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (f *PrettyFormatter) formatFooter(r *Result) string {
	s := r.Summary()

	var parts []string
	if r.Rename != nil {
		parts = append(parts, fmt.Sprintf("%s %s", LabelStyle.Render("Renamed:"), ValueStyle.Render(fmt.Sprintf("%d", s.Renamed))))
	}
	if r.Import != nil {
		parts = append(parts, fmt.Sprintf("%s %s", LabelStyle.Render("Moved:"), ValueStyle.Render(fmt.Sprintf("%d", s.Moved))))
		if s.Missing > 0 {
			parts = append(parts, WarningStyle.Render(fmt.Sprintf("%d missing", s.Missing)))
		}
		if s.Skipped > 0 {
			parts = append(parts, WarningStyle.Render(fmt.Sprintf("%d skipped", s.Skipped)))
		}
	}
	parts = append(parts,
		fmt.Sprintf("%s %s", LabelStyle.Render("Total:"), SizeStyle.Render(s.TotalHuman)),
		fmt.Sprintf("%s %s", LabelStyle.Render("Took:"), ValueStyle.Render(s.Duration)))

	if s.DryRun {
		parts = append(parts, WarningStyle.Render("dry run: nothing was changed"))
	}
	if r.Interrupted {
		parts = append(parts, ErrorStyle.Bold(true).Render("interrupted"))
	}

	return FooterBox.Render(strings.Join(parts, "  "))
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
