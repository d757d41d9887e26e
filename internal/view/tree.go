// Package view renders comparison results for the terminal.
package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ErykKul/DataSync/internal/diff"
)

// nameWidth is the column width of the indented name.
const nameWidth = 48

// styles maps row actions to their highlight. Ignore rows are plain.
type styles struct {
	copy, update, delete, folder, dim lipgloss.Style
}

// newStyles uses lipgloss for TTY-aware colored output (ANSI is stripped when
// w is not a terminal).
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		copy:   r.NewStyle().Foreground(lipgloss.Color("2")),
		update: r.NewStyle().Foreground(lipgloss.Color("4")),
		delete: r.NewStyle().Foreground(lipgloss.Color("1")),
		folder: r.NewStyle().Bold(true),
		dim:    r.NewStyle().Faint(true),
	}
}

func (s styles) forAction(a diff.Action) (lipgloss.Style, bool) {
	switch a {
	case diff.ActionCopy:
		return s.copy, true
	case diff.ActionUpdate:
		return s.update, true
	case diff.ActionDelete:
		return s.delete, true
	}
	return lipgloss.Style{}, false
}

// RenderTree writes one line per visible row, depth-first. A folder that is
// hidden hides nothing below it: visibility is per row.
func RenderTree(w io.Writer, tree *diff.Tree) {
	if tree == nil {
		return
	}
	st := newStyles(w)

	var b strings.Builder
	tree.Walk(func(depth int, rec diff.FileRecord, folder bool) {
		if rec.Hidden {
			return
		}
		b.WriteString(formatRow(st, depth, rec, folder))
		b.WriteByte('\n')
	})
	_, _ = io.WriteString(w, b.String())
}

func formatRow(st styles, depth int, rec diff.FileRecord, folder bool) string {
	name := rec.Name
	if folder {
		name += "/"
	}
	label := strings.Repeat("  ", depth) + name

	line := fmt.Sprintf("%-*s %-8s %s", nameWidth, label, rec.Status, actionMarker(rec.Action))
	line = strings.TrimRight(line, " ")

	if style, ok := st.forAction(rec.Action); ok {
		return style.Render(line)
	}
	if folder {
		return st.folder.Render(line)
	}
	return line
}

// actionMarker is empty for Ignore so unchanged rows stay quiet.
func actionMarker(a diff.Action) string {
	if a == diff.ActionIgnore {
		return ""
	}
	return "→ " + a.String()
}
