package view

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"

	"github.com/ErykKul/DataSync/internal/compare"
	"github.com/ErykKul/DataSync/internal/diff"
)

var summaryTmpl = template.Must(template.New("summary").Parse(`{{ .Header }}
{{ range .Lines }}  {{ . }}
{{ end }}`))

var rejectedTmpl = template.Must(template.New("rejected").Parse(`
{{ .Header }}
{{ range .Paths }}  {{ . }}
{{ end }}{{ if .MoreCount }}  ...and {{ .MoreCount }} more
{{ end }}{{ .Footer }}
`))

type summaryData struct {
	Header string
	Lines  []string
}

type rejectedData struct {
	Header    string
	Paths     []string
	MoreCount int
	Footer    string
}

// rejectedMaxPaths is the maximum number of rejected files shown.
const rejectedMaxPaths = 5

var statusOrder = []diff.Status{diff.StatusNew, diff.StatusUpdated, diff.StatusDeleted, diff.StatusEqual, diff.StatusUnknown}

var actionOrder = []diff.Action{diff.ActionCopy, diff.ActionUpdate, diff.ActionDelete, diff.ActionIgnore}

// RenderSummary writes per-status file counts and per-action counts of the
// leaves of tree.
func RenderSummary(w io.Writer, tree *diff.Tree) {
	if tree == nil {
		return
	}
	counts := tree.Counts()
	actions := tree.Actions()

	var statusParts []string
	for _, s := range statusOrder {
		if n := counts[s]; n > 0 {
			statusParts = append(statusParts, fmt.Sprintf("%d %s", n, s))
		}
	}
	var actionParts []string
	for _, a := range actionOrder {
		if n := actions[a]; n > 0 {
			actionParts = append(actionParts, fmt.Sprintf("%d %s", n, a))
		}
	}

	leaves := len(tree.Leaves())
	noun := "file"
	if leaves != 1 {
		noun = "files"
	}
	data := summaryData{
		Header: fmt.Sprintf("%d %s compared", leaves, noun),
		Lines: []string{
			"status:  " + joinOrNone(statusParts),
			"actions: " + joinOrNone(actionParts),
		},
	}

	var buf strings.Builder
	_ = summaryTmpl.Execute(&buf, data)
	_, _ = io.WriteString(w, buf.String())
}

func joinOrNone(parts []string) string {
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// RenderRejected writes a warning banner listing files the service refused
// to compare, with the size limit when known. Writes nothing when no file
// was rejected.
func RenderRejected(w io.Writer, res *compare.Result) {
	if res == nil || len(res.Rejected) == 0 {
		return
	}

	renderer := lipgloss.NewRenderer(w)
	yellow := renderer.NewStyle().Foreground(lipgloss.Color("3"))

	noun := "file was"
	if len(res.Rejected) != 1 {
		noun = "files were"
	}
	header := yellow.Render(fmt.Sprintf("⚠ %d %s skipped:", len(res.Rejected), noun))

	shown := rejectedMaxPaths
	if len(res.Rejected) < shown {
		shown = len(res.Rejected)
	}

	footer := "These files exceed the size limit of the dataset."
	if res.MaxFileSize > 0 {
		footer = fmt.Sprintf("These files exceed the maximum file size of %s.", FormatSize(res.MaxFileSize))
	}

	data := rejectedData{
		Header:    header,
		Paths:     res.Rejected[:shown],
		MoreCount: len(res.Rejected) - shown,
		Footer:    yellow.Render(footer),
	}

	var buf strings.Builder
	_ = rejectedTmpl.Execute(&buf, data)
	_, _ = io.WriteString(w, buf.String())
}

// FormatSize renders a byte count with binary units.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
