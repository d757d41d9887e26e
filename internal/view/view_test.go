package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErykKul/DataSync/internal/compare"
	"github.com/ErykKul/DataSync/internal/diff"
)

func leaf(id, parent string, s diff.Status) diff.FileRecord {
	return diff.FileRecord{ID: id, Path: parent, Status: diff.SetStatus(s)}
}

func sampleTree(t *testing.T) *diff.Tree {
	t.Helper()
	tree, err := diff.Build([]diff.FileRecord{
		leaf("a/b.txt", "a", diff.StatusNew),
		leaf("a/c.txt", "a", diff.StatusEqual),
		leaf("d.txt", "", diff.StatusDeleted),
	})
	require.NoError(t, err)
	return tree
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestRenderTree(t *testing.T) {
	tree := sampleTree(t)
	tree.ApplySelection(diff.SelectMirror)

	var buf bytes.Buffer
	RenderTree(&buf, tree)
	got := lines(buf.String())

	require.Len(t, got, 4)
	assert.True(t, strings.HasPrefix(got[0], "a/ "), got[0])
	assert.Contains(t, got[0], "updated")
	assert.Contains(t, got[0], "→ update")

	assert.True(t, strings.HasPrefix(got[1], "  b.txt "), "children are indented: %q", got[1])
	assert.Contains(t, got[1], "→ copy")

	assert.True(t, strings.HasPrefix(got[2], "  c.txt "), got[2])
	assert.True(t, strings.HasSuffix(got[2], "equal"), "ignore rows carry no marker: %q", got[2])

	assert.True(t, strings.HasPrefix(got[3], "d.txt "), got[3])
	assert.Contains(t, got[3], "→ delete")
}

func TestRenderTree_NoANSIWhenNotTerminal(t *testing.T) {
	tree := sampleTree(t)
	tree.ApplySelection(diff.SelectMirror)

	var buf bytes.Buffer
	RenderTree(&buf, tree)
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestRenderTree_SkipsHiddenRows(t *testing.T) {
	tree := sampleTree(t)
	tree.ShowOnly(diff.StatusNew)

	var buf bytes.Buffer
	RenderTree(&buf, tree)
	got := lines(buf.String())

	require.Len(t, got, 1)
	assert.Contains(t, got[0], "b.txt")
}

func TestRenderTree_Nil(t *testing.T) {
	var buf bytes.Buffer
	RenderTree(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestRenderSummary(t *testing.T) {
	tree := sampleTree(t)
	tree.ApplySelection(diff.SelectUpdate)

	var buf bytes.Buffer
	RenderSummary(&buf, tree)
	out := buf.String()

	assert.Contains(t, out, "3 files compared")
	assert.Contains(t, out, "status:  1 new, 1 deleted, 1 equal")
	assert.Contains(t, out, "actions: 1 copy, 2 ignore")
}

func TestRenderRejected(t *testing.T) {
	tests := []struct {
		name      string
		result    *compare.Result
		wantEmpty bool
		want      []string
		notWant   []string
	}{
		{
			name:      "nothing rejected",
			result:    &compare.Result{ID: "job"},
			wantEmpty: true,
		},
		{
			name:    "single file with size limit",
			result:  &compare.Result{Rejected: []string{"big.bin"}, MaxFileSize: 2 << 30},
			want:    []string{"1 file was skipped", "big.bin", "maximum file size of 2.0 GiB"},
			notWant: []string{"more"},
		},
		{
			name: "truncated list",
			result: &compare.Result{Rejected: []string{
				"1.bin", "2.bin", "3.bin", "4.bin", "5.bin", "6.bin", "7.bin",
			}},
			want:    []string{"7 files were skipped", "5.bin", "...and 2 more", "size limit of the dataset"},
			notWant: []string{"6.bin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			RenderRejected(&buf, tt.result)
			out := buf.String()
			if tt.wantEmpty {
				assert.Empty(t, out)
				return
			}
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, out, w)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.in))
	}
}

func TestRenderTemplate(t *testing.T) {
	tree := sampleTree(t)
	tree.ApplySelection(diff.SelectMirror)
	snap := compare.Snapshot{
		Phase:  compare.PhaseInteractive,
		Result: &compare.Result{ID: "job-1"},
		Tree:   tree,
	}

	var buf bytes.Buffer
	err := RenderTemplate(&buf, `{{ .JobID }} {{ .Phase }} {{ len .Leaves }} {{ index .Actions "delete" }}{{ range .Leaves }} {{ .ID }}={{ .Action }}{{ end }}`, NewTemplateData(snap))
	require.NoError(t, err)
	assert.Equal(t, "job-1 interactive 3 1 a/b.txt=copy a/c.txt=ignore d.txt=delete", buf.String())
}

func TestRenderTemplate_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := RenderTemplate(&buf, `{{ json .Counts }}`, TemplateData{Counts: map[string]int{"new": 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"new":2}`, buf.String())
}

func TestRenderTemplate_Invalid(t *testing.T) {
	var buf bytes.Buffer
	err := RenderTemplate(&buf, `{{ .Nope `, TemplateData{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid template")
}
