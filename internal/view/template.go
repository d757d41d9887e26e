package view

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/ErykKul/DataSync/internal/compare"
	"github.com/ErykKul/DataSync/internal/diff"
)

// TemplateData is the value passed to user supplied output templates.
type TemplateData struct {
	JobID    string            `json:"job_id"`
	Phase    string            `json:"phase"`
	Rows     []diff.FileRecord `json:"rows"`
	Leaves   []diff.FileRecord `json:"leaves"`
	Rejected []string          `json:"rejected,omitempty"`
	Counts   map[string]int    `json:"counts"`
	Actions  map[string]int    `json:"actions"`
}

// NewTemplateData collects the template view of a coordinator snapshot.
func NewTemplateData(snap compare.Snapshot) TemplateData {
	data := TemplateData{
		Phase:   snap.Phase.String(),
		Counts:  map[string]int{},
		Actions: map[string]int{},
	}
	if snap.Result != nil {
		data.JobID = snap.Result.ID
		data.Rejected = snap.Result.Rejected
	}
	if snap.Tree != nil {
		data.Rows = snap.Tree.Rows()
		data.Leaves = snap.Tree.Leaves()
		for s, n := range snap.Tree.Counts() {
			data.Counts[s.String()] = n
		}
		for a, n := range snap.Tree.Actions() {
			data.Actions[a.String()] = n
		}
	}
	return data
}

// RenderTemplate executes a Go template against data. The "json" function
// renders any value as indented JSON.
func RenderTemplate(w io.Writer, tplStr string, data TemplateData) error {
	funcMap := template.FuncMap{
		"json": func(v any) (string, error) {
			b, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
	}

	tpl, err := template.New("compare").Funcs(funcMap).Parse(tplStr)
	if err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}
	return tpl.Execute(w, data)
}
