// Package submit hands the final action set of a comparison to its
// destination: the comparison service, a local plan file, or both.
package submit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/ErykKul/DataSync/internal/diff"
)

// PlanVersion is the current plan file format version.
const PlanVersion = "1"

// ErrEmptyPlan is returned when a plan has no records to submit.
var ErrEmptyPlan = errors.New("plan has no records")

// Plan is the final decision set of one comparison job. Only leaves are
// recorded: folder actions are informational and the root never appears.
type Plan struct {
	Version   string            `json:"version"`
	ID        string            `json:"id"`
	JobID     string            `json:"job_id"`
	CreatedAt time.Time         `json:"created_at"`
	Mode      string            `json:"mode,omitempty"`
	Records   []diff.FileRecord `json:"records"`
}

// NewPlan snapshots the leaves of tree. Records with ActionIgnore are kept
// so the receiver sees every decision.
func NewPlan(jobID string, mode diff.SelectionMode, tree *diff.Tree) *Plan {
	return &Plan{
		Version:   PlanVersion,
		ID:        uuid.New().String(),
		JobID:     jobID,
		CreatedAt: time.Now().UTC(),
		Mode:      mode.String(),
		Records:   tree.Leaves(),
	}
}

// Pending returns the records whose action is not Ignore.
func (p *Plan) Pending() []diff.FileRecord {
	var pending []diff.FileRecord
	for _, rec := range p.Records {
		if rec.Action != diff.ActionIgnore {
			pending = append(pending, rec)
		}
	}
	return pending
}

// Validate checks that the plan can be submitted.
func (p *Plan) Validate() error {
	if p.JobID == "" {
		return errors.New("plan has no job id")
	}
	if len(p.Records) == 0 {
		return ErrEmptyPlan
	}
	for _, rec := range p.Records {
		if rec.ID == "" {
			return errors.New("plan contains the root record")
		}
	}
	return nil
}

// Submitter delivers a plan.
type Submitter interface {
	Submit(ctx context.Context, plan *Plan) error
}

// FileSubmitter writes the plan as indented JSON.
type FileSubmitter struct {
	Fs   afero.Fs
	Path string
}

// Submit writes the plan file, creating parent directories.
func (s FileSubmitter) Submit(_ context.Context, plan *Plan) error {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := s.Fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create plan directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	if err := afero.WriteFile(s.Fs, s.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}

// ReadPlan reads a plan file written by FileSubmitter.
func ReadPlan(fs afero.Fs, path string) (*Plan, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("plan file %s does not exist: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan file: %w", err)
	}
	if plan.Version != PlanVersion {
		return nil, fmt.Errorf("unsupported plan version %q", plan.Version)
	}
	return &plan, nil
}

// Multi submits to every submitter in order and stops at the first error.
type Multi []Submitter

func (m Multi) Submit(ctx context.Context, plan *Plan) error {
	for _, s := range m {
		if err := s.Submit(ctx, plan); err != nil {
			return err
		}
	}
	return nil
}
