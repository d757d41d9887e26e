// Package compare models the backend comparison job and drives it to
// completion: a one-shot initial acquisition followed, while the job is still
// updating, by bounded periodic polling with a manual refresh fallback.
package compare

import (
	"context"
	"fmt"

	"github.com/ErykKul/DataSync/internal/diff"
)

// ResultStatus is the state of the backend comparison job.
type ResultStatus int

const (
	StatusNew ResultStatus = iota
	StatusUpdating
	StatusFinished
)

func (s ResultStatus) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusUpdating:
		return "updating"
	case StatusFinished:
		return "finished"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is one response of the comparison backend.
type Result struct {
	ID          string            `json:"id,omitempty"`
	Status      ResultStatus      `json:"status"`
	Data        []diff.FileRecord `json:"data"`
	URL         string            `json:"url,omitempty"`
	MaxFileSize int64             `json:"maxFileSize,omitempty"`
	Rejected    []string          `json:"rejected,omitempty"`
}

// HasPayload reports whether the result carries both a job id and a data
// list. Results without a payload are not yet informative and cause no state
// change. An empty but present data list is still a payload.
func (r *Result) HasPayload() bool {
	return r != nil && r.Data != nil && r.ID != ""
}

// Updating reports whether the job still needs polling.
func (r *Result) Updating() bool {
	return r != nil && r.Status == StatusUpdating
}

// StateSource yields the initial comparison result. The returned channel
// delivers nil while the result is not yet available; the coordinator stops
// reading and cancels ctx after the first non-nil value.
type StateSource interface {
	Watch(ctx context.Context) <-chan *Result
}

// Poller asks the backend for a fresher result of job id. Implementations
// must tolerate duplicate and late calls: a superseded request is abandoned,
// not necessarily aborted remotely.
type Poller interface {
	Poll(ctx context.Context, files []diff.FileRecord, id string) (*Result, error)
}

// PollerFunc adapts a function to Poller.
type PollerFunc func(ctx context.Context, files []diff.FileRecord, id string) (*Result, error)

func (f PollerFunc) Poll(ctx context.Context, files []diff.FileRecord, id string) (*Result, error) {
	return f(ctx, files, id)
}

// StaticSource is a StateSource that yields a fixed result.
type StaticSource struct {
	Result *Result
}

func (s StaticSource) Watch(ctx context.Context) <-chan *Result {
	ch := make(chan *Result, 1)
	ch <- s.Result
	close(ch)
	return ch
}
