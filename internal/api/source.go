package api

import (
	"context"
	"sync"

	"github.com/ErykKul/DataSync/internal/compare"
)

// CompareSource is a compare.StateSource that starts one comparison job.
// Until the job answers it reports nil ("not yet available"); on failure the
// channel closes without a value and Err returns the cause.
type CompareSource struct {
	client *Client
	req    CompareRequest

	mu  sync.Mutex
	err error
}

// NewCompareSource creates a source issuing req once per Watch.
func NewCompareSource(client *Client, req CompareRequest) *CompareSource {
	return &CompareSource{client: client, req: req}
}

// Watch implements compare.StateSource.
func (s *CompareSource) Watch(ctx context.Context) <-chan *compare.Result {
	out := make(chan *compare.Result, 1)
	out <- nil

	go func() {
		defer close(out)
		res, err := s.client.Compare(ctx, s.req)
		if err != nil {
			s.setErr(err)
			return
		}
		select {
		case out <- res:
		case <-ctx.Done():
		}
	}()
	return out
}

// Err returns the error of the last failed comparison request.
func (s *CompareSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *CompareSource) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
