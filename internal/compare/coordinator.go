package compare

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ErykKul/DataSync/internal/diff"
	"github.com/ErykKul/DataSync/internal/logging"
)

const (
	// DefaultPollInterval is the time between automatic poll requests.
	DefaultPollInterval = 5000 * time.Millisecond
	// DefaultMaxAttempts is the number of processed poll responses after
	// which automatic polling gives up and offers a manual refresh.
	DefaultMaxAttempts = 10
)

var (
	// ErrSourceClosed is returned by Run when the state source closes
	// without yielding a result.
	ErrSourceClosed = errors.New("initial state source closed without a result")
	// ErrRefreshUnavailable is returned by Refresh unless automatic polling timed out.
	ErrRefreshUnavailable = errors.New("manual refresh is only available after polling timed out")
)

// Phase is the coordinator's position in the job lifecycle.
type Phase int

const (
	// PhaseLoading waits for an informative initial result.
	PhaseLoading Phase = iota
	// PhasePolling polls an updating job periodically.
	PhasePolling
	// PhaseInteractive means the job finished and the rows may be edited.
	PhaseInteractive
	// PhaseTimedOut means automatic polling gave up; Refresh is available.
	PhaseTimedOut
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhasePolling:
		return "polling"
	case PhaseInteractive:
		return "interactive"
	case PhaseTimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Snapshot is a consistent view of the coordinator state.
type Snapshot struct {
	Phase    Phase
	Attempts int
	Result   *Result
	// Tree is the index built from the latest non-empty data. Callers may
	// mutate it (selection, visibility) once the phase is interactive.
	Tree *diff.Tree
	// Err is the last rebuild failure, nil after a successful rebuild.
	Err error
}

// Interactive reports whether the rows may be edited and submitted.
func (s Snapshot) Interactive() bool {
	return s.Phase == PhaseInteractive
}

// Loading reports whether a loading indicator should be shown.
func (s Snapshot) Loading() bool {
	return s.Phase == PhaseLoading || s.Phase == PhasePolling
}

// RefreshAvailable reports whether the manual refresh affordance is shown.
func (s Snapshot) RefreshAvailable() bool {
	return s.Phase == PhaseTimedOut
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithInterval sets the automatic polling interval.
func WithInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.interval = d }
}

// WithMaxAttempts sets the automatic polling bound.
func WithMaxAttempts(n int) Option {
	return func(c *Coordinator) { c.maxAttempts = n }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithOnChange registers a callback invoked after every state change. It
// runs on the goroutine that made the change and must not block.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Coordinator) { c.onChange = fn }
}

// withTicks replaces the interval timer with an externally driven channel.
func withTicks(ticks <-chan time.Time) Option {
	return func(c *Coordinator) {
		c.newTicker = func(time.Duration) (<-chan time.Time, func()) {
			return ticks, func() {}
		}
	}
}

// Coordinator drives a comparison job to completion. Run owns all automatic
// state transitions; Refresh is only accepted after Run has stopped polling,
// so the two never mutate state concurrently.
type Coordinator struct {
	source      StateSource
	poller      Poller
	interval    time.Duration
	maxAttempts int
	log         *logging.Logger
	onChange    func(Snapshot)
	newTicker   func(time.Duration) (<-chan time.Time, func())

	mu       sync.Mutex
	phase    Phase
	attempts int
	result   *Result
	tree     *diff.Tree
	err      error

	done chan struct{}
}

// NewCoordinator creates a coordinator for the given collaborators.
func NewCoordinator(source StateSource, poller Poller, opts ...Option) *Coordinator {
	c := &Coordinator{
		source:      source,
		poller:      poller,
		interval:    DefaultPollInterval,
		maxAttempts: DefaultMaxAttempts,
		log:         logging.Nop(),
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:    c.phase,
		Attempts: c.attempts,
		Result:   c.result,
		Tree:     c.tree,
		Err:      c.err,
	}
}

// Done is closed when Run returns.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Run acquires the initial result and, while the job is updating, polls it
// until it finishes or the attempt bound is reached. It returns nil once the
// coordinator is interactive, timed out, or stuck on an uninformative initial
// result, and ctx.Err() on teardown. Run must be called at most once.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.done)

	initial, err := c.acquire(ctx)
	if err != nil {
		return err
	}

	if !initial.HasPayload() {
		c.log.Warn().Msg("initial comparison result has no data yet")
		return nil
	}
	c.update(func() {
		c.setData(initial)
	})
	if !initial.Updating() {
		c.log.Info().Str("job", initial.ID).Msg("comparison loaded, no polling needed")
		c.update(func() { c.phase = PhaseInteractive })
		return nil
	}

	c.log.Info().Str("job", initial.ID).Dur("interval", c.interval).Msg("comparison job updating, polling")
	c.update(func() { c.phase = PhasePolling })
	return c.poll(ctx)
}

// acquire reads the state source until its first non-nil value, then
// unsubscribes by cancelling the watch context.
func (c *Coordinator) acquire(ctx context.Context) (*Result, error) {
	watchCtx, unsubscribe := context.WithCancel(ctx)
	defer unsubscribe()

	results := c.source.Watch(watchCtx)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r, ok := <-results:
			if !ok {
				return nil, ErrSourceClosed
			}
			if r != nil {
				return r, nil
			}
		}
	}
}

type pollResponse struct {
	result *Result
	err    error
}

// poll issues one request per tick. A tick arriving while a request is
// outstanding cancels it and issues a fresh one; the superseded request
// reports into its own abandoned channel, so its response is never read.
func (c *Coordinator) poll(ctx context.Context) error {
	ticks, stop := c.newTicker(c.interval)
	defer stop()

	cancelInFlight := context.CancelFunc(func() {})
	defer func() { cancelInFlight() }()
	var inFlight <-chan pollResponse

	for {
		select {
		case <-ctx.Done():
			c.log.Debug().Msg("polling cancelled")
			return ctx.Err()

		case <-ticks:
			// A response that already arrived is applied, not superseded.
			if resp, ok := takeReady(inFlight); ok {
				inFlight = nil
				if c.handlePoll(resp) {
					return nil
				}
			} else if inFlight != nil {
				c.log.Debug().Msg("poll request superseded")
			}
			cancelInFlight()
			reqCtx, cancel := context.WithCancel(ctx)
			cancelInFlight = cancel
			inFlight = c.request(reqCtx)

		case resp := <-inFlight:
			inFlight = nil
			cancelInFlight()
			if c.handlePoll(resp) {
				return nil
			}
		}
	}
}

// takeReady receives from ch without blocking. A nil ch is never ready.
func takeReady(ch <-chan pollResponse) (pollResponse, bool) {
	select {
	case resp := <-ch:
		return resp, true
	default:
		return pollResponse{}, false
	}
}

func (c *Coordinator) request(ctx context.Context) <-chan pollResponse {
	c.mu.Lock()
	files, id := c.result.Data, c.result.ID
	c.mu.Unlock()

	ch := make(chan pollResponse, 1)
	go func() {
		r, err := c.poller.Poll(ctx, files, id)
		ch <- pollResponse{result: r, err: err}
	}()
	return ch
}

// handlePoll applies one poll response and reports whether polling is over.
func (c *Coordinator) handlePoll(resp pollResponse) (stop bool) {
	c.update(func() {
		c.attempts++
		switch {
		case resp.err != nil:
			c.log.Warn().Err(resp.err).Int("attempt", c.attempts).Msg("poll request failed")
		case resp.result.HasPayload():
			c.setData(resp.result)
		default:
			c.log.Debug().Int("attempt", c.attempts).Msg("poll response has no data yet")
		}

		switch {
		case !c.result.Updating():
			c.phase = PhaseInteractive
			c.log.Info().Int("attempts", c.attempts).Msg("comparison loaded")
			stop = true
		case c.attempts >= c.maxAttempts:
			c.phase = PhaseTimedOut
			c.log.Warn().Int("attempts", c.attempts).Msg("comparison still updating, stopped polling")
			stop = true
		}
	})
	return stop
}

// Refresh issues a single poll request after automatic polling timed out.
// It does not touch the attempt counter and does not resume periodic
// polling. Transport errors are returned and leave the state unchanged.
func (c *Coordinator) Refresh(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if c.phase != PhaseTimedOut {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrRefreshUnavailable
	}
	files, id := c.result.Data, c.result.ID
	c.mu.Unlock()

	r, err := c.poller.Poll(ctx, files, id)
	if err != nil {
		return c.Snapshot(), fmt.Errorf("failed to refresh comparison: %w", err)
	}

	c.update(func() {
		if r.HasPayload() {
			c.setData(r)
		}
		if !c.result.Updating() {
			c.phase = PhaseInteractive
			c.log.Info().Msg("comparison loaded after manual refresh")
		}
	})
	return c.Snapshot(), nil
}

// setData replaces the current result and rebuilds the tree wholesale when
// the result carries rows. Caller holds mu.
func (c *Coordinator) setData(r *Result) {
	c.result = r
	if len(r.Data) == 0 {
		return
	}
	tree, err := diff.Build(r.Data)
	if err != nil {
		c.log.Error().Err(err).Str("job", r.ID).Msg("rejected comparison data")
		c.err = err
		return
	}
	c.tree = tree
	c.err = nil
}

// update runs fn under the lock and notifies the change listener.
func (c *Coordinator) update(fn func()) {
	c.mu.Lock()
	fn()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(snap)
	}
}
