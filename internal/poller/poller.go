// Package poller runs the lookup workflow against the scoring backend:
// submit a handle, then poll the resulting job on a fixed interval until it
// reports "done", the poll limit is hit, a new submission replaces it, or
// the poller is closed.
//
// A Poller owns at most one ticker at a time. Each tick starts a status
// fetch without waiting for earlier ones, so responses can arrive out of
// order; Reduce keeps a terminal status from regressing, and a generation
// counter drops responses that belong to an earlier submission.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gastownhall/trustscore/internal/scoring"
	"github.com/gastownhall/trustscore/internal/telemetry"
	"github.com/rs/zerolog"
)

// DefaultInterval is the polling period.
const DefaultInterval = 800 * time.Millisecond

var (
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("poller closed")

	// ErrNoJob is returned when a lookup succeeds but names no job.
	ErrNoJob = errors.New("lookup response carried no job id")

	// ErrPollLimit is recorded when a job is still running after the
	// configured number of polls.
	ErrPollLimit = errors.New("job did not finish within the poll limit")

	// ErrSuperseded is returned by a Submit whose result arrived after a
	// newer Submit started.
	ErrSuperseded = errors.New("submission superseded")
)

// Client is the subset of the scoring API the poller needs.
type Client interface {
	Lookup(ctx context.Context, req scoring.LookupRequest) (*scoring.LookupResponse, error)
	JobStatus(ctx context.Context, jobID string) (*scoring.JobStatusUpdate, error)
}

// Snapshot is a copy of the poller's state at one instant.
type Snapshot struct {
	State    State
	Display  DisplayState
	Attempts int   // status fetches issued for the current job
	Replies  int   // status fetches answered, successfully or not
	Failures int   // status fetches that failed
	Err      error // submission error, or ErrPollLimit
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the polling period.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithMaxAttempts caps the status fetches per job; 0 polls until done.
func WithMaxAttempts(n int) Option {
	return func(p *Poller) { p.maxAttempts = n }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Poller) { p.log = l }
}

// WithReporter reports submission failures and expired jobs.
func WithReporter(r *telemetry.Reporter) Option {
	return func(p *Poller) { p.reporter = r }
}

// WithTicker replaces the ticker constructor.
func WithTicker(f TickerFunc) Option {
	return func(p *Poller) { p.newTicker = f }
}

// Poller drives one lookup at a time. It is safe for concurrent use.
type Poller struct {
	client      Client
	interval    time.Duration
	maxAttempts int
	newTicker   TickerFunc
	log         zerolog.Logger
	reporter    *telemetry.Reporter

	mu       sync.Mutex
	gen      uint64
	state    State
	display  DisplayState
	attempts int
	replies  int
	failures int
	err      error
	closed   bool
	base     context.Context // cancelled by Close
	teardown context.CancelFunc
	stop     context.CancelFunc // cancels the active loop and its fetches
	loopDone chan struct{}      // closed once the active loop released its ticker
	loops    sync.WaitGroup
	inflight sync.WaitGroup
	updates  chan Snapshot
}

// New returns an idle Poller.
func New(client Client, opts ...Option) *Poller {
	base, teardown := context.WithCancel(context.Background())
	p := &Poller{
		client:    client,
		base:      base,
		teardown:  teardown,
		interval:  DefaultInterval,
		newTicker: newRealTicker,
		log:       zerolog.Nop(),
		updates:   make(chan Snapshot, 1),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Updates delivers the latest Snapshot after every change. Only the most
// recent undelivered snapshot is kept. The channel is closed by Close.
func (p *Poller) Updates() <-chan Snapshot { return p.updates }

// Snapshot returns the current state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Submit starts a lookup for handle, replacing any lookup in progress. The
// previous polling loop is stopped, and its ticker released, before the new
// request is sent. On failure the poller returns to idle with an empty
// display and the error is returned.
func (p *Poller) Submit(ctx context.Context, handle string, force bool) (Snapshot, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	prev := p.haltLocked()
	p.gen++
	gen := p.gen
	p.state = StateSubmitting
	p.display = DisplayState{Handle: handle}
	p.attempts, p.replies, p.failures, p.err = 0, 0, 0, nil
	p.publishLocked()
	p.mu.Unlock()

	if prev != nil {
		<-prev
	}

	// Close or a newer Submit may have run while the old ticker stopped.
	p.mu.Lock()
	switch {
	case p.closed:
		p.mu.Unlock()
		return Snapshot{}, ErrClosed
	case gen != p.gen:
		p.mu.Unlock()
		return Snapshot{}, ErrSuperseded
	}
	p.inflight.Add(1)
	p.mu.Unlock()

	p.log.Debug().Str("handle", handle).Bool("force", force).Msg("submitting lookup")
	resp, err := p.lookup(ctx, handle, force)
	p.inflight.Done()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	if gen != p.gen {
		p.mu.Unlock()
		return Snapshot{}, ErrSuperseded
	}
	if err != nil {
		p.state = StateIdle
		p.display = DisplayState{}
		p.err = err
		p.publishLocked()
		snap := p.snapshotLocked()
		p.mu.Unlock()

		p.log.Warn().Err(err).Str("handle", handle).Msg("lookup failed")
		p.reporter.Capture(fmt.Errorf("lookup %q: %w", handle, err), map[string]string{"op": "lookup"})
		return snap, err
	}

	p.display = FromLookup(handle, resp)
	if p.display.Ready() {
		p.state = StateDone
	} else {
		p.state = StatePolling
		p.startLocked(gen, resp.JobID)
	}
	p.publishLocked()
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.log.Debug().Str("job_id", resp.JobID).Str("status", resp.Status).Msg("lookup queued")
	return snap, nil
}

// lookup sends the submission under a context that Close also cancels.
func (p *Poller) lookup(ctx context.Context, handle string, force bool) (*scoring.LookupResponse, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer context.AfterFunc(p.base, cancel)()

	resp, err := p.client.Lookup(ctx, scoring.LookupRequest{Handle: handle, Force: force})
	if err == nil && (resp == nil || resp.JobID == "") {
		err = ErrNoJob
	}
	return resp, err
}

// Close stops any polling loop and cancels in-flight requests, waiting for
// them to return. No request is issued after Close returns. Close is
// idempotent.
func (p *Poller) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.teardown()
	p.haltLocked()
	close(p.updates)
	p.mu.Unlock()

	p.loops.Wait()
	p.inflight.Wait()
}

// Follow calls fn with each snapshot until the poller settles, then returns
// the final snapshot and its error. Follow consumes Updates, so only one
// goroutine should follow or read Updates at a time.
func (p *Poller) Follow(ctx context.Context, fn func(Snapshot)) (Snapshot, error) {
	snap := p.Snapshot()
	for {
		if fn != nil {
			fn(snap)
		}
		if snap.State.Settled() {
			return snap, snap.Err
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case next, ok := <-p.updates:
			if !ok {
				return p.Snapshot(), ErrClosed
			}
			snap = next
		}
	}
}

// haltLocked cancels the active loop, returning a channel that closes once
// its ticker is stopped (nil when no loop ever ran).
func (p *Poller) haltLocked() <-chan struct{} {
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
	done := p.loopDone
	p.loopDone = nil
	return done
}

// endLocked stops the loop after a terminal or expired state, keeping
// loopDone so a later Submit still waits for the ticker to be released.
func (p *Poller) endLocked() {
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
}

func (p *Poller) startLocked(gen uint64, jobID string) {
	ctx, cancel := context.WithCancel(p.base)
	done := make(chan struct{})
	p.stop = cancel
	p.loopDone = done
	t := p.newTicker(p.interval)
	p.loops.Add(1)
	go p.loop(ctx, t, gen, jobID, done)
}

func (p *Poller) loop(ctx context.Context, t Ticker, gen uint64, jobID string, done chan struct{}) {
	defer p.loops.Done()
	defer close(done)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			fetch, ok := p.beginFetch(gen, jobID)
			if !ok {
				return
			}
			if fetch {
				go p.fetch(ctx, gen, jobID)
			}
		}
	}
}

// beginFetch counts a tick and reserves a fetch for it. ok is false once the
// job is no longer being polled. At the poll limit no fetch is reserved; the
// job expires when the last reply arrives without a terminal status.
func (p *Poller) beginFetch(gen uint64, jobID string) (fetch, ok bool) {
	p.mu.Lock()
	if p.closed || gen != p.gen || p.state != StatePolling {
		p.mu.Unlock()
		return false, false
	}
	if p.maxAttempts > 0 && p.attempts >= p.maxAttempts {
		p.mu.Unlock()
		return false, true
	}
	p.attempts++
	attempt := p.attempts
	p.inflight.Add(1)
	p.mu.Unlock()

	p.log.Debug().Str("job_id", jobID).Int("attempt", attempt).Msg("poll tick")
	return true, true
}

func (p *Poller) fetch(ctx context.Context, gen uint64, jobID string) {
	defer p.inflight.Done()
	if ctx.Err() != nil {
		return
	}
	u, err := p.client.JobStatus(ctx, jobID)
	if err == nil && u == nil {
		err = errors.New("empty status response")
	}
	p.observe(gen, jobID, u, err)
}

func (p *Poller) observe(gen uint64, jobID string, u *scoring.JobStatusUpdate, err error) {
	p.mu.Lock()
	if p.closed || gen != p.gen || p.state != StatePolling {
		p.mu.Unlock()
		p.log.Debug().Str("job_id", jobID).Msg("dropping poll result for inactive job")
		return
	}
	p.replies++
	changed := false
	if err != nil {
		// Poll failures are retried on the next tick.
		p.failures++
		p.log.Debug().Err(err).Str("job_id", jobID).Int("failures", p.failures).Msg("poll failed")
	} else if next := Reduce(p.display, *u); next != p.display {
		p.display = next
		changed = true
		if next.Ready() {
			p.state = StateDone
			p.endLocked()
			p.log.Debug().Str("job_id", jobID).Int("attempts", p.attempts).Msg("job done")
		}
	}

	expired := p.state == StatePolling && p.maxAttempts > 0 &&
		p.attempts >= p.maxAttempts && p.replies >= p.attempts
	if expired {
		p.state = StateExpired
		p.err = ErrPollLimit
		p.endLocked()
		changed = true
	}
	if changed {
		p.publishLocked()
	}
	attempts := p.attempts
	p.mu.Unlock()

	if expired {
		p.log.Warn().Str("job_id", jobID).Int("attempts", attempts).Msg("poll limit reached")
		p.reporter.Capture(fmt.Errorf("job %s: %w", jobID, ErrPollLimit), map[string]string{"op": "poll"})
	}
}

func (p *Poller) snapshotLocked() Snapshot {
	return Snapshot{
		State:    p.state,
		Display:  p.display,
		Attempts: p.attempts,
		Replies:  p.replies,
		Failures: p.failures,
		Err:      p.err,
	}
}

// publishLocked replaces any undelivered snapshot with the current one.
// Every caller holds p.mu, so the send after draining cannot block.
func (p *Poller) publishLocked() {
	if p.closed {
		return
	}
	snap := p.snapshotLocked()
	select {
	case <-p.updates:
	default:
	}
	select {
	case p.updates <- snap:
	default:
	}
}
