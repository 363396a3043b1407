package poller

import "github.com/gastownhall/trustscore/internal/scoring"

// State is the poller's lifecycle position.
type State int

// Poller states. Expired is entered when the poll limit is reached before
// the job finishes.
const (
	StateIdle State = iota
	StateSubmitting
	StatePolling
	StateDone
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StatePolling:
		return "polling"
	case StateDone:
		return "done"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Settled reports whether the poller has stopped making progress on its own:
// no submission or polling loop is running.
func (s State) Settled() bool {
	return s == StateIdle || s == StateDone || s == StateExpired
}

// DisplayState is the lookup result as shown to the user: the lookup
// response merged with the latest polled status.
type DisplayState struct {
	Handle string `json:"handle"`
	DID    string `json:"did"`
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// Ready reports whether the job has reached the terminal status.
func (d DisplayState) Ready() bool { return scoring.IsTerminal(d.Status) }

// FromLookup builds the initial display state for a submission.
func FromLookup(handle string, r *scoring.LookupResponse) DisplayState {
	if r == nil {
		return DisplayState{Handle: handle}
	}
	return DisplayState{Handle: handle, DID: r.DID, JobID: r.JobID, Status: r.Status}
}

// Reduce merges one poll result into s. Only Status changes. Once s is
// terminal it is returned unchanged, so late or reordered responses cannot
// regress it. Updates naming a different job, or carrying no status, are
// ignored.
func Reduce(s DisplayState, u scoring.JobStatusUpdate) DisplayState {
	if s.Ready() {
		return s
	}
	if u.JobID != "" && u.JobID != s.JobID {
		return s
	}
	if u.Status == "" {
		return s
	}
	s.Status = u.Status
	return s
}
