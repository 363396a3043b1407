package tui

import (
	"github.com/gastownhall/trustscore/internal/poller"
	"github.com/gastownhall/trustscore/internal/scoring"
)

// activeView identifies which view is currently displayed.
type activeView int

const (
	viewLookup activeView = iota
	viewReport
)

// navigateMsg requests a view switch.
type navigateMsg struct {
	view activeView
	id   string // DID or handle when navigating to the report
}

// lookupRequestMsg is sent by the lookup form when the user submits.
type lookupRequestMsg struct {
	handle string
	force  bool
}

// submitResultMsg carries the outcome of a Submit call.
type submitResultMsg struct {
	snap poller.Snapshot
	err  error
}

// snapshotMsg carries a poller state change.
type snapshotMsg struct {
	snap poller.Snapshot
}

// reportDataMsg carries a fetched score report.
type reportDataMsg struct {
	id     string
	report *scoring.ScoreReport
	err    error
}
