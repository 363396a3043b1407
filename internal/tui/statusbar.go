package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gastownhall/trustscore/internal/poller"
)

// statusBar is the bottom line: backend and poller activity on the left,
// key hints on the right.
type statusBar struct {
	backend string
	width   int
}

func newStatusBar(backend string) statusBar {
	return statusBar{backend: backend}
}

// activity summarizes what the poller is doing, or "" when it is idle.
func activity(s poller.Snapshot) string {
	switch s.State {
	case poller.StateSubmitting:
		return "submitting"
	case poller.StatePolling:
		return fmt.Sprintf("polling %s (%d)", s.Display.JobID, s.Attempts)
	case poller.StateExpired:
		return "gave up"
	default:
		return ""
	}
}

func (s statusBar) render(snap poller.Snapshot, hints string) string {
	parts := []string{s.backend}
	if a := activity(snap); a != "" {
		parts = append(parts, a)
	}
	left := styleDim.Render(strings.Join(parts, " · "))
	right := styleDim.Render(hints)

	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return styleBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}
