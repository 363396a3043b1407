package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	bubbletea "github.com/charmbracelet/bubbletea"

	"github.com/gastownhall/trustscore/internal/poller"
	"github.com/gastownhall/trustscore/internal/style"
)

type lookupModel struct {
	handle     textinput.Model
	force      bool
	submitting bool
	snap       poller.Snapshot
	err        error
	width      int
	height     int
}

func newLookupModel() lookupModel {
	ti := textinput.New()
	ti.Placeholder = "nharan.bsky.social"
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 253
	ti.Width = 40
	return lookupModel{handle: ti}
}

func (m *lookupModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// setSnapshot applies a poller state change. A snapshot carrying a
// submission error replaces any earlier error; any other clears it once a
// new lookup is underway.
func (m *lookupModel) setSnapshot(s poller.Snapshot) {
	m.snap = s
	switch {
	case s.Err != nil && s.State == poller.StateIdle:
		m.err = s.Err
	case s.State == poller.StateSubmitting || s.State == poller.StatePolling:
		m.err = nil
	}
}

func (m lookupModel) update(msg bubbletea.Msg) (lookupModel, bubbletea.Cmd) {
	if msg, ok := msg.(bubbletea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Submit):
			req := lookupRequestMsg{handle: strings.TrimSpace(m.handle.Value()), force: m.force}
			return m, func() bubbletea.Msg { return req }
		case key.Matches(msg, keys.Force):
			m.force = !m.force
			return m, nil
		case key.Matches(msg, keys.Open):
			id := m.reportID()
			if id == "" {
				return m, nil
			}
			return m, func() bubbletea.Msg {
				return navigateMsg{view: viewReport, id: id}
			}
		}
	}

	var cmd bubbletea.Cmd
	m.handle, cmd = m.handle.Update(msg)
	return m, cmd
}

// reportID is the identifier the report view is opened with: the DID once
// known, otherwise nothing.
func (m lookupModel) reportID() string {
	return m.snap.Display.DID
}

func (m lookupModel) view() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("  Reputation lookup") + "\n\n")
	b.WriteString("  Handle: " + m.handle.View() + "\n")
	if m.force {
		b.WriteString("  Force:  " + styleForceOn.Render("on") + styleDim.Render("  (bypass cached result)") + "\n")
	} else {
		b.WriteString("  Force:  " + styleDim.Render("off") + "\n")
	}

	if m.submitting {
		b.WriteString("\n  " + styleDim.Render("Queuing...") + "\n")
	}
	if m.err != nil && !errors.Is(m.err, poller.ErrSuperseded) {
		b.WriteString("\n  " + styleError.Render("Error: "+m.err.Error()) + "\n")
	}

	d := m.snap.Display
	if d.JobID != "" {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %s  %s\n", styleLabel.Render("did:   "), d.DID))
		b.WriteString(fmt.Sprintf("  %s  %s\n", styleLabel.Render("jobId: "), d.JobID))
		b.WriteString(fmt.Sprintf("  %s  %s\n", styleLabel.Render("status:"), style.JobStatus(d.Status)))
		if d.Ready() {
			b.WriteString("\n  " + style.Ready() + "\n")
		}
		if m.snap.State == poller.StateExpired {
			b.WriteString("\n  " + styleWarn.Render(fmt.Sprintf("Stopped polling after %d attempts.", m.snap.Attempts)) + "\n")
		}
		if m.snap.Failures > 0 && m.snap.State == poller.StatePolling {
			b.WriteString("  " + styleDim.Render(fmt.Sprintf("%d poll(s) failed, retrying", m.snap.Failures)) + "\n")
		}
		if d.DID != "" {
			b.WriteString("\n  " + styleLink.Render("ctrl+o: view scores") + "\n")
		}
	}

	return b.String()
}
