package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/gastownhall/trustscore/internal/poller"
	"github.com/gastownhall/trustscore/internal/scoring"
)

// Poller is the lookup workflow driven by the TUI.
type Poller interface {
	Submit(ctx context.Context, handle string, force bool) (poller.Snapshot, error)
	Updates() <-chan poller.Snapshot
	Close()
}

// ScoreSource fetches score reports.
type ScoreSource interface {
	UserScores(ctx context.Context, id string) (*scoring.ScoreReport, error)
}

// Config holds the parameters needed to launch the TUI.
type Config struct {
	Poller  Poller
	Scores  ScoreSource
	Backend string // backend base URL for display
	Log     zerolog.Logger
}

// Model is the root TUI model that routes between views.
type Model struct {
	cfg      Config
	active   activeView
	lookup   lookupModel
	report   reportModel
	bar      statusBar
	width    int
	height   int
	quitting bool
}

// New creates a new root TUI model.
func New(cfg Config) Model {
	return Model{
		cfg:    cfg,
		active: viewLookup,
		lookup: newLookupModel(),
		report: newReportModel(),
		bar:    newStatusBar(cfg.Backend),
	}
}

// Init starts listening for poller updates.
func (m Model) Init() bubbletea.Cmd {
	return waitForUpdate(m.cfg.Poller.Updates())
}

// Update processes messages.
func (m Model) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		// q types into the handle field, so it only quits from the report.
		if m.active == viewReport && key.Matches(msg, keys.Quit) {
			return m.quit()
		}

	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.width = msg.Width
		m.lookup.setSize(msg.Width, msg.Height-1) // -1 for statusbar
		m.report.setSize(msg.Width, msg.Height-1)

	case navigateMsg:
		m.active = msg.view
		if msg.view == viewReport {
			m.report.open(msg.id)
			return m, fetchReport(m.cfg, msg.id)
		}
		return m, nil

	case lookupRequestMsg:
		m.lookup.submitting = true
		m.lookup.err = nil
		m.cfg.Log.Debug().Str("handle", msg.handle).Bool("force", msg.force).Msg("tui lookup")
		return m, submit(m.cfg, msg.handle, msg.force)

	case submitResultMsg:
		m.lookup.submitting = false
		if msg.err != nil && !errors.Is(msg.err, poller.ErrSuperseded) && !errors.Is(msg.err, poller.ErrClosed) {
			m.lookup.err = msg.err
		}
		return m, nil

	case snapshotMsg:
		m.lookup.setSnapshot(msg.snap)
		return m, waitForUpdate(m.cfg.Poller.Updates())

	case reportDataMsg:
		m.report.setData(msg)
		return m, nil
	}

	// Delegate to active view.
	var cmd bubbletea.Cmd
	switch m.active {
	case viewLookup:
		m.lookup, cmd = m.lookup.update(msg)
	case viewReport:
		m.report, cmd = m.report.update(msg)
	}
	return m, cmd
}

// quit stops the poller before the program exits so no request outlives
// the view.
func (m Model) quit() (bubbletea.Model, bubbletea.Cmd) {
	m.quitting = true
	m.cfg.Poller.Close()
	return m, bubbletea.Quit
}

// View renders the current view.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	var hints string

	switch m.active {
	case viewLookup:
		content = m.lookup.view()
		hints = "enter: look up  ctrl+f: force  ctrl+o: scores  ctrl+c: quit"
	case viewReport:
		content = m.report.view()
		hints = "esc: back  j/k: scroll  q: quit"
	}

	// Pad content to fill available height.
	contentHeight := m.height - 1 // 1 for statusbar
	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		Render(content)

	bar := m.bar.render(m.lookup.snap, hints)

	return content + "\n" + bar
}

// --- async commands ---

func waitForUpdate(ch <-chan poller.Snapshot) bubbletea.Cmd {
	return func() bubbletea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg{snap: snap}
	}
}

func submit(cfg Config, handle string, force bool) bubbletea.Cmd {
	return func() bubbletea.Msg {
		snap, err := cfg.Poller.Submit(context.Background(), handle, force)
		return submitResultMsg{snap: snap, err: err}
	}
}

func fetchReport(cfg Config, id string) bubbletea.Cmd {
	return func() bubbletea.Msg {
		r, err := cfg.Scores.UserScores(context.Background(), id)
		if err != nil {
			cfg.Log.Debug().Err(err).Str("id", id).Msg("score fetch failed")
		}
		return reportDataMsg{id: id, report: r, err: err}
	}
}
