package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	bubbletea "github.com/charmbracelet/bubbletea"

	"github.com/gastownhall/trustscore/internal/scoring"
)

type reportModel struct {
	id       string
	report   *scoring.ScoreReport
	viewport viewport.Model
	width    int
	height   int
	loading  bool
	err      error
}

func newReportModel() reportModel {
	return reportModel{}
}

func (m *reportModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h - 2 // room for title + padding
}

// open resets the view for a fresh fetch of id.
func (m *reportModel) open(id string) {
	m.id = id
	m.report = nil
	m.err = nil
	m.loading = true
}

func (m *reportModel) setData(msg reportDataMsg) {
	if msg.id != m.id {
		return
	}
	m.loading = false
	m.err = msg.err
	m.report = msg.report
	if m.report == nil {
		return
	}
	var b strings.Builder
	if err := scoring.RenderReport(&b, m.report); err != nil {
		m.err = err
		return
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

func (m reportModel) update(msg bubbletea.Msg) (reportModel, bubbletea.Cmd) {
	if msg, ok := msg.(bubbletea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Back):
			return m, func() bubbletea.Msg {
				return navigateMsg{view: viewLookup}
			}
		}
	}

	var cmd bubbletea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m reportModel) view() string {
	if m.loading {
		return styleDim.Render("  Loading...")
	}
	if m.err != nil {
		return fmt.Sprintf("  Error: %v", m.err)
	}
	if m.report == nil {
		return styleDim.Render("  No report loaded.")
	}

	title := styleTitle.Render(fmt.Sprintf("Report: %s", m.report.Name()))
	return title + "\n" + m.viewport.View()
}
