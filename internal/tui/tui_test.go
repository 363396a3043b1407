package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	bubbletea "github.com/charmbracelet/bubbletea"

	"github.com/gastownhall/trustscore/internal/poller"
	"github.com/gastownhall/trustscore/internal/scoring"
	"github.com/gastownhall/trustscore/internal/style"
)

func init() {
	style.SetColorMode("never")
}

type submitCall struct {
	handle string
	force  bool
}

type fakePoller struct {
	mu      sync.Mutex
	calls   []submitCall
	snap    poller.Snapshot
	err     error
	updates chan poller.Snapshot
	closed  int
}

func newFakePoller() *fakePoller {
	return &fakePoller{updates: make(chan poller.Snapshot, 1)}
}

func (f *fakePoller) Submit(_ context.Context, handle string, force bool) (poller.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, submitCall{handle, force})
	return f.snap, f.err
}

func (f *fakePoller) Updates() <-chan poller.Snapshot { return f.updates }

func (f *fakePoller) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
}

type fakeScores struct {
	reports map[string]*scoring.ScoreReport
	err     error
	ids     []string
}

func (f *fakeScores) UserScores(_ context.Context, id string) (*scoring.ScoreReport, error) {
	f.ids = append(f.ids, id)
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.reports[id]; ok {
		return r, nil
	}
	return &scoring.ScoreReport{DID: id}, nil
}

func keyMsg(s string) bubbletea.KeyMsg {
	return bubbletea.KeyMsg{Type: bubbletea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(p *fakePoller, s *fakeScores) Model {
	m := New(Config{Poller: p, Scores: s, Backend: "http://localhost:8080"})
	result, _ := m.Update(bubbletea.WindowSizeMsg{Width: 100, Height: 30})
	return result.(Model)
}

func typeHandle(m Model, handle string) Model {
	for _, ch := range handle {
		result, _ := m.Update(keyMsg(string(ch)))
		m = result.(Model)
	}
	return m
}

// press sends msg and feeds the resulting command's message back in, once.
func press(t *testing.T, m Model, msg bubbletea.Msg) Model {
	t.Helper()
	result, cmd := m.Update(msg)
	m = result.(Model)
	if cmd == nil {
		t.Fatalf("expected a cmd for %v", msg)
	}
	result, _ = m.Update(cmd())
	return result.(Model)
}

func pollingSnap(status string) poller.Snapshot {
	return poller.Snapshot{
		State:   poller.StatePolling,
		Display: poller.DisplayState{Handle: "alice.test", DID: "did:plc:abc", JobID: "job1", Status: status},
	}
}

func TestLookup_InitialView(t *testing.T) {
	m := newTestModel(newFakePoller(), &fakeScores{})
	v := m.View()
	for _, want := range []string{"Handle:", "nharan.bsky.social", "Force:  off", "http://localhost:8080"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}
	if strings.Contains(v, "jobId") {
		t.Error("results panel should be hidden before a lookup")
	}
}

func TestLookup_EnterSubmitsHandleAndForce(t *testing.T) {
	p := newFakePoller()
	p.snap = pollingSnap("queued")
	m := newTestModel(p, &fakeScores{})
	m = typeHandle(m, "alice.test")

	result, _ := m.Update(bubbletea.KeyMsg{Type: bubbletea.KeyCtrlF})
	m = result.(Model)
	if !m.lookup.force {
		t.Fatal("ctrl+f should enable force")
	}
	if !strings.Contains(m.View(), "Force:  on") {
		t.Errorf("view should show force on:\n%s", m.View())
	}

	// enter -> lookupRequestMsg -> submit cmd
	result, cmd := m.Update(bubbletea.KeyMsg{Type: bubbletea.KeyEnter})
	m = result.(Model)
	req, ok := cmd().(lookupRequestMsg)
	if !ok {
		t.Fatalf("expected lookupRequestMsg")
	}
	result, cmd = m.Update(req)
	m = result.(Model)
	if !strings.Contains(m.View(), "Queuing...") {
		t.Errorf("view should show Queuing... while submitting:\n%s", m.View())
	}

	result, _ = m.Update(cmd())
	m = result.(Model)
	if m.lookup.submitting {
		t.Error("submitting should clear after result")
	}
	if len(p.calls) != 1 || p.calls[0] != (submitCall{"alice.test", true}) {
		t.Errorf("submit calls = %+v", p.calls)
	}
}

func TestLookup_SnapshotRendersResultsPanel(t *testing.T) {
	p := newFakePoller()
	m := newTestModel(p, &fakeScores{})

	result, cmd := m.Update(snapshotMsg{snap: pollingSnap("queued")})
	m = result.(Model)
	if cmd == nil {
		t.Error("snapshot should re-arm the update listener")
	}
	v := m.View()
	for _, want := range []string{"did:plc:abc", "job1", "queued", "ctrl+o: view scores"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}
	if strings.Contains(v, "ready") {
		t.Errorf("queued job should not show ready:\n%s", v)
	}

	done := pollingSnap("done")
	done.State = poller.StateDone
	result, _ = m.Update(snapshotMsg{snap: done})
	m = result.(Model)
	if !strings.Contains(m.View(), "✓ ready") {
		t.Errorf("done job should show ready badge:\n%s", m.View())
	}
}

func TestLookup_UpdateListenerReadsChannel(t *testing.T) {
	p := newFakePoller()
	m := newTestModel(p, &fakeScores{})
	p.updates <- pollingSnap("processing")

	msg := m.Init()()
	snap, ok := msg.(snapshotMsg)
	if !ok || snap.snap.Display.Status != "processing" {
		t.Fatalf("Init cmd returned %#v", msg)
	}

	close(p.updates)
	if msg := waitForUpdate(p.updates)(); msg != nil {
		t.Errorf("closed channel should yield nil msg, got %#v", msg)
	}
}

func TestLookup_SubmitErrorShown(t *testing.T) {
	p := newFakePoller()
	p.err = errors.New("connection refused")
	m := newTestModel(p, &fakeScores{})

	result, _ := m.Update(snapshotMsg{snap: pollingSnap("queued")})
	m = result.(Model)
	result, _ = m.Update(snapshotMsg{snap: poller.Snapshot{State: poller.StateIdle, Err: p.err}})
	m = result.(Model)
	result, _ = m.Update(submitResultMsg{err: p.err})
	m = result.(Model)

	v := m.View()
	if !strings.Contains(v, "Error: connection refused") {
		t.Errorf("view should show error:\n%s", v)
	}
	if strings.Contains(v, "job1") {
		t.Errorf("failed submit should clear the results panel:\n%s", v)
	}
}

func TestLookup_SupersededNotShown(t *testing.T) {
	m := newTestModel(newFakePoller(), &fakeScores{})
	result, _ := m.Update(submitResultMsg{err: poller.ErrSuperseded})
	m = result.(Model)
	if strings.Contains(m.View(), "Error") {
		t.Errorf("superseded submit should not show an error:\n%s", m.View())
	}
}

func TestLookup_ExpiredShowsNotice(t *testing.T) {
	m := newTestModel(newFakePoller(), &fakeScores{})
	s := pollingSnap("processing")
	s.State = poller.StateExpired
	s.Attempts = 750
	s.Err = poller.ErrPollLimit
	result, _ := m.Update(snapshotMsg{snap: s})
	m = result.(Model)
	if !strings.Contains(m.View(), "Stopped polling after 750 attempts") {
		t.Errorf("view should show expiry notice:\n%s", m.View())
	}
}

func TestReport_OpenFetchesFreshEachTime(t *testing.T) {
	bot := 0.12
	scores := &fakeScores{reports: map[string]*scoring.ScoreReport{
		"did:plc:abc": {
			DID:     "did:plc:abc",
			Handle:  "alice.test",
			Facets:  map[string]*scoring.Facet{"accuracy": {Alpha: 3, Beta: 1, B: 0.5, D: 0.17, U: 0.33}},
			BotProb: &bot,
		},
	}}
	m := newTestModel(newFakePoller(), scores)
	result, _ := m.Update(snapshotMsg{snap: pollingSnap("done")})
	m = result.(Model)

	// ctrl+o -> navigateMsg -> fetch
	result, cmd := m.Update(bubbletea.KeyMsg{Type: bubbletea.KeyCtrlO})
	m = result.(Model)
	nav, ok := cmd().(navigateMsg)
	if !ok || nav.id != "did:plc:abc" {
		t.Fatalf("ctrl+o should navigate to the report for the DID, got %#v", nav)
	}
	result, cmd = m.Update(nav)
	m = result.(Model)
	if m.active != viewReport || !m.report.loading {
		t.Fatalf("active = %v loading = %v", m.active, m.report.loading)
	}
	if !strings.Contains(m.View(), "Loading...") {
		t.Errorf("view should show Loading...:\n%s", m.View())
	}
	result, _ = m.Update(cmd())
	m = result.(Model)

	v := m.View()
	for _, want := range []string{"Report: alice.test", "Accuracy", "Bot probability: 12%"} {
		if !strings.Contains(v, want) {
			t.Errorf("report view missing %q:\n%s", want, v)
		}
	}

	// esc returns to lookup; reopening fetches again.
	m = press(t, m, bubbletea.KeyMsg{Type: bubbletea.KeyEsc})
	if m.active != viewLookup {
		t.Fatalf("esc should return to lookup, active = %v", m.active)
	}
	m = press(t, m, navigateMsg{view: viewReport, id: "did:plc:abc"})
	if len(scores.ids) != 2 {
		t.Errorf("score fetches = %d, want one per open", len(scores.ids))
	}
}

func TestReport_StaleDataIgnored(t *testing.T) {
	m := newTestModel(newFakePoller(), &fakeScores{})
	m.report.open("did:plc:new")
	m.report.setData(reportDataMsg{id: "did:plc:old", report: &scoring.ScoreReport{DID: "did:plc:old"}})
	if !m.report.loading || m.report.report != nil {
		t.Error("report for another id should be ignored")
	}
}

func TestReport_Error(t *testing.T) {
	scores := &fakeScores{err: errors.New("HTTP 500")}
	m := newTestModel(newFakePoller(), scores)
	m = press(t, m, navigateMsg{view: viewReport, id: "did:plc:abc"})
	if !strings.Contains(m.View(), "Error: HTTP 500") {
		t.Errorf("view should show fetch error:\n%s", m.View())
	}
}

func TestOpenWithoutDIDDoesNothing(t *testing.T) {
	m := newTestModel(newFakePoller(), &fakeScores{})
	result, cmd := m.Update(bubbletea.KeyMsg{Type: bubbletea.KeyCtrlO})
	m = result.(Model)
	if cmd != nil || m.active != viewLookup {
		t.Error("ctrl+o without a lookup should be ignored")
	}
}

func TestQuitClosesPoller(t *testing.T) {
	p := newFakePoller()
	m := newTestModel(p, &fakeScores{})
	result, cmd := m.Update(bubbletea.KeyMsg{Type: bubbletea.KeyCtrlC})
	m = result.(Model)
	if p.closed != 1 {
		t.Errorf("Close calls = %d, want 1", p.closed)
	}
	if _, ok := cmd().(bubbletea.QuitMsg); !ok {
		t.Error("expected quit cmd")
	}
	if m.View() != "" {
		t.Error("view should be empty after quit")
	}
}

func TestQKeyTypesInLookupButQuitsReport(t *testing.T) {
	p := newFakePoller()
	m := newTestModel(p, &fakeScores{})
	m = typeHandle(m, "q")
	if p.closed != 0 || m.lookup.handle.Value() != "q" {
		t.Errorf("q should type into the handle field, value = %q", m.lookup.handle.Value())
	}

	m.active = viewReport
	result, _ := m.Update(keyMsg("q"))
	if p.closed != 1 || !result.(Model).quitting {
		t.Error("q should quit from the report view")
	}
}

func TestStatusBar_ShowsPollerActivity(t *testing.T) {
	bar := newStatusBar("http://localhost:8080")
	bar.width = 100

	idle := bar.render(poller.Snapshot{}, "q: quit")
	if !strings.Contains(idle, "http://localhost:8080") || strings.Contains(idle, "polling") {
		t.Errorf("idle bar = %q", idle)
	}

	s := pollingSnap("processing")
	s.Attempts = 3
	busy := bar.render(s, "q: quit")
	if !strings.Contains(busy, "polling "+s.Display.JobID+" (3)") {
		t.Errorf("polling bar = %q", busy)
	}

	s.State = poller.StateExpired
	if got := activity(s); got != "gave up" {
		t.Errorf("activity(expired) = %q", got)
	}
}
