package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gastownhall/trustscore/internal/scoring"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	s := New(opts...)
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return s, ts
}

func TestLookupQueuesJob(t *testing.T) {
	s, ts := newTestServer(t)
	c := scoring.NewClient(ts.URL)

	resp, err := c.Lookup(context.Background(), scoring.LookupRequest{Handle: "alice.test"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if resp.Status != StatusQueued {
		t.Errorf("status = %q, want queued", resp.Status)
	}
	if resp.DID != ResolveDID("alice.test") || !strings.HasPrefix(resp.DID, "did:plc:") {
		t.Errorf("did = %q", resp.DID)
	}
	if resp.JobID == "" {
		t.Fatal("empty job id")
	}
	if _, ok := s.Store().Job(resp.JobID); !ok {
		t.Error("job not stored")
	}
}

func TestLookupStripsAtSign(t *testing.T) {
	_, ts := newTestServer(t)
	c := scoring.NewClient(ts.URL)
	a, err := c.Lookup(context.Background(), scoring.LookupRequest{Handle: "@alice.test"})
	if err != nil {
		t.Fatal(err)
	}
	if a.DID != ResolveDID("alice.test") {
		t.Errorf("did = %q, want did of alice.test", a.DID)
	}
}

func TestLookupRejectsEmptyHandle(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/v1/lookup", "application/json", strings.NewReader(`{"handle":"  ","force":false}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck // test
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "handle is required" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestLookupRejectsBadJSON(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/v1/lookup", "application/json", strings.NewReader(`{`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close() //nolint:errcheck,gosec // test
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestJobAdvancesOnReads(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	_, ts := newTestServer(t, WithSteps(2), WithClock(func() time.Time { return at }))
	c := scoring.NewClient(ts.URL)
	ctx := context.Background()

	resp, err := c.Lookup(ctx, scoring.LookupRequest{Handle: "alice.test"})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"processing", "processing", "done", "done"}
	for i, w := range want {
		u, err := c.JobStatus(ctx, resp.JobID)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if u.Status != w || u.JobID != resp.JobID {
			t.Errorf("read %d = %+v, want status %q", i, u, w)
		}
	}

	for _, id := range []string{resp.DID, "alice.test"} {
		r, err := c.UserScores(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if r.DID != resp.DID || r.Handle != "alice.test" {
			t.Errorf("report for %s = %s/%s", id, r.DID, r.Handle)
		}
		if r.UpdatedAt != at.UnixMilli() {
			t.Errorf("updatedAt = %d", r.UpdatedAt)
		}
		if r.Facets[scoring.FacetAccuracy] == nil || r.Facets[scoring.FacetCivility] == nil {
			t.Errorf("missing facets: %+v", r.Facets)
		}
		if r.BotProb == nil {
			t.Error("missing botProb")
		}
	}
}

func TestJobZeroSteps(t *testing.T) {
	s := NewStore(0)
	j := s.Enqueue("bob.test", false)
	if st, _ := s.Advance(j.ID); st != scoring.StatusDone {
		t.Errorf("status = %q, want done on first read", st)
	}
}

func TestUnknownJob(t *testing.T) {
	_, ts := newTestServer(t)
	u, err := scoring.NewClient(ts.URL).JobStatus(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if u.JobID != "nope" || u.Status != StatusUnknown {
		t.Errorf("update = %+v", u)
	}
}

func TestUnknownUser(t *testing.T) {
	_, ts := newTestServer(t)
	r, err := scoring.NewClient(ts.URL).UserScores(context.Background(), "did:plc:nobody")
	if err != nil {
		t.Fatal(err)
	}
	if r.DID != "did:plc:nobody" || r.Facets != nil || r.BotProb != nil || r.Expertise != nil {
		t.Errorf("report = %+v, want did only", r)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/v1/lookup", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close() //nolint:errcheck,gosec // test
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestSyntheticReportDeterministic(t *testing.T) {
	at := time.Unix(0, 0)
	a := SyntheticReport("did:x", "alice.test", at)
	b := SyntheticReport("did:x", "ALICE.test", at)
	if *a.BotProb != *b.BotProb || a.Facets["accuracy"].Alpha != b.Facets["accuracy"].Alpha {
		t.Error("report should depend only on the lowercased handle")
	}
	for _, e := range a.Expertise {
		if e.Score < 0.5 || e.Score >= 1 {
			t.Errorf("expertise score out of range: %+v", e)
		}
	}
	if f := a.Facets["civility"]; f.B+f.D+f.U < 0.999 || f.B+f.D+f.U > 1.001 {
		t.Errorf("civility opinion does not sum to 1: %+v", f)
	}
}
