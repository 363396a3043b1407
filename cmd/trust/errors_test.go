package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gastownhall/trustscore/internal/poller"
	"github.com/gastownhall/trustscore/internal/scoring"
)

func TestHintedError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("something failed")
	h := &HintedError{Err: inner, Hint: "try again"}
	if !errors.Is(h, inner) {
		t.Error("HintedError should unwrap to inner error")
	}
}

func TestHintedError_ErrorString(t *testing.T) {
	inner := fmt.Errorf("boom")
	h := &HintedError{Err: inner, Hint: "fix it"}
	if h.Error() != "boom" {
		t.Errorf("Error() = %q, want %q", h.Error(), "boom")
	}
}

func TestHintWrap_Nil(t *testing.T) {
	if got := hintWrap(nil, "http://x"); got != nil {
		t.Errorf("hintWrap(nil) = %v, want nil", got)
	}
}

func TestHintWrap(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unreachable", errors.New("dial tcp: connection refused"), "Is the scoring backend running at http://api.test?"},
		{"poll limit", fmt.Errorf("waiting: %w", poller.ErrPollLimit), "trust status <job-id>"},
		{"no job", poller.ErrNoJob, "no job id"},
		{"bad request", &scoring.HTTPError{StatusCode: 400}, "Check the handle"},
		{"not found", &scoring.HTTPError{StatusCode: 404}, "Is http://api.test a scoring backend?"},
		{"server error", &scoring.HTTPError{StatusCode: 502}, "reported an error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hintWrap(tt.err, "http://api.test")
			var h *HintedError
			if !errors.As(err, &h) {
				t.Fatal("expected HintedError")
			}
			if !strings.Contains(h.Hint, tt.want) {
				t.Errorf("hint = %q, want it to contain %q", h.Hint, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Error("hinted error should wrap the original")
			}
		})
	}
}

func TestRunPrintsHint(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TRUST_POLL_INTERVAL", "bogus")

	var stdout, stderr strings.Builder
	if code := run([]string{"status", "job1"}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "trust: loading settings:") || !strings.Contains(lines[1], "config.json") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
