package telemetry

import (
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
)

func TestNew_EmptyDSNDisabled(t *testing.T) {
	t.Parallel()
	r, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r != nil {
		t.Fatal("expected nil reporter without DSN")
	}
	// Nil reporter is a no-op.
	r.Capture(errors.New("boom"), nil)
	r.Flush()
}

func TestCapture_TagsEvent(t *testing.T) {
	t.Parallel()
	var got []*sentry.Event
	r, err := New(Options{
		DSN: "https://public@example.invalid/1",
		BeforeSend: func(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			got = append(got, e)
			return nil // drop; nothing leaves the process
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r.Capture(errors.New("lookup failed"), map[string]string{"op": "lookup"})

	if len(got) != 1 {
		t.Fatalf("captured %d events, want 1", len(got))
	}
	if got[0].Tags["op"] != "lookup" {
		t.Errorf("tag op = %q, want lookup", got[0].Tags["op"])
	}
}

func TestNew_BadDSN(t *testing.T) {
	t.Parallel()
	if _, err := New(Options{DSN: "not a dsn"}); err == nil {
		t.Fatal("expected error for malformed DSN")
	}
}
