// Package telemetry reports client-side failures to Sentry when a DSN is
// configured. A nil *Reporter is valid and reports nothing.
package telemetry

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter sends errors to a Sentry hub.
type Reporter struct {
	hub *sentry.Hub
}

// Options configures a Reporter.
type Options struct {
	DSN         string
	Release     string
	Environment string

	// BeforeSend lets callers inspect or drop events.
	BeforeSend func(*sentry.Event, *sentry.EventHint) *sentry.Event
}

// FromEnv reads SENTRY_DSN and SENTRY_ENVIRONMENT.
func FromEnv(release string) Options {
	return Options{
		DSN:         os.Getenv("SENTRY_DSN"),
		Environment: os.Getenv("SENTRY_ENVIRONMENT"),
		Release:     release,
	}
}

// New returns a Reporter, or nil when opt.DSN is empty.
func New(opt Options) (*Reporter, error) {
	if opt.DSN == "" {
		return nil, nil
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         opt.DSN,
		Release:     opt.Release,
		Environment: opt.Environment,
		BeforeSend:  opt.BeforeSend,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing sentry: %w", err)
	}
	return &Reporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// Capture reports err with the given tags.
func (r *Reporter) Capture(err error, tags map[string]string) {
	if r == nil || err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		r.hub.CaptureException(err)
	})
}

// Flush waits up to two seconds for queued events to be delivered.
func (r *Reporter) Flush() {
	if r == nil {
		return
	}
	r.hub.Flush(2 * time.Second)
}
