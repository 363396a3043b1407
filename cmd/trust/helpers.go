package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gastownhall/trustscore/internal/config"
	"github.com/gastownhall/trustscore/internal/logger"
	"github.com/gastownhall/trustscore/internal/poller"
	"github.com/gastownhall/trustscore/internal/scoring"
	"github.com/gastownhall/trustscore/internal/telemetry"
	"github.com/spf13/cobra"
)

// session bundles what backend-facing commands need.
type session struct {
	settings config.Settings
	client   *scoring.Client
	log      logger.Logger
	reporter *telemetry.Reporter
}

// resolveSettings loads the config file and layers env and flags over it.
func resolveSettings(cmd *cobra.Command) (config.Settings, error) {
	f, err := config.NewStore().Load()
	if err != nil {
		return config.Settings{}, configHint(err)
	}
	apiBase, _ := cmd.Flags().GetString("api-base")
	s, err := config.Resolve(f, config.Overrides{APIBase: apiBase})
	if err != nil {
		return s, configHint(err)
	}
	return s, nil
}

// newLogger builds the command logger writing to w; --debug forces debug.
func newLogger(cmd *cobra.Command, w io.Writer, component string) logger.Logger {
	opt := logger.FromEnv()
	opt.Writer = w
	opt.Component = component
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		opt.Level = "debug"
	}
	return logger.New(opt)
}

// openSession resolves settings and builds the client, logger and reporter.
// Logs go to logOut.
func openSession(cmd *cobra.Command, logOut io.Writer) (*session, error) {
	s, err := resolveSettings(cmd)
	if err != nil {
		return nil, err
	}
	log := newLogger(cmd, logOut, cmd.Name())
	rep, err := telemetry.New(telemetry.FromEnv(version))
	if err != nil {
		log.Warn().Err(err).Msg("error reporting disabled")
	}
	log.Debug().Str("api_base", s.APIBase).Dur("interval", s.PollInterval).Int("max_attempts", s.MaxAttempts).Msg("settings resolved")
	return &session{
		settings: s,
		client:   scoring.NewClient(s.APIBase),
		log:      log,
		reporter: rep,
	}, nil
}

// newPoller builds a Poller from the session settings.
func (s *session) newPoller() *poller.Poller {
	return poller.New(s.client,
		poller.WithInterval(s.settings.PollInterval),
		poller.WithMaxAttempts(s.settings.MaxAttempts),
		poller.WithLogger(s.log),
		poller.WithReporter(s.reporter),
	)
}

// close flushes pending error reports.
func (s *session) close() {
	s.reporter.Flush()
}

// writeJSON pretty-prints v to w.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
