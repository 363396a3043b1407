package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gastownhall/trustscore/internal/config"
	"github.com/gastownhall/trustscore/internal/poller"
	"github.com/gastownhall/trustscore/internal/scoring"
)

// HintedError wraps an error with a user-facing recovery hint.
type HintedError struct {
	Err  error
	Hint string
}

func (h *HintedError) Error() string { return h.Err.Error() }
func (h *HintedError) Unwrap() error { return h.Err }

// hintWrap attaches a recovery hint to an error from the scoring backend.
func hintWrap(err error, apiBase string) error {
	if err == nil {
		return nil
	}
	var herr *scoring.HTTPError
	var hint string
	switch {
	case errors.Is(err, poller.ErrPollLimit):
		hint = fmt.Sprintf("Run 'trust status <job-id>' to keep checking, or raise %s with 'trust config set'.", config.KeyMaxAttempts)
	case errors.Is(err, poller.ErrNoJob):
		hint = "The backend accepted the lookup but returned no job id; check the backend logs."
	case errors.As(err, &herr) && herr.StatusCode == http.StatusBadRequest:
		hint = "Check the handle, e.g. 'trust lookup alice.bsky.social'."
	case errors.As(err, &herr) && herr.StatusCode == http.StatusNotFound:
		hint = fmt.Sprintf("Is %s a scoring backend? Set the right one with --api-base.", apiBase)
	case errors.As(err, &herr):
		hint = "The scoring backend reported an error; try again shortly."
	default:
		hint = fmt.Sprintf("Is the scoring backend running at %s? Start a local one with 'trust stub-server'.", apiBase)
	}
	return &HintedError{Err: err, Hint: hint}
}

// configHint wraps a settings error with a pointer to the config command.
func configHint(err error) error {
	if err == nil {
		return nil
	}
	return &HintedError{
		Err:  fmt.Errorf("loading settings: %w", err),
		Hint: fmt.Sprintf("Check %s, the TRUST_* environment, or run 'trust config get <key>'.", config.Path()),
	}
}
