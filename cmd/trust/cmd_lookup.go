package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/gastownhall/trustscore/internal/poller"
	"github.com/gastownhall/trustscore/internal/style"
	"github.com/spf13/cobra"
)

func newLookupCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <handle>",
		Short: "Queue a scoring job for a handle",
		Long: `Resolve a handle and queue a scoring job on the backend.

Without --wait the job is queued and its id printed. With --wait the job is
polled until it reports done, the poll limit is reached, or --timeout expires.

Examples:
  trust lookup alice.bsky.social
  trust lookup alice.bsky.social --wait
  trust lookup alice.bsky.social --force --wait --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, stdout, stderr, args[0])
		},
	}
	cmd.Flags().Bool("force", false, "Ask the backend to bypass any cached result")
	cmd.Flags().Bool("wait", false, "Poll until the job is done")
	cmd.Flags().Bool("json", false, "Print the result as JSON")
	cmd.Flags().Duration("timeout", 0, "Give up waiting after this long (0 waits up to the poll limit)")
	return cmd
}

// lookupResult is the JSON form of a lookup.
type lookupResult struct {
	poller.DisplayState
	Ready bool `json:"ready"`
}

func runLookup(cmd *cobra.Command, stdout, stderr io.Writer, handle string) error {
	force, _ := cmd.Flags().GetBool("force")
	wait, _ := cmd.Flags().GetBool("wait")
	asJSON, _ := cmd.Flags().GetBool("json")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	sess, err := openSession(cmd, stderr)
	if err != nil {
		return err
	}
	defer sess.close()

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	p := sess.newPoller()
	defer p.Close()

	snap, err := p.Submit(ctx, handle, force)
	if err != nil {
		return hintWrap(fmt.Errorf("lookup %s: %w", handle, err), sess.settings.APIBase)
	}

	if wait && !snap.State.Settled() {
		snap, err = follow(ctx, p, stderr, handle, timeout)
		if err != nil {
			if snap.Display.JobID != "" && !asJSON {
				renderLookup(stdout, snap.Display)
			}
			return hintWrap(fmt.Errorf("waiting for job %s: %w", snap.Display.JobID, err), sess.settings.APIBase)
		}
	}

	if asJSON {
		return writeJSON(stdout, lookupResult{DisplayState: snap.Display, Ready: snap.Display.Ready()})
	}
	renderLookup(stdout, snap.Display)
	switch {
	case snap.Display.Ready():
		fmt.Fprintf(stdout, "\n%s\n", style.Dim.Render(fmt.Sprintf("View the report with 'trust scores %s'.", snap.Display.DID)))
	case !wait:
		fmt.Fprintf(stdout, "\n%s\n", style.Dim.Render(fmt.Sprintf("Check progress with 'trust status %s', or rerun with --wait.", snap.Display.JobID)))
	}
	return nil
}

// follow polls until the job settles, showing each status on a spinner.
func follow(ctx context.Context, p *poller.Poller, stderr io.Writer, handle string, timeout time.Duration) (poller.Snapshot, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sp := style.StartSpinner(stderr, fmt.Sprintf("Scoring %s...", handle))
	snap, err := p.Follow(ctx, func(s poller.Snapshot) {
		sp.SetMessage(fmt.Sprintf("Scoring %s: %s", handle, s.Display.Status))
	})
	sp.Stop()

	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s", timeout)
	}
	return snap, err
}

func renderLookup(w io.Writer, d poller.DisplayState) {
	fmt.Fprintf(w, "did:     %s\n", d.DID)
	fmt.Fprintf(w, "jobId:   %s\n", d.JobID)
	fmt.Fprintf(w, "status:  %s\n", style.JobStatus(d.Status))
	if d.Ready() {
		fmt.Fprintln(w, style.Ready())
	}
}

// cmdContext returns the command context, or Background when run outside
// Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
