package main

import (
	"fmt"
	"io"

	"github.com/gastownhall/trustscore/internal/scoring"
	"github.com/spf13/cobra"
)

func newScoresCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scores <did-or-handle>",
		Aliases: []string{"report"},
		Short:   "Show the score report for a user",
		Long: `Fetch and render the current score report for a DID or handle.

The report is fetched fresh on every call. Users the backend has not scored
yet render with empty sections.

Examples:
  trust scores did:plc:abc123
  trust scores alice.bsky.social --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScores(cmd, stdout, stderr, args[0])
		},
	}
	cmd.Flags().Bool("json", false, "Print the raw report as JSON")
	return cmd
}

func runScores(cmd *cobra.Command, stdout, stderr io.Writer, id string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	sess, err := openSession(cmd, stderr)
	if err != nil {
		return err
	}
	defer sess.close()

	r, err := sess.client.UserScores(cmdContext(cmd), id)
	if err != nil {
		return hintWrap(fmt.Errorf("scores for %s: %w", id, err), sess.settings.APIBase)
	}
	if asJSON {
		return writeJSON(stdout, r)
	}
	return scoring.RenderReport(stdout, r)
}
