package main

import (
	"fmt"
	"io"

	"github.com/gastownhall/trustscore/internal/style"
	"github.com/spf13/cobra"
)

func newStatusCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the status of a scoring job",
		Long: `Fetch the current status of a scoring job once.

Examples:
  trust status 3f1c2a9e-6d4b-4e0f-9b7a-1c2d3e4f5a6b`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, stdout, stderr, args[0])
		},
	}
	cmd.Flags().Bool("json", false, "Print the status as JSON")
	return cmd
}

func runStatus(cmd *cobra.Command, stdout, stderr io.Writer, jobID string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	sess, err := openSession(cmd, stderr)
	if err != nil {
		return err
	}
	defer sess.close()

	u, err := sess.client.JobStatus(cmdContext(cmd), jobID)
	if err != nil {
		return hintWrap(fmt.Errorf("job %s: %w", jobID, err), sess.settings.APIBase)
	}
	if u.JobID == "" {
		u.JobID = jobID
	}

	if asJSON {
		return writeJSON(stdout, u)
	}
	fmt.Fprintf(stdout, "jobId:   %s\n", u.JobID)
	fmt.Fprintf(stdout, "status:  %s\n", style.JobStatus(u.Status))
	return nil
}
