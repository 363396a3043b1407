package main

import (
	"fmt"
	"io"
	"path/filepath"

	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/gastownhall/trustscore/internal/logger"
	"github.com/gastownhall/trustscore/internal/tui"
	"github.com/gastownhall/trustscore/internal/xdg"
	"github.com/spf13/cobra"
)

func newTUICmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal UI for handle lookups",
		Long: `Open the interactive lookup screen.

Type a handle and press enter to queue a scoring job; the status updates as
the job is polled. ctrl+f toggles force, ctrl+o opens the score report.

Logs are written to the trustscore state directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, stdout, stderr)
		},
	}
	return cmd
}

// tuiLogPath is where the TUI writes its log, since it owns the terminal.
func tuiLogPath() string {
	return filepath.Join(xdg.StateDir(), "trust.log")
}

func runTUI(cmd *cobra.Command, _, stderr io.Writer) error {
	logFile, err := logger.OpenFile(tuiLogPath())
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close() //nolint:errcheck // best-effort close

	sess, err := openSession(cmd, logFile)
	if err != nil {
		return err
	}
	defer sess.close()

	p := sess.newPoller()
	defer p.Close()

	m := tui.New(tui.Config{
		Poller:  p,
		Scores:  sess.client,
		Backend: sess.settings.APIBase,
		Log:     sess.log,
	})

	prog := bubbletea.NewProgram(m, bubbletea.WithAltScreen(), bubbletea.WithOutput(stderr))
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
