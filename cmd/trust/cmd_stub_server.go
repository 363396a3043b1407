package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gastownhall/trustscore/internal/api"
	"github.com/spf13/cobra"
)

func newStubServerCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub-server",
		Short: "Run an in-memory scoring backend for local testing",
		Long: `Serve the lookup, job status and score endpoints from memory.

Jobs start queued, spend --steps status reads processing, then complete with
a synthetic report derived from the handle.

Examples:
  trust stub-server
  trust stub-server --addr :9090 --steps 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStubServer(cmd, stdout, stderr)
		},
	}
	cmd.Flags().String("addr", ":8080", "Address to listen on")
	cmd.Flags().Int("steps", api.DefaultSteps, "Status reads a job spends processing")
	return cmd
}

func runStubServer(cmd *cobra.Command, stdout, stderr io.Writer) error {
	addr, _ := cmd.Flags().GetString("addr")
	steps, _ := cmd.Flags().GetInt("steps")
	if steps < 0 {
		return fmt.Errorf("invalid --steps %d: must be >= 0", steps)
	}

	log := newLogger(cmd, stderr, "stub-server")
	handler := api.New(api.WithSteps(steps), api.WithLogger(log))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	fmt.Fprintf(stdout, "Stub scoring backend listening on http://%s\n", ln.Addr())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
