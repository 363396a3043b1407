// trust is the trustscore CLI: look up the reputation scores of a handle.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gastownhall/trustscore/internal/style"
	"github.com/spf13/cobra"
)

// Version metadata injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// errExit is a sentinel error returned by cobra RunE functions to signal
// non-zero exit. The command has already written its own error to stderr.
var errExit = errors.New("exit")

// run executes the trust CLI with the given args.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errExit) {
			fmt.Fprintf(stderr, "trust: %v\n", err)
			var h *HintedError
			if errors.As(err, &h) && h.Hint != "" {
				fmt.Fprintf(stderr, "  %s\n", h.Hint)
			}
		}
		return 1
	}
	return 0
}

// newRootCmd creates the root cobra command with all subcommands.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "trust",
		Short:         "Look up reputation scores for social handles",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			fmt.Fprintf(stderr, "trust: unknown command %q\n", args[0]) //nolint:errcheck // best-effort stderr
			return errExit
		},
	}
	root.PersistentFlags().String("api-base", "", "Scoring backend base URL (overrides TRUST_API_BASE and config)")
	root.PersistentFlags().String("color", "auto", "Color output: always, auto, never")
	root.PersistentFlags().Bool("debug", false, "Log debug output")
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		colorMode, _ := cmd.Flags().GetString("color")
		switch colorMode {
		case "always", "auto", "never":
			style.SetColorMode(colorMode)
			return nil
		default:
			return fmt.Errorf("invalid --color value %q: must be always, auto, or never", colorMode)
		}
	}
	root.AddCommand(
		newLookupCmd(stdout, stderr),
		newStatusCmd(stdout, stderr),
		newScoresCmd(stdout, stderr),
		newTUICmd(stdout, stderr),
		newConfigCmd(stdout, stderr),
		newStubServerCmd(stdout, stderr),
		newVersionCmd(stdout),
	)
	return root
}
