package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gastownhall/trustscore/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get or set trustscore configuration",
		Long: `View or modify trustscore configuration settings.

Use 'trust config get <key>' to read a setting.
Use 'trust config set <key> <value>' to change a setting.
Use 'trust config path' to print the config file location.

Supported keys:
  api-base        Scoring backend base URL (default http://localhost:8080)
  poll-interval   Time between job status polls (default 800ms)
  max-attempts    Polls per job before giving up; 0 polls until done (default 750)

TRUST_API_BASE, TRUST_POLL_INTERVAL and TRUST_MAX_ATTEMPTS override the file;
--api-base overrides both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newConfigGetCmd(stdout, stderr),
		newConfigSetCmd(stdout, stderr),
		newConfigPathCmd(stdout),
	)

	return cmd
}

func newConfigGetCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:       "get <key>",
		Short:     "Get a configuration value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, stdout, stderr, args[0])
		},
	}
}

func newConfigSetCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, stdout, stderr, args[0], args[1])
		},
	}
}

func newConfigPathCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Fprintln(stdout, config.Path())
			return nil
		},
	}
}

// runConfigGet prints the effective value of key: the file value layered
// with environment and flags, so it shows what lookups will use.
func runConfigGet(cmd *cobra.Command, stdout, _ io.Writer, key string) error {
	if !validKey(key) {
		return fmt.Errorf("%w %q (supported: %s)", config.ErrUnknownKey, key, strings.Join(config.Keys(), ", "))
	}

	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	switch key {
	case config.KeyAPIBase:
		fmt.Fprintln(stdout, s.APIBase)
	case config.KeyPollInterval:
		fmt.Fprintln(stdout, s.PollInterval)
	case config.KeyMaxAttempts:
		fmt.Fprintln(stdout, s.MaxAttempts)
	}
	return nil
}

func runConfigSet(_ *cobra.Command, stdout, _ io.Writer, key, value string) error {
	store := config.NewStore()
	f, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := f.Set(key, value); err != nil {
		return err
	}
	if err := store.Save(f); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintf(stdout, "%s = %s\n", key, value)
	return nil
}

func validKey(key string) bool {
	for _, k := range config.Keys() {
		if k == key {
			return true
		}
	}
	return false
}
