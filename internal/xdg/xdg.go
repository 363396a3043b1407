// Package xdg resolves the XDG base directories used by trustscore.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "trustscore"

// ConfigHome returns $XDG_CONFIG_HOME, falling back to ~/.config.
func ConfigHome() string {
	return fromEnv("XDG_CONFIG_HOME", ".config")
}

// StateHome returns $XDG_STATE_HOME, falling back to ~/.local/state.
// Log files live here: they are worth keeping across runs but are not
// user configuration.
func StateHome() string {
	return fromEnv("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// ConfigDir returns ConfigHome()/trustscore.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), appName)
}

// StateDir returns StateHome()/trustscore.
func StateDir() string {
	return filepath.Join(StateHome(), appName)
}

func fromEnv(key, fallback string) string {
	if dir := os.Getenv(key); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, fallback)
}
