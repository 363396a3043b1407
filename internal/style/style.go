// Package style provides terminal styling for trustscore output using
// Lipgloss and the Ayu palette.
package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPass  = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	colorWarn  = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorFail  = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	colorMuted = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
)

// IconPass marks a finished job.
const IconPass = "✓"

// Output styles. Each is rebuilt by SetColorMode.
var (
	Success lipgloss.Style // positive outcomes
	Warning lipgloss.Style // pending or cautionary
	Error   lipgloss.Style
	Dim     lipgloss.Style // secondary information
	Bold    lipgloss.Style
)

func init() { applyPalette(true) }

func applyPalette(colored bool) {
	plain := lipgloss.NewStyle()
	if !colored {
		Success, Warning, Error, Dim, Bold = plain, plain, plain, plain, plain
		return
	}
	Success = plain.Foreground(colorPass).Bold(true)
	Warning = plain.Foreground(colorWarn).Bold(true)
	Error = plain.Foreground(colorFail).Bold(true)
	Dim = plain.Foreground(colorMuted)
	Bold = plain.Bold(true)
}

// JobStatus colours a scoring job status: done is green, queued and
// processing are yellow, unknown is red, anything else is dim.
func JobStatus(status string) string {
	switch status {
	case "done":
		return Success.Render(status)
	case "queued", "processing", "running":
		return Warning.Render(status)
	case "unknown":
		return Error.Render(status)
	case "":
		return Dim.Render("-")
	default:
		return Dim.Render(status)
	}
}

// Ready is the badge shown once a job is done.
func Ready() string {
	return Success.Render(IconPass + " ready")
}

// SetColorMode applies the --color flag: "never" strips styling, "always"
// forces it even without a terminal, anything else leaves detection to
// lipgloss and NO_COLOR.
func SetColorMode(mode string) {
	switch mode {
	case "never":
		_ = os.Setenv("NO_COLOR", "1")
		applyPalette(false)
	case "always":
		_ = os.Unsetenv("NO_COLOR")
		_ = os.Setenv("CLICOLOR_FORCE", "1")
		applyPalette(true)
	}
}
