package tui

import "github.com/charmbracelet/lipgloss"

// Ayu theme colors for TUI contexts.
var (
	colorPass = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	colorWarn = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorFail = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	colorDim  = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	colorText = lipgloss.AdaptiveColor{Light: "#5c6166", Dark: "#bfbdb6"}
	colorSel  = lipgloss.AdaptiveColor{Light: "#e8e8e8", Dark: "#1a1f29"}
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true)

	styleDim   = lipgloss.NewStyle().Foreground(colorDim)
	styleLabel = lipgloss.NewStyle().Foreground(colorText)
	styleLink  = lipgloss.NewStyle().Foreground(colorText).Underline(true)

	styleError   = lipgloss.NewStyle().Foreground(colorFail)
	styleWarn    = lipgloss.NewStyle().Foreground(colorWarn)
	styleSuccess = lipgloss.NewStyle().Foreground(colorPass)

	styleForceOn = lipgloss.NewStyle().Foreground(colorWarn).Bold(true)

	styleBar = lipgloss.NewStyle().
			Background(colorSel).
			Foreground(colorDim).
			Padding(0, 1)
)
