package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("39")
	colorSecondary = lipgloss.Color("86")
	colorWarning   = lipgloss.Color("220")
	colorError     = lipgloss.Color("196")
	colorDim       = lipgloss.Color("241")

	crumbStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	crumbFocusedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	separatorStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	overlayBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle()

	rowSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorSecondary)

	rowDetailStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	matchStyle = lipgloss.NewStyle().
			Underline(true).
			Foreground(colorPrimary)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	statusErrorStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("235")).
				Foreground(colorError).
				Padding(0, 1)

	statusWarningStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("235")).
				Foreground(colorWarning).
				Padding(0, 1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)
)
