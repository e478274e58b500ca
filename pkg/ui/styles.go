package ui

import "github.com/charmbracelet/lipgloss"

// Color Palette
var (
	skyBlue    = lipgloss.Color("#7FB3FF") // progress and info lines
	mintGreen  = lipgloss.Color("#A8E6CF") // success states
	amber      = lipgloss.Color("#FFD580") // warnings and aborted attempts
	salmonPink = lipgloss.Color("#FFB3BA") // errors
	mutedGray  = lipgloss.Color("#6B7280") // debug and secondary text
)

var (
	infoStyle = lipgloss.NewStyle().
			Foreground(skyBlue)

	successStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	debugStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)
)
