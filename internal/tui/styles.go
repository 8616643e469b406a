// =============================
// File: internal/tui/styles.go
// =============================
package tui

import "github.com/charmbracelet/lipgloss"

var (
	cyan    = lipgloss.Color("#00E5FF")
	magenta = lipgloss.Color("#FF1B6B")
	green   = lipgloss.Color("#2AFFAA")
	red     = lipgloss.Color("#FF5555")
	yellow  = lipgloss.Color("#FFB500")
	muted   = lipgloss.Color("#6C7280")
	text    = lipgloss.Color("#ECEFF4")

	titleStyle = lipgloss.NewStyle().
			Foreground(cyan).
			Bold(true).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(muted)
	valueStyle = lipgloss.NewStyle().Foreground(text)

	buyStyle  = lipgloss.NewStyle().Foreground(green)
	sellStyle = lipgloss.NewStyle().Foreground(red)
	warnStyle = lipgloss.NewStyle().Foreground(yellow)
	errStyle  = lipgloss.NewStyle().Foreground(red).Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(magenta).
			Bold(true).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
)
