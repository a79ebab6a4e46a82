package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
const (
	colorAccent = lipgloss.Color("63")
	colorMuted  = lipgloss.Color("241")
	colorError  = lipgloss.Color("196")
	colorSelFg  = lipgloss.Color("229")
	colorSelBg  = lipgloss.Color("57")
)

var (
	// TitleStyle renders the view title
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	// ActiveStyle marks the selected page size
	ActiveStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	// MutedStyle renders help text and disabled pager buttons
	MutedStyle = lipgloss.NewStyle().Foreground(colorMuted)

	// ErrorStyle renders the fetch error and invalid input warnings
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorError)

	// TableHeaderStyle is applied to the bubbles table header row
	TableHeaderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colorMuted).
				BorderBottom(true).
				Bold(true)

	// TableSelectedStyle highlights the cursor row
	TableSelectedStyle = lipgloss.NewStyle().
				Foreground(colorSelFg).
				Background(colorSelBg)
)
