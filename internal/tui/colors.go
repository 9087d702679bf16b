package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/hos"
)

// Palette shared by every terminal view.
const (
	ColorAccent        = "#2563EB"
	ColorAccentBright  = "#60A5FA"
	ColorBorder        = "#3A3F55"
	ColorPrimaryText   = "#E6EAF2"
	ColorSecondaryText = "#B1B8C7"
	ColorHelpText      = "#7A8194"
	ColorError         = "#EF4444"
	ColorSuccess       = "#22C55E"
	ColorWarning       = "#F59E0B"

	ColorDriving = "#2563EB"
	ColorOnDuty  = "#F59E0B"
	ColorSleeper = "#8B5CF6"
	ColorOffDuty = "#6B7280"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorAccentBright)).
			Bold(true)
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText))
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHelpText)).
			Italic(true)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Bold(true)
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSuccess)).
			Bold(true)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Padding(0, 1)
)

// SeverityStyle colours text with the treatment of a cycle-hours status.
func SeverityStyle(st hos.Status) lipgloss.Style {
	c := st.Treatment
	if c == "" {
		c = ColorSuccess
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Bold(true)
}

// StatusStyle colours a duty status the way the log grid does.
func StatusStyle(s domain.DutyStatus) lipgloss.Style {
	c := ColorOffDuty
	switch s {
	case domain.StatusDriving:
		c = ColorDriving
	case domain.StatusOnDuty:
		c = ColorOnDuty
	case domain.StatusSleeper:
		c = ColorSleeper
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}
