package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Colors
var (
	ColorPrimary = lipgloss.Color("#C084FC") // soft violet
	ColorSuccess = lipgloss.Color("#39FF14") // neon green
	ColorWarning = lipgloss.Color("#F5A623")
	ColorDanger  = lipgloss.Color("#FF5555")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorText    = lipgloss.Color("#E4E4E7")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	PathStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	ExtBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(ColorPrimary).
			Padding(0, 1).
			Bold(true)

	OffsetStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)

	StatsStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HelpKey = lipgloss.NewStyle().
		Foreground(ColorCyan).
		Bold(true)
)

// FormatSize formats bytes as a human readable IEC size, "?" when unknown
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "?"
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatOffset renders a device offset in decimal with thousands separators
func FormatOffset(off int64) string {
	return humanize.Comma(off)
}

// FormatElapsed rounds a duration for status lines
func FormatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
