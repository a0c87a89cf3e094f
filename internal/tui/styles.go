package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Progress colors
	ProgressLow  = lipgloss.Color("#FF6B6B") // under 34% - Red
	ProgressMid  = lipgloss.Color("#FFE66D") // under 67% - Yellow
	ProgressHigh = lipgloss.Color("#4ECDC4") // under 100% - Blue
	Completed    = lipgloss.Color("#95E1A3") // Green

	// UI colors
	Primary    = lipgloss.Color("#4ECDC4")
	Secondary  = lipgloss.Color("#6C757D")
	Background = lipgloss.Color("#1a1a2e")
	Surface    = lipgloss.Color("#16213e")
	Text       = lipgloss.Color("#FFFFFF")
	TextMuted  = lipgloss.Color("#888888")
	Border     = lipgloss.Color("#333333")
	Error      = lipgloss.Color("#FF5555")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Project list
	ListStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	// Detail pane
	DetailStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// Tabs
	TabStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1)

	TabActiveStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	// Project item
	ProjectItemStyle = lipgloss.NewStyle().
				Padding(0, 1)

	ProjectItemSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(Surface).
					Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Width(12)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	DangerModalStyle = ModalStyle.
				BorderForeground(Error)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// GetProgressStyle returns the style for a progress percentage
func GetProgressStyle(pct float64) lipgloss.Style {
	switch {
	case pct >= 100:
		return lipgloss.NewStyle().Foreground(Completed).Bold(true)
	case pct >= 67:
		return lipgloss.NewStyle().Foreground(ProgressHigh)
	case pct >= 34:
		return lipgloss.NewStyle().Foreground(ProgressMid)
	default:
		return lipgloss.NewStyle().Foreground(ProgressLow)
	}
}

// FormatProgress returns a colored percentage
func FormatProgress(pct float64) string {
	return GetProgressStyle(pct).Render(fmt.Sprintf("%3.0f%%", pct))
}
