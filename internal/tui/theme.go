package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mkamanzi/farepulse/internal/cli"
)

// Theme defines the visual style for the review queue. Colors come from
// the shared CLI palette so the TUI matches the rest of the tool.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Confirm  lipgloss.Style
	Dismiss  lipgloss.Style
	Box      lipgloss.Style
}

// DefaultTheme is the standard review queue theme.
var DefaultTheme = Theme{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.PrimaryColor),
	Subtitle: lipgloss.NewStyle().
		Foreground(cli.SubtleColor),
	Selected: lipgloss.NewStyle().
		Background(cli.PrimaryColor).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true),
	Normal: lipgloss.NewStyle(),
	Muted: lipgloss.NewStyle().
		Foreground(cli.SubtleColor),
	Error: lipgloss.NewStyle().
		Foreground(cli.ErrorColor),
	Confirm: lipgloss.NewStyle().
		Foreground(cli.ErrorColor).
		Bold(true),
	Dismiss: lipgloss.NewStyle().
		Foreground(cli.SuccessColor).
		Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cli.SubtleColor).
		Padding(1, 2),
}
