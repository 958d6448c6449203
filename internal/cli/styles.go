// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mkamanzi/farepulse/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#3498DB") // Blue
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#2ECC71") // Green
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#F39C12") // Amber
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#E74C3C") // Red
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#95E1D3") // Light teal
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666") // Gray

	// PositiveColor, NeutralColor and NegativeColor color sentiment
	// labels everywhere they appear: summaries, charts and the TUI.
	PositiveColor = lipgloss.Color("#2ECC71")
	NeutralColor  = lipgloss.Color("#F39C12")
	NegativeColor = lipgloss.Color("#E74C3C")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SubtitleStyle is used for secondary headings.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	// TableCellStyle formats table cells with appropriate padding.
	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	BusIcon     = "🚌"
	FlagIcon    = "🚩"
	ChartIcon   = "📊"
	GlobeIcon   = "🌍"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the bus icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(BusIcon + " " + title)
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	boxContent := lipgloss.JoinVertical(
		lipgloss.Left,
		boxTitle,
		content,
	)

	return BoxStyle.Render(boxContent)
}

// SentimentColor maps a sentiment label to its display color.
func SentimentColor(s model.Sentiment) lipgloss.Color {
	switch s {
	case model.SentimentPositive:
		return PositiveColor
	case model.SentimentNegative:
		return NegativeColor
	default:
		return NeutralColor
	}
}

// StyleSentiment renders a sentiment label in its color.
func StyleSentiment(s model.Sentiment) string {
	return lipgloss.NewStyle().Foreground(SentimentColor(s)).Render(string(s))
}

// StyleTitle formats text as a title.
func StyleTitle(text string) string {
	return TitleStyle.Render(text)
}

// StyleSubtle formats text as de-emphasized detail.
func StyleSubtle(text string) string {
	return SubtleStyle.Render(text)
}
