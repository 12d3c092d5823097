// Package styles holds the lipgloss palette and styles of the terminal UI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/seenimoa/stockpulse/pkg/models"
)

// Color palette
var (
	PrimaryColor = lipgloss.Color("#7C3AED") // Purple
	AccentColor  = lipgloss.Color("#F59E0B") // Amber

	PositiveColor = lipgloss.Color("#10B981") // Green
	NegativeColor = lipgloss.Color("#EF4444") // Red
	NeutralColor  = lipgloss.Color("#EAB308") // Yellow

	BackgroundColor  = lipgloss.Color("#1F2937")
	BorderColor      = lipgloss.Color("#374151")
	FocusBorderColor = lipgloss.Color("#7C3AED")

	TextColor          = lipgloss.Color("#F9FAFB")
	TextSecondaryColor = lipgloss.Color("#9CA3AF")
	TextMutedColor     = lipgloss.Color("#6B7280")
)

// Layout styles
var (
	AppTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor).
			Background(PrimaryColor).
			Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	SectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(PrimaryColor)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(FocusBorderColor).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)
)

// Text styles
var (
	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	MissingStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	HeadlineStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor)

	LinkStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Underline(true)

	SummaryStyle = lipgloss.NewStyle().
			Foreground(AccentColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(NegativeColor)

	SeparatorStyle = lipgloss.NewStyle().
			Foreground(BorderColor)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(BackgroundColor).
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	StatusBarKeyStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	StatusBarDescStyle = lipgloss.NewStyle().
				Foreground(TextSecondaryColor)
)

// SentimentStyle returns the style for a sentiment label.
func SentimentStyle(l models.SentimentLabel) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch l {
	case models.SentimentPositive:
		return s.Foreground(PositiveColor)
	case models.SentimentNegative:
		return s.Foreground(NegativeColor)
	case models.SentimentNeutral:
		return s.Foreground(NeutralColor)
	default:
		return s.Foreground(TextMutedColor)
	}
}
