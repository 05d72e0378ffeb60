package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rhishavhere/codeblink/internal/shell"
)

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray
	BlueColor      = lipgloss.Color("#60A5FA") // Blue

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	TabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor).
			Background(PrimaryColor).
			Padding(0, 2)

	Muted = lipgloss.NewStyle().Foreground(MutedColor)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor)

	PanelFocused = Panel.BorderForeground(PrimaryColor)

	PanelTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(MutedColor).
			Padding(0, 1)

	StatusBar = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SurfaceColor).
			Padding(0, 1)

	// Syntax highlighting for the editor preview
	Keyword = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	String  = lipgloss.NewStyle().Foreground(SecondaryColor)
	Number  = lipgloss.NewStyle().Foreground(WarningColor)
	Comment = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)
)

// levelStyle colors log lines and the status message by level.
func levelStyle(level shell.Level) lipgloss.Style {
	switch level {
	case shell.LevelError:
		return lipgloss.NewStyle().Foreground(ErrorColor)
	case shell.LevelSuccess:
		return lipgloss.NewStyle().Foreground(SecondaryColor)
	case shell.LevelAI:
		return lipgloss.NewStyle().Foreground(BlueColor)
	default:
		return lipgloss.NewStyle().Foreground(TextColor)
	}
}
