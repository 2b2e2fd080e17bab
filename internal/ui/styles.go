package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	colorPrimary = lipgloss.Color("#00BFFF") // Deep sky blue
	colorHigh    = lipgloss.Color("#FF6B6B") // Red for high tide
	colorLow     = lipgloss.Color("#4A90E2") // Blue for low tide
	colorSun     = lipgloss.Color("#FFD93D") // Yellow for daylight
	colorMuted   = lipgloss.Color("#6C757D") // Gray
	colorBorder  = lipgloss.Color("#4A90E2") // Border blue
	colorLine    = lipgloss.Color("#87CEEB") // Sky blue

	// Title styles (no padding - paneStyle already has padding)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	headerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Padding(0, 1)

	// Pane styles
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			MarginRight(1)

	// Content styles
	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	highStyle = lipgloss.NewStyle().
			Foreground(colorHigh).
			Bold(true)

	lowStyle = lipgloss.NewStyle().
			Foreground(colorLow).
			Bold(true)

	sunStyle = lipgloss.NewStyle().
			Foreground(colorSun)

	lineStyle = lipgloss.NewStyle().
			Foreground(colorLine)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorHigh).
			Bold(true)

	// Help text style
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(1, 0)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

// markStyles maps a mark color name to its style
var markStyles = map[string]lipgloss.Style{
	"red":  highStyle,
	"blue": lowStyle,
}
