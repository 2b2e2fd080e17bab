package ui

import (
	"fmt"
	"strings"

	"github.com/ngmaloney/tide-terminal/internal/view"
)

// renderTidePane renders the high and low tide marks inside the window
func (m Model) renderTidePane(width int) string {
	var content strings.Builder

	content.WriteString(titleStyle.Render("Tides"))
	content.WriteString("\n")

	if m.view == nil {
		content.WriteString(mutedStyle.Render("No tide data available"))
		return paneStyle.Width(width).Render(content.String())
	}
	if !m.toggles.High && !m.toggles.Low {
		content.WriteString(mutedStyle.Render("High and low marks hidden"))
		return paneStyle.Width(width).Render(content.String())
	}

	marks := m.view.VisibleMarkers()
	if len(marks) == 0 {
		content.WriteString(mutedStyle.Render("No tide marks in range"))
		return paneStyle.Width(width).Render(content.String())
	}

	day := ""
	for _, mark := range marks {
		// Day header
		if d := mark.Time.Format("Mon Jan 2"); d != day {
			day = d
			content.WriteString(labelStyle.Render(day))
			content.WriteString("\n")
		}
		content.WriteString(fmt.Sprintf("  %s  %s  %s\n",
			valueStyle.Render(mark.Label),
			markStyles[mark.Color()].Width(4).Render(markName(mark.Kind)),
			markLevel(mark)))
	}

	return paneStyle.Width(width).Render(strings.TrimRight(content.String(), "\n"))
}

func markName(k view.MarkKind) string {
	if k == view.MarkHigh {
		return "High"
	}
	return "Low"
}

func formatLevel(level int) string {
	return fmt.Sprintf("%4d cm", level)
}

// markLevel renders the level of a mark, or a dash when it was absent
func markLevel(mark view.Mark) string {
	if mark.Missing {
		return mutedStyle.Render(fmt.Sprintf("%4s cm", "-"))
	}
	return formatLevel(mark.Level)
}
