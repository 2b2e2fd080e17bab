package ui

import (
	"fmt"
	"strings"
	"time"
)

// renderDaylightPane renders sunrise and sunset for each day of the window
func (m Model) renderDaylightPane(width int) string {
	var content strings.Builder

	content.WriteString(titleStyle.Render("Daylight"))
	content.WriteString("\n")

	switch {
	case m.view == nil:
		content.WriteString(mutedStyle.Render("No daylight data available"))
	case !m.toggles.Daylight:
		content.WriteString(mutedStyle.Render("Daylight overlay hidden"))
	default:
		intervals := m.view.VisibleDaylight()
		if len(intervals) == 0 {
			content.WriteString(mutedStyle.Render("No daylight data in range"))
		}
		for _, d := range intervals {
			label := labelStyle.Render(d.Sunrise.Format("Mon Jan 2"))
			if d.Polar() {
				content.WriteString(fmt.Sprintf("%s  %s\n", label, mutedStyle.Render("no sunrise or sunset")))
				continue
			}
			dur := d.Duration().Round(time.Minute)
			content.WriteString(fmt.Sprintf("%s  %s %s  %s %s  %s\n",
				label,
				sunStyle.Render("↑"), valueStyle.Render(d.Sunrise.Format("15:04")),
				sunStyle.Render("↓"), valueStyle.Render(d.Sunset.Format("15:04")),
				mutedStyle.Render(fmt.Sprintf("%dh%02dm", int(dur.Hours()), int(dur.Minutes())%60))))
		}
	}

	return paneStyle.Width(width).Render(strings.TrimRight(content.String(), "\n"))
}
