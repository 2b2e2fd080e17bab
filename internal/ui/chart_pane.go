package ui

import (
	"strings"
	"time"

	tslc "github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"

	"github.com/ngmaloney/tide-terminal/internal/models"
	"github.com/ngmaloney/tide-terminal/internal/view"
)

const chartHeight = 14

// renderChartPane plots the visible samples as a braille line chart
func (m Model) renderChartPane(width int) string {
	var content strings.Builder

	content.WriteString(titleStyle.Render("Tide Level (cm)"))
	content.WriteString("\n")

	if m.view == nil || len(m.view.Visible) == 0 {
		content.WriteString(mutedStyle.Render("No samples in range"))
		return paneStyle.Width(width).Render(content.String())
	}

	minLevel, maxLevel, ok := levelRange(m)
	if !ok {
		content.WriteString(mutedStyle.Render("All samples in range are missing"))
		return paneStyle.Width(width).Render(content.String())
	}

	labels := tslc.HourTimeLabelFormatter()
	if m.view.Window.Days() > 1 {
		labels = tslc.DateTimeLabelFormatter()
	}

	chart := tslc.New(chartWidth(width), chartHeight,
		tslc.WithTimeRange(m.view.Window.Start, m.view.Window.End),
		tslc.WithYRange(minLevel, maxLevel),
		tslc.WithXLabelFormatter(labels),
		tslc.WithStyle(lineStyle),
	)
	for _, s := range m.view.Visible {
		if s.Missing {
			continue
		}
		chart.Push(tslc.TimePoint{Time: s.Time, Value: float64(s.Level)})
	}
	chart.DrawBraille()

	content.WriteString(chart.View())
	if m.toggles.Daylight {
		if intervals := m.view.VisibleDaylight(); len(intervals) > 0 {
			lit := daylightBand(intervals, m.view.Window.Start, m.view.Window.End, chart.GraphWidth())
			content.WriteString("\n")
			content.WriteString(strings.Repeat(" ", chart.Origin().X+1))
			content.WriteString(renderBand(lit))
		}
	}
	return paneStyle.Width(width).Render(content.String())
}

// levelRange returns the padded level bounds of the present visible samples
func levelRange(m Model) (float64, float64, bool) {
	found := false
	var lo, hi int
	for _, s := range m.view.Visible {
		if s.Missing {
			continue
		}
		if !found || s.Level < lo {
			lo = s.Level
		}
		if !found || s.Level > hi {
			hi = s.Level
		}
		found = true
	}
	if !found {
		return 0, 0, false
	}
	pad := float64(hi-lo) * 0.1
	if pad < 5 {
		pad = 5
	}
	return float64(lo) - pad, float64(hi) + pad, true
}

// chartWidth is the plot width inside a pane of the given outer width
func chartWidth(width int) int {
	w := width - 6 // border, padding and margin
	if w < 20 {
		w = 20
	}
	return w
}

// daylightBand reports for each of cols plot columns spanning start..end
// whether the middle of the column falls between sunrise and sunset
func daylightBand(intervals []models.DaylightInterval, start, end time.Time, cols int) []bool {
	if cols <= 0 {
		return nil
	}
	lit := make([]bool, cols)
	step := end.Sub(start) / time.Duration(cols)
	for i := range lit {
		t := start.Add(step*time.Duration(i) + step/2)
		if d, ok := view.DaylightOn(intervals, t); ok {
			lit[i] = d.Contains(t)
		}
	}
	return lit
}

// renderBand draws daylight columns in the sun color and night as a
// muted baseline
func renderBand(lit []bool) string {
	var b strings.Builder
	for i := 0; i < len(lit); {
		j := i
		for j < len(lit) && lit[j] == lit[i] {
			j++
		}
		if lit[i] {
			b.WriteString(sunStyle.Render(strings.Repeat("▀", j-i)))
		} else {
			b.WriteString(mutedStyle.Render(strings.Repeat("·", j-i)))
		}
		i = j
	}
	return b.String()
}
