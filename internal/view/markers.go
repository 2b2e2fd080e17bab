package view

import (
	"time"

	"github.com/ngmaloney/tide-terminal/internal/models"
)

// MarkKind distinguishes high and low tide marks
type MarkKind string

const (
	MarkHigh MarkKind = "high"
	MarkLow  MarkKind = "low"
)

// Color returns the display color of the mark kind
func (k MarkKind) Color() string {
	if k == MarkHigh {
		return "red"
	}
	return "blue"
}

// Toggles selects which overlays are produced
type Toggles struct {
	High     bool
	Low      bool
	Daylight bool
}

// Mark is a labelled high or low tide point
type Mark struct {
	Time  time.Time
	Level int
	Label string // time of day, "15:04"
	Kind  MarkKind

	// Missing is set when the event level was absent in the table; Level
	// is then meaningless
	Missing bool
}

// Color returns the display color of the mark
func (m Mark) Color() string {
	return m.Kind.Color()
}

// Markers selects the extremum samples of series enabled by toggles
func Markers(series models.Series, toggles Toggles) []Mark {
	var marks []Mark
	for _, s := range series {
		var kind MarkKind
		switch {
		case s.IsHigh && toggles.High:
			kind = MarkHigh
		case s.IsLow && toggles.Low:
			kind = MarkLow
		default:
			continue
		}
		marks = append(marks, Mark{
			Time:  s.Time,
			Level: s.Level,
			Label: s.Time.Format("15:04"),
			Kind:  kind,

			Missing: s.Missing,
		})
	}
	return marks
}
