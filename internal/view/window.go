// Package view derives what a chart shows from a decoded tide series: the
// samples inside a date window, the high/low tide marks and the daylight
// bands of a calendar year.
package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/ngmaloney/tide-terminal/internal/models"
)

// ErrInvalidWindow is returned when a range cannot be resolved to start <= end
var ErrInvalidWindow = errors.New("invalid view window")

// Range is the caller's date selection. A zero End means "same day as Start".
type Range struct {
	Start time.Time
	End   time.Time
}

// Window is a resolved, inclusive [Start, End] range at second precision
type Window struct {
	Start time.Time
	End   time.Time
}

// ResolveWindow clamps Start to 00:00:00 of its day and End to 23:59:59 of
// its own day, or of Start's day when End is unset.
func ResolveWindow(r Range) (Window, error) {
	if r.Start.IsZero() {
		return Window{}, fmt.Errorf("start date is required: %w", ErrInvalidWindow)
	}

	start := startOfDay(r.Start)
	endDay := r.Start
	if !r.End.IsZero() {
		endDay = r.End
	}
	end := endOfDay(endDay)

	if end.Before(start) {
		return Window{}, fmt.Errorf("end %s is before start %s: %w",
			end.Format(time.DateOnly), start.Format(time.DateOnly), ErrInvalidWindow)
	}
	return Window{Start: start, End: end}, nil
}

// Contains reports whether t lies in the window, both ends included
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days returns the number of calendar days the window spans
func (w Window) Days() int {
	n := 0
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// Shift moves both ends of the window by the given number of days
func (w Window) Shift(days int) Window {
	return Window{
		Start: startOfDay(w.Start.AddDate(0, 0, days)),
		End:   endOfDay(w.End.AddDate(0, 0, days)),
	}
}

// Visible returns the samples of series inside w, in series order
func Visible(series models.Series, w Window) models.Series {
	return series.Between(w.Start, w.End)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
