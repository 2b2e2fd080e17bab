package models

import "time"

// TideType represents whether a tide is high or low
type TideType string

const (
	TideHigh TideType = "H"
	TideLow  TideType = "L"
)

// Sample is one water-level reading from a tide table.
// Level is in the station's unit (centimetres for JMA tables).
type Sample struct {
	Time    time.Time
	Level   int
	Missing bool // level field could not be decoded
	IsHigh  bool
	IsLow   bool
}

// Kind returns the extremum type of the sample, or "" for a plain reading
func (s Sample) Kind() TideType {
	switch {
	case s.IsHigh:
		return TideHigh
	case s.IsLow:
		return TideLow
	}
	return ""
}

// IsExtremum reports whether the sample marks a high or low tide
func (s Sample) IsExtremum() bool {
	return s.IsHigh || s.IsLow
}

// Series is a sequence of samples ordered by time
type Series []Sample

// Between returns the samples whose time lies in [start, end]
func (s Series) Between(start, end time.Time) Series {
	var out Series
	for _, sample := range s {
		if sample.Time.Before(start) || sample.Time.After(end) {
			continue
		}
		out = append(out, sample)
	}
	return out
}

// ForDay returns the samples for the calendar day of date
func (s Series) ForDay(date time.Time) Series {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1).Add(-time.Second)
	return s.Between(startOfDay, endOfDay)
}

// Extrema returns only the high and low tide samples
func (s Series) Extrema() Series {
	var out Series
	for _, sample := range s {
		if sample.IsExtremum() {
			out = append(out, sample)
		}
	}
	return out
}

// Days returns the distinct calendar days covered by the series, in order
func (s Series) Days() []time.Time {
	var days []time.Time
	for _, sample := range s {
		t := sample.Time
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		if len(days) > 0 && days[len(days)-1].Equal(day) {
			continue
		}
		days = append(days, day)
	}
	return days
}

// DaylightInterval is the half-open span [Sunrise, Sunset) of one day
type DaylightInterval struct {
	Sunrise time.Time
	Sunset  time.Time
}

// Contains reports whether t falls in the interval
func (d DaylightInterval) Contains(t time.Time) bool {
	return !t.Before(d.Sunrise) && t.Before(d.Sunset)
}

// Duration returns the length of daylight
func (d DaylightInterval) Duration() time.Duration {
	return d.Sunset.Sub(d.Sunrise)
}

// Polar reports whether the sun neither rose nor set that day
func (d DaylightInterval) Polar() bool {
	return d.Sunrise.Equal(d.Sunset)
}
