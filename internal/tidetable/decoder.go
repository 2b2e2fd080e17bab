package tidetable

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ngmaloney/tide-terminal/internal/models"
)

// Issue records a field that decoded to an absent value
type Issue struct {
	Line   int // 1-based line number in the input
	Field  string
	Raw    string
	Reason string
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s %q: %s", i.Line, i.Field, i.Raw, i.Reason)
}

// Report summarizes one decode run
type Report struct {
	Days        int    // records that produced samples
	Events      int    // extremum events applied, on-the-hour or standalone
	StationCode string // station code of the first decoded record
	Issues      []Issue
}

// Decoder converts tide-table text into a Series.
// A Decoder has no mutable state and is safe for concurrent use.
type Decoder struct {
	loc *time.Location
}

// Option configures a Decoder
type Option func(*Decoder)

// WithLocation sets the time zone the record timestamps are expressed in
func WithLocation(loc *time.Location) Option {
	return func(d *Decoder) {
		if loc != nil {
			d.loc = loc
		}
	}
}

// NewDecoder creates a decoder; timestamps default to UTC
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{loc: time.UTC}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Location returns the time zone used for decoded timestamps
func (d *Decoder) Location() *time.Location {
	return d.loc
}

// Decode decodes raw with a UTC decoder and discards the report
func Decode(raw string) models.Series {
	series, _ := NewDecoder().Decode(raw)
	return series
}

// extremum is the per-hour tag set by an on-the-hour event
type extremum uint8

const (
	extremumNone extremum = iota
	extremumHigh
	extremumLow
)

// Decode converts raw into a time-ordered Series. It never fails; fields
// that cannot be decoded are reported and treated as absent.
func (d *Decoder) Decode(raw string) (models.Series, Report) {
	var report Report
	if raw == "" {
		return models.Series{}, report
	}

	lines := strings.Split(raw, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	series := make(models.Series, 0, len(lines)*hoursPerDay)
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		series = d.decodeDay(series, line, i+1, &report)
	}

	sort.SliceStable(series, func(a, b int) bool {
		return series[a].Time.Before(series[b].Time)
	})
	return series, report
}

// decodeDay appends the samples of one record to series
func (d *Decoder) decodeDay(series models.Series, line string, lineNo int, report *Report) models.Series {
	absent := func(f field, raw, reason string) {
		report.Issues = append(report.Issues, Issue{Line: lineNo, Field: f.name, Raw: raw, Reason: reason})
	}

	base, ok := d.baseDate(line, absent)
	if !ok {
		return series
	}
	if report.StationCode == "" {
		if code, ok := stationField.text(line); ok {
			report.StationCode = strings.TrimSpace(code)
		}
	}

	var tags [hoursPerDay]extremum
	for _, ev := range eventFields {
		hour, raw, ok := ev.hour.extract(line)
		if !ok {
			absent(ev.hour, raw, "unreadable event hour")
			continue
		}
		if hour == emptyHour {
			continue
		}
		minute, raw, ok := ev.minute.extract(line)
		if !ok {
			absent(ev.minute, raw, "unreadable event minute")
			continue
		}
		tag := extremumLow
		if ev.high {
			tag = extremumHigh
		}

		if minute == 0 {
			if tags[hour] != extremumNone && tags[hour] != tag {
				absent(ev.hour, fmt.Sprintf("%02d", hour), "conflicting high and low at the same hour")
				continue
			}
			tags[hour] = tag
			report.Events++
			continue
		}

		level, raw, ok := ev.level.extract(line)
		if !ok {
			absent(ev.level, raw, "unreadable event level")
		}
		series = append(series, models.Sample{
			Time:    at(base, hour, minute),
			Level:   level,
			Missing: !ok,
			IsHigh:  tag == extremumHigh,
			IsLow:   tag == extremumLow,
		})
		report.Events++
	}

	for h, f := range hourlyFields {
		level, raw, ok := f.extract(line)
		if !ok {
			absent(f, raw, "unreadable hourly level")
		}
		series = append(series, models.Sample{
			Time:    at(base, h, 0),
			Level:   level,
			Missing: !ok,
			IsHigh:  tags[h] == extremumHigh,
			IsLow:   tags[h] == extremumLow,
		})
	}

	report.Days++
	return series
}

// baseDate reconstructs midnight of the record's calendar day
func (d *Decoder) baseDate(line string, absent func(field, string, string)) (time.Time, bool) {
	yy, raw, ok := yearField.extract(line)
	if !ok {
		absent(yearField, raw, "unreadable year")
		return time.Time{}, false
	}
	mm, raw, ok := monthField.extract(line)
	if !ok {
		absent(monthField, raw, "unreadable month")
		return time.Time{}, false
	}
	dd, raw, ok := dayField.extract(line)
	if !ok {
		absent(dayField, raw, "unreadable day")
		return time.Time{}, false
	}

	year := yearAnchor + yy
	// time.Date would roll Feb 30 over into March
	if last := time.Date(year, time.Month(mm)+1, 0, 0, 0, 0, 0, time.UTC).Day(); dd > last {
		absent(dayField, raw, fmt.Sprintf("day %d past end of month", dd))
		return time.Time{}, false
	}
	return time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, d.loc), true
}

// at returns hour:minute on the day of base, in base's location
func at(base time.Time, hour, minute int) time.Time {
	return time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location())
}
