package view

import (
	"fmt"
	"time"

	"github.com/nathan-osman/go-sunrise"

	"github.com/ngmaloney/tide-terminal/internal/models"
)

// Daylight returns one [sunrise, sunset) interval per calendar day of year
// at the station, starting Jan 1, with times in loc. Days on which the sun
// neither rises nor sets get an empty interval at local midnight.
func Daylight(station models.Station, year int, loc *time.Location) ([]models.DaylightInterval, error) {
	lat, lon, err := station.Coordinates()
	if err != nil {
		return nil, fmt.Errorf("daylight overlay: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	first := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	next := first.AddDate(1, 0, 0)

	intervals := make([]models.DaylightInterval, 0, 366)
	for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
		rise, set := sunrise.SunriseSunset(lat, lon, day.Year(), day.Month(), day.Day())
		if rise.IsZero() || set.IsZero() {
			intervals = append(intervals, models.DaylightInterval{Sunrise: day, Sunset: day})
			continue
		}
		intervals = append(intervals, models.DaylightInterval{
			Sunrise: rise.In(loc),
			Sunset:  set.In(loc),
		})
	}
	return intervals, nil
}

// DaylightOn returns the interval for the calendar day of t, if present
func DaylightOn(intervals []models.DaylightInterval, t time.Time) (models.DaylightInterval, bool) {
	for _, d := range intervals {
		ref := d.Sunrise.In(t.Location())
		if ref.Year() == t.Year() && ref.YearDay() == t.YearDay() {
			return d, true
		}
	}
	return models.DaylightInterval{}, false
}
