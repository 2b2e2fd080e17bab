package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCoordinate is returned when coordinate text is not in D°M' notation
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Station is a tide observation point from the station catalog.
// Lat and Lon keep the catalog notation, e.g. "35°39'".
type Station struct {
	Index int    `json:"index"`
	No    string `json:"no"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Lat   string `json:"lat"`
	Lon   string `json:"lon"`
}

// Coordinates returns the station position in decimal degrees
func (s Station) Coordinates() (lat, lon float64, err error) {
	lat, err = ParseCoordinate(s.Lat)
	if err != nil {
		return 0, 0, fmt.Errorf("station %s latitude: %w", s.ID, err)
	}
	lon, err = ParseCoordinate(s.Lon)
	if err != nil {
		return 0, 0, fmt.Errorf("station %s longitude: %w", s.ID, err)
	}
	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("station %s latitude %.4f out of range: %w", s.ID, lat, ErrInvalidCoordinate)
	}
	if lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("station %s longitude %.4f out of range: %w", s.ID, lon, ErrInvalidCoordinate)
	}
	return lat, lon, nil
}

var (
	degreeMarks = []string{"°", "º"}
	minuteMarks = []string{"'", "′", "’"}
)

// ParseCoordinate converts "<degrees>°<minutes>'..." to decimal degrees.
// Anything after the minute mark is ignored except a trailing S or W,
// which negates the result. Seconds are not used.
func ParseCoordinate(text string) (float64, error) {
	s := strings.TrimSpace(text)

	degIdx, degLen := indexAny(s, degreeMarks)
	if degIdx < 0 {
		return 0, fmt.Errorf("%q: missing degree mark: %w", text, ErrInvalidCoordinate)
	}
	rest := s[degIdx+degLen:]
	minIdx, minLen := indexAny(rest, minuteMarks)
	if minIdx < 0 {
		return 0, fmt.Errorf("%q: missing minute mark: %w", text, ErrInvalidCoordinate)
	}

	degText := strings.TrimSpace(s[:degIdx])
	degrees, err := strconv.ParseFloat(degText, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: degrees: %w", text, ErrInvalidCoordinate)
	}
	minutes, err := strconv.ParseFloat(strings.TrimSpace(rest[:minIdx]), 64)
	if err != nil || minutes < 0 || minutes >= 60 {
		return 0, fmt.Errorf("%q: minutes: %w", text, ErrInvalidCoordinate)
	}

	negative := strings.HasPrefix(degText, "-")
	suffix := strings.ToUpper(strings.TrimSpace(rest[minIdx+minLen:]))
	if strings.HasSuffix(suffix, "S") || strings.HasSuffix(suffix, "W") {
		negative = !negative
	}

	value := abs(degrees) + minutes/60
	if negative {
		value = -value
	}
	return value, nil
}

func indexAny(s string, marks []string) (int, int) {
	for _, m := range marks {
		if i := strings.Index(s, m); i >= 0 {
			return i, len(m)
		}
	}
	return -1, 0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
