package view

import (
	"time"

	"github.com/ngmaloney/tide-terminal/internal/models"
)

// Request carries everything Build needs; it replaces any ambient
// "current selection" state.
type Request struct {
	Range   Range
	Toggles Toggles

	// Station is required for the daylight overlay only
	Station *models.Station

	// Year of the daylight overlay; zero means the window start's year
	Year int

	// Location of the daylight times; nil means the window start's location
	Location *time.Location
}

// View is the renderer's input: the samples to plot, the marks to pin and
// the daylight bands to shade.
type View struct {
	Window   Window
	Visible  models.Series
	Markers  []Mark
	Daylight []models.DaylightInterval
}

// Build resolves the request window and derives the visible subset, the
// markers (over the full series) and, when enabled with a station, the
// daylight overlay for a whole calendar year.
func Build(series models.Series, req Request) (*View, error) {
	w, err := ResolveWindow(req.Range)
	if err != nil {
		return nil, err
	}

	v := &View{
		Window:  w,
		Visible: Visible(series, w),
		Markers: Markers(series, req.Toggles),
	}

	if req.Toggles.Daylight && req.Station != nil {
		year := req.Year
		if year == 0 {
			year = w.Start.Year()
		}
		loc := req.Location
		if loc == nil {
			loc = w.Start.Location()
		}
		v.Daylight, err = Daylight(*req.Station, year, loc)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

// VisibleMarkers returns the markers inside the view window
func (v *View) VisibleMarkers() []Mark {
	var marks []Mark
	for _, m := range v.Markers {
		if v.Window.Contains(m.Time) {
			marks = append(marks, m)
		}
	}
	return marks
}

// VisibleDaylight returns the daylight intervals that overlap the window
func (v *View) VisibleDaylight() []models.DaylightInterval {
	var out []models.DaylightInterval
	for _, d := range v.Daylight {
		if d.Sunset.Before(v.Window.Start) || d.Sunrise.After(v.Window.End) {
			continue
		}
		out = append(out, d)
	}
	return out
}
