package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/ngmaloney/tide-terminal/internal/models"
)

// stationItem wraps a Station for use in a list
type stationItem struct {
	station models.Station
}

// FilterValue implements list.Item
func (s stationItem) FilterValue() string {
	return s.station.ID + " " + s.station.Name
}

// Title implements list.DefaultItem
func (s stationItem) Title() string {
	return fmt.Sprintf("%s - %s", s.station.ID, s.station.Name)
}

// Description implements list.DefaultItem
func (s stationItem) Description() string {
	return fmt.Sprintf("%s  %s", s.station.Lat, s.station.Lon)
}

// createStationList creates a list.Model from the catalog
func createStationList(stations []models.Station, width, height int) list.Model {
	items := make([]list.Item, len(stations))
	for i, station := range stations {
		items[i] = stationItem{station: station}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Select a Tide Station"
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)

	return l
}
