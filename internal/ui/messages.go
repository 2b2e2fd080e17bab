package ui

import (
	"context"
	"database/sql"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/tide-terminal/internal/models"
	"github.com/ngmaloney/tide-terminal/internal/stations"
	"github.com/ngmaloney/tide-terminal/internal/tides"
)

// Message types for async operations

// provisioningStartedMsg carries the channels of a running catalog import
type provisioningStartedMsg struct {
	progressChan <-chan string
	resultChan   <-chan error
}

// provisionStatusMsg is one progress line from the import
type provisionStatusMsg string

// provisionResultMsg is sent when the import finishes
type provisionResultMsg struct {
	err error
}

// stationsListedMsg is sent when the station catalog has been read
type stationsListedMsg struct {
	stations []models.Station
	err      error
}

// stationSelectedMsg is sent when a station given by ID has been looked up
type stationSelectedMsg struct {
	station *models.Station
	err     error
}

// seriesLoadedMsg is sent when a station's yearly series has been loaded
type seriesLoadedMsg struct {
	stationID string
	year      int
	result    *tides.Result
	err       error
}

// errMsg is a message type for errors
type errMsg struct {
	err error
}

// startProvisioning imports the station catalog in the background
func startProvisioning(db *sql.DB, catalog string) tea.Cmd {
	return func() tea.Msg {
		progress := make(chan string, 8)
		result := make(chan error, 1)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			err := stations.Provision(ctx, db, catalog, progress)
			close(progress)
			result <- err
		}()

		return provisioningStartedMsg{progressChan: progress, resultChan: result}
	}
}

// waitForProvisionStatus relays the next progress line
func waitForProvisionStatus(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		status, ok := <-ch
		if !ok {
			return nil
		}
		return provisionStatusMsg(status)
	}
}

// waitForProvisionResult waits for the import to finish
func waitForProvisionResult(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		return provisionResultMsg{err: <-ch}
	}
}

// listStations reads the station catalog
func listStations(repo *stations.Repository) tea.Cmd {
	return func() tea.Msg {
		list, err := repo.ListStations()
		return stationsListedMsg{stations: list, err: err}
	}
}

// selectStation looks up a station by ID
func selectStation(repo *stations.Repository, stationID string) tea.Cmd {
	return func() tea.Msg {
		station, err := repo.GetStationByID(stationID)
		return stationSelectedMsg{station: station, err: err}
	}
}

// loadSeries loads a station's series for the year
func loadSeries(svc *tides.Service, stationID string, year int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		result, err := svc.Load(ctx, stationID, year)
		return seriesLoadedMsg{stationID: stationID, year: year, result: result, err: err}
	}
}

// reloadSeries drops the cached series and loads it again
func reloadSeries(svc *tides.Service, stationID string, year int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if err := svc.Invalidate(ctx, stationID, year); err != nil {
			return seriesLoadedMsg{stationID: stationID, year: year, err: err}
		}
		result, err := svc.Load(ctx, stationID, year)
		return seriesLoadedMsg{stationID: stationID, year: year, result: result, err: err}
	}
}
