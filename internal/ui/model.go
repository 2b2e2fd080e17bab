package ui

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/ngmaloney/tide-terminal/internal/models"
	"github.com/ngmaloney/tide-terminal/internal/stations"
	"github.com/ngmaloney/tide-terminal/internal/tides"
	"github.com/ngmaloney/tide-terminal/internal/view"
)

// AppState represents the current state of the application
type AppState int

const (
	StateStationList  AppState = iota // Choose a tide station
	StateLoading                      // Loading the station's yearly series
	StateDisplay                      // Chart and overlays for the selected range
	StateProvisioning                 // Initial station catalog import
	StateError                        // Error state
)

// maxRangeDays bounds how far the range can be extended
const maxRangeDays = 14

// Deps are the services the model talks to
type Deps struct {
	DB      *sql.DB
	Catalog string // station catalog file path or URL
	Tides   *tides.Service
	Clock   clockwork.Clock
	Logger  *log.Logger
}

// Options preselect a station and date range
type Options struct {
	StationID string
	Start     time.Time // zero means today
	End       time.Time // zero means the start day
}

// Model represents the application's state
type Model struct {
	state  AppState
	width  int
	height int
	err    error
	notice string

	db      *sql.DB
	catalog string
	repo    *stations.Repository
	tides   *tides.Service
	clock   clockwork.Clock
	logger  *log.Logger
	loc     *time.Location

	// Station selection
	initialStation string
	stations       []models.Station
	stationList    list.Model
	station        *models.Station

	// Data
	year    int
	series  models.Series
	cached  bool
	rng     view.Range
	toggles view.Toggles
	view    *view.View

	// Provisioning
	spinner           spinner.Model
	provisionStatus   string
	provisionChannels *provisioningStartedMsg
}

// NewModel creates a new application model
func NewModel(deps Deps, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	loc := time.UTC
	if deps.Tides != nil {
		loc = deps.Tides.Location()
	}

	m := Model{
		state:          StateStationList,
		db:             deps.DB,
		catalog:        deps.Catalog,
		tides:          deps.Tides,
		clock:          clock,
		logger:         logger,
		loc:            loc,
		initialStation: opts.StationID,
		toggles:        view.Toggles{High: true, Low: true, Daylight: true},
		spinner:        s,
	}
	if deps.DB != nil {
		m.repo = stations.NewRepository(deps.DB)
	}

	start := opts.Start
	if start.IsZero() {
		start = clock.Now()
	}
	m.rng = view.Range{Start: start.In(loc)}
	if !opts.End.IsZero() {
		m.rng.End = opts.End.In(loc)
	}
	m.year = m.rng.Start.Year()
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	if m.db == nil {
		return nil
	}

	needed, err := stations.NeedsProvisioning(m.db)
	if err != nil {
		return func() tea.Msg { return errMsg{err: err} }
	}
	if needed {
		return tea.Batch(m.spinner.Tick, startProvisioning(m.db, m.catalog))
	}
	return m.afterProvisioning()
}

// afterProvisioning opens the preselected station or the station list
func (m Model) afterProvisioning() tea.Cmd {
	if m.initialStation != "" {
		return selectStation(m.repo, m.initialStation)
	}
	return listStations(m.repo)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Handle window size
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		if m.state == StateStationList && m.stations != nil {
			m.stationList.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case errMsg:
		m.err = msg.err
		m.state = StateError
		return m, nil

	case provisioningStartedMsg:
		m.state = StateProvisioning
		m.provisionStatus = "Starting station catalog import..."
		m.provisionChannels = &msg
		return m, tea.Batch(
			waitForProvisionStatus(msg.progressChan),
			waitForProvisionResult(msg.resultChan),
		)

	case provisionStatusMsg:
		m.provisionStatus = string(msg)
		if m.provisionChannels != nil {
			return m, waitForProvisionStatus(m.provisionChannels.progressChan)
		}
		return m, nil

	case provisionResultMsg:
		m.provisionChannels = nil
		if msg.err != nil {
			m.err = fmt.Errorf("station import failed: %w", msg.err)
			m.state = StateError
			return m, nil
		}
		m.logger.Info("station catalog imported")
		m.state = StateStationList
		return m, m.afterProvisioning()

	case stationsListedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("listing stations failed: %w", msg.err)
			m.state = StateError
			return m, nil
		}
		if len(msg.stations) == 0 {
			m.err = errors.New("the station catalog is empty")
			m.state = StateError
			return m, nil
		}
		m.stations = msg.stations
		m.stationList = createStationList(msg.stations, m.width-4, m.height-6)
		m.state = StateStationList
		return m, nil

	case stationSelectedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("station %q: %w", m.initialStation, msg.err)
			m.state = StateError
			return m, nil
		}
		return m.selectStation(msg.station)

	case seriesLoadedMsg:
		if m.station == nil || msg.stationID != m.station.ID || msg.year != m.year {
			return m, nil // stale
		}
		if msg.err != nil {
			m.err = fmt.Errorf("loading tides for %s %d: %w", msg.stationID, msg.year, msg.err)
			m.state = StateError
			return m, nil
		}
		m.series = msg.result.Series
		m.cached = msg.result.Cached
		m.state = StateDisplay
		m.rebuild()
		return m, nil
	}

	// Handle keyboard input
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// q quits unless it is being typed into the list filter
		if keyMsg.String() == "q" && !(m.state == StateStationList && m.filtering()) {
			return m, tea.Quit
		}

		switch m.state {
		case StateStationList:
			return m.handleStationList(msg)

		case StateDisplay:
			return m.handleDisplay(keyMsg)

		case StateError:
			// Any key returns to the station list
			m.err = nil
			m.state = StateStationList
			if m.stations == nil && m.repo != nil {
				return m, listStations(m.repo)
			}
			return m, nil
		}
	}

	switch m.state {
	case StateProvisioning:
		m.spinner, cmd = m.spinner.Update(msg)
	case StateStationList:
		if m.stations != nil {
			m.stationList, cmd = m.stationList.Update(msg)
		}
	}

	return m, cmd
}

func (m Model) filtering() bool {
	return m.stations != nil && m.stationList.FilterState() == list.Filtering
}

// handleStationList handles keyboard input in the station list
func (m Model) handleStationList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.stations == nil {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter && !m.filtering() {
		if item, ok := m.stationList.SelectedItem().(stationItem); ok {
			station := item.station
			return m.selectStation(&station)
		}
	}

	m.stationList, cmd = m.stationList.Update(msg)
	return m, cmd
}

// selectStation starts loading the series of station for the current year
func (m Model) selectStation(station *models.Station) (tea.Model, tea.Cmd) {
	m.station = station
	m.series = nil
	m.view = nil
	m.notice = ""
	m.toggles.Daylight = true
	m.year = m.rng.Start.Year()
	m.state = StateLoading
	if m.tides == nil {
		m.err = errors.New("no tide service configured")
		m.state = StateError
		return m, nil
	}
	m.logger.Info("loading station", "station", station.ID, "year", m.year)
	return m, loadSeries(m.tides, station.ID, m.year)
}

// handleDisplay handles keyboard input in the display state
func (m Model) handleDisplay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view == nil {
		return m, nil
	}
	w := m.view.Window

	switch msg.String() {
	case "left":
		m.setWindow(w.Shift(-1))
	case "right":
		m.setWindow(w.Shift(1))
	case "up", "+":
		if w.Days() < maxRangeDays {
			m.rng.End = w.End.AddDate(0, 0, 1)
		}
	case "down", "-":
		if w.Days() > 1 {
			m.rng.End = w.End.AddDate(0, 0, -1)
		}
	case "t":
		now := m.clock.Now().In(m.loc)
		m.setWindow(view.Window{Start: now, End: now.AddDate(0, 0, w.Days()-1)})
	case "h":
		m.toggles.High = !m.toggles.High
	case "l":
		m.toggles.Low = !m.toggles.Low
	case "d":
		m.toggles.Daylight = !m.toggles.Daylight
		m.notice = ""
	case "r":
		m.state = StateLoading
		return m, reloadSeries(m.tides, m.station.ID, m.year)
	case "s", "esc":
		m.state = StateStationList
		m.view = nil
		if m.stations == nil && m.repo != nil {
			return m, listStations(m.repo)
		}
		return m, nil
	default:
		return m, nil
	}

	if y := m.rng.Start.Year(); y != m.year {
		m.year = y
		m.state = StateLoading
		return m, loadSeries(m.tides, m.station.ID, y)
	}
	m.rebuild()
	return m, nil
}

func (m *Model) setWindow(w view.Window) {
	m.rng = view.Range{Start: w.Start, End: w.End}
}

// rebuild derives the view from the series and current selection. When the
// station coordinates cannot be read, the daylight overlay is switched off.
func (m *Model) rebuild() {
	req := view.Request{
		Range:    m.rng,
		Toggles:  m.toggles,
		Station:  m.station,
		Location: m.loc,
	}

	v, err := view.Build(m.series, req)
	if errors.Is(err, models.ErrInvalidCoordinate) {
		m.logger.Warn("daylight overlay disabled", "station", m.station.ID, "err", err)
		m.toggles.Daylight = false
		m.notice = "Daylight unavailable: station coordinates could not be read"
		req.Toggles = m.toggles
		v, err = view.Build(m.series, req)
	}
	if err != nil {
		m.err = err
		m.state = StateError
		return
	}
	m.view = v
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.state {
	case StateProvisioning:
		return m.viewProvisioning()
	case StateStationList:
		return m.viewStationList()
	case StateLoading:
		return m.viewLoading()
	case StateDisplay:
		return m.viewDisplay()
	case StateError:
		return m.viewError()
	}

	return ""
}

// viewProvisioning renders the initial setup screen
func (m Model) viewProvisioning() string {
	title := titleStyle.Render("Tide Terminal Setup")
	status := mutedStyle.Render(m.provisionStatus)
	info := helpStyle.Render("One-time setup: importing the tide station catalog...")

	return lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		title,
		"",
		fmt.Sprintf("%s %s", m.spinner.View(), status),
		"",
		info,
	)
}

// viewError renders the error view
func (m Model) viewError() string {
	title := errorStyle.Render("✗ Error")

	errorMsg := "An unknown error occurred"
	if m.err != nil {
		errorMsg = m.err.Error()
	}

	help := helpStyle.Render("Press any key to return to the station list • Q: Quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, "", errorMsg, "", help)
}

// viewStationList renders the station selection list
func (m Model) viewStationList() string {
	if m.stations == nil {
		return mutedStyle.Render("Reading station catalog...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.stationList.View())
}

// viewLoading renders the loading view
func (m Model) viewLoading() string {
	s := "Loading tide table"
	if m.station != nil {
		s += fmt.Sprintf(" for %s (%s) %d", m.station.Name, m.station.ID, m.year)
	}
	return s + "..."
}

// viewDisplay renders the chart above the tide and daylight panes
func (m Model) viewDisplay() string {
	if m.station == nil || m.view == nil {
		return "No station selected"
	}

	var sections []string

	w := m.view.Window
	span := w.Start.Format("Mon Jan 2 2006")
	if w.Days() > 1 {
		span += " - " + w.End.Format("Mon Jan 2 2006")
	}
	header := headerStyle.Render(fmt.Sprintf("%s (%s)  %s", m.station.Name, m.station.ID, span))
	sections = append(sections, header)

	source := "table"
	if m.cached {
		source = "cache"
	}
	sections = append(sections, mutedStyle.Render(fmt.Sprintf(" %s %s • %d samples from %s",
		m.station.Lat, m.station.Lon, len(m.view.Visible), source)))
	if m.notice != "" {
		sections = append(sections, errorStyle.Render(" "+m.notice))
	}

	sections = append(sections, m.renderChartPane(m.width))

	half := m.width/2 - 1
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderTidePane(half),
		m.renderDaylightPane(half),
	))

	help := helpStyle.Render(fmt.Sprintf(
		"←/→: Day • ↑/↓: Range • T: Today • H: High %s • L: Low %s • D: Daylight %s • R: Reload • S: Stations • Q: Quit",
		onOff(m.toggles.High), onOff(m.toggles.Low), onOff(m.toggles.Daylight)))
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
