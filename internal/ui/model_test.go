package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/ngmaloney/tide-terminal/internal/logging"
	"github.com/ngmaloney/tide-terminal/internal/models"
	"github.com/ngmaloney/tide-terminal/internal/source"
	"github.com/ngmaloney/tide-terminal/internal/tides"
)

var jst = time.FixedZone("JST", 9*60*60)

var tokyo = models.Station{Index: 0, No: "1", ID: "TK", Name: "Tokyo", Lat: "35°39'", Lon: "139°46'"}

type tableSource map[string]string

func (s tableSource) Fetch(_ context.Context, stationID string, year int) (string, error) {
	raw, ok := s[fmt.Sprintf("%s/%d", stationID, year)]
	if !ok {
		return "", source.ErrNotFound
	}
	return raw, nil
}

// record builds a day with a 05:12 high and an 11:00 low
func record(year, month, day int) string {
	var b strings.Builder
	for h := 0; h < 24; h++ {
		fmt.Fprintf(&b, "%3d", 100+h)
	}
	fmt.Fprintf(&b, "%02d%02d%02dTK", year%100, month, day)
	b.WriteString("0512180")
	b.WriteString(strings.Repeat("9999999", 3))
	b.WriteString("1100 20")
	b.WriteString(strings.Repeat("9999999", 3))
	return b.String()
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	src := tableSource{
		"TK/2024": record(2024, 3, 14) + "\n" + record(2024, 3, 15) + "\n" + record(2024, 3, 16) + "\n",
		"TK/2023": record(2023, 12, 31) + "\n",
	}
	svc := tides.NewService(src, jst, tides.WithLogger(logging.Discard()))
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 15, 8, 30, 0, 0, jst))

	return NewModel(Deps{Tides: svc, Clock: clock, Logger: logging.Discard()}, Options{})
}

// update applies msg and returns the new model and command
func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// loaded returns a model displaying station after running its load command
func loaded(t *testing.T, m Model, station models.Station) Model {
	t.Helper()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, stationsListedMsg{stations: []models.Station{station}})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateLoading {
		t.Fatalf("after Enter, state = %v, want StateLoading", m.state)
	}
	if cmd == nil {
		t.Fatal("expected a load command")
	}
	m, _ = update(t, m, cmd())
	if m.state != StateDisplay {
		t.Fatalf("after load, state = %v, want StateDisplay (err %v)", m.state, m.err)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel(t *testing.T) {
	m := newTestModel(t)

	if m.state != StateStationList {
		t.Errorf("NewModel() state = %v, want StateStationList", m.state)
	}
	if !m.toggles.High || !m.toggles.Low || !m.toggles.Daylight {
		t.Errorf("NewModel() toggles = %+v, want all on", m.toggles)
	}
	if got := m.rng.Start.Format(time.DateOnly); got != "2024-03-15" {
		t.Errorf("NewModel() range start = %s, want today 2024-03-15", got)
	}
	if m.year != 2024 {
		t.Errorf("NewModel() year = %d, want 2024", m.year)
	}
	if m.Init() != nil {
		t.Error("Init() without a database should return nil")
	}
}

func TestNewModel_Options(t *testing.T) {
	m := NewModel(Deps{}, Options{
		StationID: "TK",
		Start:     time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC),
	})

	if m.initialStation != "TK" {
		t.Errorf("initialStation = %q, want TK", m.initialStation)
	}
	if m.rng.End.IsZero() {
		t.Error("range end should be set")
	}
	if m.loc != time.UTC {
		t.Errorf("loc = %v, want UTC without a tide service", m.loc)
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	if m.width != 120 {
		t.Errorf("After WindowSizeMsg, width = %d, want 120", m.width)
	}
	if m.height != 40 {
		t.Errorf("After WindowSizeMsg, height = %d, want 40", m.height)
	}
}

func TestModel_Update_ErrorMsg(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, errMsg{err: tea.ErrProgramKilled})

	if m.state != StateError {
		t.Errorf("After errMsg, state = %v, want StateError", m.state)
	}
	if m.err == nil {
		t.Error("After errMsg, err should not be nil")
	}

	// Any key returns to the station list
	m, _ = update(t, m, key("x"))
	if m.state != StateStationList || m.err != nil {
		t.Errorf("After key in error state, state = %v err = %v", m.state, m.err)
	}
}

func TestModel_CtrlC_Quits(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Error("Expected Ctrl+C to return quit command")
	}
}

func TestModel_ProvisioningMessages(t *testing.T) {
	m := newTestModel(t)
	progress := make(chan string, 1)
	result := make(chan error, 1)

	m, cmd := update(t, m, provisioningStartedMsg{progressChan: progress, resultChan: result})
	if m.state != StateProvisioning || cmd == nil {
		t.Fatalf("state = %v, cmd nil = %v", m.state, cmd == nil)
	}

	m, _ = update(t, m, provisionStatusMsg("Parsing station catalog..."))
	if m.provisionStatus != "Parsing station catalog..." {
		t.Errorf("provisionStatus = %q", m.provisionStatus)
	}

	m, _ = update(t, m, provisionResultMsg{err: errors.New("boom")})
	if m.state != StateError {
		t.Errorf("After failed import, state = %v, want StateError", m.state)
	}
}

func TestModel_EmptyCatalog(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, stationsListedMsg{})
	if m.state != StateError {
		t.Errorf("empty catalog state = %v, want StateError", m.state)
	}
}

func TestModel_SelectStationLoadsSeries(t *testing.T) {
	m := loaded(t, newTestModel(t), tokyo)

	if m.station == nil || m.station.ID != "TK" {
		t.Fatalf("station = %+v, want TK", m.station)
	}
	if len(m.series) != 3*25 {
		t.Errorf("series length = %d, want 75", len(m.series))
	}
	if len(m.view.Visible) != 25 {
		t.Errorf("visible samples = %d, want one day of 25", len(m.view.Visible))
	}
	if got := len(m.view.VisibleMarkers()); got != 2 {
		t.Errorf("visible markers = %d, want 2", got)
	}
	if got := len(m.view.VisibleDaylight()); got != 1 {
		t.Errorf("visible daylight intervals = %d, want 1", got)
	}

	out := m.View()
	for _, want := range []string{"Tokyo (TK)", "05:12", "11:00", "Daylight"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModel_DisplayNavigation(t *testing.T) {
	m := loaded(t, newTestModel(t), tokyo)

	m, _ = update(t, m, key("right"))
	if got := m.view.Window.Start.Format(time.DateOnly); got != "2024-03-16" {
		t.Errorf("after right, start = %s, want 2024-03-16", got)
	}

	m, _ = update(t, m, key("left"))
	m, _ = update(t, m, key("left"))
	if got := m.view.Window.Start.Format(time.DateOnly); got != "2024-03-14" {
		t.Errorf("after left twice, start = %s, want 2024-03-14", got)
	}

	m, _ = update(t, m, key("up"))
	m, _ = update(t, m, key("up"))
	if m.view.Window.Days() != 3 {
		t.Errorf("after extending twice, days = %d, want 3", m.view.Window.Days())
	}
	if len(m.view.Visible) != 75 {
		t.Errorf("visible = %d, want 75", len(m.view.Visible))
	}

	m, _ = update(t, m, key("down"))
	if m.view.Window.Days() != 2 {
		t.Errorf("after shrinking, days = %d, want 2", m.view.Window.Days())
	}

	m, _ = update(t, m, key("t"))
	if got := m.view.Window.Start.Format(time.DateOnly); got != "2024-03-15" {
		t.Errorf("after today, start = %s, want 2024-03-15", got)
	}
	if m.view.Window.Days() != 2 {
		t.Errorf("today should keep the range length, days = %d", m.view.Window.Days())
	}
}

func TestModel_ShrinkStopsAtOneDay(t *testing.T) {
	m := loaded(t, newTestModel(t), tokyo)

	m, _ = update(t, m, key("down"))
	if m.view.Window.Days() != 1 {
		t.Errorf("days = %d, want 1", m.view.Window.Days())
	}
}

func TestModel_Toggles(t *testing.T) {
	m := loaded(t, newTestModel(t), tokyo)

	m, _ = update(t, m, key("h"))
	marks := m.view.VisibleMarkers()
	if len(marks) != 1 || marks[0].Color() != "blue" {
		t.Errorf("with highs hidden, marks = %+v", marks)
	}

	m, _ = update(t, m, key("l"))
	if len(m.view.Markers) != 0 {
		t.Errorf("with both hidden, markers = %d, want 0", len(m.view.Markers))
	}

	m, _ = update(t, m, key("d"))
	if m.view.Daylight != nil {
		t.Error("daylight should be empty when toggled off")
	}
	if !strings.Contains(m.View(), "Daylight overlay hidden") {
		t.Error("View() should say the daylight overlay is hidden")
	}
}

func TestModel_InvalidCoordinatesDisableDaylight(t *testing.T) {
	broken := tokyo
	broken.Lat = "north"

	m := loaded(t, newTestModel(t), broken)

	if m.toggles.Daylight {
		t.Error("daylight toggle should be switched off")
	}
	if m.notice == "" {
		t.Error("expected a notice about the daylight overlay")
	}
	if len(m.view.Visible) == 0 {
		t.Error("series should still be shown")
	}
}

func TestModel_CrossingYearReloads(t *testing.T) {
	m := newTestModel(t)
	m.rng.Start = time.Date(2024, 1, 1, 0, 0, 0, 0, jst)
	m = loaded(t, m, tokyo)

	m, cmd := update(t, m, key("left"))
	if m.state != StateLoading {
		t.Fatalf("state = %v, want StateLoading", m.state)
	}
	if m.year != 2023 {
		t.Errorf("year = %d, want 2023", m.year)
	}

	m, _ = update(t, m, cmd())
	if m.state != StateDisplay {
		t.Fatalf("state = %v, want StateDisplay (err %v)", m.state, m.err)
	}
	if len(m.view.Visible) != 25 {
		t.Errorf("visible = %d, want 25", len(m.view.Visible))
	}
}

func TestModel_StaleSeriesIgnored(t *testing.T) {
	m := loaded(t, newTestModel(t), tokyo)
	before := len(m.series)

	m, _ = update(t, m, seriesLoadedMsg{stationID: "OS", year: 2024, result: &tides.Result{}})
	if len(m.series) != before || m.state != StateDisplay {
		t.Error("a result for another station should be ignored")
	}
}

func TestModel_MissingTableIsError(t *testing.T) {
	m := newTestModel(t)
	m.rng.Start = time.Date(2030, 6, 1, 0, 0, 0, 0, jst)
	m.year = 2030
	m, _ = update(t, m, stationsListedMsg{stations: []models.Station{tokyo}})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())

	if m.state != StateError {
		t.Fatalf("state = %v, want StateError", m.state)
	}
	if !errors.Is(m.err, source.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", m.err)
	}
}

func TestModel_BackToStations(t *testing.T) {
	m := loaded(t, newTestModel(t), tokyo)

	m, _ = update(t, m, key("s"))
	if m.state != StateStationList {
		t.Errorf("after s, state = %v, want StateStationList", m.state)
	}
	if !strings.Contains(m.View(), "Select a Tide Station") {
		t.Error("View() should show the station list")
	}
}
