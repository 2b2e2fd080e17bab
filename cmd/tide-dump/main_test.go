package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/tide-terminal/internal/logging"
)

// record builds a day with a 05:00 high and a 13:27 low
func record(dd int) string {
	var b strings.Builder
	for h := 0; h < 24; h++ {
		fmt.Fprintf(&b, "%3d", 100)
	}
	fmt.Fprintf(&b, "2403%02dTK", dd)
	b.WriteString("0500150")
	b.WriteString(strings.Repeat("9999999", 3))
	b.WriteString("1327 20")
	b.WriteString(strings.Repeat("9999999", 3))
	return b.String()
}

func writeTable(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TIDE_DATA_DIR", dir)
	t.Setenv("TIDE_TIMEZONE", "Asia/Tokyo")
	t.Setenv("LOG_LEVEL", "error")

	path := filepath.Join(dir, "TK.txt")
	table := record(15) + "\n" + record(16) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(table), 0644))
	return dir, path
}

func TestRun_File(t *testing.T) {
	_, path := writeTable(t)
	var out bytes.Buffer

	err := run([]string{"-file", path, "-date", "2024-03-15", "-lat", "35°39'", "-lon", "139°46'"}, &out, logging.Discard())
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "window 2024-03-15 00:00:00 .. 2024-03-15 23:59:59 (1 days, 25 samples)")
	assert.Contains(t, got, "marks (2)")
	assert.Contains(t, got, "2024-03-15 05:00 high  100 red")
	assert.Contains(t, got, "2024-03-15 13:27 low    20 blue")
	assert.Contains(t, got, "daylight (1)")
}

func TestRun_MissingEventLevel(t *testing.T) {
	dir, _ := writeTable(t)
	line := strings.Replace(record(15), "0500150", "0915???", 1)
	path := filepath.Join(dir, "TK-missing.txt")
	require.NoError(t, os.WriteFile(path, []byte(line+"\n"), 0644))
	var out bytes.Buffer

	err := run([]string{"-file", path, "-date", "2024-03-15", "-samples"}, &out, logging.Discard())
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "2024-03-15 09:15 high    - red")
	assert.Contains(t, got, "2024-03-15 09:15    - H")
}

func TestRun_FileRangeAndToggles(t *testing.T) {
	_, path := writeTable(t)
	var out bytes.Buffer

	err := run([]string{"-file", path, "-date", "2024-03-15", "-end", "2024-03-16", "-no-high", "-samples"}, &out, logging.Discard())
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "(2 days, 50 samples)")
	assert.Contains(t, got, "marks (2)")
	assert.NotContains(t, got, " high ")
	assert.Contains(t, got, "daylight (0)")
	assert.Contains(t, got, "2024-03-15 13:27   20 L")
}

func TestRun_BadCoordinatesSkipDaylight(t *testing.T) {
	_, path := writeTable(t)
	var out bytes.Buffer

	err := run([]string{"-file", path, "-date", "2024-03-15", "-lat", "north", "-lon", "139°46'"}, &out, logging.Discard())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "daylight (0)")
}

func TestRun_Errors(t *testing.T) {
	_, path := writeTable(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"-date", "2024-03-15"}},
		{"both inputs", []string{"-file", path, "-station", "TK", "-date", "2024-03-15"}},
		{"no date", []string{"-file", path}},
		{"bad date", []string{"-file", path, "-date", "15/03/2024"}},
		{"end before start", []string{"-file", path, "-date", "2024-03-16", "-end", "2024-03-15"}},
		{"missing file", []string{"-file", path + ".gone", "-date", "2024-03-15"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Error(t, run(tt.args, &out, logging.Discard()))
		})
	}
}

func TestRun_Station(t *testing.T) {
	dir, _ := writeTable(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2024"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024", "TK.txt"), []byte(record(15)+"\n"), 0644))
	catalog := `[{"index":0,"no":"1","id":"TK","name":"Tokyo","lat":"35°39'","lon":"139°46'"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "station.json"), []byte(catalog), 0644))

	var out bytes.Buffer
	err := run([]string{"-station", "TK", "-date", "2024-03-15"}, &out, logging.Discard())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "(1 days, 25 samples)")
	assert.Contains(t, out.String(), "daylight (1)")
}
