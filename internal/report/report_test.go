package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/rls-engine/internal/engine"
)

func sampleLog() engine.SimulationLog {
	return engine.SimulationLog{
		Meta:       engine.SimulationMeta{SimulationID: "report-test", Days: 3},
		HaltReason: engine.HaltNoDemand,
		EndTime:    2900,
		Records: []engine.Record{
			{Kind: "load", Begin: 0, End: 420, TrainID: "A", TerminalID: "1", Destination: "2", Tons: 1000},
			{Kind: "dispatch", Begin: 420, End: 1620, TrainID: "A", TerminalID: "1", Destination: "2", Tons: 1000},
			{Kind: "arrival", Begin: 1620, End: 1620, TrainID: "A", TerminalID: "2"},
			{Kind: "unload", Begin: 1620, End: 1980, TrainID: "A", TerminalID: "2", Tons: 1000},
		},
		Totals: engine.Totals{
			MovedPerTrain:    map[string]float64{"A": 1000, "B": 0},
			DeliveredPerPair: map[string]map[string]float64{"1": {"2": 1000, "3": 0}},
		},
	}
}

func TestDayClock(t *testing.T) {
	cases := []struct {
		minutes int
		day     int
		clock   string
	}{
		{0, 1, "00h:00m"},
		{59, 1, "00h:59m"},
		{60, 1, "01h:00m"},
		{1439, 1, "23h:59m"},
		{1440, 2, "00h:00m"},
		{2900, 3, "00h:20m"},
	}
	for _, c := range cases {
		day, clock := DayClock(c.minutes)
		assert.Equal(t, c.day, day, c.minutes)
		assert.Equal(t, c.clock, clock, c.minutes)
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "Day 01, 00h:00m", FormatMinutes(0))
	assert.Equal(t, "Day 02, 07h:05m", FormatMinutes(1440+7*60+5))
}

func TestWriteTimetable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTimetable(&buf, sampleLog()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5) // header + four records

	assert.Equal(t, []string{"event", "begin_day", "begin_time", "end_day", "end_time", "train", "terminal", "destination", "tons"}, rows[0])
	assert.Equal(t, []string{"load", "1", "00h:00m", "1", "07h:00m", "A", "1", "2", "1000"}, rows[1])
	assert.Equal(t, []string{"arrival", "2", "03h:00m", "2", "03h:00m", "A", "2", "", "0"}, rows[3])
}

func TestWriteCSVIntoDirectory(t *testing.T) {
	dir := t.TempDir()

	outPath, err := WriteCSV(dir, sampleLog())
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(outPath))
	assert.True(t, strings.HasPrefix(filepath.Base(outPath), "timetable-"))
	assert.Equal(t, ".csv", filepath.Ext(outPath))

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "dispatch")
}

func TestWriteCSVSuffixesTimestamp(t *testing.T) {
	target := filepath.Join(t.TempDir(), "run.csv")

	outPath, err := WriteCSV(target, sampleLog())
	require.NoError(t, err)
	assert.NotEqual(t, target, outPath)
	assert.True(t, strings.HasPrefix(filepath.Base(outPath), "run-"))
	assert.Equal(t, ".csv", filepath.Ext(outPath))

	_, err = os.Stat(outPath)
	assert.NoError(t, err)
}

func TestWriteCSVEmptyPathIsNoop(t *testing.T) {
	outPath, err := WriteCSV("", sampleLog())
	require.NoError(t, err)
	assert.Empty(t, outPath)
}

func TestPrintConsole(t *testing.T) {
	var buf bytes.Buffer
	PrintConsole(&buf, sampleLog())
	out := buf.String()

	assert.Contains(t, out, "Run: report-test")
	assert.Contains(t, out, engine.HaltNoDemand)
	assert.Contains(t, out, "Day 03, 00h:20m")
	assert.Contains(t, out, "Events executed: 4")
	assert.Contains(t, out, "Train A = 1000.0 t")
	assert.Contains(t, out, "1 -> 2 = 1000.0 t")
}
