// Package report renders a finished simulation log as a human-readable
// operations timetable (CSV) and a console summary. The engine only emits
// structured event records; everything here is a replaceable sink.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/cxd309/rls-engine/internal/engine"
)

// DayClock splits a simulated minute count into a 1-based day number and an
// "HHh:MMm" clock string.
func DayClock(minutes int) (int, string) {
	day := minutes/(24*60) + 1
	remaining := minutes - (day-1)*24*60
	hour := remaining / 60
	minute := remaining - hour*60
	return day, fmt.Sprintf("%02dh:%02dm", hour, minute)
}

// FormatMinutes renders a simulated minute count as "Day NN, HHh:MMm".
func FormatMinutes(minutes int) string {
	day, clock := DayClock(minutes)
	return fmt.Sprintf("Day %02d, %s", day, clock)
}

// WriteCSV writes the executed-event timetable to the given path. If the path
// is a directory, a timestamped file is created inside it; otherwise a
// timestamp is suffixed before the extension. Returns the path written.
func WriteCSV(reportPath string, simLog engine.SimulationLog) (string, error) {
	if reportPath == "" {
		return "", nil
	}
	ts := time.Now().Format("20060102-150405")
	outPath := reportPath
	if fi, err := os.Stat(outPath); err == nil && fi.IsDir() {
		outPath = filepath.Join(outPath, fmt.Sprintf("timetable-%s.csv", ts))
	} else {
		ext := filepath.Ext(outPath)
		base := outPath[:len(outPath)-len(ext)]
		outPath = fmt.Sprintf("%s-%s%s", base, ts, ext)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := writeTimetable(f, simLog); err != nil {
		return "", err
	}
	return outPath, nil
}

// writeTimetable writes the CSV rows to w, one per executed event in
// execution order.
func writeTimetable(w io.Writer, simLog engine.SimulationLog) error {
	cw := csv.NewWriter(w)
	header := []string{"event", "begin_day", "begin_time", "end_day", "end_time", "train", "terminal", "destination", "tons"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range simLog.Records {
		beginDay, beginClock := DayClock(rec.Begin)
		endDay, endClock := DayClock(rec.End)
		row := []string{
			rec.Kind,
			strconv.Itoa(beginDay), beginClock,
			strconv.Itoa(endDay), endClock,
			rec.TrainID,
			rec.TerminalID,
			rec.Destination,
			strconv.FormatFloat(rec.Tons, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// PrintConsole writes a human-readable summary of the run to w.
func PrintConsole(w io.Writer, simLog engine.SimulationLog) {
	fmt.Fprintln(w, "=== Simulation Report ===")
	fmt.Fprintf(w, "Run: %s\n", simLog.Meta.SimulationID)
	fmt.Fprintf(w, "Halted: %s at %s\n", simLog.HaltReason, FormatMinutes(simLog.EndTime))
	fmt.Fprintf(w, "Events executed: %d\n", len(simLog.Records))

	fmt.Fprintln(w, "Total volume moved per train:")
	for _, trainID := range sortedKeys(simLog.Totals.MovedPerTrain) {
		fmt.Fprintf(w, "  Train %s = %.1f t\n", trainID, simLog.Totals.MovedPerTrain[trainID])
	}

	fmt.Fprintln(w, "Total volume delivered per pair:")
	for _, origin := range sortedKeys(simLog.Totals.DeliveredPerPair) {
		for _, dest := range sortedKeys(simLog.Totals.DeliveredPerPair[origin]) {
			fmt.Fprintf(w, "  %s -> %s = %.1f t\n", origin, dest, simLog.Totals.DeliveredPerPair[origin][dest])
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
