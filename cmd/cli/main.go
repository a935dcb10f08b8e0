// Command rls-engine reads a SimulationInput (YAML or JSON) from a file or
// stdin, runs the rail logistics simulation, and writes the SimulationLog
// JSON to a file or stdout. A CSV timetable and console summary are optional.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/cxd309/rls-engine/internal/engine"
	"github.com/cxd309/rls-engine/internal/report"
)

func main() {
	app := buildApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "simulation error: %v\n", err)
		os.Exit(1)
	}
}

func buildApp() *cli.App {
	app := cli.NewApp()
	app.Name = "rls-engine"
	app.Usage = "discrete-event rail logistics network simulator"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "input, i",
			Usage:  "simulation input file (.yaml, .yml or .json); stdin JSON when omitted",
			EnvVar: "RLS_INPUT",
		},
		cli.StringFlag{
			Name:  "output, o",
			Usage: "simulation log JSON output path; stdout when omitted",
		},
		cli.StringFlag{
			Name:  "report, r",
			Usage: "CSV timetable output path or directory",
		},
		cli.IntFlag{
			Name:  "days",
			Usage: "override the simulated time horizon in days",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "log every executed event",
		},
		cli.BoolFlag{
			Name:  "quiet, q",
			Usage: "log warnings and errors only",
		},
	}
	app.Action = run
	return app
}

func run(c *cli.Context) error {
	switch {
	case c.Bool("quiet"):
		logrus.SetLevel(logrus.WarnLevel)
	case c.Bool("verbose"):
		logrus.SetLevel(logrus.DebugLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}

	input, err := readInput(c.String("input"))
	if err != nil {
		return err
	}
	if days := c.Int("days"); days > 0 {
		input.Meta.Days = days
	}

	sim, err := engine.NewSimulator(*input)
	if err != nil {
		return err
	}
	simLog, err := sim.Run()
	if err != nil {
		return err
	}

	out, err := json.Marshal(simLog)
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	if path := c.String("output"); path != "" {
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return err
		}
	} else {
		fmt.Println(string(out))
	}

	if path := c.String("report"); path != "" {
		written, err := report.WriteCSV(path, simLog)
		if err != nil {
			return err
		}
		logrus.WithField("path", written).Info("timetable written")
		report.PrintConsole(os.Stderr, simLog)
	}
	return nil
}

// readInput loads the simulation input from path, or decodes JSON from stdin
// when path is empty.
func readInput(path string) (*engine.SimulationInput, error) {
	if path != "" {
		return engine.LoadInput(path)
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	in := new(engine.SimulationInput)
	if err := json.Unmarshal(data, in); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return in, nil
}
