package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cxd309/rls-engine/internal/fleet"
	"github.com/cxd309/rls-engine/internal/graph"
	"github.com/cxd309/rls-engine/internal/terminal"
)

// SimulationMeta holds the identity and timing parameters for a simulation
// run.
type SimulationMeta struct {
	SimulationID string `json:"simulation_id" yaml:"simulation_id"`
	Days         int    `json:"days" yaml:"days"` // time horizon, days of simulated time
}

// Horizon returns the time horizon in simulated minutes.
func (m SimulationMeta) Horizon() int { return m.Days * 24 * 60 }

// SimulationInput is the serialisable input to the engine.
type SimulationInput struct {
	Meta      SimulationMeta                                    `json:"simulation_meta" yaml:"simulation_meta"`
	GraphData graph.GraphData                                   `json:"graph_data" yaml:"graph_data"`
	Terminals []terminal.Config                                 `json:"terminals" yaml:"terminals"`
	Trains    []fleet.Config                                    `json:"trains" yaml:"trains"`
	Demand    map[graph.TerminalID]map[graph.TerminalID]float64 `json:"demand" yaml:"demand"`
}

// Record is one executed event in the simulation log. Execution order is
// preserved: one record per executed event, no gaps, no duplicates.
type Record struct {
	Kind        string           `json:"kind"`
	Begin       int              `json:"begin"` // minutes
	End         int              `json:"end"`   // minutes
	TrainID     fleet.TrainID    `json:"train_id"`
	TerminalID  graph.TerminalID `json:"terminal_id"`
	Destination graph.TerminalID `json:"destination,omitempty"`
	Tons        float64          `json:"tons,omitempty"`
}

// Totals are the aggregate counters maintained as dispatch events consume
// demand.
type Totals struct {
	MovedPerTrain    map[fleet.TrainID]float64                         `json:"moved_per_train"`
	DeliveredPerPair map[graph.TerminalID]map[graph.TerminalID]float64 `json:"delivered_per_pair"`
}

// SimulationLog is the complete output of a simulation run.
type SimulationLog struct {
	Meta       SimulationMeta `json:"simulation_meta"`
	HaltReason string         `json:"halt_reason"`
	EndTime    int            `json:"end_time"` // minutes
	Records    []Record       `json:"records"`
	Totals     Totals         `json:"totals"`
}

// LoadInput reads a SimulationInput from path, selecting the decoder by file
// extension: .yaml/.yml or .json.
func LoadInput(path string) (*SimulationInput, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	in := new(SimulationInput)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, in); err != nil {
			return nil, fmt.Errorf("yaml unmarshal: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, in); err != nil {
			return nil, fmt.Errorf("json unmarshal: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported input extension %q (want .yaml, .yml or .json)", ext)
	}
	return in, nil
}

// Validate checks the whole input for configuration errors before any event
// executes: malformed graph, bad terminal or train parameters, dangling
// references, and demand pairs the network cannot serve.
func (in *SimulationInput) Validate() error {
	if in.Meta.Days <= 0 {
		return fmt.Errorf("simulation days %d must be positive", in.Meta.Days)
	}

	g, err := graph.NewGraph(in.GraphData)
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	termIDs := make(map[graph.TerminalID]bool, len(in.Terminals))
	for _, tc := range in.Terminals {
		if err := tc.Validate(); err != nil {
			return err
		}
		if termIDs[tc.ID] {
			return fmt.Errorf("terminal %q declared twice", tc.ID)
		}
		if !g.HasNode(tc.ID) {
			return fmt.Errorf("terminal %q is not a node in the graph", tc.ID)
		}
		termIDs[tc.ID] = true
	}
	for _, n := range g.Nodes() {
		if !termIDs[n.ID] {
			return fmt.Errorf("graph node %q has no terminal definition", n.ID)
		}
	}

	trainIDs := make(map[fleet.TrainID]bool, len(in.Trains))
	for _, tc := range in.Trains {
		if err := tc.Validate(); err != nil {
			return err
		}
		if trainIDs[tc.ID] {
			return fmt.Errorf("train %q declared twice", tc.ID)
		}
		trainIDs[tc.ID] = true
		if !termIDs[tc.Location] {
			return fmt.Errorf("train %q: location %q is not a terminal", tc.ID, tc.Location)
		}
		if tc.Destination != "" {
			if !termIDs[tc.Destination] {
				return fmt.Errorf("train %q: destination %q is not a terminal", tc.ID, tc.Destination)
			}
			if !g.Reachable(tc.Location, tc.Destination) {
				return fmt.Errorf("train %q: no route from %q to %q", tc.ID, tc.Location, tc.Destination)
			}
		}
		if (tc.Ready || tc.CargoTons > 0) && tc.Destination == "" {
			return fmt.Errorf("train %q: ready or loaded trains need a destination", tc.ID)
		}
	}

	for origin, dests := range in.Demand {
		if !termIDs[origin] {
			return fmt.Errorf("demand origin %q is not a terminal", origin)
		}
		for dest, tons := range dests {
			if !termIDs[dest] {
				return fmt.Errorf("demand %q->%q: %q is not a terminal", origin, dest, dest)
			}
			if tons < 0 {
				return fmt.Errorf("demand %q->%q: %v tons must not be negative", origin, dest, tons)
			}
			if tons > 0 && !g.Reachable(origin, dest) {
				return fmt.Errorf("demand %q->%q: no route between the pair", origin, dest)
			}
		}
	}

	return nil
}
