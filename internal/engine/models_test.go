package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cxd309/rls-engine/internal/fleet"
	"github.com/cxd309/rls-engine/internal/graph"
	"github.com/cxd309/rls-engine/internal/terminal"
)

func writeInputFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadInputJSON(t *testing.T) {
	want := networkInput()
	raw, err := json.Marshal(want)
	require.NoError(t, err)

	got, err := LoadInput(writeInputFile(t, "input.json", raw))
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestLoadInputYAML(t *testing.T) {
	want := networkInput()
	raw, err := yaml.Marshal(want)
	require.NoError(t, err)

	for _, name := range []string{"input.yaml", "input.YML"} {
		got, err := LoadInput(writeInputFile(t, name, raw))
		require.NoError(t, err, name)
		assert.Equal(t, want, *got, name)
	}
}

func TestLoadInputUnsupportedExtension(t *testing.T) {
	_, err := LoadInput(writeInputFile(t, "input.toml", []byte("days = 3")))
	assert.ErrorContains(t, err, "unsupported input extension")
}

func TestLoadInputMissingFile(t *testing.T) {
	_, err := LoadInput(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadInputMalformed(t *testing.T) {
	_, err := LoadInput(writeInputFile(t, "bad.json", []byte("{oops")))
	assert.ErrorContains(t, err, "json unmarshal")

	_, err = LoadInput(writeInputFile(t, "bad.yaml", []byte("\t{nope")))
	assert.ErrorContains(t, err, "yaml unmarshal")
}

func TestHorizon(t *testing.T) {
	assert.Equal(t, 1440, SimulationMeta{Days: 1}.Horizon())
	assert.Equal(t, 86400, SimulationMeta{Days: 60}.Horizon())
}

func TestValidateAcceptsWellFormedInput(t *testing.T) {
	in := networkInput()
	assert.NoError(t, in.Validate())
}

func TestValidateRejectsBrokenInput(t *testing.T) {
	cases := map[string]func(in *SimulationInput){
		"zero days": func(in *SimulationInput) {
			in.Meta.Days = 0
		},
		"malformed graph": func(in *SimulationInput) {
			in.GraphData.Edges[0].Distance = -1
		},
		"bad terminal config": func(in *SimulationInput) {
			in.Terminals[0].LoadTime = 0
		},
		"duplicate terminal": func(in *SimulationInput) {
			in.Terminals = append(in.Terminals, in.Terminals[0])
		},
		"terminal not in graph": func(in *SimulationInput) {
			in.Terminals = append(in.Terminals, terminal.Config{
				ID: "9", MaxCapacity: 1000, LoadTime: 60, UnloadTime: 60,
			})
		},
		"node without terminal": func(in *SimulationInput) {
			in.GraphData.Nodes = append(in.GraphData.Nodes, graph.Node{ID: "9"})
		},
		"bad train config": func(in *SimulationInput) {
			in.Trains[0].VelocityEmpty = 0
		},
		"duplicate train": func(in *SimulationInput) {
			in.Trains = append(in.Trains, in.Trains[0])
		},
		"train location unknown": func(in *SimulationInput) {
			in.Trains[0].Location = "9"
		},
		"train destination unknown": func(in *SimulationInput) {
			in.Trains[0].Destination = "9"
		},
		"loaded train without destination": func(in *SimulationInput) {
			in.Trains[1].Destination = ""
		},
		"demand origin unknown": func(in *SimulationInput) {
			in.Demand["9"] = map[graph.TerminalID]float64{"2": 100}
		},
		"demand destination unknown": func(in *SimulationInput) {
			in.Demand["1"]["9"] = 100
		},
		"negative demand": func(in *SimulationInput) {
			in.Demand["1"]["2"] = -50
		},
		"unreachable demand pair": func(in *SimulationInput) {
			in.GraphData.Nodes = append(in.GraphData.Nodes, graph.Node{ID: "4"})
			in.Terminals = append(in.Terminals, terminal.Config{
				ID: "4", MaxCapacity: 1000, LoadTime: 60, UnloadTime: 60,
			})
			in.Demand["1"]["4"] = 500
		},
	}

	for name, mutate := range cases {
		in := networkInput()
		mutate(&in)
		assert.Error(t, in.Validate(), name)
	}
}

func TestValidateUnreachableTrainDestination(t *testing.T) {
	in := networkInput()
	// Terminal 4 exists but no edge reaches it.
	in.GraphData.Nodes = append(in.GraphData.Nodes, graph.Node{ID: "4"})
	in.Terminals = append(in.Terminals, terminal.Config{
		ID: "4", MaxCapacity: 1000, LoadTime: 60, UnloadTime: 60,
	})
	in.Trains = append(in.Trains, fleet.Config{
		ID: "C", VelocityEmpty: 20, VelocityLoaded: 17, MaxCapacity: 1000,
		Location: "1", Destination: "4",
	})
	assert.ErrorContains(t, in.Validate(), "no route")
}
