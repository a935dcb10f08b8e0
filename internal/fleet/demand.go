package fleet

import "github.com/cxd309/rls-engine/internal/graph"

// Demand is an immutable quantity of product owed from one terminal to
// another. It is created when a terminal commits cargo to a train and read
// only afterwards.
type Demand struct {
	Product     string           `json:"product" yaml:"product"`
	Tons        float64          `json:"tons" yaml:"tons"`
	Origin      graph.TerminalID `json:"origin" yaml:"origin"`
	Destination graph.TerminalID `json:"destination" yaml:"destination"`
}
