// Package fleet defines the train and demand entities of the rail logistics
// simulation, following the static-definition plus live-state split used
// throughout the engine.
package fleet

import (
	"fmt"

	"github.com/cxd309/rls-engine/internal/graph"
	"github.com/cxd309/rls-engine/internal/kinematics"
)

// TrainID is a unique string identifier for a train.
type TrainID = string

// LocationRailroad is the location marker for a train in transit between
// terminals.
const LocationRailroad = "railroad"

// Config is the static definition of a train as it appears in the simulation
// input.
type Config struct {
	ID             TrainID          `json:"train_id" yaml:"train_id"`
	VelocityEmpty  float64          `json:"velocity_empty" yaml:"velocity_empty"`   // km/h
	VelocityLoaded float64          `json:"velocity_loaded" yaml:"velocity_loaded"` // km/h
	MaxCapacity    float64          `json:"max_capacity" yaml:"max_capacity"`       // tons
	Location       string           `json:"location" yaml:"location"`
	Destination    graph.TerminalID `json:"destination,omitempty" yaml:"destination,omitempty"`
	CargoTons      float64          `json:"cargo_tons,omitempty" yaml:"cargo_tons,omitempty"`
	Ready          bool             `json:"ready,omitempty" yaml:"ready,omitempty"`
}

// Validate checks the static definition for configuration errors.
func (c Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("train with empty id")
	}
	p := kinematics.Profile{VEmpty: c.VelocityEmpty, VLoaded: c.VelocityLoaded}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("train %q: %w", c.ID, err)
	}
	if c.MaxCapacity <= 0 {
		return fmt.Errorf("train %q: max capacity %v must be positive", c.ID, c.MaxCapacity)
	}
	if c.CargoTons < 0 {
		return fmt.Errorf("train %q: cargo %v must not be negative", c.ID, c.CargoTons)
	}
	if c.CargoTons > c.MaxCapacity {
		return fmt.Errorf("train %q: cargo %v exceeds max capacity %v", c.ID, c.CargoTons, c.MaxCapacity)
	}
	return nil
}

// Train is a Config enriched with live simulation state.
//
// Invariant: Capacity (free tons) plus carried tons always equals MaxCapacity.
// A train is empty exactly when it carries no Demand.
type Train struct {
	ID          TrainID
	Profile     kinematics.Profile
	MaxCapacity float64          // tons
	Capacity    float64          // free tons
	Location    string           // terminal id, or LocationRailroad while in transit
	Destination graph.TerminalID // set when committed to a trip
	Ready       bool             // marks trains already en route at bootstrap

	demand         *Demand
	lastTravelTime int // minutes; diagnostics only
}

// NewTrain builds a live train from its static definition. Initial cargo, if
// any, is attached by the driver at bootstrap once destinations are resolved.
func NewTrain(cfg Config) *Train {
	return &Train{
		ID:          cfg.ID,
		Profile:     kinematics.Profile{VEmpty: cfg.VelocityEmpty, VLoaded: cfg.VelocityLoaded},
		MaxCapacity: cfg.MaxCapacity,
		Capacity:    cfg.MaxCapacity,
		Location:    cfg.Location,
		Destination: cfg.Destination,
		Ready:       cfg.Ready,
	}
}

// IsEmpty reports whether the train carries no cargo.
func (t *Train) IsEmpty() bool { return t.demand == nil }

// Cargo returns the demand the train currently carries, or nil when empty.
func (t *Train) Cargo() *Demand { return t.demand }

// Load puts a demand on the train. A train already carrying cargo ignores the
// call.
func (t *Train) Load(d Demand) {
	if !t.IsEmpty() {
		return
	}
	t.demand = &d
	t.Capacity = t.MaxCapacity - d.Tons
	t.Destination = d.Destination
	t.Ready = true
}

// Unload removes and returns the carried demand, restoring free capacity.
// Returns nil if the train is already empty.
func (t *Train) Unload() *Demand {
	if t.IsEmpty() {
		return nil
	}
	d := t.demand
	t.Capacity += d.Tons
	t.demand = nil
	return d
}

// TravelTime returns the whole minutes the train needs to cover distance km
// at its effective velocity. The value is also cached for diagnostics.
func (t *Train) TravelTime(distance float64) int {
	t.lastTravelTime = t.Profile.TravelTime(distance, !t.IsEmpty())
	return t.lastTravelTime
}

// LastTravelTime returns the most recently computed travel time in minutes.
func (t *Train) LastTravelTime() int { return t.lastTravelTime }
