// Package kinematics defines the velocity profile used to derive train travel
// times over the network.
//
// The simulation clock runs in whole minutes, so travel times are truncated to
// integer minutes. Distances are in km, velocities in km/h.
package kinematics

import (
	"fmt"
	"math"
)

// Profile holds the mean velocities of a train, in km/h, for the empty and
// loaded cases.
type Profile struct {
	VEmpty  float64 `json:"velocity_empty" yaml:"velocity_empty"`   // km/h
	VLoaded float64 `json:"velocity_loaded" yaml:"velocity_loaded"` // km/h
}

// Velocity returns the effective mean velocity for the given cargo state.
func (p Profile) Velocity(loaded bool) float64 {
	if loaded {
		return p.VLoaded
	}
	return p.VEmpty
}

// TravelTime returns the whole minutes needed to cover distance km at the
// effective velocity, truncating any fractional minute.
func (p Profile) TravelTime(distance float64, loaded bool) int {
	return int(math.Floor(60 * distance / p.Velocity(loaded)))
}

// Validate returns an error if either velocity is not positive.
func (p Profile) Validate() error {
	if p.VEmpty <= 0 {
		return fmt.Errorf("empty velocity %v must be positive", p.VEmpty)
	}
	if p.VLoaded <= 0 {
		return fmt.Errorf("loaded velocity %v must be positive", p.VLoaded)
	}
	return nil
}
