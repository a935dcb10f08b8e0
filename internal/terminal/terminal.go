// Package terminal defines the terminal entity: stock and capacity
// bookkeeping plus the four per-operation free-time counters the scheduling
// algorithm builds on.
package terminal

import (
	"fmt"

	"github.com/cxd309/rls-engine/internal/fleet"
	"github.com/cxd309/rls-engine/internal/graph"
)

// Config is the static definition of a terminal as it appears in the
// simulation input. Capacity is the initial current capacity; zero means
// start at MaxCapacity.
type Config struct {
	ID          graph.TerminalID `json:"terminal_id" yaml:"terminal_id"`
	MaxCapacity float64          `json:"max_capacity" yaml:"max_capacity"` // tons
	Capacity    float64          `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	LoadTime    int              `json:"load_time" yaml:"load_time"`     // minutes
	UnloadTime  int              `json:"unload_time" yaml:"unload_time"` // minutes
	Stock       float64          `json:"stock" yaml:"stock"`             // tons
	Product     string           `json:"product,omitempty" yaml:"product,omitempty"`
	HasDemand   bool             `json:"has_demand" yaml:"has_demand"`
}

// Validate checks the static definition for configuration errors.
func (c Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("terminal with empty id")
	}
	if c.MaxCapacity <= 0 {
		return fmt.Errorf("terminal %q: max capacity %v must be positive", c.ID, c.MaxCapacity)
	}
	if c.Capacity < 0 || c.Capacity > c.MaxCapacity {
		return fmt.Errorf("terminal %q: capacity %v out of range [0, %v]", c.ID, c.Capacity, c.MaxCapacity)
	}
	if c.LoadTime <= 0 {
		return fmt.Errorf("terminal %q: load time %d must be positive", c.ID, c.LoadTime)
	}
	if c.UnloadTime <= 0 {
		return fmt.Errorf("terminal %q: unload time %d must be positive", c.ID, c.UnloadTime)
	}
	if c.Stock < 0 {
		return fmt.Errorf("terminal %q: stock %v must not be negative", c.ID, c.Stock)
	}
	return nil
}

// Terminal is a Config enriched with live simulation state.
//
// The four free-time counters record the earliest simulated minute the
// terminal can begin its next operation of each kind. They only ever move
// forward.
type Terminal struct {
	ID          graph.TerminalID
	MaxCapacity float64 // tons
	Capacity    float64 // tons currently usable
	LoadTime    int     // minutes per load operation
	UnloadTime  int     // minutes per unload operation
	Stock       float64 // tons available to load
	Product     string
	HasDemand   bool

	FreeLoadTime     int
	FreeUnloadTime   int
	FreeDispatchTime int
	FreeReceiveTime  int
}

// New builds a live terminal from its static definition.
func New(cfg Config) *Terminal {
	capacity := cfg.Capacity
	if capacity == 0 {
		capacity = cfg.MaxCapacity
	}
	return &Terminal{
		ID:          cfg.ID,
		MaxCapacity: cfg.MaxCapacity,
		Capacity:    capacity,
		LoadTime:    cfg.LoadTime,
		UnloadTime:  cfg.UnloadTime,
		Stock:       cfg.Stock,
		Product:     cfg.Product,
		HasDemand:   cfg.HasDemand,
	}
}

// HasStock reports whether any product remains to load.
func (t *Terminal) HasStock() bool { return t.Stock > 0 }

// OperationTime is the congestion proxy used by the routing policy: the load
// counter for shipping terminals, the dispatch counter otherwise.
func (t *Terminal) OperationTime() int {
	if t.HasDemand {
		return t.FreeLoadTime
	}
	return t.FreeDispatchTime
}

// LoadTrain commits stock to the train at minute now. The quantity is clamped
// to the train's free capacity, the remaining stock, and limit (the caller's
// undelivered demand toward destination; pass math.Inf(1) for no limit), so
// stock never goes negative and a pair is never over-committed. The dispatch
// counter follows the load counter: a train cannot leave before its own
// loading finishes. The slot is occupied even when the clamp leaves nothing
// to load; the train then stays empty.
func (t *Terminal) LoadTrain(tr *fleet.Train, destination graph.TerminalID, limit float64, now int) fleet.Demand {
	qty := min(tr.Capacity, t.Stock, limit)
	d := fleet.Demand{
		Product:     t.Product,
		Tons:        qty,
		Origin:      t.ID,
		Destination: destination,
	}
	if qty > 0 {
		t.Stock -= qty
		t.Capacity = max(t.Capacity-qty, 0)
		tr.Load(d)
	}
	t.FreeLoadTime = max(t.FreeLoadTime, now+t.LoadTime)
	t.FreeDispatchTime = max(t.FreeDispatchTime, t.FreeLoadTime)
	return d
}

// UnloadTrain takes the train's cargo into the terminal at minute now. The
// received tons occupy terminal capacity. Returns nil if the train was empty.
// The receive counter follows the unload counter: the slot cannot take a new
// arrival while busy unloading.
func (t *Terminal) UnloadTrain(tr *fleet.Train, now int) *fleet.Demand {
	d := tr.Unload()
	if d == nil {
		return nil
	}
	t.Capacity = max(t.Capacity-d.Tons, 0)
	t.Product = d.Product
	t.FreeUnloadTime = max(t.FreeUnloadTime, now+t.UnloadTime)
	t.FreeReceiveTime = max(t.FreeReceiveTime, t.FreeUnloadTime)
	return d
}

// DispatchTrain sends the train toward destination at minute now and returns
// its arrival minute.
func (t *Terminal) DispatchTrain(tr *fleet.Train, destination graph.TerminalID, distance float64, now int) int {
	tr.Location = fleet.LocationRailroad
	tr.Destination = destination
	t.FreeDispatchTime = max(t.FreeDispatchTime, now)
	return now + tr.TravelTime(distance)
}

// ReceiveTrain registers the train's arrival at minute now.
func (t *Terminal) ReceiveTrain(tr *fleet.Train, now int) {
	tr.Location = t.ID
	tr.Destination = ""
	tr.Ready = false
	t.FreeReceiveTime = max(t.FreeReceiveTime, now)
}
