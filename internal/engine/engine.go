// Package engine implements the discrete-event rail logistics simulation.
//
// The simulation advances event by event. Each iteration has three phases:
//
//  1. Pop — take the earliest pending event off the queue and advance the
//     simulated clock to its begin minute.
//
//  2. Apply — execute the event's effect against the train and terminal it
//     names (load, unload, dispatch or receive).
//
//  3. Schedule — derive the train's next event from the lifecycle state
//     machine, place it with the resource-timeline gap search so it never
//     overlaps a committed operation of the same kind at the same terminal,
//     and push it back onto the queue.
//
// The run halts when the queue drains, the time horizon passes, or no
// terminal has both stock and demand left.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cxd309/rls-engine/internal/fleet"
	"github.com/cxd309/rls-engine/internal/graph"
	"github.com/cxd309/rls-engine/internal/terminal"
)

// Halt reasons reported in the simulation log.
const (
	HaltQueueDrained = "queue drained"
	HaltHorizon      = "time horizon reached"
	HaltNoDemand     = "no stock and demand remaining"
)

// Simulator is the rail logistics simulation driver.
type Simulator struct {
	meta  SimulationMeta
	graph *graph.Graph

	trains     []*fleet.Train
	trainsByID map[fleet.TrainID]*fleet.Train
	trainCfg   map[fleet.TrainID]fleet.Config

	// terminals keeps declaration order; the routing tie-break depends on it.
	terminals     []*terminal.Terminal
	terminalsByID map[graph.TerminalID]*terminal.Terminal

	queue *Queue
	clock int // simulated minutes

	remaining map[graph.TerminalID]map[graph.TerminalID]float64
	moved     map[fleet.TrainID]float64
	delivered map[graph.TerminalID]map[graph.TerminalID]float64

	records []Record
}

// NewSimulator validates the input and constructs a Simulator, building the
// graph and placing each train and terminal in its initial state. An empty
// simulation id is replaced with a fresh UUID.
func NewSimulator(input SimulationInput) (*Simulator, error) {
	if input.Meta.SimulationID == "" {
		input.Meta.SimulationID = uuid.NewString()
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	g, err := graph.NewGraph(input.GraphData)
	if err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}

	s := &Simulator{
		meta:          input.Meta,
		graph:         g,
		trainsByID:    make(map[fleet.TrainID]*fleet.Train, len(input.Trains)),
		trainCfg:      make(map[fleet.TrainID]fleet.Config, len(input.Trains)),
		terminalsByID: make(map[graph.TerminalID]*terminal.Terminal, len(input.Terminals)),
		queue:         NewQueue(),
		remaining:     make(map[graph.TerminalID]map[graph.TerminalID]float64, len(input.Demand)),
		moved:         make(map[fleet.TrainID]float64, len(input.Trains)),
		delivered:     make(map[graph.TerminalID]map[graph.TerminalID]float64, len(input.Demand)),
	}

	for _, tc := range input.Terminals {
		term := terminal.New(tc)
		s.terminals = append(s.terminals, term)
		s.terminalsByID[term.ID] = term
	}
	for _, tc := range input.Trains {
		tr := fleet.NewTrain(tc)
		s.trains = append(s.trains, tr)
		s.trainsByID[tr.ID] = tr
		s.trainCfg[tr.ID] = tc
		s.moved[tr.ID] = 0
	}
	for origin, dests := range input.Demand {
		s.remaining[origin] = make(map[graph.TerminalID]float64, len(dests))
		s.delivered[origin] = make(map[graph.TerminalID]float64, len(dests))
		for dest, tons := range dests {
			s.remaining[origin][dest] = tons
			s.delivered[origin][dest] = 0
		}
	}

	return s, nil
}

// Terminal returns the live terminal with the given id, or nil.
func (s *Simulator) Terminal(id graph.TerminalID) *terminal.Terminal {
	return s.terminalsByID[id]
}

// Train returns the live train with the given id, or nil.
func (s *Simulator) Train(id fleet.TrainID) *fleet.Train {
	return s.trainsByID[id]
}

// Remaining returns the undelivered tons still owed from origin to dest.
func (s *Simulator) Remaining(origin, dest graph.TerminalID) float64 {
	return s.remaining[origin][dest]
}

// bootstrap creates the initial event for every train: a dispatch for trains
// already en route, a load for trains at rest and empty, and a deferred
// dispatch for trains at rest with cargo (marked ready, dispatched from the
// terminal's free dispatch time, never enqueued twice).
func (s *Simulator) bootstrap() error {
	for _, tr := range s.trains {
		cfg := s.trainCfg[tr.ID]
		term := s.terminalsByID[tr.Location]

		switch {
		case cfg.Ready || cfg.CargoTons > 0:
			if cfg.CargoTons > 0 {
				d := fleet.Demand{
					Product:     term.Product,
					Tons:        cfg.CargoTons,
					Origin:      term.ID,
					Destination: cfg.Destination,
				}
				tr.Load(d)
				s.commitDemand(d)
			} else {
				tr.Ready = true
			}
			dest := s.terminalsByID[cfg.Destination]
			if err := s.scheduleDispatch(tr, term, dest, 0); err != nil {
				return fmt.Errorf("bootstrap train %q: %w", tr.ID, err)
			}

		default:
			var dest *terminal.Terminal
			if cfg.Destination != "" {
				dest = s.terminalsByID[cfg.Destination]
			} else {
				var err error
				dest, err = s.pickDestination(term, tr, term.FreeLoadTime)
				if errors.Is(err, ErrNoDestination) {
					logrus.WithField("train", tr.ID).Warn("no initial destination, train idled")
					continue
				} else if err != nil {
					return fmt.Errorf("bootstrap train %q: %w", tr.ID, err)
				}
			}
			if err := s.scheduleLoad(tr, term, dest, 0); err != nil {
				return fmt.Errorf("bootstrap train %q: %w", tr.ID, err)
			}
		}
	}
	return nil
}

// Run executes the full simulation and returns the log.
func (s *Simulator) Run() (SimulationLog, error) {
	if err := s.bootstrap(); err != nil {
		return SimulationLog{}, err
	}

	horizon := s.meta.Horizon()
	var haltReason string
	for {
		if s.queue.Len() == 0 {
			haltReason = HaltQueueDrained
			break
		}
		if !s.anyStockAndDemand() {
			haltReason = HaltNoDemand
			break
		}
		ev := s.queue.Peek()
		if ev.Begin > horizon {
			haltReason = HaltHorizon
			break
		}
		s.queue.Pop()
		s.clock = ev.Begin

		rec, err := s.apply(ev)
		if err != nil {
			return SimulationLog{}, fmt.Errorf("at t=%d: %w", s.clock, err)
		}
		if err := s.scheduleNext(ev); err != nil {
			return SimulationLog{}, fmt.Errorf("at t=%d: %w", s.clock, err)
		}

		s.records = append(s.records, rec)
		logrus.WithFields(logrus.Fields{
			"kind":        rec.Kind,
			"begin":       rec.Begin,
			"end":         rec.End,
			"train":       rec.TrainID,
			"terminal":    rec.TerminalID,
			"destination": rec.Destination,
		}).Info("event executed")
	}

	logrus.WithFields(logrus.Fields{
		"halt_reason": haltReason,
		"end_time":    s.clock,
		"events":      len(s.records),
	}).Info("simulation halted")

	return SimulationLog{
		Meta:       s.meta,
		HaltReason: haltReason,
		EndTime:    s.clock,
		Records:    s.records,
		Totals: Totals{
			MovedPerTrain:    s.moved,
			DeliveredPerPair: s.delivered,
		},
	}, nil
}

// anyStockAndDemand reports whether some terminal still has both stock to
// ship and outbound demand.
func (s *Simulator) anyStockAndDemand() bool {
	for _, term := range s.terminals {
		if term.HasDemand && term.HasStock() {
			return true
		}
	}
	return false
}

// apply executes the event's effect against the train and terminal it names
// and returns the executed-event record.
func (s *Simulator) apply(ev *Event) (Record, error) {
	tr, ok := s.trainsByID[ev.TrainID]
	if !ok {
		return Record{}, fmt.Errorf("%s event: train %q not found", ev.Kind, ev.TrainID)
	}
	term, ok := s.terminalsByID[ev.TerminalID]
	if !ok {
		return Record{}, fmt.Errorf("%s event: terminal %q not found", ev.Kind, ev.TerminalID)
	}

	rec := Record{
		Kind:        ev.Kind.String(),
		Begin:       ev.Begin,
		End:         ev.End,
		TrainID:     ev.TrainID,
		TerminalID:  ev.TerminalID,
		Destination: ev.DestinationID,
	}

	switch ev.Kind {
	case KindDispatch:
		if ev.Demand != nil {
			s.consumeDemand(tr, *ev.Demand)
			rec.Tons = ev.Demand.Tons
		}
		dist, err := s.travelDistance(term.ID, ev.DestinationID)
		if err != nil {
			return Record{}, fmt.Errorf("dispatch: %w", err)
		}
		term.DispatchTrain(tr, ev.DestinationID, dist, ev.Begin)

	case KindArrival:
		term.ReceiveTrain(tr, ev.Begin)

	case KindUnload:
		if d := term.UnloadTrain(tr, ev.Begin); d != nil {
			rec.Tons = d.Tons
		}

	case KindLoad:
		// The pair's undelivered tons cap the quantity so pipelined loads
		// toward the same destination never over-commit the ledger.
		limit := math.Inf(1)
		if term.HasDemand {
			limit = s.remaining[term.ID][ev.DestinationID]
		}
		d := term.LoadTrain(tr, ev.DestinationID, limit, ev.Begin)
		s.commitDemand(d)
		rec.Tons = d.Tons
	}

	return rec, nil
}

// commitDemand decrements the remaining-demand ledger as cargo is committed
// to a train, at load time or when a train starts out already loaded.
func (s *Simulator) commitDemand(d fleet.Demand) {
	if d.Tons <= 0 {
		return
	}
	if s.remaining[d.Origin] == nil {
		s.remaining[d.Origin] = make(map[graph.TerminalID]float64)
	}
	s.remaining[d.Origin][d.Destination] -= d.Tons
}

// consumeDemand updates the aggregate counters as a dispatch carries its
// demand out of the origin terminal.
func (s *Simulator) consumeDemand(tr *fleet.Train, d fleet.Demand) {
	if d.Tons <= 0 {
		return
	}
	if s.delivered[d.Origin] == nil {
		s.delivered[d.Origin] = make(map[graph.TerminalID]float64)
	}
	s.delivered[d.Origin][d.Destination] += d.Tons
	s.moved[tr.ID] += d.Tons
}

// travelDistance returns the km a train covers from one terminal to another:
// the direct edge when one exists, the shortest route otherwise. Routing only
// proposes directly connected candidates; the fallback serves configured
// destinations that sit behind a hub.
func (s *Simulator) travelDistance(from, to graph.TerminalID) (float64, error) {
	if d, ok := s.graph.Distance(from, to); ok {
		return d, nil
	}
	p, err := s.graph.GetShortestPath(from, to)
	if err != nil {
		return 0, fmt.Errorf("%q->%q: %w", from, to, err)
	}
	return p.Distance, nil
}

// scheduleNext derives and enqueues the successor event for the train that
// just executed prev, following the lifecycle state machine:
//
//	dispatch → arrival → {unload | load | dispatch} → …
//
// A routing dead end idles the train instead of failing the run.
func (s *Simulator) scheduleNext(prev *Event) error {
	tr := s.trainsByID[prev.TrainID]

	idle := func(err error) error {
		if errors.Is(err, ErrNoDestination) {
			logrus.WithFields(logrus.Fields{
				"train":    tr.ID,
				"terminal": prev.TerminalID,
				"time":     s.clock,
			}).Warn("no feasible destination, train idled")
			return nil
		}
		return err
	}

	switch prev.Kind {
	case KindDispatch:
		dest := s.terminalsByID[prev.DestinationID]
		return s.scheduleArrival(tr, dest, prev.End)

	case KindArrival:
		term := s.terminalsByID[prev.TerminalID]
		if !tr.IsEmpty() {
			return s.scheduleUnload(tr, term, prev.End)
		}
		dest, err := s.pickDestination(term, tr, prev.End)
		if err != nil {
			return idle(err)
		}
		if term.HasDemand {
			return s.scheduleLoad(tr, term, dest, prev.End)
		}
		// Pass-through: nothing to do here, keep moving.
		return s.scheduleDispatch(tr, term, dest, prev.End)

	case KindUnload:
		term := s.terminalsByID[prev.TerminalID]
		dest, err := s.pickDestination(term, tr, prev.End)
		if err != nil {
			return idle(err)
		}
		if term.HasDemand {
			return s.scheduleLoad(tr, term, dest, prev.End)
		}
		return s.scheduleDispatch(tr, term, dest, prev.End)

	case KindLoad:
		term := s.terminalsByID[prev.TerminalID]
		dest, err := s.pickDestination(term, tr, prev.End)
		if err != nil {
			return idle(err)
		}
		return s.scheduleDispatch(tr, term, dest, prev.End)
	}
	return fmt.Errorf("%d is not a valid event kind", int(prev.Kind))
}

// scheduleArrival enqueues the train's instantaneous arrival at dest.
func (s *Simulator) scheduleArrival(tr *fleet.Train, dest *terminal.Terminal, at int) error {
	ev, err := NewEvent(KindArrival, at, at, tr.ID, dest.ID)
	if err != nil {
		return err
	}
	s.queue.Push(ev)
	return nil
}

// scheduleUnload places the train's unload with the gap search and enqueues
// it.
func (s *Simulator) scheduleUnload(tr *fleet.Train, term *terminal.Terminal, earliestFrom int) error {
	begin := FindStart(s.queue, term, KindUnload, earliestFrom)
	ev, err := NewEvent(KindUnload, begin, begin+term.UnloadTime, tr.ID, term.ID)
	if err != nil {
		return err
	}
	ev.Demand = tr.Cargo()
	s.queue.Push(ev)
	return nil
}

// scheduleLoad places the train's load with the gap search and enqueues it.
// The destination is fixed now so the demand can be built when the load
// executes.
func (s *Simulator) scheduleLoad(tr *fleet.Train, term, dest *terminal.Terminal, earliestFrom int) error {
	begin := FindStart(s.queue, term, KindLoad, earliestFrom)
	ev, err := NewEvent(KindLoad, begin, begin+term.LoadTime, tr.ID, term.ID)
	if err != nil {
		return err
	}
	ev.DestinationID = dest.ID
	s.queue.Push(ev)
	return nil
}

// scheduleDispatch places the train's dispatch toward dest and enqueues it.
// The event carries the train's cargo, if any, so the ledger is consumed when
// the dispatch executes.
func (s *Simulator) scheduleDispatch(tr *fleet.Train, term, dest *terminal.Terminal, earliestFrom int) error {
	dist, err := s.travelDistance(term.ID, dest.ID)
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	begin := FindStart(s.queue, term, KindDispatch, earliestFrom)
	ev, err := NewEvent(KindDispatch, begin, begin+tr.TravelTime(dist), tr.ID, term.ID)
	if err != nil {
		return err
	}
	ev.DestinationID = dest.ID
	ev.Demand = tr.Cargo()
	s.queue.Push(ev)
	return nil
}

// RunJSON is the shared entry point for the CLI and WASM targets. It accepts
// a JSON-encoded SimulationInput, runs the simulation, and returns a
// JSON-encoded SimulationLog.
func RunJSON(jsonInput string) (string, error) {
	var input SimulationInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	sim, err := NewSimulator(input)
	if err != nil {
		return "", err
	}

	simLog, err := sim.Run()
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(simLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
