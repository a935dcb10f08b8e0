package engine

import (
	"fmt"

	"github.com/cxd309/rls-engine/internal/fleet"
	"github.com/cxd309/rls-engine/internal/graph"
)

// Kind is the closed set of train operation kinds.
type Kind int

const (
	KindDispatch Kind = iota
	KindArrival
	KindUnload
	KindLoad
)

func (k Kind) valid() bool { return k >= KindDispatch && k <= KindLoad }

func (k Kind) String() string {
	switch k {
	case KindDispatch:
		return "dispatch"
	case KindArrival:
		return "arrival"
	case KindUnload:
		return "unload"
	case KindLoad:
		return "load"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is an immutable-after-construction record of a scheduled state
// transition. Begin and End are simulated minutes with Begin ≤ End; an
// instantaneous arrival has Begin == End.
type Event struct {
	Kind          Kind
	Begin         int
	End           int
	TrainID       fleet.TrainID
	TerminalID    graph.TerminalID
	DestinationID graph.TerminalID // meaningful for dispatch and load; empty otherwise
	Demand        *fleet.Demand

	seq uint64 // queue insertion order, assigned on push
}

// NewEvent validates and constructs an event. A kind outside the closed set
// or a begin after end is a programming error and fails immediately rather
// than defaulting.
func NewEvent(kind Kind, begin, end int, trainID fleet.TrainID, terminalID graph.TerminalID) (*Event, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("%d is not a valid event kind", int(kind))
	}
	if begin > end {
		return nil, fmt.Errorf("%s event begins at %d, after its end %d", kind, begin, end)
	}
	if begin < 0 {
		return nil, fmt.Errorf("%s event begins at negative minute %d", kind, begin)
	}
	return &Event{
		Kind:       kind,
		Begin:      begin,
		End:        end,
		TrainID:    trainID,
		TerminalID: terminalID,
	}, nil
}
