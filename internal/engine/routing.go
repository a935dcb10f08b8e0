package engine

import (
	"errors"
	"fmt"

	"github.com/cxd309/rls-engine/internal/fleet"
	"github.com/cxd309/rls-engine/internal/terminal"
)

// ErrNoDestination signals that no connected terminal can take the train.
// The driver reacts by idling the train rather than failing the run.
var ErrNoDestination = errors.New("no feasible destination")

// pickDestination chooses where the train should travel next from cur.
//
// A train with a configured destination that is not mid-transit is routed
// there unconditionally. Otherwise every directly connected terminal is a
// candidate, filtered by remaining pair demand when cur ships demand, or by
// the candidate's ability to supply a load when the empty train is
// repositioning. Candidates are ranked by the later of the estimated arrival
// and the candidate's congestion proxy; ties keep the earliest-declared
// terminal.
func (s *Simulator) pickDestination(cur *terminal.Terminal, tr *fleet.Train, endLastEvent int) (*terminal.Terminal, error) {
	if tr.Destination != "" && tr.Location != fleet.LocationRailroad {
		dest, ok := s.terminalsByID[tr.Destination]
		if !ok {
			return nil, fmt.Errorf("train %q: destination terminal %q not found", tr.ID, tr.Destination)
		}
		return dest, nil
	}

	var (
		best     *terminal.Terminal
		bestRank int
	)
	for _, cand := range s.terminals {
		if cand.ID == cur.ID {
			continue
		}
		dist, connected := s.graph.Distance(cur.ID, cand.ID)
		if !connected {
			continue
		}
		if cur.HasDemand {
			if s.remaining[cur.ID][cand.ID] <= 0 {
				continue
			}
		} else if !cand.HasDemand || !cand.HasStock() {
			// An empty train repositions only toward terminals that can
			// actually load it.
			continue
		}

		proxy := cand.OperationTime()
		if cur.HasDemand {
			proxy = cand.FreeUnloadTime
		}
		rank := max(endLastEvent+tr.TravelTime(dist), proxy)
		if best == nil || rank < bestRank {
			best = cand
			bestRank = rank
		}
	}
	if best == nil {
		return nil, ErrNoDestination
	}
	return best, nil
}
