package engine

import (
	"github.com/cxd309/rls-engine/internal/terminal"
)

// kindDuration returns the fixed service time of the kind at term. Dispatch
// and receive occupy no service slot, so their duration is zero.
func kindDuration(term *terminal.Terminal, kind Kind) int {
	switch kind {
	case KindLoad:
		return term.LoadTime
	case KindUnload:
		return term.UnloadTime
	default:
		return 0
	}
}

// kindFreeTime returns the terminal's earliest-free counter for the kind.
// An arrival occupies the receive slot.
func kindFreeTime(term *terminal.Terminal, kind Kind) int {
	switch kind {
	case KindLoad:
		return term.FreeLoadTime
	case KindUnload:
		return term.FreeUnloadTime
	case KindDispatch:
		return term.FreeDispatchTime
	default:
		return term.FreeReceiveTime
	}
}

// FindStart returns the earliest minute s ≥ earliestFrom at which the
// interval [s, s+duration) does not overlap any pending event of the same
// kind at the same terminal, where duration is the terminal's fixed service
// time for the kind.
//
// The pending intervals are already committed and never revoked, so this is a
// first-fit gap search over non-overlapping reserved slots:
//
//  1. with nothing pending, start at max(earliestFrom, free counter) — never
//     before the terminal's last committed completion;
//  2. if the candidate interval ends strictly before the first pending slot
//     begins, it fits in front;
//  3. with a single pending slot and no room in front, queue right after it;
//  4. otherwise scan consecutive slot pairs for the first gap that holds the
//     candidate, either at earliestFrom or flush against the earlier slot's
//     end; with no gap found, append after the last pending slot.
func FindStart(q *Queue, term *terminal.Terminal, kind Kind, earliestFrom int) int {
	duration := kindDuration(term, kind)

	// A zero-length interval cannot overlap anything; dispatch and receive
	// only respect the free-time floor.
	if duration == 0 {
		return max(earliestFrom, kindFreeTime(term, kind))
	}

	pending := q.PendingAt(term.ID, kind)

	if len(pending) == 0 {
		return max(earliestFrom, kindFreeTime(term, kind))
	}

	if earliestFrom+duration < pending[0].Begin {
		return earliestFrom
	}

	if len(pending) == 1 {
		return pending[0].End
	}

	for i := 1; i < len(pending); i++ {
		prev, curr := pending[i-1], pending[i]
		if earliestFrom >= prev.End && earliestFrom+duration <= curr.Begin {
			return earliestFrom
		}
		if prev.End >= earliestFrom && prev.End+duration <= curr.Begin {
			return prev.End
		}
	}

	return pending[len(pending)-1].End
}
