package engine

import (
	"golang.org/x/exp/slices"

	"github.com/cxd309/rls-engine/internal/graph"
)

// Queue is the always-time-ordered collection of pending events.
//
// Events are kept sorted ascending by begin minute after every insertion,
// with ties broken by insertion order. A heap would lose the FIFO tie order,
// so the queue is a sorted slice instead.
type Queue struct {
	events  []*Event
	nextSeq uint64
}

// NewQueue returns an empty event queue.
func NewQueue() *Queue { return &Queue{} }

// Len returns the number of pending events.
func (q *Queue) Len() int { return len(q.events) }

func compareEvents(a, b *Event) int {
	if a.Begin != b.Begin {
		return a.Begin - b.Begin
	}
	switch {
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	default:
		return 0
	}
}

// Push inserts an event, keeping the queue sorted by begin minute.
func (q *Queue) Push(ev *Event) {
	ev.seq = q.nextSeq
	q.nextSeq++
	q.events = append(q.events, ev)
	slices.SortStableFunc(q.events, compareEvents)
}

// Peek returns the earliest pending event without removing it, or nil when
// the queue is empty.
func (q *Queue) Peek() *Event {
	if len(q.events) == 0 {
		return nil
	}
	return q.events[0]
}

// Pop removes and returns the earliest pending event, or nil when the queue
// is empty.
func (q *Queue) Pop() *Event {
	if len(q.events) == 0 {
		return nil
	}
	ev := q.events[0]
	q.events[0] = nil
	q.events = q.events[1:]
	return ev
}

// PendingAt returns the pending events of the given kind at the given
// terminal, ascending by begin minute. The gap search iterates this slice, so
// the ordering here is what makes the search deterministic.
func (q *Queue) PendingAt(terminalID graph.TerminalID, kind Kind) []*Event {
	var out []*Event
	for _, ev := range q.events {
		if ev.TerminalID == terminalID && ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// Events returns a copy of the pending events in queue order.
func (q *Queue) Events() []*Event {
	out := make([]*Event, len(q.events))
	copy(out, q.events)
	return out
}
