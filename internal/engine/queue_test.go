package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEvent(t *testing.T, kind Kind, begin, end int, trainID, terminalID string) *Event {
	t.Helper()
	ev, err := NewEvent(kind, begin, end, trainID, terminalID)
	require.NoError(t, err)
	return ev
}

func TestQueueSortedAfterEveryInsert(t *testing.T) {
	q := NewQueue()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		begin := rng.Intn(5000)
		q.Push(mustEvent(t, KindLoad, begin, begin+420, "T1", "1"))

		events := q.Events()
		for j := 1; j < len(events); j++ {
			assert.LessOrEqual(t, events[j-1].Begin, events[j].Begin)
		}
	}
}

func TestQueueStableOnEqualBegin(t *testing.T) {
	q := NewQueue()
	first := mustEvent(t, KindLoad, 100, 520, "T1", "1")
	second := mustEvent(t, KindUnload, 100, 460, "T2", "1")
	third := mustEvent(t, KindDispatch, 100, 1300, "T3", "1")
	q.Push(first)
	q.Push(second)
	q.Push(third)

	assert.Same(t, first, q.Pop())
	assert.Same(t, second, q.Pop())
	assert.Same(t, third, q.Pop())
}

func TestQueuePopReturnsEarliest(t *testing.T) {
	q := NewQueue()
	q.Push(mustEvent(t, KindLoad, 300, 720, "T1", "1"))
	q.Push(mustEvent(t, KindLoad, 100, 520, "T2", "1"))
	q.Push(mustEvent(t, KindLoad, 200, 620, "T3", "1"))

	assert.Equal(t, 100, q.Pop().Begin)
	assert.Equal(t, 200, q.Peek().Begin)
	assert.Equal(t, 200, q.Pop().Begin)
	assert.Equal(t, 300, q.Pop().Begin)
	assert.Nil(t, q.Pop())
	assert.Nil(t, q.Peek())
}

func TestPendingAtFiltersByTerminalAndKind(t *testing.T) {
	q := NewQueue()
	q.Push(mustEvent(t, KindLoad, 500, 920, "T1", "1"))
	q.Push(mustEvent(t, KindLoad, 100, 520, "T2", "1"))
	q.Push(mustEvent(t, KindUnload, 50, 410, "T3", "1"))
	q.Push(mustEvent(t, KindLoad, 200, 620, "T4", "2"))

	pending := q.PendingAt("1", KindLoad)
	require.Len(t, pending, 2)
	assert.Equal(t, 100, pending[0].Begin)
	assert.Equal(t, 500, pending[1].Begin)

	assert.Len(t, q.PendingAt("1", KindUnload), 1)
	assert.Empty(t, q.PendingAt("2", KindUnload))
}
