package trigger

import (
	"time"

	"github.com/mohitkumar/flowrt/model"
)

type entry struct {
	trigger    model.Trigger
	descriptor model.WorkDescriptor
	fireAt     time.Time
	seq        uint64
	index      int
}

func (e *entry) before(o *entry) bool {
	if !e.fireAt.Equal(o.fireAt) {
		return e.fireAt.Before(o.fireAt)
	}
	if e.trigger.Priority() != o.trigger.Priority() {
		return e.trigger.Priority() > o.trigger.Priority()
	}
	return e.seq < o.seq
}

// fireQueue implements heap.Interface over entries, soonest first.
type fireQueue []*entry

func (q fireQueue) Len() int { return len(q) }

func (q fireQueue) Less(i, j int) bool { return q[i].before(q[j]) }

func (q fireQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *fireQueue) Push(x any) {
	e := x.(*entry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *fireQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}

func (q fireQueue) peek() *entry {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}
