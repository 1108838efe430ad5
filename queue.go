package taskgroup

import "sync/atomic"

// readyStatus tags a ready-queue entry with how the child completed.
type readyStatus uint8

const (
	readySuccess readyStatus = iota
	readyError
)

// readyItem is one completed-but-unconsumed child. The tag is authoritative;
// the consumer interprets the child's result area according to it.
type readyItem struct {
	status readyStatus
	task   *Task
}

func readyItemFor(child *Task) readyItem {
	if _, err := child.futureResult(); err != nil {
		return readyItem{status: readyError, task: child}
	}
	return readyItem{status: readySuccess, task: child}
}

// readyQueue is a FIFO of completed children awaiting consumption. Callers
// hold the group mutex across enqueue and dequeue; the queue itself is not
// synchronized.
//
// TODO: replace with an MPSC queue (children produce, the single parent
// consumes) and retire the group mutex.
type readyQueue struct {
	items []readyItem
	head  int
}

func (q *readyQueue) enqueue(item readyItem) {
	q.items = append(q.items, item)
}

// dequeue pops the oldest entry. The second return is false iff the queue
// is empty.
func (q *readyQueue) dequeue() (readyItem, bool) {
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return readyItem{}, false
	}
	item := q.items[q.head]
	q.items[q.head] = readyItem{}
	q.head++
	return item, true
}

func (q *readyQueue) len() int {
	return len(q.items) - q.head
}

// waitSlot holds the single parked consumer. At most one consumer may be
// parked at a time; the offer path claims it for direct handoff.
type waitSlot struct {
	p atomic.Pointer[Task]
}

// install parks consumer in the slot. False means the slot was occupied,
// which only a second concurrent consumer can cause.
func (w *waitSlot) install(consumer *Task) bool {
	return w.p.CompareAndSwap(nil, consumer)
}

// claim removes expected from the slot, taking ownership of resuming it.
func (w *waitSlot) claim(expected *Task) bool {
	return w.p.CompareAndSwap(expected, nil)
}

func (w *waitSlot) load() *Task {
	return w.p.Load()
}
