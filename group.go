// Group is the rendezvous point between N completing children running on
// arbitrary executors and the single consumer draining their results in
// completion order. All count transitions serialize through a packed atomic
// status word; the ready queue sits behind a transient mutex held only
// across the offer and poll critical sections.
//
// A Group is exclusively owned by its parent task and lives from [NewGroup]
// to [Group.Destroy]. The group embeds its own cancellation record, so the
// parent's cancellation machinery reaches the children without an auxiliary
// pointer.
//
// Example lifecycle:
//
//	parent := taskgroup.NewTask("parent")
//	g := taskgroup.NewGroup(parent)
//	g.AddPending()          // announce a child
//	g.AttachChild(child)    // register it for cancellation
//	... child completes and calls g.Offer(child, exec) ...
//	res := g.Poll(consumer) // or g.WaitNext(...)
//	g.Destroy()
package taskgroup

import (
	"sync"
	"sync/atomic"
)

// Group coordinates a dynamically growing set of child tasks with a single
// consumer. Children call [Group.Offer] on completion; the consumer calls
// [Group.Poll] or [Group.WaitNext]. At most one consumer may wait at a time.
type Group struct {
	// The group is its own status record inside the parent's record list.
	record childRecord

	status status

	// mu guards ready. It is never held across anything that can suspend
	// or resume a task; the direct-handoff fill runs after unlock.
	mu    sync.Mutex
	ready readyQueue

	wait waitSlot

	parent    *Task
	destroyed atomic.Bool

	// Counters.
	spawned        atomic.Int64
	directHandoffs atomic.Int64
	enqueuedReady  atomic.Int64
}

// GroupStats is a point-in-time snapshot of group activity.
type GroupStats struct {
	Spawned        int64  // children admitted via AddPending
	DirectHandoffs int64  // offers delivered straight to a parked consumer
	EnqueuedReady  int64  // offers parked in the ready queue
	Ready          uint32 // current ready count
	Pending        uint32 // current pending count
	Cancelled      bool
}

// NewGroup creates a group owned by parent and registers its cancellation
// record with the parent, so cancelling the parent cancels the children.
func NewGroup(parent *Task) *Group {
	if parent == nil {
		panic("taskgroup: NewGroup requires a parent task")
	}
	g := &Group{parent: parent}
	parent.addStatusRecord(&g.record)
	return g
}

// AddPending announces one child about to be spawned. It returns false if
// the group is cancelled, in which case the spawn must be abandoned; the
// pending counter has already been reverted.
func (g *Group) AddPending() bool {
	if g.status.addPending().isCancelled() {
		return false
	}
	g.spawned.Add(1)
	return true
}

// AttachChild registers child with the group's cancellation record. If the
// group was cancelled concurrently, the child is cancelled on the spot so
// no attach can slip past a cancellation traversal.
func (g *Group) AttachChild(child *Task) {
	g.record.attach(child)
	if g.status.load().isCancelled() {
		child.Cancel()
	}
}

// IsEmpty reports whether no children are pending.
func (g *Group) IsEmpty() bool {
	return g.status.load().isEmpty()
}

// IsCancelled reports whether the group has been cancelled. The bit is
// sticky: once true, always true.
func (g *Group) IsCancelled() bool {
	return g.status.load().isCancelled()
}

// CancelAll cancels the group. The first call cancels every attached child
// and returns true; later calls return false and do nothing. CancelAll
// never blocks: children observe cancellation cooperatively and may still
// offer results afterwards, which are consumed or drained as usual.
func (g *Group) CancelAll() bool {
	if g.status.cancel().isCancelled() {
		return false
	}
	g.record.cancelChildren()
	return true
}

// Offer hands the completed child to the group. Each child calls Offer
// exactly once, after settling its result area. Offer never suspends: it
// either resumes the parked consumer directly or parks the result in the
// ready queue for a later poll.
func (g *Group) Offer(child *Task, exec Executor) {
	if child == nil {
		panic("taskgroup: Offer of nil child")
	}
	if g.destroyed.Load() {
		panic("taskgroup: Offer after Destroy")
	}

	// Keep the child alive across the handoff window.
	child.Retain()

	g.mu.Lock()

	assumed := g.status.addReady()

	if assumed.hasWaitingTask() {
		// The consumer is parked: claim it and retire the counters in one
		// three-way transition. Under the group mutex only lock-free
		// pending-count traffic can race the CAS, so retry until it lands;
		// nobody else can clear the waiting bit while we hold the claim.
		waiting := g.wait.load()
		if waiting != nil && g.wait.claim(waiting) {
			for !g.status.completePendingReadyWaiting(&assumed) {
			}
			g.mu.Unlock()

			// Fill the consumer's frame before it is enqueued anywhere;
			// the handoff-window reference transfers to the result and is
			// released by the fill.
			fillNextResult(waiting.rctx, pollResultFor(child))
			g.directHandoffs.Add(1)
			exec.Enqueue(waiting)
			return
		}
	}

	// No consumer parked: park the result instead. The queue takes its own
	// reference; the handoff-window reference is dropped once the entry is
	// in place.
	child.Retain()
	g.ready.enqueue(readyItemFor(child))
	g.enqueuedReady.Add(1)
	g.mu.Unlock()

	child.Release()
}

// Poll attempts to take one completed result on behalf of consumer. It
// returns PollEmpty when no children are pending, PollSuccess or PollError
// carrying the retained child in ready-queue order, or PollMustWait after
// parking the consumer in the wait slot, in which case the matching offer
// drives the consumer's resumption.
//
// Poll assumes a single logical consumer; a second concurrent consumer
// panics.
func (g *Group) Poll(consumer *Task) PollResult {
	if consumer == nil {
		panic("taskgroup: Poll with nil consumer")
	}
	if g.destroyed.Load() {
		panic("taskgroup: Poll after Destroy")
	}

	g.mu.Lock()
	assumed := g.status.markWaiting()

	// Nothing in flight and nothing was announced before this poll, so
	// parking could never be woken. Return the drained sentinel.
	if assumed.isEmpty() {
		g.status.clearWaiting()
		g.mu.Unlock()
		return PollResult{Status: PollEmpty}
	}

	// A result is ready: retire the counters and pop it. The CAS loses
	// only to concurrent pending-count traffic; ready and waiting cannot
	// change while we hold the mutex.
	for assumed.readyTasks() > 0 {
		if !g.status.completePendingReadyWaiting(&assumed) {
			continue
		}
		item, ok := g.ready.dequeue()
		g.mu.Unlock()
		if !ok {
			// Counter said ready but the queue is empty. Only a racing
			// destroy can cause this; report MustWait as the least-wrong
			// answer.
			return PollResult{Status: PollMustWait}
		}

		// The queue reference transfers to the caller.
		storage, err := item.task.futureResult()
		if item.status == readyError {
			return PollResult{Status: PollError, Err: err, Task: item.task}
		}
		return PollResult{Status: PollSuccess, Storage: storage, Task: item.task}
	}

	// Nothing ready but children are in flight: park. The next offer
	// claims the slot, fills the consumer's frame and resumes it.
	if !g.wait.install(consumer) {
		panic("taskgroup: wait slot occupied; concurrent consumers are not supported")
	}
	g.mu.Unlock()
	return PollResult{Status: PollMustWait}
}

// WaitNext polls on behalf of consumer. When a result (or the drained
// sentinel) is immediately available it fills rctx and returns true; resume
// is not called. Otherwise the consumer is parked and WaitNext returns
// false; the matching offer fills rctx and then calls resume through its
// executor.
func (g *Group) WaitNext(consumer *Task, rctx *ResultContext, resume func()) bool {
	consumer.arm(rctx, resume)

	polled := g.Poll(consumer)
	if polled.Status == PollMustWait {
		return false
	}
	fillNextResult(rctx, polled)
	return true
}

// Destroy tears the group down: it detaches the cancellation record from
// the parent and drains the ready queue, releasing the queue reference each
// remaining entry holds. Drained results are dropped. The group must not be
// used afterwards.
//
// Destroy requires that no child is still in flight; the scope layer
// guarantees this by draining Next before returning.
func (g *Group) Destroy() {
	if !g.destroyed.CompareAndSwap(false, true) {
		panic("taskgroup: Destroy called twice")
	}
	st := g.status.load()
	if st.pendingTasks() != st.readyTasks() {
		panic("taskgroup: Destroy with children still in flight: " + st.String())
	}

	g.parent.removeStatusRecord(&g.record)

	g.mu.Lock()
	for {
		item, ok := g.ready.dequeue()
		if !ok {
			break
		}
		item.task.Release()
	}
	g.mu.Unlock()
}

// Stats returns a point-in-time snapshot of group activity.
// Safe to call concurrently.
func (g *Group) Stats() GroupStats {
	st := g.status.load()
	return GroupStats{
		Spawned:        g.spawned.Load(),
		DirectHandoffs: g.directHandoffs.Load(),
		EnqueuedReady:  g.enqueuedReady.Load(),
		Ready:          st.readyTasks(),
		Pending:        st.pendingTasks(),
		Cancelled:      st.isCancelled(),
	}
}
