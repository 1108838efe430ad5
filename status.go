package taskgroup

import (
	"fmt"
	"sync/atomic"
)

// groupStatus is a snapshot of the packed 64-bit group status word.
//
// Layout:
//
//	bit 63       cancelled (sticky, never cleared)
//	bit 62       waiting   (a consumer is parked in the wait slot)
//	bits 61..31  ready     (31-bit count of completed, unconsumed children)
//	bits 30..0   pending   (31-bit count of announced, unconsumed children)
//
// Every count transition in the group serializes through this word, so a
// snapshot is enough to decide the offer/poll rendezvous outcome.
type groupStatus uint64

const (
	statusCancelled groupStatus = 1 << 63
	statusWaiting   groupStatus = 1 << 62

	maskReady    groupStatus = ((1 << 31) - 1) << 31
	oneReadyTask groupStatus = 1 << 31

	maskPending    groupStatus = (1 << 31) - 1
	onePendingTask groupStatus = 1
)

func (s groupStatus) isCancelled() bool { return s&statusCancelled != 0 }

func (s groupStatus) hasWaitingTask() bool { return s&statusWaiting != 0 }

func (s groupStatus) readyTasks() uint32 { return uint32((s & maskReady) >> 31) }

func (s groupStatus) pendingTasks() uint32 { return uint32(s & maskPending) }

// isEmpty reports whether no children are pending. A poll issued against an
// empty group must not park: nothing is in flight to wake it.
func (s groupStatus) isEmpty() bool { return s.pendingTasks() == 0 }

// completingPendingReadyWaiting is the transition taken when a ready result
// is handed to the parked consumer: waiting, ready and pending all drop by
// one step. All three must be set; anything else means the counters are
// corrupt.
func (s groupStatus) completingPendingReadyWaiting() groupStatus {
	if s.pendingTasks() == 0 || s.readyTasks() == 0 || !s.hasWaitingTask() {
		panic("taskgroup: completing a waiting consumer without pending, ready and waiting all set: " + s.String())
	}
	return s - statusWaiting - oneReadyTask - onePendingTask
}

// completingPendingReady drops ready and pending by one without touching the
// waiting bit: the transition for consuming a result with no consumer
// parked. Group.Poll does not take it; Poll sets the waiting bit first and
// retires it with completingPendingReadyWaiting.
func (s groupStatus) completingPendingReady() groupStatus {
	if s.pendingTasks() == 0 || s.readyTasks() == 0 {
		panic("taskgroup: completing a result without pending and ready set: " + s.String())
	}
	return s - oneReadyTask - onePendingTask
}

// String prints as GroupStatus{ C:n W:y R:1 P:3 }.
func (s groupStatus) String() string {
	yn := func(b bool) string {
		if b {
			return "y"
		}
		return "n"
	}
	return fmt.Sprintf("GroupStatus{ C:%s W:%s R:%d P:%d }",
		yn(s.isCancelled()), yn(s.hasWaitingTask()), s.readyTasks(), s.pendingTasks())
}

// status is the atomic holder of the packed word. All transitions go through
// the typed methods below; callers never touch the raw bits.
type status struct {
	bits atomic.Uint64
}

func (st *status) load() groupStatus {
	return groupStatus(st.bits.Load())
}

// addPending increments the pending counter and returns the post-transition
// status. If the post-state observes the cancelled bit the increment is
// immediately reverted, so a refused spawn leaves no trace in the counters.
func (st *status) addPending() groupStatus {
	s := groupStatus(st.bits.Add(uint64(onePendingTask)))
	if s.isCancelled() {
		s = groupStatus(st.bits.Add(^uint64(onePendingTask) + 1))
	}
	return s
}

// addReady increments the ready counter and returns the post-transition
// status. A ready count above the pending count means a child was offered
// that was never announced.
func (st *status) addReady() groupStatus {
	s := groupStatus(st.bits.Add(uint64(oneReadyTask)))
	if s.readyTasks() > s.pendingTasks() {
		panic("taskgroup: more ready children than pending: " + s.String())
	}
	return s
}

// markWaiting sets the waiting bit and returns the post-transition status.
// The caller guarantees no other consumer is parked.
func (st *status) markWaiting() groupStatus {
	old := groupStatus(st.bits.Or(uint64(statusWaiting)))
	return old | statusWaiting
}

// clearWaiting removes the waiting bit and returns the pre-transition status.
func (st *status) clearWaiting() groupStatus {
	return groupStatus(st.bits.And(^uint64(statusWaiting)))
}

// cancel sets the cancelled bit and returns the pre-transition status. The
// first caller to observe the bit unset owns the cancellation work.
func (st *status) cancel() groupStatus {
	return groupStatus(st.bits.Or(uint64(statusCancelled)))
}

// completePendingReadyWaiting attempts the waiting-consumer transition from
// *assumed. On failure *assumed is reloaded so the caller can retry.
func (st *status) completePendingReadyWaiting(assumed *groupStatus) bool {
	if st.bits.CompareAndSwap(uint64(*assumed), uint64(assumed.completingPendingReadyWaiting())) {
		return true
	}
	*assumed = st.load()
	return false
}

// completePendingReady attempts the no-consumer transition from *assumed.
// On failure *assumed is reloaded so the caller can retry.
func (st *status) completePendingReady(assumed *groupStatus) bool {
	if st.bits.CompareAndSwap(uint64(*assumed), uint64(assumed.completingPendingReady())) {
		return true
	}
	*assumed = st.load()
	return false
}
