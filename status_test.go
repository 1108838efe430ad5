package taskgroup

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPanic(t *testing.T, contains string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		require.Contains(t, fmt.Sprint(r), contains)
	}()
	fn()
}

func TestStatusLayout(t *testing.T) {
	var s groupStatus
	assert.False(t, s.isCancelled())
	assert.False(t, s.hasWaitingTask())
	assert.EqualValues(t, 0, s.readyTasks())
	assert.EqualValues(t, 0, s.pendingTasks())
	assert.True(t, s.isEmpty())

	s = statusCancelled | statusWaiting | 3*oneReadyTask | 5*onePendingTask
	assert.True(t, s.isCancelled())
	assert.True(t, s.hasWaitingTask())
	assert.EqualValues(t, 3, s.readyTasks())
	assert.EqualValues(t, 5, s.pendingTasks())
	assert.False(t, s.isEmpty())

	// The counters must not bleed into each other or the flag bits.
	s = groupStatus(maskPending)
	assert.EqualValues(t, 1<<31-1, s.pendingTasks())
	assert.EqualValues(t, 0, s.readyTasks())
	assert.False(t, s.hasWaitingTask())
	assert.False(t, s.isCancelled())

	s = maskReady
	assert.EqualValues(t, 1<<31-1, s.readyTasks())
	assert.EqualValues(t, 0, s.pendingTasks())
	assert.False(t, s.hasWaitingTask())
	assert.False(t, s.isCancelled())
}

func TestStatusString(t *testing.T) {
	s := statusWaiting | oneReadyTask | 3*onePendingTask
	assert.Equal(t, "GroupStatus{ C:n W:y R:1 P:3 }", s.String())
}

func TestStatusAddPending(t *testing.T) {
	var st status

	s := st.addPending()
	assert.EqualValues(t, 1, s.pendingTasks())
	assert.False(t, s.isCancelled())

	s = st.addPending()
	assert.EqualValues(t, 2, s.pendingTasks())
}

func TestStatusAddPendingRevertsWhenCancelled(t *testing.T) {
	var st status
	st.cancel()

	s := st.addPending()
	assert.True(t, s.isCancelled())
	// The increment must have been reverted.
	assert.EqualValues(t, 0, st.load().pendingTasks())
}

func TestStatusAddReadyRequiresPending(t *testing.T) {
	var empty status
	mustPanic(t, "more ready children than pending", func() {
		empty.addReady()
	})

	var st status
	st.addPending()
	s := st.addReady()
	assert.EqualValues(t, 1, s.readyTasks())
	assert.EqualValues(t, 1, s.pendingTasks())
}

func TestStatusWaitingBit(t *testing.T) {
	var st status
	st.addPending()

	s := st.markWaiting()
	assert.True(t, s.hasWaitingTask())
	assert.True(t, st.load().hasWaitingTask())

	old := st.clearWaiting()
	assert.True(t, old.hasWaitingTask(), "clearWaiting returns the pre-transition status")
	assert.False(t, st.load().hasWaitingTask())
	assert.EqualValues(t, 1, st.load().pendingTasks(), "counters untouched")
}

func TestStatusCancelReturnsPreTransition(t *testing.T) {
	var st status

	old := st.cancel()
	assert.False(t, old.isCancelled(), "first cancel observes the bit unset")
	assert.True(t, st.load().isCancelled())

	old = st.cancel()
	assert.True(t, old.isCancelled(), "second cancel observes the bit set")
}

func TestStatusCompletePendingReadyWaiting(t *testing.T) {
	var st status
	st.addPending()
	st.addReady()
	st.markWaiting()

	assumed := st.load()
	require.True(t, st.completePendingReadyWaiting(&assumed))

	s := st.load()
	assert.EqualValues(t, 0, s.pendingTasks())
	assert.EqualValues(t, 0, s.readyTasks())
	assert.False(t, s.hasWaitingTask())
}

func TestStatusCompletePendingReadyWaitingReloadsOnFailure(t *testing.T) {
	var st status
	st.addPending()
	st.addReady()
	st.markWaiting()

	stale := st.load()
	st.addPending() // invalidate the snapshot

	require.False(t, st.completePendingReadyWaiting(&stale))
	assert.EqualValues(t, 2, stale.pendingTasks(), "assumed reloaded for retry")
	require.True(t, st.completePendingReadyWaiting(&stale))
}

func TestStatusCompletePendingReady(t *testing.T) {
	var st status
	st.addPending()
	st.addReady()

	assumed := st.load()
	require.True(t, st.completePendingReady(&assumed))

	s := st.load()
	assert.EqualValues(t, 0, s.pendingTasks())
	assert.EqualValues(t, 0, s.readyTasks())
}

func TestStatusCompleteTransitionsGuardCounters(t *testing.T) {
	mustPanic(t, "completing a waiting consumer", func() {
		s := statusWaiting | onePendingTask // no ready
		s.completingPendingReadyWaiting()
	})
	mustPanic(t, "completing a result", func() {
		var s groupStatus
		s.completingPendingReady()
	})
}
