// Task is the group's view of the surrounding runtime: a reference-counted
// handle that plays both roles the group cares about. As a child it carries
// the future fragment holding the completed value or error; as a consumer it
// carries the result context and resume continuation the group fills in and
// fires on direct handoff.
package taskgroup

import (
	"sync"
	"sync/atomic"
)

// Task is a handle on an asynchronous unit of work coordinated by a [Group].
type Task struct {
	name string

	// Reference count. The group takes and drops references around the
	// offer/poll handoff window; the count is observable via Refs so
	// callers can audit the balance.
	refs atomic.Int64

	frag futureFragment

	cancelled atomic.Bool
	cancelFn  func()

	// Consumer role, armed by Group.WaitNext before polling.
	rctx     *ResultContext
	resumeFn func()

	// Parent role: status records attached to this task. Cancelling the
	// task cancels through every record.
	recMu   sync.Mutex
	records []*childRecord
}

// futureFragment is the task's result area. It is written exactly once,
// before the task is offered to its group.
type futureFragment struct {
	value any
	err   error
	done  atomic.Bool
}

// NewTask creates a task with a single owning reference.
func NewTask(name string) *Task {
	t := &Task{name: name}
	t.refs.Store(1)
	return t
}

// Name returns the name the task was created with.
func (t *Task) Name() string { return t.name }

// Retain takes an additional reference on the task.
func (t *Task) Retain() {
	t.refs.Add(1)
}

// Release drops a reference. It panics if the count would drop below zero,
// that is, on more releases than the owning reference plus Retain calls.
func (t *Task) Release() {
	if t.refs.Add(-1) < 0 {
		panic("taskgroup: Task.Release without matching Retain")
	}
}

// Refs returns the current reference count.
func (t *Task) Refs() int64 { return t.refs.Load() }

// Complete settles the task's result area with a success value.
// A task settles exactly once, before it is offered.
func (t *Task) Complete(v any) {
	if !t.frag.done.CompareAndSwap(false, true) {
		panic("taskgroup: task " + t.name + " settled twice")
	}
	t.frag.value = v
}

// Fail settles the task's result area with an error.
func (t *Task) Fail(err error) {
	if err == nil {
		panic("taskgroup: Task.Fail with nil error")
	}
	if !t.frag.done.CompareAndSwap(false, true) {
		panic("taskgroup: task " + t.name + " settled twice")
	}
	t.frag.err = err
}

// futureResult returns the task's result area: a pointer to the success
// value storage and the error, one of which is meaningful. Valid only after
// the task has settled.
func (t *Task) futureResult() (*any, error) {
	if !t.frag.done.Load() {
		panic("taskgroup: reading the result area of an unsettled task")
	}
	return &t.frag.value, t.frag.err
}

// OnCancel registers fn to run when the task is cancelled. Must be set
// before the task is attached to a group.
func (t *Task) OnCancel(fn func()) {
	t.cancelFn = fn
}

// Cancel marks the task cancelled and runs the registered hook, then
// cancels through every attached status record. Idempotent; only the first
// call does work. Cancellation is cooperative: the task keeps running until
// it observes it.
func (t *Task) Cancel() {
	if !t.cancelled.CompareAndSwap(false, true) {
		return
	}
	if t.cancelFn != nil {
		t.cancelFn()
	}

	t.recMu.Lock()
	records := make([]*childRecord, len(t.records))
	copy(records, t.records)
	t.recMu.Unlock()

	for _, r := range records {
		r.cancelChildren()
	}
}

// Cancelled reports whether the task has been cancelled.
func (t *Task) Cancelled() bool { return t.cancelled.Load() }

// arm prepares the consumer role: rctx receives the next polled result and
// resume fires after the fill when the task was parked.
func (t *Task) arm(rctx *ResultContext, resume func()) {
	t.rctx = rctx
	t.resumeFn = resume
}

// resume fires the consumer continuation. Called by an executor after the
// result context has been filled.
func (t *Task) resume() {
	if t.resumeFn == nil {
		panic("taskgroup: resuming task " + t.name + " with no continuation")
	}
	t.resumeFn()
}

// addStatusRecord attaches a cancellation record to the task. If the task
// was already cancelled the record's children are cancelled immediately.
func (t *Task) addStatusRecord(r *childRecord) {
	t.recMu.Lock()
	t.records = append(t.records, r)
	t.recMu.Unlock()

	if t.cancelled.Load() {
		r.cancelChildren()
	}
}

// removeStatusRecord detaches a previously attached record.
func (t *Task) removeStatusRecord(r *childRecord) {
	t.recMu.Lock()
	defer t.recMu.Unlock()

	for i, rec := range t.records {
		if rec == r {
			t.records = append(t.records[:i], t.records[i+1:]...)
			return
		}
	}
	panic("taskgroup: removing a status record that was never attached")
}

// childRecord tracks the children attached to a group so cancellation can
// traverse them. The group embeds one; the record is the group's identity
// inside the parent's record list.
type childRecord struct {
	mu       sync.Mutex
	children []*Task
}

func (r *childRecord) attach(child *Task) {
	r.mu.Lock()
	r.children = append(r.children, child)
	r.mu.Unlock()
}

// cancelChildren cancels every attached child. The snapshot is taken under
// the record lock; the cancellations run outside it because a child's
// cancel hook may call back into the runtime.
func (r *childRecord) cancelChildren() {
	r.mu.Lock()
	children := make([]*Task, len(r.children))
	copy(children, r.children)
	r.mu.Unlock()

	for _, c := range children {
		c.Cancel()
	}
}
