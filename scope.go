// TaskGroup is the typed consumer surface over the core Group rendezvous.
// It owns the parent task, spawns children as goroutines that offer their
// results on completion, and exposes Next to drain results in completion
// order. With guarantees the structured-concurrency contract: no child
// outlives the call that created the group.
package taskgroup

import (
	"context"
	"sync/atomic"
	"time"
)

// TaskGroup runs typed child tasks and yields their results in completion
// order through [TaskGroup.Next]. Create one via [With].
type TaskGroup[T any] struct {
	g      *Group
	parent *Task
	ctx    context.Context
	cancel context.CancelCauseFunc
	cfg    config
	sem    *Semaphore

	// Guards against a second concurrent consumer.
	polling atomic.Bool
}

// With creates a task group, invokes body with it, then drains every
// remaining child and destroys the group before returning. The error from
// body is returned after the drain. If body returns an error or panics, the
// group is cancelled first so in-flight children stop cooperatively; their
// results are still drained.
//
// With is the primary entry point. The group is only valid inside body;
// spawning after With returns panics at offer time.
func With[T any](parent context.Context, body func(tg *TaskGroup[T]) error, opts ...Option) (err error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancelCause(parent)
	parentTask := NewTask("group.parent")
	tg := &TaskGroup[T]{
		g:      NewGroup(parentTask),
		parent: parentTask,
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
	}
	if cfg.limit > 0 {
		tg.sem = NewSemaphore(cfg.limit)
	}

	defer func() {
		if r := recover(); r != nil {
			tg.g.CancelAll()
			tg.finish()
			panic(r)
		}
		if err != nil {
			tg.g.CancelAll()
		}
		tg.finish()
	}()

	return body(tg)
}

// finish drains remaining results, tears the group down and releases the
// group context.
func (tg *TaskGroup[T]) finish() {
	for {
		if _, ok, _ := tg.Next(); !ok {
			break
		}
	}
	tg.g.Destroy()
	tg.cancel(nil)
}

// Spawn starts a child task with the given name. It returns false without
// running fn when the group has been cancelled. The child runs on its own
// goroutine with a context cancelled by group cancellation, and offers its
// result to the group when fn returns. A panic in fn is captured as a
// [*PanicError] and surfaces as an error result.
func (tg *TaskGroup[T]) Spawn(name string, fn func(ctx context.Context) (T, error)) bool {
	if fn == nil {
		panic("taskgroup: Spawn requires a non-nil task function")
	}
	if !tg.g.AddPending() {
		return false
	}

	info := TaskInfo{Name: name}
	child := NewTask(name)
	cctx, ccancel := context.WithCancel(tg.ctx)
	child.OnCancel(ccancel)
	tg.g.AttachChild(child)

	if tg.cfg.onSpawn != nil {
		tg.cfg.onSpawn(info)
	}

	go func() {
		defer ccancel()

		if tg.sem != nil {
			if err := tg.sem.Acquire(cctx); err != nil {
				// Cancelled while waiting for a slot. The child was
				// announced, so it still owes the group a result.
				child.Fail(&ChildError{Task: info, Err: err})
				tg.g.Offer(child, tg.cfg.exec)
				return
			}
			defer tg.sem.Release()
		}

		start := time.Now()
		v, err := runChild(cctx, fn)
		if tg.cfg.onComplete != nil {
			tg.cfg.onComplete(info, err, time.Since(start))
		}

		if err != nil {
			child.Fail(&ChildError{Task: info, Err: err})
		} else {
			child.Complete(v)
		}
		tg.g.Offer(child, tg.cfg.exec)
	}()
	return true
}

// runChild executes fn with panic recovery.
func runChild[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()
	return fn(ctx)
}

// Next returns the next completed result in completion order. It blocks
// until a child completes when none is ready. The second return is false
// once every announced child has reported in and all results have been
// consumed; after that, every call returns false again. Child errors are
// returned wrapped in [*ChildError].
//
// Next is single-consumer: concurrent calls panic.
func (tg *TaskGroup[T]) Next() (T, bool, error) {
	if !tg.polling.CompareAndSwap(false, true) {
		panic("taskgroup: concurrent Next calls on the same group")
	}
	defer tg.polling.Store(false)

	var zero T
	var rctx ResultContext
	done := make(chan struct{})
	consumer := NewTask("group.next")

	if !tg.g.WaitNext(consumer, &rctx, func() { close(done) }) {
		<-done
	}

	if !rctx.Valid {
		return zero, false, nil
	}
	if rctx.Err != nil {
		return zero, true, rctx.Err
	}
	v, _ := rctx.Value.(T)
	return v, true, nil
}

// CancelAll cancels the group and every attached child. Idempotent; the
// first call returns true. Children already completed are unaffected, and
// in-flight children still deliver results, typically cancellation errors.
func (tg *TaskGroup[T]) CancelAll() bool {
	return tg.g.CancelAll()
}

// IsCancelled reports whether the group has been cancelled.
func (tg *TaskGroup[T]) IsCancelled() bool { return tg.g.IsCancelled() }

// IsEmpty reports whether no children are pending.
func (tg *TaskGroup[T]) IsEmpty() bool { return tg.g.IsEmpty() }

// Context returns the context child tasks run under. It is cancelled when
// the group is cancelled or With returns.
func (tg *TaskGroup[T]) Context() context.Context { return tg.ctx }

// Stats returns a snapshot of the underlying group's counters.
func (tg *TaskGroup[T]) Stats() GroupStats { return tg.g.Stats() }
