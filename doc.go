// Package taskgroup provides a structured-concurrency task group: a
// rendezvous between dynamically spawned child tasks and a single consumer
// that drains their results in completion order.
//
// # Running a Group
//
// The primary entry point is [With], which creates a group, executes a body
// that spawns children via [TaskGroup.Spawn], and drains every child before
// returning — no child outlives the call:
//
//	err := taskgroup.With(ctx, func(tg *taskgroup.TaskGroup[string]) error {
//	    tg.Spawn("fetch-a", func(ctx context.Context) (string, error) {
//	        return fetch(ctx, "a")
//	    })
//	    tg.Spawn("fetch-b", func(ctx context.Context) (string, error) {
//	        return fetch(ctx, "b")
//	    })
//	    for {
//	        v, ok, err := tg.Next()
//	        if !ok {
//	            return nil
//	        }
//	        if err != nil {
//	            return err
//	        }
//	        use(v)
//	    }
//	})
//
// [TaskGroup.Next] yields results in completion order, not spawn order, and
// reports ok=false exactly once every announced child has reported in and
// all results have been consumed. Next is single-consumer; concurrent calls
// panic.
//
// # Cancellation
//
// [TaskGroup.CancelAll] cancels the group: new [TaskGroup.Spawn] calls are
// refused, and every attached child's context is cancelled. Cancellation is
// cooperative and non-blocking — in-flight children keep running until they
// observe it, and their results (typically cancellation errors) still
// arrive through Next. Cancellation is sticky and idempotent: the child
// cancellation work runs exactly once no matter how often CancelAll is
// called.
//
// A body that returns an error or panics cancels the group the same way
// before the drain.
//
// # Errors
//
// Child failures are opaque payloads delivered in completion order; each is
// wrapped in [*ChildError] for attribution. Use [IsChildError], [ChildOf]
// and [CauseOf] to inspect them. A panicking child surfaces as an error
// result wrapping [*PanicError] with the captured stack trace.
//
// # Bounded Concurrency
//
// Use [WithLimit] to restrict the number of children executing at once.
// Children beyond the limit wait for a slot, observing cancellation while
// waiting. For standalone use, [Semaphore] provides the same slot semantics
// with [Semaphore.Acquire], [Semaphore.TryAcquire], and [Semaphore.Release].
//
// # Helpers
//
// Convenience functions built on groups:
//
//   - [ForEach]: apply a function to every item in a slice concurrently.
//   - [Map]: transform every item concurrently, preserving input order.
//   - [First]: return the first task to succeed, cancelling the rest.
//
// # Observability
//
// [WithOnSpawn] and [WithOnComplete] register per-child lifecycle hooks;
// [TaskGroup.Stats] exposes counters for spawned children, direct handoffs
// and ready-queue traffic.
//
// # The Core Rendezvous
//
// The lower-level [Group], [Task], [Executor] and [PollResult] types expose
// the rendezvous itself for runtime integrators. All count transitions ride
// a single packed atomic status word (cancelled bit, waiting bit, 31-bit
// ready and pending counters); completed children either hand their result
// directly to the parked consumer — its frame is filled before it is
// enqueued for resumption — or park it in a FIFO ready queue behind a
// transient mutex. [Group.Poll] returns Empty the moment no children are
// pending, so a consumer can never park against an empty group and
// deadlock. Reference counts taken by the group around the handoff window
// balance to zero on every path, including [Group.Destroy] draining
// unconsumed results.
//
// Timeouts are layered, not built in: spawn a timer child into the same
// group and treat its completion as the deadline.
package taskgroup
