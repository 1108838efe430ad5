package taskgroup

import (
	"context"
	"fmt"
)

// First runs all tasks concurrently in one group and returns the result of
// the first task to succeed (return nil error). The remaining tasks are
// cancelled immediately upon the first success, and their results are
// drained before First returns.
//
// If all tasks fail, First returns the zero value and the cause of the last
// error observed. If ctx is cancelled before any task succeeds, First
// returns ctx.Err().
//
// If tasks is empty, First returns (zero, nil).
//
// First panics if any element of tasks is nil.
func First[T any](
	ctx context.Context,
	tasks ...func(context.Context) (T, error),
) (T, error) {
	var zero T
	if len(tasks) == 0 {
		return zero, nil
	}
	for i, fn := range tasks {
		if fn == nil {
			panic(fmt.Sprintf("taskgroup: First task[%d] must not be nil", i))
		}
	}

	var (
		val     T
		won     bool
		lastErr error
	)

	_ = With(ctx, func(tg *TaskGroup[T]) error {
		for i, fn := range tasks {
			tg.Spawn(fmt.Sprintf("first[%d]", i), fn)
		}

		for {
			v, ok, err := tg.Next()
			if !ok {
				return nil
			}
			if err == nil {
				val, won = v, true
				tg.CancelAll()
				return nil
			}
			lastErr = err
		}
	})

	if won {
		return val, nil
	}
	if ctx.Err() != nil {
		return zero, ctx.Err()
	}
	return zero, CauseOf(lastErr)
}
