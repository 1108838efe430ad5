package taskgroup

import (
	"context"
	"fmt"
)

// ForEach runs fn for each item in the slice as children of one group and
// waits for all of them. The first error cancels the remaining children;
// ForEach returns that first error (in completion order), wrapped in
// [*ChildError].
//
//	err := taskgroup.ForEach(ctx, urls, func(ctx context.Context, u string) error {
//	    return fetch(ctx, u)
//	}, taskgroup.WithLimit(10))
func ForEach[T any](ctx context.Context, items []T, fn func(ctx context.Context, item T) error, opts ...Option) error {
	var firstErr error
	_ = With(ctx, func(tg *TaskGroup[struct{}]) error {
		for i, item := range items {
			tg.Spawn(fmt.Sprintf("foreach[%d]", i), func(ctx context.Context) (struct{}, error) {
				return struct{}{}, fn(ctx, item)
			})
		}
		for {
			_, ok, err := tg.Next()
			if !ok {
				return nil
			}
			if err != nil && firstErr == nil {
				firstErr = err
				tg.CancelAll()
			}
		}
	}, opts...)
	return firstErr
}

// keyed carries a result back to its input slot; Map children complete in
// arbitrary order.
type keyed[R any] struct {
	idx int
	val R
}

// Map runs fn for each item concurrently and collects the results in input
// order, regardless of completion order. The first error cancels the
// remaining children and Map returns nil and that error.
//
//	prices, err := taskgroup.Map(ctx, products, func(ctx context.Context, p Product) (float64, error) {
//	    return fetchPrice(ctx, p)
//	}, taskgroup.WithLimit(5))
func Map[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) (R, error), opts ...Option) ([]R, error) {
	results := make([]R, len(items))
	var firstErr error
	_ = With(ctx, func(tg *TaskGroup[keyed[R]]) error {
		for i, item := range items {
			tg.Spawn(fmt.Sprintf("map[%d]", i), func(ctx context.Context) (keyed[R], error) {
				r, err := fn(ctx, item)
				return keyed[R]{idx: i, val: r}, err
			})
		}
		for {
			kv, ok, err := tg.Next()
			if !ok {
				return nil
			}
			if err != nil {
				if firstErr == nil {
					firstErr = err
					tg.CancelAll()
				}
				continue
			}
			results[kv.idx] = kv.val
		}
	}, opts...)
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
