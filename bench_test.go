package taskgroup_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/baxromumarov/taskgroup"
)

func BenchmarkSpawnAndDrain(b *testing.B) {
	for _, n := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = taskgroup.With(context.Background(), func(tg *taskgroup.TaskGroup[int]) error {
					for j := 0; j < n; j++ {
						tg.Spawn("bench", func(ctx context.Context) (int, error) {
							return j, nil
						})
					}
					for {
						if _, ok, _ := tg.Next(); !ok {
							return nil
						}
					}
				})
			}
		})
	}
}

func BenchmarkNextReadyFastPath(b *testing.B) {
	// The child's function returns before the first Next, so the result
	// usually flows through the ready queue; done closes before the offer,
	// so a Next that wins the race parks and takes a direct handoff instead.
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = taskgroup.With(context.Background(), func(tg *taskgroup.TaskGroup[int]) error {
			done := make(chan struct{})
			tg.Spawn("eager", func(ctx context.Context) (int, error) {
				defer close(done)
				return 1, nil
			})
			<-done
			_, _, _ = tg.Next()
			return nil
		})
	}
}

func BenchmarkNextDirectHandoff(b *testing.B) {
	// The gate opens just before Next, so the result is handed off directly
	// when the consumer parks first and goes through the ready queue when the
	// child offers first.
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = taskgroup.With(context.Background(), func(tg *taskgroup.TaskGroup[int]) error {
			gate := make(chan struct{})
			tg.Spawn("gated", func(ctx context.Context) (int, error) {
				<-gate
				return 1, nil
			})
			close(gate)
			_, _, _ = tg.Next()
			return nil
		})
	}
}

func BenchmarkMap(b *testing.B) {
	items := make([]int, 100)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = taskgroup.Map(context.Background(), items, func(ctx context.Context, n int) (int, error) {
			return n + 1, nil
		})
	}
}
