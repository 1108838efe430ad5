package main

import (
	"context"
	"fmt"
	"time"

	"github.com/baxromumarov/taskgroup"
)

func fetchReplica(name string, delay time.Duration) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		select {
		case <-time.After(delay):
			return name, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	now := time.Now()

	err := taskgroup.With(ctx, func(tg *taskgroup.TaskGroup[string]) error {
		tg.Spawn("replica-1", fetchReplica("replica-1", 300*time.Millisecond))
		tg.Spawn("replica-2", fetchReplica("replica-2", 120*time.Millisecond))
		tg.Spawn("replica-3", fetchReplica("replica-3", 80*time.Millisecond))

		for {
			v, ok, err := tg.Next()
			if !ok {
				return nil
			}
			if err != nil {
				fmt.Println("failed:", err)
				continue
			}
			fmt.Println("completed:", v)
		}
	},
		taskgroup.WithLimit(2),
		taskgroup.WithOnComplete(func(info taskgroup.TaskInfo, err error, d time.Duration) {
			fmt.Printf("  %s finished in %s\n", info.Name, d.Round(time.Millisecond))
		}),
	)

	if err != nil {
		fmt.Println("Final error:", err)
	}

	fmt.Println("Elapsed time:", time.Since(now).Round(time.Millisecond))
}
