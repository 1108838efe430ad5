package taskgroup_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/taskgroup"
)

func TestFirstReturnsFastestSuccess(t *testing.T) {
	v, err := taskgroup.First(context.Background(),
		func(ctx context.Context) (string, error) {
			select {
			case <-time.After(time.Second):
				return "slow", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
		func(ctx context.Context) (string, error) {
			return "fast", nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "fast", v)
}

func TestFirstSkipsFailures(t *testing.T) {
	v, err := taskgroup.First(context.Background(),
		func(ctx context.Context) (int, error) {
			return 0, errors.New("nope")
		},
		func(ctx context.Context) (int, error) {
			time.Sleep(10 * time.Millisecond)
			return 42, nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFirstAllFail(t *testing.T) {
	e1 := errors.New("first failure")
	e2 := errors.New("second failure")

	_, err := taskgroup.First(context.Background(),
		func(ctx context.Context) (int, error) { return 0, e1 },
		func(ctx context.Context) (int, error) {
			time.Sleep(10 * time.Millisecond)
			return 0, e2
		},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, e2, "last observed error is returned")
}

func TestFirstEmpty(t *testing.T) {
	v, err := taskgroup.First[int](context.Background())
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestFirstContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := taskgroup.First(ctx,
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
	)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFirstNilTaskPanics(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = taskgroup.First[int](context.Background(), nil)
	})
}

func TestFirstCancelsLosers(t *testing.T) {
	loserCancelled := make(chan struct{})

	v, err := taskgroup.First(context.Background(),
		func(ctx context.Context) (int, error) {
			return 1, nil
		},
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			close(loserCancelled)
			return 0, ctx.Err()
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	select {
	case <-loserCancelled:
	case <-time.After(time.Second):
		t.Fatal("loser was never cancelled")
	}
}
