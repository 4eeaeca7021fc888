package dataflow_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/locvowork/employee_etl/pkg/dataflow"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestForEachWorkers(t *testing.T) {
	ctx := context.Background()

	var sum int64
	err := dataflow.ForEach(ctx, dataflow.From(ctx, 1, 2, 3, 4, 5), func(n int) error {
		atomic.AddInt64(&sum, int64(n))
		return nil
	}, dataflow.WithWorkers(3))
	require.NoError(t, err)
	assert.Equal(t, int64(15), atomic.LoadInt64(&sum))
}

func TestForEachReturnsFirstError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := dataflow.ForEach(ctx, dataflow.From(ctx, 1, 2, 3), func(n int) error {
		if n == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestForEachCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := dataflow.ForEach(ctx, dataflow.Stream[int](make(chan int)), func(int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMapSlice(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps input order", func(t *testing.T) {
		in := make([]int, 200)
		for i := range in {
			in[i] = i
		}
		out, err := dataflow.MapSlice(ctx, in, func(n int) (int, error) {
			return n * 2, nil
		}, dataflow.WithWorkers(8))
		require.NoError(t, err)
		require.Len(t, out, len(in))
		for i, v := range out {
			assert.Equal(t, i*2, v)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		out, err := dataflow.MapSlice(ctx, []int{}, func(n int) (int, error) { return n, nil })
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("stops on error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := dataflow.MapSlice(ctx, []int{1, 2, 3, 4}, func(n int) (int, error) {
			if n == 3 {
				return 0, boom
			}
			return n, nil
		}, dataflow.WithWorkers(2))
		assert.ErrorIs(t, err, boom)
	})
}
