package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunPool(t *testing.T) {
	t.Run("preserves input order", func(t *testing.T) {
		n := 20
		out := RunPool(context.Background(), 5, n, func(ctx context.Context, i int) int {
			time.Sleep(time.Duration(n-i) * time.Millisecond)
			return i * i
		})

		assert.Len(t, out, n)
		for i, v := range out {
			assert.Equal(t, i*i, v)
		}
	})

	t.Run("never exceeds the worker limit", func(t *testing.T) {
		var inFlight, peak atomic.Int32
		RunPool(context.Background(), 3, 30, func(ctx context.Context, i int) struct{} {
			cur := inFlight.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return struct{}{}
		})

		assert.LessOrEqual(t, peak.Load(), int32(3))
		assert.Positive(t, peak.Load())
	})

	t.Run("visits every index once", func(t *testing.T) {
		var calls atomic.Int32
		seen := RunPool(context.Background(), 8, 100, func(ctx context.Context, i int) bool {
			calls.Add(1)
			return true
		})

		assert.Equal(t, int32(100), calls.Load())
		assert.NotContains(t, seen, false)
	})

	t.Run("empty input", func(t *testing.T) {
		out := RunPool(context.Background(), 4, 0, func(ctx context.Context, i int) int {
			t.Fatal("fn must not be called")
			return 0
		})
		assert.Empty(t, out)
	})

	t.Run("non-positive worker count still runs", func(t *testing.T) {
		out := RunPool(context.Background(), 0, 3, func(ctx context.Context, i int) int { return i + 1 })
		assert.Equal(t, []int{1, 2, 3}, out)
	})

	t.Run("cancelled context reaches fn", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		out := RunPool(ctx, 2, 4, func(ctx context.Context, i int) error { return ctx.Err() })
		for _, err := range out {
			assert.ErrorIs(t, err, context.Canceled)
		}
	})
}
