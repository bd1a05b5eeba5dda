package tasks

import (
	"context"
	"sync"
)

// RunPool calls fn for every index in [0, n) on at most workers goroutines and
// returns the results in index order, whatever order they finish in.
//
// Each worker writes only the slots of the indices it received, so the result slice
// needs no lock. Every index is visited even after ctx is done; fn decides what a
// cancelled item produces. RunPool returns once all workers have drained the queue.
func RunPool[T any](ctx context.Context, workers, n int, fn func(ctx context.Context, i int) T) []T {
	out := make([]T, n)
	if n == 0 {
		return out
	}
	if workers <= 0 {
		workers = 1
	}
	workers = min(workers, n)

	jobs := make(chan int, n)
	for i := range n {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = fn(ctx, i)
			}
		}()
	}

	wg.Wait()
	return out
}
