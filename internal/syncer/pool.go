package syncer

import (
	"context"
	"sync"
)

// DefaultWorkers bounds concurrent sync units conservatively so a fleet
// pointing at one host does not open dozens of simultaneous connections.
const DefaultWorkers = 4

func clampWorkers(n int) int {
	if n < 1 {
		return DefaultWorkers
	}
	return n
}

// runIndexedParallel executes fn for indices [0,n) on a bounded worker pool
// and returns all results in completion order. Once ctx is canceled no new
// index is dispatched; undispatched indices yield canceled(idx) instead, so
// every index produces exactly one result.
func runIndexedParallel[T any](ctx context.Context, n, workers int, fn func(int) T, canceled func(int) T) []T {
	jobs := make(chan int)
	results := make(chan T)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range jobs {
			results <- fn(idx)
		}
	}

	if workers > n {
		workers = n
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go worker()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				for j := i; j < n; j++ {
					results <- canceled(j)
				}
				return
			}
		}
	}()

	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, <-results)
	}
	wg.Wait()
	return out
}
