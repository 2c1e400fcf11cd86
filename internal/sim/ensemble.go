package sim

import (
	"context"
	"sync"
)

// RunEnsemble executes n independent headless runs concurrently, one
// goroutine per run. build must return a fresh Session for each index;
// a session is only ever touched by its own goroutine. The results
// line up with the build indices, and any build or run error fails the
// whole batch.
func RunEnsemble(ctx context.Context, n, ticks int, build func(i int) (Session, error)) ([]*Result, error) {
	results := make([]*Result, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			s, err := build(idx)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = Run(ctx, s, ticks)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
