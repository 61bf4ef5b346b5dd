package testutil

import (
	"sync"

	dErrors "pawhub/pkg/domain-errors"
)

// ConcurrentResult tallies the outcomes of RunConcurrent.
type ConcurrentResult struct {
	Successes int32
	Failures  int32
	// ByCode counts failures by domain error code; errors without a code are
	// counted under CodeInternal.
	ByCode map[dErrors.Code]int
}

// RunConcurrent starts n goroutines running fn at once and waits for all of
// them. Every goroutine is released together so they contend for real.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		start = make(chan struct{})
		res   = &ConcurrentResult{ByCode: make(map[dErrors.Code]int)}
	)

	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := fn(i)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				res.Successes++
				return
			}
			res.Failures++
			res.ByCode[dErrors.CodeOf(err)]++
		}()
	}
	close(start)
	wg.Wait()
	return res
}
