package dispatch

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
)

type poolTask struct {
	idx  int
	call Call
}

// processParallel fans a non-interactive batch out over a bounded worker
// pool. Results are written by input position, so output order matches
// input order whatever the completion order. Calls share only read-only
// book lookups, and one call's failure never cancels its siblings.
func (d *Dispatcher) processParallel(ctx context.Context, calls []Call) []Result {
	results := make([]Result, len(calls))

	var wg sync.WaitGroup
	pool, err := ants.NewPoolWithFunc(d.workers, func(v any) {
		defer wg.Done()
		task := v.(poolTask)
		results[task.idx] = d.dispatch(ctx, task.call, false)
	})
	if err != nil {
		for i, call := range calls {
			results[i] = d.dispatch(ctx, call, false)
		}
		return results
	}
	defer pool.Release()

	for i, call := range calls {
		wg.Add(1)
		if err := pool.Invoke(poolTask{idx: i, call: call}); err != nil {
			wg.Done()
			results[i] = Result{
				CallID:   call.ID,
				Function: call.Function.Name,
				Content:  err.Error(),
				Status:   StatusError,
				Code:     CodeExecution,
			}
		}
	}
	wg.Wait()

	return results
}
