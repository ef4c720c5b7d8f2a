package runner

import (
	"context"
	"fmt"
	"sync"
)

type Job func(ctx context.Context) error

// RunPool executes jobs with at most maxWorkers in flight and returns every
// error. Jobs not yet started when ctx is cancelled are skipped and report
// ctx.Err(); a panicking job is reported as an error.
func RunPool(ctx context.Context, maxWorkers int, jobs []Job) []error {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}
	sem := make(chan struct{}, maxWorkers)

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			record(fmt.Errorf("job %d not started: %w", i, err))
			continue
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			record(fmt.Errorf("job %d not started: %w", i, ctx.Err()))
			continue
		}
		wg.Add(1)
		go func(i int, j Job) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if p := recover(); p != nil {
					record(fmt.Errorf("job %d panicked: %v", i, p))
				}
			}()
			if err := j(ctx); err != nil {
				record(err)
			}
		}(i, job)
	}
	wg.Wait()
	return errs
}
