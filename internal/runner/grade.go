package runner

import (
	"context"
	"fmt"
)

// GradeAll grades every source with at most parallel submissions in flight.
// Outcomes keep the order of sources; a submission that failed with an
// error has a nil outcome and its error in the returned slice.
func GradeAll(ctx context.Context, base SubmissionOpts, sources []string, parallel int) ([]*Outcome, []error) {
	outcomes := make([]*Outcome, len(sources))
	jobs := make([]Job, len(sources))
	for i, src := range sources {
		opts := base
		opts.SourcePath = src
		opts.Index = i
		jobs[i] = func(ctx context.Context) error {
			out, err := RunSubmission(ctx, &opts)
			if err != nil {
				return fmt.Errorf("%s: %w", src, err)
			}
			outcomes[i] = out
			return nil
		}
	}
	return outcomes, RunPool(ctx, parallel, jobs)
}
