package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sanjoy16/C-Autograder-Pro/internal/execution"
	"github.com/sanjoy16/C-Autograder-Pro/internal/heuristics"
	"github.com/sanjoy16/C-Autograder-Pro/internal/result"
)

const (
	slowRuntime     = 0.7
	verySlowRuntime = 1.2
	maxLoops        = 5
	maxBranches     = 12
	// Added to the timeout to stand in for the runtime of a program that
	// never finished.
	timeoutPenalty = 0.5
)

// Performance samples one run with empty input and scores runtime and
// control-flow density.
type Performance struct {
	Executor execution.Executor
	Timeout  time.Duration
	Max      float64
	Logger   *slog.Logger
}

func (p Performance) Evaluate(ctx context.Context, src, binary string) result.AgentResult {
	runtime := p.sample(ctx, binary)
	loops := heuristics.CountLoops(src)
	branches := heuristics.CountBranches(src)

	score := p.Max
	if runtime > slowRuntime {
		score -= 3
	}
	if runtime > verySlowRuntime {
		score -= 3
	}
	if loops > maxLoops {
		score -= 2
	}
	if branches > maxBranches {
		score -= 2
	}

	return result.AgentResult{
		Score:  result.Round2(clampScore(score, p.Max)),
		Report: fmt.Sprintf("Runtime: %.3fs | Loops: %d | Branches: %d", runtime, loops, branches),
	}
}

// sample returns the runtime in seconds.
func (p Performance) sample(ctx context.Context, binary string) float64 {
	out, err := p.Executor.Run(ctx, binary, nil, p.Timeout)
	switch {
	case errors.Is(err, execution.ErrTimeout):
		return p.Timeout.Seconds() + timeoutPenalty
	case err != nil:
		loggerOrDiscard(p.Logger).Warn("performance sample failed, recording zero runtime",
			"binary", binary, "error", err)
		return 0
	}
	return out.Elapsed.Seconds()
}
