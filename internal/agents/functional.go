package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sanjoy16/C-Autograder-Pro/internal/execution"
	"github.com/sanjoy16/C-Autograder-Pro/internal/llm"
	"github.com/sanjoy16/C-Autograder-Pro/internal/result"
)

const (
	ActualTimeout      = "Timeout"
	ActualRuntimeError = "Runtime Error"
)

// Functional runs the binary against generated test cases.
type Functional struct {
	Generator llm.Generator
	Executor  execution.Executor
	Timeout   time.Duration
	Max       float64
	Logger    *slog.Logger
}

func (f Functional) Evaluate(ctx context.Context, title, binary string) result.AgentResult {
	log := loggerOrDiscard(f.Logger)

	cases, err := GenerateTestCases(ctx, f.Generator, title)
	if err != nil {
		log.Warn("using fallback test cases", "title", title, "error", err)
		cases = FallbackTestCases()
	}

	results := make([]result.TestCaseResult, 0, len(cases))
	passed := 0
	for _, tc := range cases {
		r := f.runCase(ctx, binary, tc)
		if r.Pass {
			passed++
		}
		results = append(results, r)
	}

	score := float64(passed) / float64(llm.TestCount) * f.Max
	return result.AgentResult{
		Score:  result.Round2(clampScore(score, f.Max)),
		Report: fmt.Sprintf("%d/%d test cases passed.", passed, llm.TestCount),
		Cases:  results,
	}
}

func (f Functional) runCase(ctx context.Context, binary string, tc TestCase) result.TestCaseResult {
	expected := strings.TrimSpace(tc.Expected)
	input := tc.Input
	if !strings.HasSuffix(input, "\n") {
		input += "\n"
	}
	r := result.TestCaseResult{Input: strings.TrimSpace(tc.Input), Expected: expected}

	out, err := f.Executor.Run(ctx, binary, []byte(input), f.Timeout)
	switch {
	case errors.Is(err, execution.ErrTimeout):
		r.Actual = ActualTimeout
		return r
	case err != nil:
		loggerOrDiscard(f.Logger).Debug("test case failed to run", "input", r.Input, "error", err)
		r.Actual = ActualRuntimeError
		return r
	}

	r.Actual = strings.TrimSpace(strings.ToValidUTF8(string(out.Stdout), "\uFFFD"))
	r.Pass = Passes(expected, r.Actual)
	return r
}
