package agents

import (
	"fmt"

	"github.com/sanjoy16/C-Autograder-Pro/internal/heuristics"
	"github.com/sanjoy16/C-Autograder-Pro/internal/result"
)

const (
	maxDesignLines  = 200
	minFunctions    = 2
	minCommentMarks = 3
)

// Design scores structure: size, decomposition into functions, comments.
type Design struct {
	Max float64
}

func (d Design) Evaluate(src string) result.AgentResult {
	lines := heuristics.LineCount(src)
	functions := heuristics.CountFunctions(src)
	comments := heuristics.CountComments(src)

	score := d.Max
	if lines > maxDesignLines {
		score -= 2
	}
	if functions < minFunctions {
		score -= 3
	}
	if comments < minCommentMarks {
		score -= 2
	}

	return result.AgentResult{
		Score:  result.Round2(clampScore(score, d.Max)),
		Report: fmt.Sprintf("Lines: %d, Functions: %d, Comments: %d", lines, functions, comments),
	}
}
