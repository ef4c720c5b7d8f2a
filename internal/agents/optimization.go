package agents

import (
	"strings"

	"github.com/sanjoy16/C-Autograder-Pro/internal/heuristics"
	"github.com/sanjoy16/C-Autograder-Pro/internal/result"
)

const (
	NoteMemoryLeak     = "Potential memory leak: malloc without free."
	NotePrintfInLoop   = "printf inside loop: use buffered output or build the string first."
	NoteNoOptimization = "No major optimization issues detected."
)

type Optimization struct {
	Max float64
}

func (o Optimization) Evaluate(src string) result.AgentResult {
	score := o.Max
	var notes []string

	if heuristics.HasUnfreedAllocation(src) {
		score -= 4
		notes = append(notes, NoteMemoryLeak)
	}
	if heuristics.HasPrintfInLoop(src) {
		score -= 3
		notes = append(notes, NotePrintfInLoop)
	}

	report := NoteNoOptimization
	if len(notes) > 0 {
		report = strings.Join(notes, "\n")
	}
	return result.AgentResult{Score: result.Round2(clampScore(score, o.Max)), Report: report}
}
