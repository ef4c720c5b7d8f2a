package validation

import (
	"github.com/sanjoy16/C-Autograder-Pro/internal/config"
	"github.com/sanjoy16/C-Autograder-Pro/internal/result"
)

// MaxTotal caps the aggregate score.
const MaxTotal = 100.0

// Total sums the component scores. Each component is first clamped into
// [0, its weight]; the sum is clamped into [0, MaxTotal] and rounded to two
// decimals.
func Total(scores result.Scores, weights config.Weights) float64 {
	total := clamp(scores.Design, 0, weights.Design) +
		clamp(scores.Tests, 0, weights.Tests) +
		clamp(scores.Performance, 0, weights.Performance) +
		clamp(scores.Optimization, 0, weights.Optimization) +
		clamp(scores.Static, 0, weights.Static)
	return result.Round2(clamp(total, 0, MaxTotal))
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
