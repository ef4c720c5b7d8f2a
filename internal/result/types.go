package result

import (
	"math"
	"time"
)

// AggregateReport is everything one evaluation produces.
type AggregateReport struct {
	Title        string      `json:"title"`
	Source       string      `json:"source"`
	Design       AgentResult `json:"design"`
	Tests        AgentResult `json:"tests"`
	Performance  AgentResult `json:"performance"`
	Optimization AgentResult `json:"optimization"`
	StaticReport string      `json:"static_report"`
	StaticScore  float64     `json:"static_score"`
	TotalScore   float64     `json:"total_score"`
	Narrative    string      `json:"narrative,omitempty"`
	GeneratedAt  time.Time   `json:"generated_at"`
}

type AgentResult struct {
	Score  float64          `json:"score"`
	Report string           `json:"report"`
	Cases  []TestCaseResult `json:"cases,omitempty"`
}

type TestCaseResult struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Pass     bool   `json:"pass"`
}

// Scores lists the component scores in the order they are summed.
type Scores struct {
	Design       float64 `json:"design"`
	Tests        float64 `json:"tests"`
	Performance  float64 `json:"performance"`
	Optimization float64 `json:"optimization"`
	Static       float64 `json:"static"`
}

func (r *AggregateReport) Scores() Scores {
	return Scores{
		Design:       r.Design.Score,
		Tests:        r.Tests.Score,
		Performance:  r.Performance.Score,
		Optimization: r.Optimization.Score,
		Static:       r.StaticScore,
	}
}

func (r *AggregateReport) PassedCases() int {
	n := 0
	for _, c := range r.Tests.Cases {
		if c.Pass {
			n++
		}
	}
	return n
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
