package validation

import "github.com/sanjoy16/C-Autograder-Pro/internal/config"

// Criterion is one row of the grading rubric.
type Criterion struct {
	Name        string  `json:"name"`
	Max         float64 `json:"max"`
	Description string  `json:"description"`
}

// Rubric lists the scored components in evaluation order, each capped at
// its configured weight.
func Rubric(w config.Weights) []Criterion {
	return []Criterion{
		{Name: "Design", Max: w.Design, Description: "size, functions and comments"},
		{Name: "Functional Tests", Max: w.Tests, Description: "generated test cases passed"},
		{Name: "Performance", Max: w.Performance, Description: "runtime, loops and branches"},
		{Name: "Optimization", Max: w.Optimization, Description: "memory leaks and output in loops"},
		{Name: "Static Analysis", Max: w.Static, Description: "analyzer errors and warnings"},
	}
}

// RubricTotal is the best achievable aggregate score.
func RubricTotal(w config.Weights) float64 {
	return clamp(w.Sum(), 0, MaxTotal)
}
