// Package orchestrator runs the scoring agents over one compiled submission
// and combines their results into a single report.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sanjoy16/C-Autograder-Pro/internal/agents"
	"github.com/sanjoy16/C-Autograder-Pro/internal/config"
	"github.com/sanjoy16/C-Autograder-Pro/internal/execution"
	"github.com/sanjoy16/C-Autograder-Pro/internal/llm"
	"github.com/sanjoy16/C-Autograder-Pro/internal/logging"
	"github.com/sanjoy16/C-Autograder-Pro/internal/result"
	"github.com/sanjoy16/C-Autograder-Pro/internal/validation"
)

// NarrativeUnavailable replaces the narrative whenever the narrator fails.
const NarrativeUnavailable = "Narrative generation not configured."

type Submission struct {
	Title        string
	SourcePath   string
	BinaryPath   string
	StaticReport string
}

type Orchestrator struct {
	Scoring       config.Scoring
	Executor      execution.Executor
	TestGenerator llm.Generator
	Narrator      llm.Generator
	Logger        *slog.Logger
	// Now stamps GeneratedAt; time.Now when nil.
	Now func() time.Time
}

// Evaluate never fails. Each stage that breaks is replaced by a zero score
// with an explanatory report, and the remaining stages still run.
func (o *Orchestrator) Evaluate(ctx context.Context, sub Submission) *result.AggregateReport {
	log := o.logger().With("title", sub.Title, "source", sub.SourcePath)
	w := o.Scoring.Weights

	src, err := agents.LoadSource(sub.SourcePath)
	if err != nil {
		log.Warn("evaluating with empty source", "error", err)
		src = ""
	}

	report := &result.AggregateReport{
		Title:        sub.Title,
		Source:       sub.SourcePath,
		StaticReport: sub.StaticReport,
		GeneratedAt:  o.now().UTC(),
	}

	report.Design = o.guard(log, "design", func() result.AgentResult {
		return agents.Design{Max: w.Design}.Evaluate(src)
	})
	report.Tests = o.guard(log, "functional", func() result.AgentResult {
		return agents.Functional{
			Generator: o.testGenerator(),
			Executor:  o.Executor,
			Timeout:   o.Scoring.TestTimeout,
			Max:       w.Tests,
			Logger:    log,
		}.Evaluate(ctx, sub.Title, sub.BinaryPath)
	})
	report.Performance = o.guard(log, "performance", func() result.AgentResult {
		return agents.Performance{
			Executor: o.Executor,
			Timeout:  o.Scoring.TestTimeout,
			Max:      w.Performance,
			Logger:   log,
		}.Evaluate(ctx, src, sub.BinaryPath)
	})
	report.Optimization = o.guard(log, "optimization", func() result.AgentResult {
		return agents.Optimization{Max: w.Optimization}.Evaluate(src)
	})
	report.StaticScore = validation.ScoreStaticReport(sub.StaticReport, w.Static).Score

	report.TotalScore = validation.Total(report.Scores(), w)
	report.Narrative = o.narrate(ctx, log, report)

	log.Info("evaluation complete",
		"total", report.TotalScore,
		"design", report.Design.Score,
		"tests", report.Tests.Score,
		"performance", report.Performance.Score,
		"optimization", report.Optimization.Score,
		"static", report.StaticScore)
	return report
}

func (o *Orchestrator) guard(log *slog.Logger, name string, fn func() result.AgentResult) (res result.AgentResult) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("agent panicked", "agent", name, "panic", p)
			res = result.AgentResult{Report: fmt.Sprintf("%s agent failed: %v", name, p)}
		}
	}()
	return fn()
}

func (o *Orchestrator) narrate(ctx context.Context, log *slog.Logger, report *result.AggregateReport) (narrative string) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("narrator panicked", "panic", p)
			narrative = NarrativeUnavailable
		}
	}()
	if o.Narrator == nil {
		return NarrativeUnavailable
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Warn("encoding report for narrator", "error", err)
		return NarrativeUnavailable
	}
	text, err := o.Narrator.Generate(ctx, llm.NarrativePrompt(string(data)))
	if err != nil {
		log.Warn("narrative unavailable", "error", err)
		return NarrativeUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return NarrativeUnavailable
	}
	return text
}

func (o *Orchestrator) testGenerator() llm.Generator {
	if o.TestGenerator == nil {
		return llm.Disabled{Name: "test generator"}
	}
	return o.TestGenerator
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}
