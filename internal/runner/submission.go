package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sanjoy16/C-Autograder-Pro/internal/config"
	"github.com/sanjoy16/C-Autograder-Pro/internal/llm"
	"github.com/sanjoy16/C-Autograder-Pro/internal/logging"
	"github.com/sanjoy16/C-Autograder-Pro/internal/orchestrator"
	"github.com/sanjoy16/C-Autograder-Pro/internal/result"
	"github.com/sanjoy16/C-Autograder-Pro/internal/validation"
)

// ExplanationUnavailable replaces the compiler-error explanation when the
// explainer fails.
const ExplanationUnavailable = "Compiler error explanation not configured."

const compileLogFile = "compile.log"

type SubmissionOpts struct {
	SourcePath string
	// Title describes what the program should do; the file name is used when
	// empty.
	Title        string
	Index        int
	RunDir       string
	Compiler     config.Command
	Lint         config.Command
	Orchestrator *orchestrator.Orchestrator
	// Explainer turns a compiler log into hints for the author.
	Explainer llm.Generator
	Keep      bool
	Logger    *slog.Logger
}

// Outcome is what grading one submission produced. Report is nil when the
// submission did not compile.
type Outcome struct {
	SourcePath  string
	Dir         string
	Compile     *validation.CompileResult
	Explanation string
	Report      *result.AggregateReport
}

func (o *Outcome) Compiled() bool {
	return o.Compile != nil && o.Compile.Success
}

// RunSubmission copies the source into its own work directory, compiles it,
// runs static analysis, evaluates it and persists the report. A compile
// failure is not an error: the outcome carries the compiler log and its
// explanation instead of a report.
func RunSubmission(ctx context.Context, opts *SubmissionOpts) (*Outcome, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	log = log.With("source", opts.SourcePath)

	subDir := result.SubmissionDir(opts.RunDir, opts.Index, opts.SourcePath)
	workDir := filepath.Join(subDir, "workspace")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}
	defer func() {
		if opts.Keep {
			return
		}
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("removing work dir", "dir", workDir, "error", err)
		}
	}()

	src := filepath.Join(workDir, sourceName(opts.SourcePath))
	if err := copyFile(opts.SourcePath, src); err != nil {
		return nil, fmt.Errorf("copying %s: %w", opts.SourcePath, err)
	}

	out := &Outcome{SourcePath: opts.SourcePath, Dir: subDir}
	compiled, err := validation.Compile(ctx, opts.Compiler.Command, opts.Compiler.Args, src)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", opts.SourcePath, err)
	}
	out.Compile = compiled

	if !compiled.Success {
		log.Info("compilation failed")
		if err := os.WriteFile(filepath.Join(subDir, compileLogFile), []byte(compiled.Errors), 0o644); err != nil {
			log.Warn("writing compile log", "error", err)
		}
		out.Explanation = explain(ctx, log, opts.Explainer, compiled.Errors)
		return out, nil
	}

	static := validation.RunLint(ctx, opts.Lint.Command, opts.Lint.Args, src)
	report := opts.Orchestrator.Evaluate(ctx, orchestrator.Submission{
		Title:        titleFor(opts),
		SourcePath:   src,
		BinaryPath:   compiled.BinaryPath,
		StaticReport: static,
	})
	report.Source = opts.SourcePath

	if err := result.WriteReport(subDir, report); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	out.Report = report
	return out, nil
}

func explain(ctx context.Context, log *slog.Logger, gen llm.Generator, errorLog string) string {
	if gen == nil {
		return ExplanationUnavailable
	}
	text, err := gen.Generate(ctx, llm.CompileErrorPrompt(errorLog))
	if err != nil || strings.TrimSpace(text) == "" {
		log.Warn("compiler explanation unavailable", "error", err)
		return ExplanationUnavailable
	}
	return text
}

func titleFor(opts *SubmissionOpts) string {
	if opts.Title != "" {
		return opts.Title
	}
	base := filepath.Base(opts.SourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// sourceName keeps the .c suffix so the compiled binary lands beside the
// source.
func sourceName(path string) string {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".c") {
		base += ".c"
	}
	return base
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
