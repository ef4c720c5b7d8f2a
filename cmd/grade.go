package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/sanjoy16/C-Autograder-Pro/internal/config"
	"github.com/sanjoy16/C-Autograder-Pro/internal/execution"
	"github.com/sanjoy16/C-Autograder-Pro/internal/llm"
	"github.com/sanjoy16/C-Autograder-Pro/internal/orchestrator"
	"github.com/sanjoy16/C-Autograder-Pro/internal/report"
	"github.com/sanjoy16/C-Autograder-Pro/internal/result"
	"github.com/sanjoy16/C-Autograder-Pro/internal/runner"
	"github.com/spf13/cobra"
)

var (
	flagTitle    string
	flagParallel int
	flagKeep     bool
	flagSandbox  bool
)

func newGradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade <source.c>...",
		Short: "Grade one or more C source files",
		Long: "Compile each source, run static analysis, execute generated test cases and print the scored report. " +
			"Reports are stored under <results.dir>/runs/<timestamp>/ and <results.dir>/latest points at the newest run.",
		Args: cobra.MinimumNArgs(1),
		RunE: runGrade,
	}
	cmd.Flags().StringVar(&flagTitle, "title", "", "what the program should do; used to generate test cases (default: file name)")
	cmd.Flags().IntVar(&flagParallel, "parallel", 1, "max submissions graded concurrently")
	cmd.Flags().BoolVar(&flagKeep, "keep", false, "keep the work directory with the source copy and binary")
	cmd.Flags().BoolVar(&flagSandbox, "sandbox", false, "run binaries in a docker container (overrides sandbox.enabled)")
	cmd.Flags().StringVar(&flagFormat, "format", "table", "output format (table, markdown, json)")
	return cmd
}

func runGrade(cmd *cobra.Command, args []string) error {
	if err := report.ValidateFormat(flagFormat); err != nil {
		return err
	}
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("sandbox") {
		cfg.Sandbox.Enabled = flagSandbox
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runDir, err := result.CreateRunDir(cfg.Results.Dir)
	if err != nil {
		return err
	}
	logger.Info("grading", "run_dir", runDir, "submissions", len(args))

	narrator := newNarrator(ctx, cfg, logger)
	base := runner.SubmissionOpts{
		Title:    flagTitle,
		RunDir:   runDir,
		Compiler: cfg.Compiler,
		Lint:     cfg.Lint,
		Orchestrator: &orchestrator.Orchestrator{
			Scoring:       cfg.Scoring,
			Executor:      newExecutor(cfg),
			TestGenerator: newTestGenerator(cfg),
			Narrator:      narrator,
			Logger:        logger,
		},
		Explainer: narrator,
		Keep:      flagKeep,
		Logger:    logger,
	}

	outcomes, errs := runner.GradeAll(ctx, base, args, flagParallel)
	out := cmd.OutOrStdout()

	var graded []*result.AggregateReport
	failed := len(errs)
	for _, o := range outcomes {
		if o == nil {
			continue
		}
		if !o.Compiled() {
			failed++
			printCompileFailure(out, o)
			continue
		}
		if err := report.Render(o.Report, flagFormat, cfg.Scoring.Weights, out); err != nil {
			return err
		}
		fmt.Fprintln(out)
		graded = append(graded, o.Report)
	}
	if len(graded) > 1 {
		fmt.Fprintln(out, "--- Summary ---")
		if err := report.Summarize(graded, flagFormat, out); err != nil {
			return err
		}
	}
	for _, err := range errs {
		fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %v\n", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d submissions were not graded", failed, len(args))
	}
	return nil
}

func printCompileFailure(w io.Writer, o *runner.Outcome) {
	fmt.Fprintf(w, "Compilation failed: %s\n\n", o.SourcePath)
	fmt.Fprintf(w, "Compiler log:\n%s\n", o.Compile.Errors)
	fmt.Fprintf(w, "Explanation:\n%s\n\n", o.Explanation)
	fmt.Fprintln(w, "Fix the errors and resubmit.")
	fmt.Fprintln(w)
}

func newExecutor(cfg *config.Config) execution.Executor {
	if cfg.Sandbox.Enabled {
		return &execution.Sandbox{
			Image:       cfg.Sandbox.Image,
			CPULimit:    cfg.Sandbox.CPULimit,
			MemoryLimit: cfg.Sandbox.MemoryLimit,
		}
	}
	return execution.Local{}
}

func newTestGenerator(cfg *config.Config) llm.Generator {
	return llm.NewChatClient(llm.ChatOptions{
		BaseURL: cfg.Generator.BaseURL,
		APIKey:  os.Getenv(cfg.Generator.APIKeyEnv),
		Model:   cfg.Generator.Model,
		Timeout: cfg.LLM.RequestTimeout,
	})
}

func newNarrator(ctx context.Context, cfg *config.Config, logger *slog.Logger) llm.Generator {
	gen, err := llm.NewGemini(ctx, llm.GeminiOptions{
		APIKey:  os.Getenv(cfg.Narrator.APIKeyEnv),
		Model:   cfg.Narrator.Model,
		BaseURL: cfg.Narrator.BaseURL,
		Timeout: cfg.LLM.RequestTimeout,
	})
	if err != nil {
		logger.Warn("narrator disabled", "error", err)
		return llm.Disabled{Name: "narrator"}
	}
	return gen
}
