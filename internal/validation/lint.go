package validation

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sanjoy16/C-Autograder-Pro/internal/result"
)

// Points lost per static-analysis finding.
const staticIssuePenalty = 2.0

type StaticResult struct {
	Score  float64
	Issues int
}

// RunLint runs the static analyzer on src and returns what it wrote to
// stderr. Failures to run are reported as text, never as an error, so the
// scorer sees them like any other report.
func RunLint(ctx context.Context, lintCmd string, args []string, src string) string {
	cmd := exec.CommandContext(ctx, lintCmd, append(append([]string{}, args...), src)...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil, errors.As(err, &exitErr):
		return stderr.String()
	case errors.Is(err, exec.ErrNotFound):
		return fmt.Sprintf("%s not installed on server.", filepath.Base(lintCmd))
	default:
		return fmt.Sprintf("Error running %s: %v", filepath.Base(lintCmd), err)
	}
}

// ScoreStaticReport counts "error:" and "warning:" markers in an analyzer
// report. When there are none but the report shows the analyzer ran, every
// non-blank line other than its "Checking ..." progress lines counts as an
// issue.
func ScoreStaticReport(text string, max float64) StaticResult {
	issues := strings.Count(text, "error:") + strings.Count(text, "warning:")
	if issues == 0 && strings.Contains(text, "Checking") {
		for _, line := range splitLines(text) {
			if strings.TrimSpace(line) != "" && !strings.Contains(line, "Checking ") {
				issues++
			}
		}
	}
	score := max - float64(issues)*staticIssuePenalty
	if score < 0 {
		score = 0
	}
	return StaticResult{Score: result.Round2(score), Issues: issues}
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}
