// Package agents holds the independent scoring agents. Each agent turns one
// view of a submission into a result.AgentResult and never returns an error:
// collaborator failures are converted into fallback values inside the agent.
package agents

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sanjoy16/C-Autograder-Pro/internal/logging"
)

var (
	ErrSourceUnreadable   = errors.New("source unreadable")
	ErrMalformedTestCases = errors.New("malformed test cases")
)

// LoadSource reads a C source file. Bytes that are not valid UTF-8 are
// dropped.
func LoadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

func clampScore(score, max float64) float64 {
	if score < 0 {
		return 0
	}
	if score > max {
		return max
	}
	return score
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return logging.Discard()
	}
	return l
}
