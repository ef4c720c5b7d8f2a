// Package llm wraps the two text-generation collaborators: an
// OpenAI-compatible chat endpoint used for test generation and Gemini used
// for narrative reports and compiler-error explanations.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by a collaborator that has no API key.
var ErrNotConfigured = errors.New("language model not configured")

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Disabled stands in for a collaborator whose credentials are missing.
type Disabled struct {
	Name string
}

func (d Disabled) Generate(context.Context, string) (string, error) {
	return "", fmt.Errorf("%s: %w", d.Name, ErrNotConfigured)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
