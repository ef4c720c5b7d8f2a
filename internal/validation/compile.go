package validation

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

type CompileResult struct {
	Success    bool
	Errors     string
	BinaryPath string
}

// BinaryPathFor derives the output path for src: the .c suffix is dropped,
// any other name gets a .bin suffix.
func BinaryPathFor(src string) string {
	if strings.HasSuffix(src, ".c") {
		return strings.TrimSuffix(src, ".c")
	}
	return src + ".bin"
}

// Compile runs `<compiler> <src> -o <bin> <args...>`. A compiler that runs
// and rejects the source is a failed CompileResult, not an error; the error
// return is for a compiler that could not be started.
func Compile(ctx context.Context, compiler string, args []string, src string) (*CompileResult, error) {
	bin := BinaryPathFor(src)
	argv := append([]string{src, "-o", bin}, args...)
	cmd := exec.CommandContext(ctx, compiler, argv...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("running %s: %w", compiler, err)
	}
	return &CompileResult{
		Success:    err == nil,
		Errors:     stderr.String(),
		BinaryPath: bin,
	}, nil
}
