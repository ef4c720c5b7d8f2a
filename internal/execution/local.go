package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"time"
)

// Local runs the binary directly on the host.
type Local struct{}

func (Local) Run(ctx context.Context, binary string, stdin []byte, timeout time.Duration) (*Output, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// A bare name would otherwise be resolved through PATH.
	if filepath.Base(binary) == binary {
		binary = "." + string(filepath.Separator) + binary
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(runCtx, binary)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard
	cmd.WaitDelay = 100 * time.Millisecond

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s after %s: %w", binary, timeout, ErrTimeout)
		}
		// The program exited but a child it left behind still holds stdout.
		if errors.Is(err, exec.ErrWaitDelay) {
			return &Output{Stdout: stdout.Bytes(), ExitCode: cmd.ProcessState.ExitCode(), Elapsed: elapsed}, nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// -1 means the process did not exit on its own (signal).
			if code := exitErr.ExitCode(); code >= 0 {
				return &Output{Stdout: stdout.Bytes(), ExitCode: code, Elapsed: elapsed}, nil
			}
			return nil, fmt.Errorf("%s: %s: %w", binary, exitErr.ProcessState, ErrRuntime)
		}
		return nil, fmt.Errorf("running %s: %w: %w", binary, ErrRuntime, err)
	}
	return &Output{Stdout: stdout.Bytes(), Elapsed: elapsed}, nil
}
