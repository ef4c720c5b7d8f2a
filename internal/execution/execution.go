// Package execution runs a compiled candidate binary with bounded wall-clock
// time and reports timeout and runtime failure as distinct conditions.
package execution

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTimeout means the binary was still running when its deadline passed.
	// The process is killed and no partial output is returned.
	ErrTimeout = errors.New("execution timed out")
	// ErrRuntime covers everything else that prevents a normal exit: missing
	// or non-executable file, crash by signal, sandbox failure.
	ErrRuntime = errors.New("runtime error")
)

type Output struct {
	Stdout   []byte
	ExitCode int
	Elapsed  time.Duration
}

type Executor interface {
	Run(ctx context.Context, binary string, stdin []byte, timeout time.Duration) (*Output, error)
}
