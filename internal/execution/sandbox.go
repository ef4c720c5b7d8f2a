package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"
)

const (
	sandboxDir = "/sandbox"
	// Exit codes the shell reports for a binary it could not run.
	exitNotExecutable = 126
	exitNotFound      = 127
)

// sandboxScript runs the candidate with its stdin and stdout redirected to
// files in the mounted directory and records the in-container run time, so
// container start-up is not billed to the program.
const sandboxScript = `s=$(date +%s%N); ` +
	sandboxDir + `/prog < ` + sandboxDir + `/stdin > ` + sandboxDir + `/stdout 2>/dev/null; ` +
	`rc=$?; e=$(date +%s%N); echo $((e-s)) > ` + sandboxDir + `/elapsed_ns; exit $rc`

// Sandbox runs the binary inside a throwaway docker container with
// networking disabled. The image must be able to execute binaries built on
// the host (same libc, or build with -static).
type Sandbox struct {
	Image       string
	CPULimit    float64
	MemoryLimit int64
}

func (s *Sandbox) Run(ctx context.Context, binary string, stdin []byte, timeout time.Duration) (*Output, error) {
	dir, err := os.MkdirTemp("", "autograder-sandbox-*")
	if err != nil {
		return nil, fmt.Errorf("creating sandbox dir: %w: %w", ErrRuntime, err)
	}
	defer os.RemoveAll(dir)

	if err := copyExecutable(binary, filepath.Join(dir, "prog")); err != nil {
		return nil, fmt.Errorf("staging %s: %w: %w", binary, ErrRuntime, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stdin"), stdin, 0o644); err != nil {
		return nil, fmt.Errorf("staging stdin: %w: %w", ErrRuntime, err)
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w: %w", ErrRuntime, err)
	}
	defer cli.Close()

	initTrue := true
	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{{
			Type:   mount.TypeBind,
			Source: dir,
			Target: sandboxDir,
		}},
		Init: &initTrue,
	}
	hostCfg.NetworkMode = "none"
	if s.CPULimit > 0 {
		hostCfg.NanoCPUs = int64(s.CPULimit * 1e9)
	}
	if s.MemoryLimit > 0 {
		hostCfg.Memory = s.MemoryLimit
	}

	containerCfg := &container.Config{
		Image:  s.Image,
		Cmd:    []string{"sh", "-c", sandboxScript},
		Labels: map[string]string{"autograder": "true"},
		User:   fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()),
	}

	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerCfg,
		HostConfig: hostCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("creating container: %w: %w", ErrRuntime, err)
	}
	containerID := createResp.ID
	defer func() {
		cli.ContainerRemove(context.Background(), containerID, client.ContainerRemoveOptions{Force: true})
	}()

	start := time.Now()
	if _, err := cli.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("starting container: %w: %w", ErrRuntime, err)
	}

	// The budget covers container start-up as well; the in-container timer
	// keeps the reported runtime honest.
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout+sandboxStartupGrace)
	defer cancel()

	waitResult := cli.ContainerWait(timeoutCtx, containerID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	for {
		select {
		case err := <-waitResult.Error:
			if err != nil {
				return nil, waitFailure(timeoutCtx, binary, timeout, err, func() {
					cli.ContainerKill(context.Background(), containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
				})
			}
		case status := <-waitResult.Result:
			return collectSandboxOutput(dir, binary, int(status.StatusCode), time.Since(start), timeout)
		}
	}
}

const sandboxStartupGrace = 5 * time.Second

// waitFailure classifies an error from waiting on the container. Only an
// expired run budget is a timeout; daemon failures and cancellation are
// runtime errors. The container is killed either way.
func waitFailure(waitCtx context.Context, binary string, timeout time.Duration, err error, kill func()) error {
	kill()
	if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s after %s: %w", binary, timeout, ErrTimeout)
	}
	return fmt.Errorf("waiting for %s: %w: %w", binary, ErrRuntime, err)
}

func collectSandboxOutput(dir, binary string, exitCode int, wall, timeout time.Duration) (*Output, error) {
	elapsed := wall
	if raw, err := os.ReadFile(filepath.Join(dir, "elapsed_ns")); err == nil {
		if ns, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64); err == nil && ns >= 0 {
			elapsed = time.Duration(ns)
		}
	}
	if elapsed > timeout {
		return nil, fmt.Errorf("%s after %s: %w", binary, timeout, ErrTimeout)
	}
	if err := classifyExit(exitCode); err != nil {
		return nil, fmt.Errorf("%s: %w", binary, err)
	}
	stdout, err := os.ReadFile(filepath.Join(dir, "stdout"))
	if err != nil {
		return nil, fmt.Errorf("reading sandbox stdout: %w: %w", ErrRuntime, err)
	}
	return &Output{Stdout: stdout, ExitCode: exitCode, Elapsed: elapsed}, nil
}

// classifyExit maps a shell exit status to ErrRuntime when the program could
// not run or died from a signal (128+n).
func classifyExit(code int) error {
	switch {
	case code == exitNotExecutable, code == exitNotFound:
		return fmt.Errorf("exit status %d: %w", code, ErrRuntime)
	case code > 128:
		return fmt.Errorf("killed by signal %d: %w", code-128, ErrRuntime)
	}
	return nil
}

func copyExecutable(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
