package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/signalnine/planbench/internal/result"
)

// Executor runs the planner once against a (domain, problem) pair. The
// planner is opaque: conforming implementations only observe exit status,
// wall time and whether a plan file appeared. Solve returns an error only
// for harness-level problems; timeouts and planner failures are outcomes,
// not errors.
type Executor interface {
	Solve(ctx context.Context, domain, problem, planOut string, timeout time.Duration) (*Solution, error)
}

// Solution is the classified outcome of one planner invocation.
type Solution struct {
	Outcome  result.Outcome
	Elapsed  time.Duration
	ExitCode int
}

// SpawnError means the planner could not be launched at all. It is fatal
// for the whole invocation: no data can be collected.
type SpawnError struct {
	Bin string
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("launching planner %s: %v", e.Bin, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ProcessExecutor runs the planner binary as a local subprocess with the
// positional contract: <bin> [args...] <domain> <problem> <plan-out>.
type ProcessExecutor struct {
	Bin  string
	Args []string
}

func (e *ProcessExecutor) Solve(ctx context.Context, domain, problem, planOut string, timeout time.Duration) (*Solution, error) {
	args := make([]string, 0, len(e.Args)+3)
	args = append(args, e.Args...)
	args = append(args, domain, problem, planOut)

	// A leftover plan at this path must not count for this run: success
	// is judged by the file the planner writes now, not by history.
	if err := clearPlan(planOut); err != nil {
		return nil, err
	}

	cmd := exec.Command(e.Bin, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	// Own process group, so a timeout kill reaches the planner's
	// descendants too. The planner cannot be asked to stop cooperatively.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Bin: e.Bin, Err: err}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		killGroup(cmd)
		<-done
		return nil, ctx.Err()
	case <-timer.C:
		killGroup(cmd)
		<-done
		return &Solution{
			Outcome:  result.OutcomeTimeout,
			Elapsed:  clamp(time.Since(start), timeout),
			ExitCode: 124,
		}, nil
	case err := <-done:
		elapsed := clamp(time.Since(start), timeout)
		exitCode := 0
		if err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				return nil, fmt.Errorf("waiting for planner: %w", err)
			}
			exitCode = exitErr.ExitCode()
		}
		if exitCode == 0 && planWritten(planOut) {
			return &Solution{Outcome: result.OutcomeSuccess, Elapsed: elapsed}, nil
		}
		return &Solution{Outcome: result.OutcomeFailure, Elapsed: elapsed, ExitCode: exitCode}, nil
	}
}

// killGroup hard-kills the planner's process group so no orphaned work
// survives a timeout.
func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}

func clamp(elapsed, timeout time.Duration) time.Duration {
	if elapsed > timeout {
		return timeout
	}
	return elapsed
}

// planWritten reports whether the planner produced a non-empty plan file.
// Some planners exit 0 after exhausting the search space without a plan.
func planWritten(planOut string) bool {
	info, err := os.Stat(planOut)
	return err == nil && info.Size() > 0
}

func clearPlan(planOut string) error {
	if err := os.Remove(planOut); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing stale plan %s: %w", planOut, err)
	}
	return nil
}
