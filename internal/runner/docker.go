package runner

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"

	"github.com/signalnine/planbench/internal/result"
)

// DockerExecutor runs the planner image in a container, with the benchmark
// tree bind-mounted read-only and the plan directory mounted writable. The
// image's entrypoint is the planner itself, so the command is just the
// positional argument triple (plus any configured extra args), translated
// to container paths.
type DockerExecutor struct {
	Image      string
	Args       []string
	BenchRoot  string
	BenchMount string
}

const planMount = "/plans"

func (e *DockerExecutor) Solve(ctx context.Context, domain, problem, planOut string, timeout time.Duration) (*Solution, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, &SpawnError{Bin: e.Image, Err: err}
	}
	defer cli.Close()

	// As in the process executor: a stale plan at this path must not be
	// mistaken for output of this run.
	if err := clearPlan(planOut); err != nil {
		return nil, err
	}

	cDomain, err := e.containerPath(domain)
	if err != nil {
		return nil, err
	}
	cProblem, err := e.containerPath(problem)
	if err != nil {
		return nil, err
	}
	cPlan := path.Join(planMount, filepath.Base(planOut))

	cmd := make([]string, 0, len(e.Args)+3)
	cmd = append(cmd, e.Args...)
	cmd = append(cmd, cDomain, cProblem, cPlan)

	benchAbs, err := filepath.Abs(e.BenchRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving benchmark root: %w", err)
	}
	planDirAbs, err := filepath.Abs(filepath.Dir(planOut))
	if err != nil {
		return nil, fmt.Errorf("resolving plan dir: %w", err)
	}

	mounts := []mount.Mount{
		{Type: mount.TypeBind, Source: benchAbs, Target: e.BenchMount, ReadOnly: true},
		{Type: mount.TypeBind, Source: planDirAbs, Target: planMount},
	}

	initTrue := true
	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config: &container.Config{
			Image:  e.Image,
			Cmd:    cmd,
			Labels: map[string]string{"planbench": "true"},
		},
		HostConfig: &container.HostConfig{
			Mounts: mounts,
			Init:   &initTrue,
		},
	})
	if err != nil {
		return nil, &SpawnError{Bin: e.Image, Err: err}
	}
	containerID := createResp.ID
	defer func() {
		cli.ContainerRemove(context.Background(), containerID, client.ContainerRemoveOptions{Force: true})
	}()

	start := time.Now()
	if _, err := cli.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return nil, &SpawnError{Bin: e.Image, Err: err}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	waitResult := cli.ContainerWait(timeoutCtx, containerID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	for {
		select {
		case err := <-waitResult.Error:
			if err != nil {
				// Deadline expired (or the wait broke): hard-kill so no
				// planner work is left behind.
				cli.ContainerKill(context.Background(), containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
				return &Solution{
					Outcome:  result.OutcomeTimeout,
					Elapsed:  clamp(time.Since(start), timeout),
					ExitCode: 124,
				}, nil
			}
		case status := <-waitResult.Result:
			elapsed := clamp(time.Since(start), timeout)
			if status.StatusCode == 0 && planWritten(planOut) {
				return &Solution{Outcome: result.OutcomeSuccess, Elapsed: elapsed}, nil
			}
			return &Solution{
				Outcome:  result.OutcomeFailure,
				Elapsed:  elapsed,
				ExitCode: int(status.StatusCode),
			}, nil
		}
	}
}

func (e *DockerExecutor) containerPath(hostPath string) (string, error) {
	abs, err := filepath.Abs(hostPath)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", hostPath, err)
	}
	benchAbs, err := filepath.Abs(e.BenchRoot)
	if err != nil {
		return "", fmt.Errorf("resolving benchmark root: %w", err)
	}
	rel, err := filepath.Rel(benchAbs, abs)
	if err != nil {
		return "", fmt.Errorf("%s is outside the benchmark root: %w", hostPath, err)
	}
	return path.Join(e.BenchMount, filepath.ToSlash(rel)), nil
}
